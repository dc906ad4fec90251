package core

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/metrics"
)

// TextAcquirer is the text acquisition stage (ocr.Extractor).
type TextAcquirer interface {
	Extract(ctx context.Context, data []byte, opts ...ocr.ExtractOption) (ocr.TextResult, error)
}

// FieldExtractor is the field extraction stage (extract.Extractor).
type FieldExtractor interface {
	ExtractText(ctx context.Context, text string) (*extract.ExtractionResult, error)
}

type ProcessorConfig struct {
	// OCRSkipConfidence skips OCR when the text acquired before it already
	// scores at least this much. 0 disables the check.
	OCRSkipConfidence float64
	// BatchConcurrency bounds the documents of one batch processed at once.
	BatchConcurrency int
}

// Processor coordinates text acquisition then field extraction.
type Processor struct {
	logger         *slog.Logger
	ocrExtractor   TextAcquirer
	fieldExtractor FieldExtractor
	metrics        *metrics.Metrics
	cfg            ProcessorConfig
}

func NewProcessor(
	logger *slog.Logger,
	ocrExtractor TextAcquirer,
	fieldExtractor FieldExtractor,
	m *metrics.Metrics,
	cfg ProcessorConfig,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.BatchConcurrency <= 0 {
		cfg.BatchConcurrency = 4
	}
	return &Processor{
		logger:         logger,
		ocrExtractor:   ocrExtractor,
		fieldExtractor: fieldExtractor,
		metrics:        m,
		cfg:            cfg,
	}
}

// Process turns document bytes into an extraction result. A validation error
// comes back together with the partial result; an acquisition error has none.
func (p *Processor) Process(ctx context.Context, data []byte, opts ...ocr.ExtractOption) (*extract.ExtractionResult, error) {
	start := time.Now()
	if common.RequestIDFromContext(ctx) == "" {
		ctx = common.WithRequestID(ctx, uuid.NewString())
	}
	reqID := common.RequestIDFromContext(ctx)

	if p.cfg.OCRSkipConfidence > 0 {
		opts = append([]ocr.ExtractOption{ocr.WithSkipOCR(p.skipOCR(ctx))}, opts...)
	}

	txt, err := p.ocrExtractor.Extract(ctx, data, opts...)
	if err != nil {
		p.logger.Error("text acquisition failed", "request_id", reqID, "error", err)
		p.metrics.RecordExtraction(outcome(err), time.Since(start))
		return nil, err
	}
	ocrPages := 0
	if txt.UsedOCR {
		ocrPages = txt.Pages
	}
	p.metrics.RecordAcquisition(txt.Method, ocrPages)
	p.logger.Debug("text acquired",
		"request_id", reqID,
		"method", txt.Method,
		"pages", txt.Pages,
		"used_ocr", txt.UsedOCR,
		"text_confidence", txt.Confidence,
	)

	res, err := p.fieldExtractor.ExtractText(ctx, txt.Text)
	p.metrics.RecordExtraction(outcome(err), time.Since(start))
	if res != nil {
		p.metrics.RecordResult(string(res.Provider), res.ConfidenceScore)
	}
	if err != nil {
		p.logger.Warn("field extraction incomplete", "request_id", reqID, "error", err)
		return res, err
	}

	p.logger.Info("paystub extracted",
		"request_id", reqID,
		"provider", res.Provider,
		"method", txt.Method,
		"gross", res.GrossPay.String(),
		"net", res.NetPay.String(),
		"confidence", res.ConfidenceScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// skipOCR scores the pre-OCR text with the field extractor.
func (p *Processor) skipOCR(ctx context.Context) func(string) bool {
	return func(text string) bool {
		r, _ := p.fieldExtractor.ExtractText(ctx, text)
		if r == nil {
			return false
		}
		return r.ConfidenceScore >= p.cfg.OCRSkipConfidence
	}
}

// ProcessFile reads path and runs Process on its contents.
func (p *Processor) ProcessFile(ctx context.Context, path string, opts ...ocr.ExtractOption) (*extract.ExtractionResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, common.NewInvalidInputError(fmt.Sprintf("read %s: %v", filepath.Base(path), err))
	}
	return p.Process(ctx, data, opts...)
}

// Document is one member of a batch.
type Document struct {
	Filename string
	Data     []byte
}

// BatchEntry is the per-document outcome of ProcessBatch.
type BatchEntry struct {
	Filename string                    `json:"filename"`
	Success  bool                      `json:"success"`
	Data     *extract.ExtractionResult `json:"data,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// ProcessBatch processes up to constants.MaxBatchDocuments documents
// independently. One document failing does not fail the batch; its error is
// recorded in its entry. Entries keep the input order.
func (p *Processor) ProcessBatch(ctx context.Context, docs []Document, opts ...ocr.ExtractOption) ([]BatchEntry, error) {
	if len(docs) == 0 {
		return nil, common.NewInvalidInputError("no documents provided")
	}
	if len(docs) > constants.MaxBatchDocuments {
		return nil, common.NewInvalidInputError(fmt.Sprintf("maximum %d files allowed per batch", constants.MaxBatchDocuments))
	}
	parent := common.RequestIDFromContext(ctx)

	entries := make([]BatchEntry, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.BatchConcurrency)
	for i, doc := range docs {
		g.Go(func() error {
			dctx := gctx
			if parent != "" {
				dctx = common.WithRequestID(gctx, fmt.Sprintf("%s-%d", parent, i))
			}
			entry := BatchEntry{Filename: doc.Filename}
			res, err := p.Process(dctx, doc.Data, opts...)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.Success = true
				entry.Data = res
			}
			entries[i] = entry
			return nil
		})
	}
	// workers never return errors; Wait only joins them
	_ = g.Wait()

	ok := 0
	for _, e := range entries {
		if e.Success {
			ok++
		}
	}
	p.logger.Info("batch processed", "request_id", parent, "documents", len(docs), "succeeded", ok)
	return entries, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case common.IsAcquisition(err):
		return metrics.OutcomeAcquisitionError
	case common.IsValidation(err):
		return metrics.OutcomeValidationError
	default:
		return metrics.OutcomeError
	}
}
