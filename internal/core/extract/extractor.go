// Package extract turns acquired paystub text into an ExtractionResult:
// provider classification, pattern matching, section-aware line scanning,
// year-to-date totals, pay-frequency inference, scoring and validation.
package extract

import (
	"context"
	"log/slog"
	"strings"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
)

// Extractor runs the field-extraction stages over text. It holds no
// per-document state and is safe for concurrent use.
type Extractor struct {
	lib    *patterns.Library
	logger *slog.Logger
}

func NewExtractor(lib *patterns.Library, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if lib == nil {
		lib = patterns.DefaultLibrary()
	}
	return &Extractor{lib: lib, logger: logger}
}

// Library exposes the injected pattern library.
func (e *Extractor) Library() *patterns.Library { return e.lib }

// ExtractText runs classify, match, single values, sections, YTD, frequency,
// score and validate, in that order. When both gross and net pay are zero
// the partially filled result is returned together with a validation error.
func (e *Extractor) ExtractText(ctx context.Context, text string) (*ExtractionResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, common.NewAcquisitionError(nil)
	}
	reqID := common.RequestIDFromContext(ctx)

	r := newResult()
	r.RawText = text
	r.Provider = e.lib.Detect(text)
	matches := e.lib.Match(text, r.Provider)
	e.logger.Debug("patterns matched",
		"request_id", reqID,
		"provider", r.Provider,
		"matches", matches.Len(),
	)

	e.extractSingleValues(r, newFieldScanner(text, matches))
	e.scanSections(r, text)
	e.extractYTD(r, text, matches)
	r.PayFrequency = e.frequency(text, r, matches)

	r.ConfidenceScore = Score(r)
	if Validate(r) {
		r.PayFrequency = e.frequency(text, r, matches)
		r.ConfidenceScore = Score(r)
	}

	e.logger.Debug("fields extracted",
		"request_id", reqID,
		"provider", r.Provider,
		"gross", r.GrossPay.String(),
		"net", r.NetPay.String(),
		"earnings", len(r.Earnings),
		"deductions", len(r.Deductions),
		"taxes", len(r.Taxes),
		"frequency", r.PayFrequency,
		"confidence", r.ConfidenceScore,
	)

	if r.GrossPay == 0 && r.NetPay == 0 {
		return r, common.NewValidationError("no gross or net pay found")
	}
	return r, nil
}

// frequency prefers an explicit frequency label, then InferFrequency.
func (e *Extractor) frequency(text string, r *ExtractionResult, matches *patterns.MatchSet) constants.PayFrequency {
	if m, ok := matches.Best(patterns.FieldFrequency); ok {
		if f, ok := constants.CanonicalizeFrequency(m.First(1)); ok && f.Resolved() {
			return f
		}
	}
	return InferFrequency(text, r.PayPeriodStart, r.PayPeriodEnd)
}
