package core

import (
	"log/slog"

	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
	"github.com/joseph-ayodele/paystubs/internal/metrics"
)

// OCRConfig converts the loaded configuration into acquisition settings.
func OCRConfig(c common.OCRConfig) ocr.Config {
	return ocr.Config{
		EnableOCR:   c.Enabled,
		Languages:   c.Languages,
		Pdftotext:   c.Pdftotext,
		Pdftoppm:    c.Pdftoppm,
		Magick:      c.Magick,
		Tesseract:   c.Tesseract,
		TessdataDir: c.TessdataDir,
		DPI:         c.DPI,
		MaxPages:    c.MaxPages,
		PSM:         c.PSM,
		TempDir:     c.TempDir,
	}
}

// NewProcessorFromConfig wires the default pattern library, the external
// tool chain and the field extractor into a Processor.
func NewProcessorFromConfig(cfg *common.Config, logger *slog.Logger, m *metrics.Metrics) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	acq := ocr.NewExtractor(OCRConfig(cfg.OCR), logger.With("component", "ocr"))
	fields := extract.NewExtractor(patterns.DefaultLibrary(), logger.With("component", "extract"))
	return NewProcessor(logger.With("component", "processor"), acq, fields, m, ProcessorConfig{
		OCRSkipConfidence: cfg.OCR.SkipConfidence,
		BatchConcurrency:  cfg.Processing.BatchConcurrency,
	})
}
