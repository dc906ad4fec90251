// Package ocr acquires text from paystub documents: embedded PDF text, the
// pdftotext fallback for short native output, and page-by-page OCR of
// rasterized pages.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/common"
)

// Acquisition methods reported in TextResult.Method, joined with "+".
const (
	MethodNative    = "native"
	MethodPdftotext = "pdftotext"
	MethodOCR       = "ocr"
	MethodText      = "text"
)

type Config struct {
	EnableOCR bool
	Languages []string // tesseract languages, joined with "+"; default ["eng"]

	Pdftotext string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm  string // if empty -> "pdftoppm"
	Magick    string // if empty -> "magick"
	Tesseract string // if empty -> "tesseract"

	TessdataDir string
	DPI         int // rasterization DPI, default 300
	MaxPages    int // 0 = no limit
	PSM         int

	MinTextLength int // native text shorter than this triggers pdftotext; default 50
	TempDir       string
}

func (c Config) withDefaults() Config {
	if c.Pdftotext == "" {
		c.Pdftotext = "pdftotext"
	}
	if c.Pdftoppm == "" {
		c.Pdftoppm = "pdftoppm"
	}
	if c.Magick == "" {
		c.Magick = "magick"
	}
	if c.Tesseract == "" {
		c.Tesseract = "tesseract"
	}
	if len(c.Languages) == 0 {
		c.Languages = []string{"eng"}
	}
	if c.DPI <= 0 {
		c.DPI = 300
	}
	if c.MinTextLength <= 0 {
		c.MinTextLength = constants.MinNativeTextLength
	}
	return c
}

// Tools are the acquisition strategies. Nil entries are skipped.
type Tools struct {
	Native      NativeExtractor
	TextTool    TextTool
	Rasterizers []Rasterizer
	Engine      OCREngine
}

type TextResult struct {
	Text       string
	Pages      int
	Format     string // constants.PDF | constants.IMAGE | constants.TXT
	Method     string
	UsedOCR    bool
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

type Extractor struct {
	cfg    Config
	tools  Tools
	logger *slog.Logger
}

func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	return NewExtractorWithTools(cfg, logger, DefaultTools(cfg, execRunner{}, logger))
}

func NewExtractorWithTools(cfg Config, logger *slog.Logger, tools Tools) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{cfg: cfg.withDefaults(), tools: tools, logger: logger}
}

type extractOptions struct {
	ocr     bool
	skipOCR func(text string) bool
}

type ExtractOption func(*extractOptions)

// WithOCR overrides Config.EnableOCR for one call.
func WithOCR(enabled bool) ExtractOption {
	return func(o *extractOptions) { o.ocr = enabled }
}

// WithSkipOCR lets the caller skip OCR when the text acquired so far is
// already good enough.
func WithSkipOCR(fn func(text string) bool) ExtractOption {
	return func(o *extractOptions) { o.skipOCR = fn }
}

// Extract returns the best available text for data. It fails with an
// acquisition error only when no strategy yields any text.
func (e *Extractor) Extract(ctx context.Context, data []byte, opts ...ExtractOption) (TextResult, error) {
	start := time.Now()
	o := extractOptions{ocr: e.cfg.EnableOCR}
	for _, opt := range opts {
		opt(&o)
	}

	res := TextResult{
		Format:   constants.DetectFormat(data),
		Language: strings.Join(e.cfg.Languages, "+"),
	}
	e.logger.Debug("starting text acquisition",
		"request_id", common.RequestIDFromContext(ctx),
		"format", res.Format,
		"bytes", len(data),
		"ocr", o.ocr,
	)

	ws := &workspace{base: e.cfg.TempDir, reqID: common.RequestIDFromContext(ctx), logger: e.logger}
	defer ws.cleanup()

	var err error
	switch res.Format {
	case constants.TXT:
		res.Text = Normalize(string(data))
		res.Pages = 1
		res.Method = MethodText
	case constants.IMAGE:
		err = e.extractImage(ctx, data, o, ws, &res)
	case constants.PDF:
		err = e.extractPDF(ctx, data, o, ws, &res)
	default:
		err = fmt.Errorf("unsupported document format")
	}
	res.Duration = time.Since(start)

	if strings.TrimSpace(res.Text) == "" {
		if err == nil {
			err = fmt.Errorf("no text from any strategy")
		}
		return res, common.NewAcquisitionError(err)
	}
	res.Confidence = heuristicConfidence(res.Text)
	e.logger.Debug("text acquired",
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"used_ocr", res.UsedOCR,
		"warnings", len(res.Warnings),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) extractPDF(ctx context.Context, data []byte, o extractOptions, ws *workspace, res *TextResult) error {
	var methods []string
	base := ""

	if e.tools.Native != nil {
		txt, pages, err := e.tools.Native.ExtractText(data)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else {
			base = Normalize(txt)
			res.Pages = pages
			if base != "" {
				methods = append(methods, MethodNative)
			}
		}
	}

	if len(base) < e.cfg.MinTextLength && e.tools.TextTool != nil && e.tools.TextTool.Available() {
		if raw, err := e.pdftotext(ctx, data, ws); err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		} else if txt := Normalize(raw); len(txt) > len(base) {
			base = txt
			methods = []string{MethodPdftotext}
			if res.Pages == 0 {
				// form feed separates pages
				res.Pages = 1 + strings.Count(strings.TrimRight(raw, "\f"), "\f")
			}
		}
	}

	var ocrText string
	if o.ocr && (o.skipOCR == nil || base == "" || !o.skipOCR(base)) {
		txt, pages, err := e.ocrPDF(ctx, data, ws, res)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
		}
		if txt != "" {
			ocrText = txt
			res.UsedOCR = true
			methods = append(methods, MethodOCR)
			if res.Pages == 0 {
				res.Pages = pages
			}
		}
	} else if o.ocr {
		e.logger.Debug("ocr skipped, text already sufficient", "chars", len(base))
	}

	res.Text = combine(base, ocrText)
	res.Method = strings.Join(methods, "+")
	return nil
}

func (e *Extractor) pdftotext(ctx context.Context, data []byte, ws *workspace) (string, error) {
	path, err := ws.file("input.pdf", data)
	if err != nil {
		return "", err
	}
	return e.tools.TextTool.Invoke(ctx, path)
}

// ocrPDF rasterizes with the first rasterizer that works and recognizes each
// page. Pages that fail to OCR are skipped.
func (e *Extractor) ocrPDF(ctx context.Context, data []byte, ws *workspace, res *TextResult) (string, int, error) {
	if e.tools.Engine == nil || !e.tools.Engine.Available() {
		return "", 0, fmt.Errorf("ocr engine unavailable")
	}
	path, err := ws.file("input.pdf", data)
	if err != nil {
		return "", 0, err
	}

	var images []string
	for _, r := range e.tools.Rasterizers {
		if r == nil || !r.Available() {
			continue
		}
		// a failed rasterizer may leave partial pages behind
		outDir, err := ws.dir(filepath.Join("pages", r.Name()))
		if err != nil {
			return "", 0, err
		}
		imgs, err := r.Invoke(ctx, path, outDir)
		if err != nil {
			res.Warnings = append(res.Warnings, err.Error())
			e.logger.Warn("rasterizer failed, trying next", "rasterizer", r.Name(), "error", err)
			continue
		}
		images = imgs
		break
	}
	if len(images) == 0 {
		return "", 0, fmt.Errorf("no rasterizer produced page images")
	}

	var parts []string
	for i, img := range images {
		txt, err := e.tools.Engine.Invoke(ctx, img)
		if err != nil {
			res.Warnings = append(res.Warnings, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		if txt = Normalize(txt); txt != "" {
			parts = append(parts, txt)
		}
	}
	return strings.Join(parts, "\n\n"), len(images), nil
}

func (e *Extractor) extractImage(ctx context.Context, data []byte, o extractOptions, ws *workspace, res *TextResult) error {
	res.Pages = 1
	if !o.ocr {
		return fmt.Errorf("image input requires ocr")
	}
	if e.tools.Engine == nil || !e.tools.Engine.Available() {
		return fmt.Errorf("ocr engine unavailable")
	}
	path, err := ws.file("input.img", data)
	if err != nil {
		return err
	}
	txt, err := e.tools.Engine.Invoke(ctx, path)
	if err != nil {
		return err
	}
	res.Text = Normalize(txt)
	res.Method = MethodOCR
	res.UsedOCR = true
	return nil
}

func combine(parts ...string) string {
	var keep []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			keep = append(keep, p)
		}
	}
	return strings.Join(keep, "\n\n")
}

// workspace is the private temp directory of one Extract call, created on
// first use and removed by cleanup.
type workspace struct {
	base   string
	reqID  string
	logger *slog.Logger
	root   string
	files  map[string]string
}

func (w *workspace) ensure() error {
	if w.root != "" {
		return nil
	}
	id := w.reqID
	if id == "" {
		id = uuid.NewString()
	}
	dir, err := os.MkdirTemp(w.base, "paystub-"+sanitizeID(id)+"-*")
	if err != nil {
		return fmt.Errorf("create temp dir: %w", err)
	}
	w.root = dir
	w.files = make(map[string]string)
	return nil
}

func (w *workspace) file(name string, data []byte) (string, error) {
	if err := w.ensure(); err != nil {
		return "", err
	}
	if p, ok := w.files[name]; ok {
		return p, nil
	}
	p := filepath.Join(w.root, name)
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return "", fmt.Errorf("write temp file: %w", err)
	}
	w.files[name] = p
	return p, nil
}

func (w *workspace) dir(name string) (string, error) {
	if err := w.ensure(); err != nil {
		return "", err
	}
	p := filepath.Join(w.root, name)
	if err := os.MkdirAll(p, 0o700); err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	return p, nil
}

func (w *workspace) cleanup() {
	if w.root == "" {
		return
	}
	if err := os.RemoveAll(w.root); err != nil {
		w.logger.Warn("failed to remove temp dir", "dir", w.root, "error", err)
	}
}

func sanitizeID(id string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return '_'
	}, id)
}
