package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// TextTool is an external plain-text extractor for PDFs.
type TextTool interface {
	Name() string
	Available() bool
	Invoke(ctx context.Context, pdfPath string) (string, error)
}

// Rasterizer renders each PDF page to an image in outDir and returns the
// image paths in page order.
type Rasterizer interface {
	Name() string
	Available() bool
	Invoke(ctx context.Context, pdfPath, outDir string) ([]string, error)
}

// OCREngine recognizes the text of one page image.
type OCREngine interface {
	Name() string
	Available() bool
	Invoke(ctx context.Context, imagePath string) (string, error)
}

type pdftotext struct {
	bin    string
	runner Runner
	logger *slog.Logger
}

func (t pdftotext) Name() string { return "pdftotext" }

func (t pdftotext) Available() bool {
	_, err := t.runner.LookPath(t.bin)
	return err == nil
}

func (t pdftotext) Invoke(ctx context.Context, pdfPath string) (string, error) {
	// pdftotext -layout -enc UTF-8 -eol unix <in.pdf> -
	out, errb, err := t.runner.Run(ctx, t.bin, t.logger, "-layout", "-enc", "UTF-8", "-eol", "unix", pdfPath, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

type pdftoppm struct {
	bin      string
	dpi      int
	maxPages int
	runner   Runner
	logger   *slog.Logger
}

func (r pdftoppm) Name() string { return "pdftoppm" }

func (r pdftoppm) Available() bool {
	_, err := r.runner.LookPath(r.bin)
	return err == nil
}

func (r pdftoppm) Invoke(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	prefix := filepath.Join(outDir, "page")
	// pdftoppm -r 300 -png [-l N] <in.pdf> <dir/page>
	args := []string{"-r", strconv.Itoa(r.dpi), "-png"}
	if r.maxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.maxPages))
	}
	args = append(args, pdfPath, prefix)
	if _, errb, err := r.runner.Run(ctx, r.bin, r.logger, args...); err != nil {
		return nil, fmt.Errorf("pdftoppm: %w: %s", err, truncate(string(errb), 512))
	}
	return collectPages(prefix+"-*.png", r.maxPages)
}

type magick struct {
	bin      string
	dpi      int
	maxPages int
	runner   Runner
	logger   *slog.Logger
}

func (r magick) Name() string { return "magick" }

func (r magick) Available() bool {
	_, err := r.runner.LookPath(r.bin)
	return err == nil
}

func (r magick) Invoke(ctx context.Context, pdfPath, outDir string) ([]string, error) {
	in := pdfPath
	if r.maxPages > 0 {
		in = fmt.Sprintf("%s[0-%d]", pdfPath, r.maxPages-1)
	}
	// magick -density 300 <in.pdf> <dir/page-000.png>
	out := filepath.Join(outDir, "page-%03d.png")
	if _, errb, err := r.runner.Run(ctx, r.bin, r.logger, "-density", strconv.Itoa(r.dpi), in, out); err != nil {
		return nil, fmt.Errorf("magick: %w: %s", err, truncate(string(errb), 512))
	}
	return collectPages(filepath.Join(outDir, "page-*.png"), r.maxPages)
}

func collectPages(glob string, maxPages int) ([]string, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)
	if maxPages > 0 && len(matches) > maxPages {
		matches = matches[:maxPages]
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no pages rendered")
	}
	return matches, nil
}

type tesseract struct {
	bin         string
	lang        string
	tessdataDir string
	psm         int
	runner      Runner
	logger      *slog.Logger
}

func (e tesseract) Name() string { return "tesseract" }

func (e tesseract) Available() bool {
	_, err := e.runner.LookPath(e.bin)
	return err == nil
}

func (e tesseract) Invoke(ctx context.Context, imagePath string) (string, error) {
	// tesseract <img> stdout -l <lang>
	args := []string{imagePath, "stdout", "-l", e.lang}
	if e.tessdataDir != "" {
		args = append(args, "--tessdata-dir", e.tessdataDir)
	}
	if e.psm > 0 {
		args = append(args, "--psm", strconv.Itoa(e.psm))
	}
	out, errb, err := e.runner.Run(ctx, e.bin, e.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}

// DefaultTools wires the command-line tools named in cfg through runner.
func DefaultTools(cfg Config, runner Runner, logger *slog.Logger) Tools {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = execRunner{}
	}
	cfg = cfg.withDefaults()
	return Tools{
		Native:   PDFNative{},
		TextTool: pdftotext{bin: cfg.Pdftotext, runner: runner, logger: logger},
		Rasterizers: []Rasterizer{
			pdftoppm{bin: cfg.Pdftoppm, dpi: cfg.DPI, maxPages: cfg.MaxPages, runner: runner, logger: logger},
			magick{bin: cfg.Magick, dpi: cfg.DPI, maxPages: cfg.MaxPages, runner: runner, logger: logger},
		},
		Engine: tesseract{
			bin:         cfg.Tesseract,
			lang:        strings.Join(cfg.Languages, "+"),
			tessdataDir: cfg.TessdataDir,
			psm:         cfg.PSM,
			runner:      runner,
			logger:      logger,
		},
	}
}
