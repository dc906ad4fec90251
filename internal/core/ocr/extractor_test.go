package ocr

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paystubs/internal/common"
)

type stubRunner struct {
	missing map[string]bool
	calls   []string
	run     func(name string, args []string) ([]byte, []byte, error)
}

func (s *stubRunner) LookPath(name string) (string, error) {
	if s.missing[name] {
		return "", errors.New("not found")
	}
	return "/usr/bin/" + name, nil
}

func (s *stubRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.calls = append(s.calls, name)
	if s.run == nil {
		return nil, nil, fmt.Errorf("unexpected call to %s", name)
	}
	return s.run(name, args)
}

func (s *stubRunner) called(name string) int {
	n := 0
	for _, c := range s.calls {
		if c == name {
			n++
		}
	}
	return n
}

type stubNative struct {
	text  string
	pages int
	err   error
}

func (n stubNative) ExtractText([]byte) (string, int, error) { return n.text, n.pages, n.err }

var fakePDF = []byte("%PDF-1.4\n%fake document body")

const longText = "ACME WIDGETS LLC\nGross Pay: $2,375.00\nNet Pay: $1,592.06\nPay Period: 01/01/2024 - 01/15/2024"

func newTestExtractor(t *testing.T, cfg Config, r *stubRunner, native NativeExtractor) *Extractor {
	t.Helper()
	if cfg.TempDir == "" {
		cfg.TempDir = t.TempDir()
	}
	tools := DefaultTools(cfg, r, nil)
	tools.Native = native
	return NewExtractorWithTools(cfg, nil, tools)
}

func writePages(t *testing.T, pattern string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		name := fmt.Sprintf(pattern, i+1)
		require.NoError(t, os.WriteFile(name, []byte("png"), 0o600))
	}
}

func TestExtractPlainText(t *testing.T) {
	r := &stubRunner{}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{})

	res, err := e.Extract(context.Background(), []byte("Gross Pay:\t$2,375.00\r\nNet Pay:   $1,592.06\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "Gross Pay: $2,375.00\nNet Pay: $1,592.06", res.Text)
	assert.Equal(t, MethodText, res.Method)
	assert.False(t, res.UsedOCR)
	assert.Empty(t, r.calls)
}

func TestExtractNativeTextIsEnough(t *testing.T) {
	r := &stubRunner{}
	e := newTestExtractor(t, Config{}, r, stubNative{text: longText, pages: 1})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, longText, res.Text)
	assert.Equal(t, MethodNative, res.Method)
	assert.Equal(t, 1, res.Pages)
	assert.Empty(t, r.calls, "no external tools when native text is long enough and OCR is off")
	assert.Greater(t, res.Confidence, float32(0.5))
}

func TestExtractFallsBackToPdftotext(t *testing.T) {
	r := &stubRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "pdftotext", name)
		assert.Equal(t, "-", args[len(args)-1])
		return []byte(longText + "\f"), nil, nil
	}}
	e := newTestExtractor(t, Config{}, r, stubNative{text: "Page 1", pages: 1})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, longText, res.Text)
	assert.Equal(t, MethodPdftotext, res.Method)
	assert.Equal(t, 1, r.called("pdftotext"))
}

func TestExtractOCRWithRasterizerFallback(t *testing.T) {
	tmp := t.TempDir()
	r := &stubRunner{missing: map[string]bool{"pdftotext": true}}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			return nil, []byte("Syntax Error"), errors.New("exit status 1")
		case "magick":
			writePages(t, args[len(args)-1], 2)
			return nil, nil, nil
		case "tesseract":
			if strings.HasSuffix(args[0], "page-002.png") {
				return nil, []byte("read error"), errors.New("exit status 1")
			}
			assert.Equal(t, []string{"stdout", "-l", "eng+spa"}, args[1:4])
			return []byte("Gross Pay $900.00\n\nNet Pay $700.00\n"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected %s", name)
	}
	e := newTestExtractor(t, Config{EnableOCR: true, Languages: []string{"eng", "spa"}, TempDir: tmp}, r, stubNative{})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.True(t, res.UsedOCR)
	assert.Equal(t, MethodOCR, res.Method)
	assert.Equal(t, "Gross Pay $900.00\n\nNet Pay $700.00", res.Text)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, "eng+spa", res.Language)
	assert.Equal(t, 1, r.called("pdftoppm"))
	assert.Equal(t, 1, r.called("magick"))
	assert.Equal(t, 2, r.called("tesseract"))
	assert.Zero(t, r.called("pdftotext"))
	require.Len(t, res.Warnings, 2)
	assert.Contains(t, res.Warnings[0], "pdftoppm")
	assert.Contains(t, res.Warnings[1], "page 2")

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Empty(t, entries, "temp workspace must be removed")
}

func TestExtractOCRIgnoresPagesOfFailedRasterizer(t *testing.T) {
	r := &stubRunner{missing: map[string]bool{"pdftotext": true}}
	var recognized []string
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			writePages(t, args[len(args)-1]+"-%d.png", 1)
			return nil, []byte("Syntax Error on page 2"), errors.New("exit status 1")
		case "magick":
			writePages(t, args[len(args)-1], 2)
			return nil, nil, nil
		case "tesseract":
			recognized = append(recognized, filepath.Base(args[0]))
			return []byte("Regular 80.00 25.00 2,000.00\n"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected %s", name)
	}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, []string{"page-001.png", "page-002.png"}, recognized)
	assert.Equal(t, 2, res.Pages)
	assert.Equal(t, 2, strings.Count(res.Text, "Regular"))
}

func TestExtractCombinesNativeAndOCR(t *testing.T) {
	r := &stubRunner{missing: map[string]bool{"pdftotext": true}}
	r.run = func(name string, args []string) ([]byte, []byte, error) {
		switch name {
		case "pdftoppm":
			writePages(t, args[len(args)-1]+"-%d.png", 1)
			return nil, nil, nil
		case "tesseract":
			return []byte("Employee Name: Jane Q Public"), nil, nil
		}
		return nil, nil, fmt.Errorf("unexpected %s", name)
	}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{text: longText, pages: 1})

	res, err := e.Extract(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Equal(t, longText+"\n\nEmployee Name: Jane Q Public", res.Text)
	assert.Equal(t, "native+ocr", res.Method)
}

func TestExtractSkipOCRHook(t *testing.T) {
	r := &stubRunner{}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{text: longText, pages: 1})

	var seen string
	res, err := e.Extract(context.Background(), fakePDF, WithSkipOCR(func(text string) bool {
		seen = text
		return true
	}))
	require.NoError(t, err)
	assert.Equal(t, longText, seen)
	assert.False(t, res.UsedOCR)
	assert.Empty(t, r.calls)
}

func TestExtractWithOCRDisabledPerCall(t *testing.T) {
	r := &stubRunner{}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{text: longText, pages: 1})

	res, err := e.Extract(context.Background(), fakePDF, WithOCR(false))
	require.NoError(t, err)
	assert.False(t, res.UsedOCR)
	assert.Empty(t, r.calls)
}

func TestExtractAcquisitionFailures(t *testing.T) {
	unavailable := &stubRunner{missing: map[string]bool{
		"pdftotext": true, "pdftoppm": true, "magick": true, "tesseract": true,
	}}
	tests := []struct {
		name   string
		cfg    Config
		native NativeExtractor
		data   []byte
	}{
		{"empty bytes", Config{}, stubNative{}, nil},
		{"blank text", Config{}, stubNative{}, []byte("  \n\t ")},
		{"pdf without text or tools", Config{EnableOCR: true}, stubNative{err: errors.New("bad xref")}, fakePDF},
		{"image with ocr disabled", Config{}, stubNative{}, []byte("\x89PNG\r\n\x1a\nrest")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestExtractor(t, tt.cfg, unavailable, tt.native)
			_, err := e.Extract(context.Background(), tt.data)
			require.Error(t, err)
			assert.True(t, common.IsAcquisition(err))
		})
	}
}

func TestExtractImage(t *testing.T) {
	r := &stubRunner{run: func(name string, args []string) ([]byte, []byte, error) {
		require.Equal(t, "tesseract", name)
		assert.Equal(t, "input.img", filepath.Base(args[0]))
		return []byte("Net Pay $700.00"), nil, nil
	}}
	e := newTestExtractor(t, Config{EnableOCR: true}, r, stubNative{})

	res, err := e.Extract(context.Background(), []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00})
	require.NoError(t, err)
	assert.Equal(t, "Net Pay $700.00", res.Text)
	assert.True(t, res.UsedOCR)
	assert.Equal(t, 1, res.Pages)
}

func TestNormalize(t *testing.T) {
	in := "Gross Pay\t\t$ 2,375.00  \r\n-----------\r\n\r\n\r\n\r\nPay Period: 01/01/2024 – 01/15/2024\f"
	assert.Equal(t, "Gross Pay $2,375.00\n\nPay Period: 01/01/2024 - 01/15/2024", Normalize(in))
	assert.Equal(t, "", Normalize(""))
}
