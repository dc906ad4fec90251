package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paystubs/constants"
	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
	"github.com/joseph-ayodele/paystubs/internal/core/normalize"
	"github.com/joseph-ayodele/paystubs/internal/core/ocr"
	"github.com/joseph-ayodele/paystubs/internal/core/patterns"
)

const fullStub = `Employer: Acme Widgets LLC
Employee Name: Jane Q Public
Pay Period: 01/08/2024 - 01/21/2024
Earnings
Regular 80.00 29.6875 2,375.00
Deductions
Federal Income Tax 250.00
Gross Pay 2,375.00
Net Pay 1,961.69
`

const partialStub = "Gross Pay: $2,375.00\nPay Period: 01/01/2024 - 01/15/2024\n"

type stubNative struct{ text string }

func (n stubNative) ExtractText([]byte) (string, int, error) { return n.text, 1, nil }

type stubRaster struct{}

func (stubRaster) Name() string    { return "raster" }
func (stubRaster) Available() bool { return true }
func (stubRaster) Invoke(context.Context, string, string) ([]string, error) {
	return []string{"page-1.png"}, nil
}

type stubEngine struct {
	text  string
	calls atomic.Int32
}

func (e *stubEngine) Name() string    { return "engine" }
func (e *stubEngine) Available() bool { return true }
func (e *stubEngine) Invoke(context.Context, string) (string, error) {
	e.calls.Add(1)
	return e.text, nil
}

var fakePDF = []byte("%PDF-1.4\n%stub")

func newTestProcessor(t *testing.T, native string, engine *stubEngine, skip float64) *Processor {
	t.Helper()
	acq := ocr.NewExtractorWithTools(ocr.Config{EnableOCR: true, TempDir: t.TempDir()}, nil, ocr.Tools{
		Native:      stubNative{text: native},
		Rasterizers: []ocr.Rasterizer{stubRaster{}},
		Engine:      engine,
	})
	fields := extract.NewExtractor(patterns.DefaultLibrary(), nil)
	return NewProcessor(nil, acq, fields, nil, ProcessorConfig{OCRSkipConfidence: skip})
}

func TestProcessSkipsOCRWhenTextScoresHigh(t *testing.T) {
	engine := &stubEngine{text: "Net Pay 1,000.00"}
	p := newTestProcessor(t, fullStub, engine, constants.DefaultOCRSkipConfidence)

	r, err := p.Process(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.Zero(t, engine.calls.Load())
	assert.Equal(t, normalize.Money(237500), r.GrossPay)
	assert.Equal(t, normalize.Money(196169), r.NetPay)
	assert.GreaterOrEqual(t, r.ConfidenceScore, constants.DefaultOCRSkipConfidence)
}

func TestProcessRunsOCRWhenTextScoresLow(t *testing.T) {
	engine := &stubEngine{text: "Net Pay: $1,592.06"}
	p := newTestProcessor(t, partialStub, engine, constants.DefaultOCRSkipConfidence)

	r, err := p.Process(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.EqualValues(t, 1, engine.calls.Load())
	assert.Equal(t, normalize.Money(237500), r.GrossPay)
	assert.Equal(t, normalize.Money(159206), r.NetPay, "net pay comes from the OCR text")
}

func TestProcessSkipDisabled(t *testing.T) {
	engine := &stubEngine{text: "Net Pay 1,961.69"}
	p := newTestProcessor(t, fullStub, engine, 0)

	_, err := p.Process(context.Background(), fakePDF)
	require.NoError(t, err)
	assert.EqualValues(t, 1, engine.calls.Load())
}

func TestProcessErrors(t *testing.T) {
	p := newTestProcessor(t, "", &stubEngine{}, 0)

	_, err := p.Process(context.Background(), fakePDF)
	require.Error(t, err)
	assert.True(t, common.IsAcquisition(err))

	r, err := p.Process(context.Background(), []byte("Employer: Acme Widgets LLC\nnothing else here\n"))
	require.Error(t, err)
	assert.True(t, common.IsValidation(err))
	require.NotNil(t, r, "partial result comes back with the validation error")
	assert.Equal(t, "Acme Widgets LLC", r.Employer.Name)
}

func TestProcessFile(t *testing.T) {
	p := newTestProcessor(t, "", &stubEngine{}, 0)
	path := filepath.Join(t.TempDir(), "stub.txt")
	require.NoError(t, os.WriteFile(path, []byte(fullStub), 0o600))

	r, err := p.ProcessFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, "Jane Q Public", r.Employee.Name)

	_, err = p.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.True(t, common.IsInvalidInput(err))
}

func TestProcessBatch(t *testing.T) {
	p := newTestProcessor(t, "", &stubEngine{}, 0)
	docs := []Document{
		{Filename: "a.txt", Data: []byte(fullStub)},
		{Filename: "empty.pdf", Data: fakePDF},
		{Filename: "c.txt", Data: []byte(partialStub)},
	}

	entries, err := p.ProcessBatch(common.WithRequestID(context.Background(), "batch"), docs)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a.txt", entries[0].Filename)
	assert.True(t, entries[0].Success)
	assert.Equal(t, normalize.Money(196169), entries[0].Data.NetPay)

	assert.Equal(t, "empty.pdf", entries[1].Filename)
	assert.False(t, entries[1].Success)
	assert.Nil(t, entries[1].Data)
	assert.NotEmpty(t, entries[1].Error)

	assert.Equal(t, "c.txt", entries[2].Filename)
	assert.True(t, entries[2].Success)
	assert.Equal(t, normalize.Money(237500), entries[2].Data.GrossPay)
}

func TestProcessBatchLimits(t *testing.T) {
	p := newTestProcessor(t, "", &stubEngine{}, 0)

	_, err := p.ProcessBatch(context.Background(), nil)
	assert.True(t, common.IsInvalidInput(err))

	docs := make([]Document, constants.MaxBatchDocuments+1)
	for i := range docs {
		docs[i] = Document{Filename: fmt.Sprintf("%d.txt", i), Data: []byte(fullStub)}
	}
	_, err = p.ProcessBatch(context.Background(), docs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrInvalidInput))
	assert.Contains(t, err.Error(), "maximum 10 files")
}
