package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/async"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
)

// ResultSuffix is appended to the input path to name its result file.
const ResultSuffix = ".paystub.json"

// JSONSink writes <input>.paystub.json for every processed job: the result
// on success, an error document otherwise.
type JSONSink struct {
	Logger *slog.Logger
}

type sinkError struct {
	JobID  string                    `json:"job_id"`
	Error  string                    `json:"error"`
	Code   string                    `json:"code"`
	Result *extract.ExtractionResult `json:"partial_result,omitempty"`
}

var _ async.Sink = (*JSONSink)(nil)

func (s *JSONSink) Deliver(_ context.Context, job async.Job, res *extract.ExtractionResult, err error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var doc any = res
	if err != nil {
		doc = sinkError{JobID: job.ID.String(), Error: err.Error(), Code: common.CodeOf(err), Result: res}
	}
	out := job.Path + ResultSuffix
	if werr := writeJSON(out, doc); werr != nil {
		logger.Error("failed to write result", "job_id", job.ID, "path", out, "error", werr)
		return
	}
	logger.Debug("result written", "job_id", job.ID, "path", out)
}

func writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(b, '\n'), 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename result: %w", err)
	}
	return nil
}
