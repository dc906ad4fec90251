package async

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/paystubs/internal/core/extract"
)

// Job is one document waiting to be processed.
type Job struct {
	ID          uuid.UUID
	Path        string
	SubmittedAt time.Time
}

// NewJob stamps a job for path with a fresh ID.
func NewJob(path string) Job {
	return Job{ID: uuid.New(), Path: path, SubmittedAt: time.Now().UTC()}
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Sink receives the outcome of every processed job. res may be non-nil
// together with a validation error.
type Sink interface {
	Deliver(ctx context.Context, job Job, res *extract.ExtractionResult, err error)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, job Job, res *extract.ExtractionResult, err error)

func (f SinkFunc) Deliver(ctx context.Context, job Job, res *extract.ExtractionResult, err error) {
	f(ctx, job, res, err)
}
