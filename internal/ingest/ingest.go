// Package ingest feeds documents from watched directories into the worker
// queue and writes each result next to its input.
package ingest

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/paystubs/internal/core/async"
)

// Feed enqueues every path from paths until the channel closes or ctx is
// done. Paths rejected by the queue are logged and dropped.
func Feed(ctx context.Context, paths <-chan string, q async.Queue, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	for {
		select {
		case <-ctx.Done():
			return
		case p, ok := <-paths:
			if !ok {
				return
			}
			if err := q.Enqueue(ctx, async.NewJob(p)); err != nil {
				logger.Warn("failed to enqueue document", "path", p, "error", err)
			}
		}
	}
}
