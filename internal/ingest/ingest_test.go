package ingest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/paystubs/internal/common"
	"github.com/joseph-ayodele/paystubs/internal/core/async"
	"github.com/joseph-ayodele/paystubs/internal/core/extract"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("Net Pay 1.00"), 0o644))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "a.pdf"))
	touch(t, filepath.Join(root, "b.PNG"))
	touch(t, filepath.Join(root, "notes.docx"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, ".cache", "c.pdf"))
	touch(t, filepath.Join(root, "sub", "d.txt"))

	paths, stats, err := ScanDirectory(root)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "a.pdf"),
		filepath.Join(root, "b.PNG"),
		filepath.Join(root, "sub", "d.txt"),
	}, paths)
	assert.EqualValues(t, 3, stats.Matched)

	_, _, err = ScanDirectory("")
	assert.Error(t, err)
	_, _, err = ScanDirectory(filepath.Join(root, "missing"))
	assert.Error(t, err)
}

type recordingQueue struct {
	mu   sync.Mutex
	jobs []async.Job
}

func (q *recordingQueue) Enqueue(_ context.Context, job async.Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, job)
	return nil
}

func (q *recordingQueue) Shutdown(context.Context) {}

func TestFeed(t *testing.T) {
	paths := make(chan string, 2)
	paths <- "x.pdf"
	paths <- "y.pdf"
	close(paths)

	q := &recordingQueue{}
	Feed(context.Background(), paths, q, nil)
	require.Len(t, q.jobs, 2)
	assert.Equal(t, "x.pdf", q.jobs[0].Path)
	assert.NotEqual(t, q.jobs[0].ID, q.jobs[1].ID)
}

func TestJSONSink(t *testing.T) {
	dir := t.TempDir()
	sink := &JSONSink{}

	ok := async.NewJob(filepath.Join(dir, "ok.pdf"))
	sink.Deliver(context.Background(), ok, &extract.ExtractionResult{GrossPay: 237500, NetPay: 159206}, nil)
	b, err := os.ReadFile(ok.Path + ResultSuffix)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.InDelta(t, 2375.0, got["gross_pay"], 1e-9)

	bad := async.NewJob(filepath.Join(dir, "bad.pdf"))
	sink.Deliver(context.Background(), bad, nil, common.NewAcquisitionError(nil))
	b, err = os.ReadFile(bad.Path + ResultSuffix)
	require.NoError(t, err)
	got = nil
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, common.CodeAcquisition, got["code"])
	assert.Equal(t, bad.ID.String(), got["job_id"])
	assert.NotContains(t, got, "partial_result")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temp files left behind")
}

func TestStartWatcher(t *testing.T) {
	root := t.TempDir()
	touch(t, filepath.Join(root, "existing.pdf"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	})
	require.NoError(t, err)

	next := func() string {
		select {
		case p := <-events:
			return p
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for watcher event")
			return ""
		}
	}
	assert.Equal(t, filepath.Join(root, "existing.pdf"), next())

	touch(t, filepath.Join(root, "ignored.docx"))
	touch(t, filepath.Join(root, ".hidden.pdf"))
	touch(t, filepath.Join(root, "new.pdf"))
	assert.Equal(t, filepath.Join(root, "new.pdf"), next())

	cancel()
	for range events {
	}
}

func TestStartWatcherNeedsRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}
