package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// DefaultBatchSize is the default operation budget per committed batch.
const DefaultBatchSize = 400

// ErrWriterFinished is returned by Submit after Finish has been called.
var ErrWriterFinished = errors.New("batch writer already finished")

// BatchCommitError reports a failed batch commit. Batches committed before
// the failure remain persisted; there is no cross-batch rollback, so a
// failed import can leave a partially written snapshot.
type BatchCommitError struct {
	Batch int // 1-based ordinal of the failed batch
	Err   error
}

func (e *BatchCommitError) Error() string {
	return fmt.Sprintf("commit batch %d: %v", e.Batch, e.Err)
}

func (e *BatchCommitError) Unwrap() error { return e.Err }

// BatchWriter is a write sink that groups upserts into store batches of at
// most the configured budget. Callers Submit freely and call Finish exactly
// once; the writer handles batch lifecycles. Not safe for concurrent use;
// each concurrent persister worker owns its own writer.
type BatchWriter struct {
	store     docstore.Store
	budget    int
	batch     docstore.Batch
	committed int
	submitted int
	batches   int
	finished  bool
}

func NewBatchWriter(store docstore.Store, budget int) *BatchWriter {
	if budget <= 0 {
		budget = DefaultBatchSize
	}
	return &BatchWriter{store: store, budget: budget, batch: store.NewBatch()}
}

// Submit enqueues one upsert, sanitizing the raw record first, and commits
// the current batch when it reaches the budget.
func (w *BatchWriter) Submit(ctx context.Context, path string, raw map[string]interface{}) error {
	return w.SubmitDoc(ctx, path, docstore.Sanitize(raw))
}

// SubmitDoc enqueues an already-sanitized document.
func (w *BatchWriter) SubmitDoc(ctx context.Context, path string, doc docstore.Document) error {
	if w.finished {
		return ErrWriterFinished
	}
	w.batch.Upsert(path, doc)
	w.submitted++
	if w.batch.Len() >= w.budget {
		return w.flush(ctx)
	}
	return nil
}

// Finish commits any remaining operations. It must be called exactly once;
// the writer rejects further submissions afterwards.
func (w *BatchWriter) Finish(ctx context.Context) error {
	if w.finished {
		return ErrWriterFinished
	}
	w.finished = true
	if w.batch.Len() == 0 {
		return nil
	}
	return w.flush(ctx)
}

func (w *BatchWriter) flush(ctx context.Context) error {
	n := w.batch.Len()
	w.batches++
	if err := w.batch.Commit(ctx); err != nil {
		w.finished = true
		return &BatchCommitError{Batch: w.batches, Err: err}
	}
	w.committed += n
	w.batch = w.store.NewBatch()
	return nil
}

// Submitted reports how many operations were accepted.
func (w *BatchWriter) Submitted() int { return w.submitted }

// Committed reports how many operations reached a successful commit.
func (w *BatchWriter) Committed() int { return w.committed }

// Batches reports how many commits were attempted.
func (w *BatchWriter) Batches() int { return w.batches }
