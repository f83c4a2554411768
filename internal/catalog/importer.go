package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// ErrImportInProgress is returned when an import is already running for the
// same competence. Imports for distinct competences may run concurrently.
var ErrImportInProgress = errors.New("import already in progress for competence")

// Importer sequences one import attempt end to end: persist the tree, then
// record exactly one history entry reflecting the outcome. A failed attempt
// is not retried here; the caller decides whether to re-run, and the failed
// history entry carries the error summary it needs.
type Importer struct {
	store     docstore.Store
	registry  *Registry
	batchSize int
	logger    zerolog.Logger

	mu      sync.Mutex
	running map[string]bool
}

func NewImporter(store docstore.Store, registry *Registry, batchSize int, logger zerolog.Logger) *Importer {
	return &Importer{
		store:     store,
		registry:  registry,
		batchSize: batchSize,
		logger:    logger,
		running:   make(map[string]bool),
	}
}

// RunImport executes one import attempt and returns its history record.
// The returned error is non-nil when the attempt failed; the record is
// written in both cases. A second concurrent attempt for the same
// competence is rejected with ErrImportInProgress before any write.
func (imp *Importer) RunImport(ctx context.Context, tree *Tree, meta ImportMeta) (*ImportRecord, error) {
	competence, err := NormalizeCompetence(tree.Competence)
	if err != nil {
		return nil, err
	}

	if !imp.acquire(competence) {
		return nil, fmt.Errorf("%w: %s", ErrImportInProgress, competence)
	}
	defer imp.release(competence)

	started := time.Now().UTC()
	writer := NewBatchWriter(imp.store, imp.batchSize)
	persister := NewTreePersister(writer)

	stats, persistErr := persister.Persist(ctx, tree, meta)

	rec := &ImportRecord{
		Competence:       competence,
		ImportedBy:       meta.ImportedBy,
		ImportedAt:       started,
		SourceDescriptor: meta.SourceDescriptor,
		Status:           StatusSuccess,
		ItemCount:        stats.Total(),
	}
	if persistErr != nil {
		rec.Status = StatusFailed
		rec.ErrorSummary = persistErr.Error()
		rec.ItemCount = writer.Committed()
	}

	if histErr := imp.registry.RecordHistory(ctx, rec); histErr != nil {
		imp.logger.Error().Err(histErr).
			Str("competence", competence).
			Msg("failed to record import history")
		if persistErr == nil {
			return rec, histErr
		}
	}

	evt := imp.logger.Info()
	if persistErr != nil {
		evt = imp.logger.Error().Err(persistErr)
	}
	evt.
		Str("competence", competence).
		Str("status", rec.Status).
		Int("items", rec.ItemCount).
		Int("batches", writer.Batches()).
		Dur("elapsed", time.Since(started)).
		Msg("catalog import finished")

	if persistErr != nil {
		return rec, fmt.Errorf("import competence %s: %w", competence, persistErr)
	}
	return rec, nil
}

func (imp *Importer) acquire(competence string) bool {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	if imp.running[competence] {
		return false
	}
	imp.running[competence] = true
	return true
}

func (imp *Importer) release(competence string) {
	imp.mu.Lock()
	defer imp.mu.Unlock()
	delete(imp.running, competence)
}
