package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// Import attempt outcomes.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ImportRecord is one entry of the append-only import-history log. Records
// are never updated after creation; a re-import creates a new record.
type ImportRecord struct {
	ID               string    `json:"id"`
	Competence       string    `json:"competence"`
	ImportedBy       string    `json:"imported_by"`
	ImportedAt       time.Time `json:"imported_at"`
	SourceDescriptor string    `json:"source_descriptor"`
	Status           string    `json:"status"`
	ItemCount        int       `json:"item_count"`
	ErrorSummary     string    `json:"error_summary,omitempty"`
}

// DeleteResult describes what a competence deletion actually removed.
// DeleteIsShallow is always true: the store has no recursive delete, so
// Group/SubGroup/Form/Procedure and lookup subtrees are left in place and
// remain reachable by direct path. This is preserved observed behavior,
// surfaced to callers rather than silently cascaded.
type DeleteResult struct {
	Competence      string `json:"competence"`
	DeleteIsShallow bool   `json:"delete_is_shallow"`
}

// Registry is the append-only log of import attempts plus the competence
// root lifecycle.
type Registry struct {
	store docstore.Store
}

func NewRegistry(store docstore.Store) *Registry {
	return &Registry{store: store}
}

// RecordHistory inserts one history record, assigning an id when absent.
// Existing records are never touched.
func (r *Registry) RecordHistory(ctx context.Context, rec *ImportRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ImportedAt.IsZero() {
		rec.ImportedAt = time.Now().UTC()
	}
	doc := docstore.Sanitize(map[string]interface{}{
		"id":                rec.ID,
		"competence":        rec.Competence,
		"imported_by":       rec.ImportedBy,
		"imported_at":       rec.ImportedAt.UTC().Format(time.RFC3339Nano),
		"source_descriptor": rec.SourceDescriptor,
		"status":            rec.Status,
		"item_count":        rec.ItemCount,
		"error_summary":     rec.ErrorSummary,
	})
	if err := r.store.Upsert(ctx, historyPath(rec.ID), doc); err != nil {
		return fmt.Errorf("record import history: %w", err)
	}
	return nil
}

// ListHistory returns every history record, most recent import first.
func (r *Registry) ListHistory(ctx context.Context) ([]ImportRecord, error) {
	entries, err := r.store.ListChildren(ctx, "import_history")
	if err != nil {
		return nil, fmt.Errorf("list import history: %w", err)
	}
	records := make([]ImportRecord, 0, len(entries))
	for _, entry := range entries {
		records = append(records, decodeImportRecord(entry.Doc))
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].ImportedAt.After(records[j].ImportedAt)
	})
	return records, nil
}

// DeleteHistory removes one history record by id.
func (r *Registry) DeleteHistory(ctx context.Context, id string) error {
	if err := r.store.Delete(ctx, historyPath(id)); err != nil {
		return fmt.Errorf("delete import history %s: %w", id, err)
	}
	return nil
}

// DeleteCompetenceRoot removes the root metadata document of a competence
// together with its import-history entries. The deletion is shallow; see
// DeleteResult.
func (r *Registry) DeleteCompetenceRoot(ctx context.Context, competence string) (DeleteResult, error) {
	normalized, err := NormalizeCompetence(competence)
	if err != nil {
		return DeleteResult{}, err
	}
	if err := r.store.Delete(ctx, competencePath(normalized)); err != nil {
		return DeleteResult{}, fmt.Errorf("delete competence root %s: %w", normalized, err)
	}

	history, err := r.ListHistory(ctx)
	if err != nil {
		return DeleteResult{}, err
	}
	for _, rec := range history {
		if rec.Competence != normalized {
			continue
		}
		if err := r.DeleteHistory(ctx, rec.ID); err != nil {
			return DeleteResult{}, err
		}
	}
	return DeleteResult{Competence: normalized, DeleteIsShallow: true}, nil
}

// GetCompetenceRoot fetches the root metadata document, or nil when the
// competence was never imported (or its root was deleted).
func (r *Registry) GetCompetenceRoot(ctx context.Context, competence string) (*CompetenceRoot, error) {
	normalized, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	doc, err := r.store.Get(ctx, competencePath(normalized))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get competence root %s: %w", normalized, err)
	}
	root := decodeCompetenceRoot(doc)
	return &root, nil
}

func decodeImportRecord(doc docstore.Document) ImportRecord {
	rec := ImportRecord{
		ID:               docString(doc, "id"),
		Competence:       docString(doc, "competence"),
		ImportedBy:       docString(doc, "imported_by"),
		SourceDescriptor: docString(doc, "source_descriptor"),
		Status:           docString(doc, "status"),
		ItemCount:        docInt(doc, "item_count"),
		ErrorSummary:     docString(doc, "error_summary"),
	}
	if s, ok := doc["imported_at"].(string); ok {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			rec.ImportedAt = t
		}
	}
	return rec
}
