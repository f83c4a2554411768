package catalog

import (
	"context"
	"fmt"
	"time"
)

// TreePersister writes one parsed catalog tree through a BatchWriter using
// the deterministic path scheme. Traversal order is root metadata first,
// then depth-first Group → SubGroup → Form → Procedure, then the lookup
// tables. Paths are independent so the order does not affect correctness,
// but it fixes which nodes are visible after a partial failure and is kept
// stable for reproducibility.
type TreePersister struct {
	writer *BatchWriter
	clock  func() time.Time
}

func NewTreePersister(writer *BatchWriter) *TreePersister {
	return &TreePersister{writer: writer, clock: time.Now}
}

// Persist writes the whole tree and flushes the writer. The returned stats
// count what the tree contains; on error, only the batches committed before
// the failure are durable.
func (p *TreePersister) Persist(ctx context.Context, tree *Tree, meta ImportMeta) (Stats, error) {
	competence, err := NormalizeCompetence(tree.Competence)
	if err != nil {
		return Stats{}, err
	}
	stats := CountStats(tree)

	root := CompetenceRoot{
		Competence:       competence,
		ImportedBy:       meta.ImportedBy,
		ImportedAt:       p.clock().UTC(),
		SourceDescriptor: meta.SourceDescriptor,
		Stats:            stats,
	}
	if err := p.writer.SubmitDoc(ctx, competencePath(competence), encodeCompetenceRoot(root)); err != nil {
		return stats, err
	}

	for _, g := range tree.Groups {
		if err := p.persistGroup(ctx, competence, g); err != nil {
			return stats, err
		}
	}
	if err := p.persistLookups(ctx, competence, tree.Lookup); err != nil {
		return stats, err
	}
	if err := p.writer.Finish(ctx); err != nil {
		return stats, err
	}
	return stats, nil
}

func (p *TreePersister) persistGroup(ctx context.Context, competence string, g GroupNode) error {
	path := groupPath(competence, g.Code)
	if err := p.writer.SubmitDoc(ctx, path, encodeGroup(Group{Code: g.Code, Name: g.Name})); err != nil {
		return fmt.Errorf("group %s: %w", g.Code, err)
	}
	for _, sg := range g.SubGroups {
		if err := p.persistSubGroup(ctx, competence, g.Code, sg); err != nil {
			return err
		}
	}
	return nil
}

func (p *TreePersister) persistSubGroup(ctx context.Context, competence, group string, sg SubGroupNode) error {
	path := subGroupPath(competence, group, sg.Code)
	if err := p.writer.SubmitDoc(ctx, path, encodeSubGroup(SubGroup{Code: sg.Code, Name: sg.Name})); err != nil {
		return fmt.Errorf("subgroup %s/%s: %w", group, sg.Code, err)
	}
	for _, f := range sg.Forms {
		if err := p.persistForm(ctx, competence, group, sg.Code, f); err != nil {
			return err
		}
	}
	return nil
}

func (p *TreePersister) persistForm(ctx context.Context, competence, group, subGroup string, f FormNode) error {
	path := formPath(competence, group, subGroup, f.Code)
	if err := p.writer.SubmitDoc(ctx, path, encodeForm(Form{Code: f.Code, Name: f.Name})); err != nil {
		return fmt.Errorf("form %s/%s/%s: %w", group, subGroup, f.Code, err)
	}
	for _, proc := range f.Procedures {
		procPath := procedurePath(competence, group, subGroup, f.Code, proc.Code)
		if err := p.writer.SubmitDoc(ctx, procPath, encodeProcedure(proc)); err != nil {
			return fmt.Errorf("procedure %s: %w", proc.Code, err)
		}
	}
	return nil
}

func (p *TreePersister) persistLookups(ctx context.Context, competence string, lookup LookupTables) error {
	tables := []struct {
		name  string
		items []LookupItem
	}{
		{LookupDiagnoses, lookup.Diagnoses},
		{LookupServices, lookup.Services},
		{LookupModalities, lookup.Modalities},
		{LookupRegistrationInstruments, lookup.RegistrationInstruments},
	}
	for _, table := range tables {
		for _, item := range table.items {
			path := lookupItemPath(competence, table.name, item.Code)
			if err := p.writer.SubmitDoc(ctx, path, encodeLookupItem(item)); err != nil {
				return fmt.Errorf("lookup %s/%s: %w", table.name, item.Code, err)
			}
		}
	}
	return nil
}
