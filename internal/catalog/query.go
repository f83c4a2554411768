package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// DefaultSearchLimit bounds SearchProcedures when the caller passes a
// non-positive limit.
const DefaultSearchLimit = 20

// QueryService is the lazy, path-addressed read side of the engine. Every
// getter fetches exactly one node or one level of children, so a caller can
// expand a competence tree progressively without loading the snapshot.
//
// Absent nodes are not errors: single-node getters return (nil, nil) and
// list getters return an empty slice. Every entry point normalizes the
// competence input before touching the store.
type QueryService struct {
	store docstore.Store
}

func NewQueryService(store docstore.Store) *QueryService {
	return &QueryService{store: store}
}

func (q *QueryService) GetGroup(ctx context.Context, competence, code string) (*Group, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	doc, err := q.getDoc(ctx, groupPath(c, code))
	if doc == nil || err != nil {
		return nil, err
	}
	g := decodeGroup(doc)
	return &g, nil
}

func (q *QueryService) GetGroups(ctx context.Context, competence string) ([]Group, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListChildren(ctx, docstore.JoinPath(competencePath(c), "groups"))
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	groups := make([]Group, 0, len(entries))
	for _, entry := range entries {
		groups = append(groups, decodeGroup(entry.Doc))
	}
	return groups, nil
}

func (q *QueryService) GetSubGroup(ctx context.Context, competence, group, code string) (*SubGroup, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	doc, err := q.getDoc(ctx, subGroupPath(c, group, code))
	if doc == nil || err != nil {
		return nil, err
	}
	sg := decodeSubGroup(doc)
	return &sg, nil
}

func (q *QueryService) GetSubGroups(ctx context.Context, competence, group string) ([]SubGroup, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListChildren(ctx, docstore.JoinPath(groupPath(c, group), "subgroups"))
	if err != nil {
		return nil, fmt.Errorf("list subgroups: %w", err)
	}
	subGroups := make([]SubGroup, 0, len(entries))
	for _, entry := range entries {
		subGroups = append(subGroups, decodeSubGroup(entry.Doc))
	}
	return subGroups, nil
}

func (q *QueryService) GetForm(ctx context.Context, competence, group, subGroup, code string) (*Form, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	doc, err := q.getDoc(ctx, formPath(c, group, subGroup, code))
	if doc == nil || err != nil {
		return nil, err
	}
	f := decodeForm(doc)
	return &f, nil
}

func (q *QueryService) GetForms(ctx context.Context, competence, group, subGroup string) ([]Form, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListChildren(ctx, docstore.JoinPath(subGroupPath(c, group, subGroup), "forms"))
	if err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	forms := make([]Form, 0, len(entries))
	for _, entry := range entries {
		forms = append(forms, decodeForm(entry.Doc))
	}
	return forms, nil
}

func (q *QueryService) GetProcedure(ctx context.Context, competence, group, subGroup, form, code string) (*Procedure, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	doc, err := q.getDoc(ctx, procedurePath(c, group, subGroup, form, code))
	if doc == nil || err != nil {
		return nil, err
	}
	p := decodeProcedure(doc)
	return &p, nil
}

func (q *QueryService) GetProcedures(ctx context.Context, competence, group, subGroup, form string) ([]Procedure, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	entries, err := q.store.ListChildren(ctx, docstore.JoinPath(formPath(c, group, subGroup, form), "procedures"))
	if err != nil {
		return nil, fmt.Errorf("list procedures: %w", err)
	}
	procedures := make([]Procedure, 0, len(entries))
	for _, entry := range entries {
		procedures = append(procedures, decodeProcedure(entry.Doc))
	}
	return procedures, nil
}

func (q *QueryService) GetLookupItems(ctx context.Context, competence, lookupName string) ([]LookupItem, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	prefix := docstore.JoinPath(competencePath(c), "lookups", lookupName, "items")
	entries, err := q.store.ListChildren(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("list lookup %s: %w", lookupName, err)
	}
	items := make([]LookupItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, decodeLookupItem(entry.Doc))
	}
	return items, nil
}

// SearchProcedures performs a bounded prefix search over one competence.
// A purely numeric term matches procedure codes by prefix; anything else
// matches names case-insensitively by prefix. This is a prefix search, not
// substring or fuzzy matching, since the store keeps no composite text index.
//
// Numeric terms are narrowed using the ancestry encoded in the code's
// 2+2+2 digit prefix, so the walk starts at the deepest node the term
// already pins down.
func (q *QueryService) SearchProcedures(ctx context.Context, competence, term string, limit int) ([]Procedure, error) {
	c, err := NormalizeCompetence(competence)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	term = strings.TrimSpace(term)
	if term == "" {
		return []Procedure{}, nil
	}

	prefix := competencePath(c)
	match := func(p Procedure) bool {
		return strings.HasPrefix(strings.ToUpper(p.Name), strings.ToUpper(term))
	}
	if isNumericCode(term) {
		ancestry, levels := AncestryFromCode(term)
		switch levels {
		case 1:
			prefix = groupPath(c, ancestry.Group)
		case 2:
			prefix = subGroupPath(c, ancestry.Group, ancestry.SubGroup)
		case 3:
			prefix = formPath(c, ancestry.Group, ancestry.SubGroup, ancestry.Form)
		}
		match = func(p Procedure) bool {
			return strings.HasPrefix(p.Code, term)
		}
	}

	results := make([]Procedure, 0, limit)
	walkErr := q.store.Walk(ctx, prefix, func(path string, doc docstore.Document) bool {
		if !strings.Contains(path, "/procedures/") {
			return true
		}
		p := decodeProcedure(doc)
		if match(p) {
			results = append(results, p)
		}
		return len(results) < limit
	})
	if walkErr != nil {
		return nil, fmt.Errorf("search procedures: %w", walkErr)
	}
	return results, nil
}

func (q *QueryService) getDoc(ctx context.Context, path string) (docstore.Document, error) {
	doc, err := q.store.Get(ctx, path)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	return doc, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, docstore.ErrNotFound)
}
