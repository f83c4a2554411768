package catalog

import (
	"context"
	"fmt"

	"github.com/sigcat/sigcat/internal/platform/docstore"
)

// sampleTree is the snapshot used across tests: competence 05/2024 with
// Group 01 → SubGroup 02 → Form 03 → Procedure 0102030045-6, plus one
// lookup row per table.
func sampleTree() *Tree {
	return &Tree{
		Competence: "05/2024",
		Groups: []GroupNode{
			{
				Code: "01",
				Name: "Actions for health promotion and prevention",
				SubGroups: []SubGroupNode{
					{
						Code: "02",
						Name: "Surveillance actions",
						Forms: []FormNode{
							{
								Code: "03",
								Name: "Collective screening",
								Procedures: []Procedure{
									{
										Code:             "0102030045-6",
										Name:             "Population-based hearing screening",
										Sex:              "B",
										AgeMinMonths:     0,
										AgeMaxMonths:     AgeNoLimitMonths,
										Complexity:       "MC",
										Points:           12,
										DaysStay:         0,
										RelatedDiagnoses: []string{"H90"},
										RelatedServices:  []string{"115"},
									},
								},
							},
						},
					},
				},
			},
		},
		Lookup: LookupTables{
			Diagnoses:               []LookupItem{{Code: "H90", Name: "Conductive hearing loss"}},
			Services:                []LookupItem{{Code: "115", Name: "Auditory health service"}},
			Modalities:              []LookupItem{{Code: "01", Name: "Outpatient"}},
			RegistrationInstruments: []LookupItem{{Code: "02", Name: "Outpatient bulletin"}},
		},
	}
}

// wideTree builds a single-level tree with n groups, for exercising batch
// boundaries with predictable document counts (root + n groups).
func wideTree(competence string, n int) *Tree {
	tree := &Tree{Competence: competence}
	for i := 0; i < n; i++ {
		tree.Groups = append(tree.Groups, GroupNode{
			Code: fmt.Sprintf("%02d", i+1),
			Name: fmt.Sprintf("Group %02d", i+1),
		})
	}
	return tree
}

// flakyStore wraps a MemoryStore and fails batch commits once a configured
// number of commits has succeeded.
type flakyStore struct {
	*docstore.MemoryStore
	failAfter int // commits that succeed before failures start
	commits   int
}

func newFlakyStore(failAfter int) *flakyStore {
	return &flakyStore{MemoryStore: docstore.NewMemoryStore(), failAfter: failAfter}
}

func (s *flakyStore) NewBatch() docstore.Batch {
	return &flakyBatch{store: s, inner: s.MemoryStore.NewBatch()}
}

type flakyBatch struct {
	store *flakyStore
	inner docstore.Batch
}

func (b *flakyBatch) Upsert(path string, doc docstore.Document) { b.inner.Upsert(path, doc) }
func (b *flakyBatch) Len() int                                  { return b.inner.Len() }

func (b *flakyBatch) Commit(ctx context.Context) error {
	if b.store.commits >= b.store.failAfter {
		return fmt.Errorf("store rejected batch")
	}
	if err := b.inner.Commit(ctx); err != nil {
		return err
	}
	b.store.commits++
	return nil
}

// countingStore wraps a MemoryStore and records every batch commit size.
type countingStore struct {
	*docstore.MemoryStore
	commitSizes []int
}

func newCountingStore() *countingStore {
	return &countingStore{MemoryStore: docstore.NewMemoryStore()}
}

func (s *countingStore) NewBatch() docstore.Batch {
	return &countingBatch{store: s, inner: s.MemoryStore.NewBatch()}
}

type countingBatch struct {
	store *countingStore
	inner docstore.Batch
}

func (b *countingBatch) Upsert(path string, doc docstore.Document) { b.inner.Upsert(path, doc) }
func (b *countingBatch) Len() int                                  { return b.inner.Len() }

func (b *countingBatch) Commit(ctx context.Context) error {
	n := b.inner.Len()
	if err := b.inner.Commit(ctx); err != nil {
		return err
	}
	b.store.commitSizes = append(b.store.commitSizes, n)
	return nil
}
