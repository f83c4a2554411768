package docstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_UpsertGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	doc := Document{"code": "01", "name": "Clinical procedures"}
	if err := s.Upsert(ctx, "competence/202405/groups/01", doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get(ctx, "competence/202405/groups/01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["name"] != "Clinical procedures" {
		t.Errorf("expected name 'Clinical procedures', got %v", got["name"])
	}
}

func TestMemoryStore_GetNotFound(t *testing.T) {
	s := NewMemoryStore()
	_, err := s.Get(context.Background(), "competence/209912")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	if err := s.Upsert(ctx, "a", Document{"name": "original"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := s.Get(ctx, "a")
	got["name"] = "mutated"

	again, _ := s.Get(ctx, "a")
	if again["name"] != "original" {
		t.Errorf("stored document was mutated through a returned copy")
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Upsert(ctx, "a/b", Document{"x": 1})

	if err := s.Delete(ctx, "a/b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get(ctx, "a/b"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestMemoryStore_ListChildren(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Upsert(ctx, "competence/202405/groups/02", Document{"code": "02"})
	s.Upsert(ctx, "competence/202405/groups/01", Document{"code": "01"})
	s.Upsert(ctx, "competence/202405/groups/01/subgroups/01", Document{"code": "01"})
	s.Upsert(ctx, "competence/202405", Document{"competence": "202405"})

	entries, err := s.ListChildren(ctx, "competence/202405/groups")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 direct children, got %d", len(entries))
	}
	// Ordered by path.
	if entries[0].Doc["code"] != "01" || entries[1].Doc["code"] != "02" {
		t.Errorf("expected children ordered 01, 02; got %v, %v",
			entries[0].Doc["code"], entries[1].Doc["code"])
	}
}

func TestMemoryStore_ListChildrenEmpty(t *testing.T) {
	s := NewMemoryStore()
	entries, err := s.ListChildren(context.Background(), "competence/209901/groups")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %d", len(entries))
	}
}

func TestMemoryStore_Walk(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Upsert(ctx, "competence/202405", Document{"competence": "202405"})
	s.Upsert(ctx, "competence/202405/groups/01", Document{"code": "01"})
	s.Upsert(ctx, "competence/202405/groups/01/subgroups/02", Document{"code": "02"})
	s.Upsert(ctx, "competence/202406", Document{"competence": "202406"})

	var visited []string
	err := s.Walk(ctx, "competence/202405", func(path string, doc Document) bool {
		visited = append(visited, path)
		return true
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(visited) != 3 {
		t.Fatalf("expected 3 documents under competence/202405, got %d: %v", len(visited), visited)
	}
	for i := 1; i < len(visited); i++ {
		if visited[i-1] >= visited[i] {
			t.Errorf("walk not in ascending path order: %v", visited)
		}
	}
}

func TestMemoryStore_WalkEarlyStop(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, p := range []string{"a/1", "a/2", "a/3"} {
		s.Upsert(ctx, p, Document{})
	}

	count := 0
	s.Walk(ctx, "a", func(path string, doc Document) bool {
		count++
		return count < 2
	})
	if count != 2 {
		t.Errorf("expected walk to stop after 2 documents, visited %d", count)
	}
}

func TestMemoryStore_WalkDoesNotMatchSiblingPrefix(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.Upsert(ctx, "competence/202405", Document{})
	s.Upsert(ctx, "competence/2024051", Document{})

	var visited []string
	s.Walk(ctx, "competence/202405", func(path string, doc Document) bool {
		visited = append(visited, path)
		return true
	})
	if len(visited) != 1 {
		t.Errorf("expected only the exact path, got %v", visited)
	}
}

func TestMemoryBatch_CommitAppliesAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	b := s.NewBatch()
	b.Upsert("x/1", Document{"n": 1})
	b.Upsert("x/2", Document{"n": 2})
	if b.Len() != 2 {
		t.Fatalf("expected batch length 2, got %d", b.Len())
	}

	// Nothing visible before commit.
	if s.Len() != 0 {
		t.Fatalf("expected empty store before commit, got %d docs", s.Len())
	}

	if err := b.Commit(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 docs after commit, got %d", s.Len())
	}
}

func TestJoinPath(t *testing.T) {
	tests := []struct {
		segments []string
		want     string
	}{
		{[]string{"competence", "202405"}, "competence/202405"},
		{[]string{"competence", "202405", "groups", "01"}, "competence/202405/groups/01"},
		{[]string{"", "a", "", "b"}, "a/b"},
	}
	for _, tt := range tests {
		if got := JoinPath(tt.segments...); got != tt.want {
			t.Errorf("JoinPath(%v) = %q, want %q", tt.segments, got, tt.want)
		}
	}
}
