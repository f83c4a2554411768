package docstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// MemoryStore is an in-memory Store used by tests and development mode.
// Safe for concurrent readers and writers.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]Document)}
}

func (s *MemoryStore) Upsert(_ context.Context, path string, doc Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[path] = cloneDoc(doc)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, path string) (Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[path]
	if !ok {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	return cloneDoc(doc), nil
}

func (s *MemoryStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, path)
	return nil
}

func (s *MemoryStore) ListChildren(_ context.Context, collectionPath string) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var entries []Entry
	for path, doc := range s.docs {
		if isDirectChild(collectionPath, path) {
			entries = append(entries, Entry{Path: path, Doc: cloneDoc(doc)})
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

func (s *MemoryStore) Walk(_ context.Context, prefix string, fn WalkFunc) error {
	s.mu.RLock()
	paths := make([]string, 0, len(s.docs))
	for path := range s.docs {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	snapshot := make([]Document, len(paths))
	for i, p := range paths {
		snapshot[i] = cloneDoc(s.docs[p])
	}
	s.mu.RUnlock()

	for i, p := range paths {
		if !fn(p, snapshot[i]) {
			return nil
		}
	}
	return nil
}

func (s *MemoryStore) NewBatch() Batch {
	return &memoryBatch{store: s}
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

type memoryBatch struct {
	store *MemoryStore
	ops   []Entry
}

func (b *memoryBatch) Upsert(path string, doc Document) {
	b.ops = append(b.ops, Entry{Path: path, Doc: cloneDoc(doc)})
}

func (b *memoryBatch) Len() int { return len(b.ops) }

func (b *memoryBatch) Commit(_ context.Context) error {
	b.store.mu.Lock()
	defer b.store.mu.Unlock()
	for _, op := range b.ops {
		b.store.docs[op.Path] = op.Doc
	}
	b.ops = nil
	return nil
}

func cloneDoc(doc Document) Document {
	if doc == nil {
		return nil
	}
	out := make(Document, len(doc))
	for k, v := range doc {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		return map[string]interface{}(cloneDoc(val))
	case []interface{}:
		out := make([]interface{}, len(val))
		for i, item := range val {
			out[i] = cloneValue(item)
		}
		return out
	case []string:
		out := make([]string, len(val))
		copy(out, val)
		return out
	default:
		return val
	}
}
