// Package docstore provides a path-addressed document store used to persist
// catalog snapshots. Documents live at hierarchical paths such as
// "competence/202405/groups/01"; the store itself is flat and knows nothing
// about the catalog domain.
package docstore

import (
	"context"
	"errors"
	"strings"
)

// ErrNotFound is returned by Get when no document exists at the path.
var ErrNotFound = errors.New("document not found")

// Document is a sanitized, store-representable record. It is an alias so
// nested values keep the plain map type and survive type assertions after
// either an in-memory clone or a JSON round trip.
type Document = map[string]interface{}

// Entry pairs a document with its full path, as returned by listings.
type Entry struct {
	Path string
	Doc  Document
}

// WalkFunc receives each document during a Walk in ascending path order.
// Returning false stops the traversal early.
type WalkFunc func(path string, doc Document) bool

// Store is the persistence boundary for catalog documents. Upsert and Delete
// act on a single path; ListChildren returns the immediate children of a
// collection path; Walk visits every document under a path prefix.
//
// Batches obtained from NewBatch are the store's atomic commit unit. A batch
// must not be shared across goroutines.
type Store interface {
	Upsert(ctx context.Context, path string, doc Document) error
	Get(ctx context.Context, path string) (Document, error)
	Delete(ctx context.Context, path string) error
	ListChildren(ctx context.Context, collectionPath string) ([]Entry, error)
	Walk(ctx context.Context, prefix string, fn WalkFunc) error
	NewBatch() Batch
}

// Batch accumulates upserts and commits them as one unit.
type Batch interface {
	Upsert(path string, doc Document)
	Len() int
	Commit(ctx context.Context) error
}

// JoinPath builds a slash-separated path from segments, ignoring empties.
func JoinPath(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "/")
}

// isDirectChild reports whether path is an immediate child document of the
// collection path, i.e. exactly one segment below it.
func isDirectChild(collectionPath, path string) bool {
	if !strings.HasPrefix(path, collectionPath+"/") {
		return false
	}
	rest := path[len(collectionPath)+1:]
	return rest != "" && !strings.Contains(rest, "/")
}
