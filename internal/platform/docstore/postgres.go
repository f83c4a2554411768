package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists documents in a single `documents` table keyed by
// path, with the body as JSONB. Batches map to one pgx.Batch inside a
// transaction, so a committed batch is atomic.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const upsertSQL = `
	INSERT INTO documents (path, doc, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (path) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()`

func (s *PostgresStore) Upsert(ctx context.Context, path string, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal document %s: %w", path, err)
	}
	if _, err := s.pool.Exec(ctx, upsertSQL, path, body); err != nil {
		return fmt.Errorf("upsert %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, path string) (Document, error) {
	var body []byte
	err := s.pool.QueryRow(ctx, `SELECT doc FROM documents WHERE path = $1`, path).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return doc, nil
}

func (s *PostgresStore) Delete(ctx context.Context, path string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM documents WHERE path = $1`, path); err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	return nil
}

func (s *PostgresStore) ListChildren(ctx context.Context, collectionPath string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT path, doc FROM documents
		WHERE path LIKE $1 || '/%'
		  AND strpos(substr(path, length($1) + 2), '/') = 0
		ORDER BY path`, collectionPath)
	if err != nil {
		return nil, fmt.Errorf("list children of %s: %w", collectionPath, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *PostgresStore) Walk(ctx context.Context, prefix string, fn WalkFunc) error {
	rows, err := s.pool.Query(ctx, `
		SELECT path, doc FROM documents
		WHERE path = $1 OR path LIKE $1 || '/%'
		ORDER BY path`, prefix)
	if err != nil {
		return fmt.Errorf("walk %s: %w", prefix, err)
	}
	defer rows.Close()

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return err
		}
		if !fn(entry.Path, entry.Doc) {
			return nil
		}
	}
	return rows.Err()
}

func (s *PostgresStore) NewBatch() Batch {
	return &postgresBatch{pool: s.pool}
}

func scanEntry(rows pgx.Rows) (Entry, error) {
	var path string
	var body []byte
	if err := rows.Scan(&path, &body); err != nil {
		return Entry{}, fmt.Errorf("scan document row: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return Entry{}, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return Entry{Path: path, Doc: doc}, nil
}

type postgresBatch struct {
	pool *pgxpool.Pool
	ops  []Entry
}

func (b *postgresBatch) Upsert(path string, doc Document) {
	b.ops = append(b.ops, Entry{Path: path, Doc: doc})
}

func (b *postgresBatch) Len() int { return len(b.ops) }

func (b *postgresBatch) Commit(ctx context.Context) error {
	if len(b.ops) == 0 {
		return nil
	}
	pgb := &pgx.Batch{}
	for _, op := range b.ops {
		body, err := json.Marshal(op.Doc)
		if err != nil {
			return fmt.Errorf("marshal document %s: %w", op.Path, err)
		}
		pgb.Queue(upsertSQL, op.Path, body)
	}

	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin batch tx: %w", err)
	}
	defer tx.Rollback(ctx)

	br := tx.SendBatch(ctx, pgb)
	for range b.ops {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("batch upsert: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("close batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	b.ops = nil
	return nil
}
