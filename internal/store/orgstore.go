package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vowsuite/vowsuite/internal/domain"
)

// orgStore is one tenant's isolated data store: a dedicated Postgres schema
// holding a single documents table of JSONB records. The schema name is the
// store id, quoted wherever it appears so arbitrary organization names are
// safe.
type orgStore struct {
	db     *pgxpool.Pool
	id     string
	schema string // quoted identifier, safe to interpolate
}

func newOrgStore(db *pgxpool.Pool, id string) *orgStore {
	return &orgStore{
		db:     db,
		id:     id,
		schema: pgx.Identifier{id}.Sanitize(),
	}
}

func (s *orgStore) ID() string {
	return s.id
}

// Ensure creates the schema and documents table if they do not exist yet.
func (s *orgStore) Ensure(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS %s`, s.schema)); err != nil {
		return err
	}
	_, err := s.db.Exec(ctx, fmt.Sprintf(
		`CREATE TABLE IF NOT EXISTS %s.documents (
			id BIGSERIAL PRIMARY KEY,
			doc JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, s.schema))
	return err
}

// Init provisions the store and writes the creation marker, so an empty
// store is observably created before any real data arrives.
func (s *orgStore) Init(ctx context.Context) error {
	if err := s.Ensure(ctx); err != nil {
		return err
	}
	_, err := s.Insert(ctx, map[string]any{
		"_meta": map[string]any{"created_at": time.Now().UTC().Format(time.RFC3339)},
	})
	return err
}

func (s *orgStore) Insert(ctx context.Context, data map[string]any) (string, error) {
	var id int64
	err := s.db.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s.documents (doc) VALUES ($1) RETURNING id`, s.schema),
		data,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(id, 10), nil
}

func (s *orgStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return nil, ErrNotFound
	}
	doc := &domain.Document{ID: id}
	err = s.db.QueryRow(ctx,
		fmt.Sprintf(`SELECT doc FROM %s.documents WHERE id = $1`, s.schema),
		n,
	).Scan(&doc.Data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc, nil
}

func (s *orgStore) Update(ctx context.Context, id string, fields map[string]any) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s.documents SET doc = doc || $2 WHERE id = $1`, s.schema),
		n, fields,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *orgStore) Delete(ctx context.Context, id string) error {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return ErrNotFound
	}
	tag, err := s.db.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s.documents WHERE id = $1`, s.schema),
		n,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *orgStore) ListByType(ctx context.Context, typ string) ([]domain.Document, error) {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT id, doc FROM %s.documents WHERE doc->>'type' = $1 ORDER BY id`, s.schema),
		typ,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var id int64
		var data map[string]any
		if err := rows.Scan(&id, &data); err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{ID: strconv.FormatInt(id, 10), Data: data})
	}
	return docs, rows.Err()
}

func (s *orgStore) Scan(ctx context.Context, fn func(domain.Document) error) error {
	rows, err := s.db.Query(ctx,
		fmt.Sprintf(`SELECT id, doc FROM %s.documents ORDER BY id`, s.schema),
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var data map[string]any
		if err := rows.Scan(&id, &data); err != nil {
			return err
		}
		if err := fn(domain.Document{ID: strconv.FormatInt(id, 10), Data: data}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (s *orgStore) InsertBatch(ctx context.Context, docs []map[string]any) error {
	if len(docs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	stmt := fmt.Sprintf(`INSERT INTO %s.documents (doc) VALUES ($1)`, s.schema)
	for _, d := range docs {
		batch.Queue(stmt, d)
	}
	return s.db.SendBatch(ctx, batch).Close()
}

func (s *orgStore) Drop(ctx context.Context) error {
	_, err := s.db.Exec(ctx, fmt.Sprintf(`DROP SCHEMA IF EXISTS %s CASCADE`, s.schema))
	return err
}
