package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vowsuite/vowsuite/internal/domain"
)

// OrgRegistry is the master registry of organizations, backed by the
// organizations table in the master schema.
type OrgRegistry struct {
	db *pgxpool.Pool
}

func NewOrgRegistry(db *pgxpool.Pool) *OrgRegistry {
	return &OrgRegistry{db: db}
}

func (s *OrgRegistry) Find(ctx context.Context, name string) (*domain.Organization, error) {
	o := &domain.Organization{}
	err := s.db.QueryRow(ctx,
		`SELECT name, store_id, admin_id, created_at, updated_at
		 FROM organizations WHERE name = $1`,
		name,
	).Scan(&o.Name, &o.StoreID, &o.AdminID, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *OrgRegistry) Insert(ctx context.Context, o *domain.Organization) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO organizations (name, store_id, admin_id)
		 VALUES ($1, $2, $3)
		 RETURNING created_at, updated_at`,
		o.Name, o.StoreID, o.AdminID,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *OrgRegistry) Remove(ctx context.Context, name string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM organizations WHERE name = $1`, name)
	return err
}

// Rename repoints the entry for oldName in a single statement, so callers
// observe the name and store id change together. The primary key on name
// rejects a rename onto a taken name.
func (s *OrgRegistry) Rename(ctx context.Context, oldName, newName, newStoreID string) error {
	tag, err := s.db.Exec(ctx,
		`UPDATE organizations SET name = $2, store_id = $3, updated_at = NOW()
		 WHERE name = $1`,
		oldName, newName, newStoreID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
