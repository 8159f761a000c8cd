package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vowsuite/vowsuite/internal/domain"
)

// AdminStore holds admin credential records in the master schema.
type AdminStore struct {
	db *pgxpool.Pool
}

func NewAdminStore(db *pgxpool.Pool) *AdminStore {
	return &AdminStore{db: db}
}

func (s *AdminStore) Create(ctx context.Context, a *domain.Admin) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO admins (email, password_hash, organization)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at, updated_at`,
		a.Email, a.PasswordHash, a.Organization,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *AdminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	a := &domain.Admin{}
	err := s.db.QueryRow(ctx,
		`SELECT id, email, password_hash, organization, created_at, updated_at
		 FROM admins WHERE email = $1`,
		email,
	).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Organization, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return a, nil
}

func (s *AdminStore) DeleteByOrg(ctx context.Context, org string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM admins WHERE organization = $1`, org)
	return err
}

func (s *AdminStore) UpdateByOrg(ctx context.Context, org string, upd domain.AdminUpdate) error {
	if upd.Email == nil && upd.PasswordHash == nil {
		return nil
	}
	_, err := s.db.Exec(ctx,
		`UPDATE admins SET
			email = COALESCE($2, email),
			password_hash = COALESCE($3, password_hash),
			updated_at = NOW()
		 WHERE organization = $1`,
		org, upd.Email, upd.PasswordHash,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *AdminStore) RenameOrg(ctx context.Context, oldOrg, newOrg string) error {
	_, err := s.db.Exec(ctx,
		`UPDATE admins SET organization = $2, updated_at = NOW()
		 WHERE organization = $1`,
		oldOrg, newOrg,
	)
	return err
}
