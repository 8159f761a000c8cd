package service

import (
	"context"
	"errors"

	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/store"
	"go.uber.org/zap"
)

var (
	ErrOrgNotFound    = errors.New("organization not found")
	ErrOrgConflict    = errors.New("organization name already exists")
	ErrOrgNameTooLong = errors.New("organization name too long")
	ErrEmailTaken     = errors.New("admin email already in use")
)

// OrgService orchestrates the organization lifecycle across the master
// registry and per-tenant data stores. There is no cross-store transaction:
// each multi-step operation sequences its writes so that a failure partway
// leaves data recoverable rather than lost, and returns the error as-is for
// manual reconciliation. The registry's unique constraints are the sole
// safeguard against concurrent operations on the same name.
type OrgService struct {
	registry domain.OrgRegistry
	admins   domain.AdminStore
	locator  domain.StoreLocator
	copier   *store.Copier
	hasher   domain.PasswordHasher
	logger   *zap.Logger
}

func NewOrgService(
	registry domain.OrgRegistry,
	admins domain.AdminStore,
	locator domain.StoreLocator,
	copier *store.Copier,
	hasher domain.PasswordHasher,
	logger *zap.Logger,
) *OrgService {
	return &OrgService{
		registry: registry,
		admins:   admins,
		locator:  locator,
		copier:   copier,
		hasher:   hasher,
		logger:   logger,
	}
}

// Create provisions a new organization: data store with creation marker,
// owning admin record, then the registry entry. If the admin or registry
// write fails the already-provisioned store is left orphaned; callers see
// the error and the registry never points at a half-created tenant.
func (s *OrgService) Create(ctx context.Context, name, email, password string) (*domain.OrgProvision, error) {
	if len(name) > store.MaxOrgNameLen {
		return nil, ErrOrgNameTooLong
	}
	if _, err := s.registry.Find(ctx, name); err == nil {
		return nil, ErrOrgConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	st := s.locator.Resolve(name)
	if err := st.Init(ctx); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}
	admin := &domain.Admin{Email: email, PasswordHash: hash, Organization: name}
	if err := s.admins.Create(ctx, admin); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	org := &domain.Organization{Name: name, StoreID: st.ID(), AdminID: admin.ID}
	if err := s.registry.Insert(ctx, org); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrOrgConflict
		}
		return nil, err
	}

	s.logger.Info("organization created",
		zap.String("organization", name),
		zap.String("store_id", st.ID()),
	)

	return &domain.OrgProvision{Name: name, StoreID: st.ID(), AdminID: admin.ID}, nil
}

func (s *OrgService) Get(ctx context.Context, name string) (*domain.Organization, error) {
	org, err := s.registry.Find(ctx, name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}
	return org, nil
}

// Update renames an organization and/or updates its admin credentials.
//
// A rename copies all documents into a freshly derived store, repoints the
// registry and admin records, and only then drops the old store, so any
// failure before the drop leaves both stores intact with the registry on
// the new one. No rollback is attempted on partial failure. When NewName is
// absent, empty, or equal to the current name, no store work happens at all.
func (s *OrgService) Update(ctx context.Context, name string, upd domain.OrgUpdate) (*domain.OrgUpdateResult, error) {
	if _, err := s.registry.Find(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrOrgNotFound
		}
		return nil, err
	}

	if upd.NewName != nil && *upd.NewName != "" && *upd.NewName != name {
		newName := *upd.NewName
		if len(newName) > store.MaxOrgNameLen {
			return nil, ErrOrgNameTooLong
		}
		if _, err := s.registry.Find(ctx, newName); err == nil {
			return nil, ErrOrgConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}

		oldStore := s.locator.Resolve(name)
		newStore := s.locator.Resolve(newName)
		// The destination gets no marker of its own: the source's marker
		// arrives with the copied documents.
		if err := newStore.Ensure(ctx); err != nil {
			return nil, err
		}

		copied, err := s.copier.Copy(ctx, oldStore, newStore)
		if err != nil {
			return nil, err
		}
		s.logger.Info("organization data copied",
			zap.String("from", oldStore.ID()),
			zap.String("to", newStore.ID()),
			zap.Int("documents", copied),
		)

		if err := s.registry.Rename(ctx, name, newName, newStore.ID()); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, ErrOrgConflict
			}
			if errors.Is(err, store.ErrNotFound) {
				return nil, ErrOrgNotFound
			}
			return nil, err
		}

		if err := s.admins.RenameOrg(ctx, name, newName); err != nil {
			return nil, err
		}

		if err := oldStore.Drop(ctx); err != nil {
			return nil, err
		}
		s.logger.Info("organization renamed",
			zap.String("from", name),
			zap.String("to", newName),
		)
		name = newName
	}

	fields := domain.AdminUpdate{Email: upd.Email}
	if upd.Password != nil {
		hash, err := s.hasher.Hash(*upd.Password)
		if err != nil {
			return nil, err
		}
		fields.PasswordHash = &hash
	}
	if fields.Email != nil || fields.PasswordHash != nil {
		if err := s.admins.UpdateByOrg(ctx, name, fields); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return nil, ErrEmailTaken
			}
			return nil, err
		}
	}

	return &domain.OrgUpdateResult{Message: "organization updated", Name: name}, nil
}

// Delete destroys the organization's store, then its registry entry, then
// its admin records. A failure partway leaves a registry entry pointing at
// a destroyed store, which surfaces loudly on the next lookup, rather than
// admin records granting access to data that should be gone.
func (s *OrgService) Delete(ctx context.Context, name string) error {
	if _, err := s.registry.Find(ctx, name); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrOrgNotFound
		}
		return err
	}

	if err := s.locator.Resolve(name).Drop(ctx); err != nil {
		return err
	}
	if err := s.registry.Remove(ctx, name); err != nil {
		return err
	}
	if err := s.admins.DeleteByOrg(ctx, name); err != nil {
		return err
	}

	s.logger.Info("organization deleted", zap.String("organization", name))
	return nil
}
