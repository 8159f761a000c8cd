package store

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vowsuite/vowsuite/internal/domain"
)

// storeIDPrefix makes the name-to-store-id derivation injective: two
// distinct organization names can never collide on a store id.
const storeIDPrefix = "org_"

// MaxOrgNameLen bounds organization names so that store ids stay within
// Postgres's 63-byte identifier limit. Past that limit Postgres silently
// truncates schema names, which would let two tenants share a schema.
const MaxOrgNameLen = 63 - len(storeIDPrefix)

// Locator derives a tenant's data store from its organization name. The
// derivation is pure; resolving a handle performs no I/O.
type Locator struct {
	db *pgxpool.Pool
}

func NewLocator(db *pgxpool.Pool) *Locator {
	return &Locator{db: db}
}

// StoreID returns the store identifier for an organization name.
func (l *Locator) StoreID(name string) string {
	return storeIDPrefix + name
}

// Resolve returns a handle to the organization's data store. The underlying
// schema is created lazily by Init or Ensure, not here.
func (l *Locator) Resolve(name string) domain.OrgStore {
	return newOrgStore(l.db, l.StoreID(name))
}
