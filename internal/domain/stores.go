package domain

import "context"

// OrgRegistry is the master registry of organizations: the single source of
// truth for which tenants exist and which store each one owns. Mutations are
// local to the registry's own storage; callers sequence them against store
// mutations.
type OrgRegistry interface {
	Find(ctx context.Context, name string) (*Organization, error)
	// Insert fails with the store's conflict error if name is taken. The
	// underlying unique constraint is the sole concurrency safeguard for
	// concurrent creates of the same name.
	Insert(ctx context.Context, o *Organization) error
	// Remove is a no-op when name is absent.
	Remove(ctx context.Context, name string) error
	// Rename atomically replaces name and store id on the entry matching
	// oldName. Fails with the store's not-found error if oldName is absent.
	Rename(ctx context.Context, oldName, newName, newStoreID string) error
}

// AdminStore holds admin credential records keyed by organization.
type AdminStore interface {
	Create(ctx context.Context, a *Admin) error
	GetByEmail(ctx context.Context, email string) (*Admin, error)
	DeleteByOrg(ctx context.Context, org string) error
	UpdateByOrg(ctx context.Context, org string, upd AdminUpdate) error
	// RenameOrg repoints every admin of oldOrg to newOrg.
	RenameOrg(ctx context.Context, oldOrg, newOrg string) error
}

// OrgStore is one tenant's isolated data store.
type OrgStore interface {
	// ID returns the store identifier derived from the tenant name.
	ID() string
	// Init provisions the store and writes its creation marker.
	Init(ctx context.Context) error
	// Ensure provisions the store without a marker. Used for rename
	// destinations, where the marker arrives with the copied documents.
	Ensure(ctx context.Context) error
	Insert(ctx context.Context, data map[string]any) (string, error)
	Get(ctx context.Context, id string) (*Document, error)
	// Update merges fields into the document. Fails with the store's
	// not-found error if id is absent.
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	// ListByType returns documents whose "type" field equals typ, in store
	// order.
	ListByType(ctx context.Context, typ string) ([]Document, error)
	// Scan streams every document in store iteration order.
	Scan(ctx context.Context, fn func(Document) error) error
	// InsertBatch writes documents in one round trip, ignoring any ids.
	InsertBatch(ctx context.Context, docs []map[string]any) error
	// Drop destroys the store and everything in it.
	Drop(ctx context.Context) error
}

// StoreLocator derives a tenant's store handle from its name. Pure and
// deterministic; uniqueness of the derived id follows from registry name
// uniqueness and is not re-validated here.
type StoreLocator interface {
	Resolve(name string) OrgStore
	StoreID(name string) string
}

// PasswordHasher is the credential collaborator: one-way salted hashing.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// TokenClaims is the validated content of a bearer token.
type TokenClaims struct {
	AdminID      string
	Organization string
}

// TokenProvider issues and validates bearer tokens binding an admin to its
// organization.
type TokenProvider interface {
	Issue(adminID, organization string) (string, error)
	Validate(token string) (*TokenClaims, error)
}
