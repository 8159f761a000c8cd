package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/vowsuite/vowsuite/internal/domain"
	"github.com/vowsuite/vowsuite/internal/store"
	"go.uber.org/zap"
)

// fakeRegistry implements domain.OrgRegistry in memory. Insert is atomic
// under the mutex, mirroring the unique constraint the real registry
// delegates to.
type fakeRegistry struct {
	mu   sync.Mutex
	orgs map[string]*domain.Organization
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{orgs: make(map[string]*domain.Organization)}
}

func (f *fakeRegistry) Find(ctx context.Context, name string) (*domain.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[name]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (f *fakeRegistry) Insert(ctx context.Context, o *domain.Organization) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orgs[o.Name]; ok {
		return store.ErrConflict
	}
	cp := *o
	f.orgs[o.Name] = &cp
	return nil
}

func (f *fakeRegistry) Remove(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.orgs, name)
	return nil
}

func (f *fakeRegistry) Rename(ctx context.Context, oldName, newName, newStoreID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[oldName]
	if !ok {
		return store.ErrNotFound
	}
	if _, ok := f.orgs[newName]; ok && newName != oldName {
		return store.ErrConflict
	}
	delete(f.orgs, oldName)
	o.Name = newName
	o.StoreID = newStoreID
	f.orgs[newName] = o
	return nil
}

func (f *fakeRegistry) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.orgs)
}

// fakeAdminStore implements domain.AdminStore in memory.
type fakeAdminStore struct {
	mu     sync.Mutex
	admins map[uuid.UUID]*domain.Admin
}

func newFakeAdminStore() *fakeAdminStore {
	return &fakeAdminStore{admins: make(map[uuid.UUID]*domain.Admin)}
}

func (f *fakeAdminStore) Create(ctx context.Context, a *domain.Admin) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.admins {
		if existing.Email == a.Email {
			return store.ErrConflict
		}
	}
	a.ID = uuid.New()
	cp := *a
	f.admins[a.ID] = &cp
	return nil
}

func (f *fakeAdminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAdminStore) DeleteByOrg(ctx context.Context, org string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, a := range f.admins {
		if a.Organization == org {
			delete(f.admins, id)
		}
	}
	return nil
}

func (f *fakeAdminStore) UpdateByOrg(ctx context.Context, org string, upd domain.AdminUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Organization != org {
			continue
		}
		if upd.Email != nil {
			a.Email = *upd.Email
		}
		if upd.PasswordHash != nil {
			a.PasswordHash = *upd.PasswordHash
		}
	}
	return nil
}

func (f *fakeAdminStore) RenameOrg(ctx context.Context, oldOrg, newOrg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.admins {
		if a.Organization == oldOrg {
			a.Organization = newOrg
		}
	}
	return nil
}

func (f *fakeAdminStore) byOrg(org string) []*domain.Admin {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*domain.Admin
	for _, a := range f.admins {
		if a.Organization == org {
			out = append(out, a)
		}
	}
	return out
}

// fakeOrgStore implements domain.OrgStore in memory.
type fakeOrgStore struct {
	mu      sync.Mutex
	id      string
	exists  bool
	dropped bool
	nextID  int
	docs    []domain.Document
	batches int
}

func (f *fakeOrgStore) ID() string { return f.id }

func (f *fakeOrgStore) Ensure(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exists = true
	f.dropped = false
	return nil
}

func (f *fakeOrgStore) Init(ctx context.Context) error {
	if err := f.Ensure(ctx); err != nil {
		return err
	}
	_, err := f.Insert(ctx, map[string]any{"_meta": map[string]any{"created_at": "now"}})
	return err
}

func (f *fakeOrgStore) Insert(ctx context.Context, data map[string]any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := strconv.Itoa(f.nextID)
	f.docs = append(f.docs, domain.Document{ID: id, Data: data})
	return id, nil
}

func (f *fakeOrgStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	for _, d := range f.docs {
		if d.ID == id {
			cp := d
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrgStore) Update(ctx context.Context, id string, fields map[string]any) error {
	for i, d := range f.docs {
		if d.ID == id {
			for k, v := range fields {
				f.docs[i].Data[k] = v
			}
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeOrgStore) Delete(ctx context.Context, id string) error {
	for i, d := range f.docs {
		if d.ID == id {
			f.docs = append(f.docs[:i], f.docs[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeOrgStore) ListByType(ctx context.Context, typ string) ([]domain.Document, error) {
	var out []domain.Document
	for _, d := range f.docs {
		if d.Data["type"] == typ {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeOrgStore) Scan(ctx context.Context, fn func(domain.Document) error) error {
	for _, d := range f.docs {
		if err := fn(d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeOrgStore) InsertBatch(ctx context.Context, docs []map[string]any) error {
	f.mu.Lock()
	f.batches++
	f.mu.Unlock()
	for _, d := range docs {
		if _, err := f.Insert(ctx, d); err != nil {
			return err
		}
	}
	return nil
}

func (f *fakeOrgStore) Drop(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exists = false
	f.dropped = true
	f.docs = nil
	return nil
}

// fakeLocator implements domain.StoreLocator over fakeOrgStores.
type fakeLocator struct {
	mu     sync.Mutex
	stores map[string]*fakeOrgStore
}

func newFakeLocator() *fakeLocator {
	return &fakeLocator{stores: make(map[string]*fakeOrgStore)}
}

func (f *fakeLocator) StoreID(name string) string { return "org_" + name }

func (f *fakeLocator) Resolve(name string) domain.OrgStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.StoreID(name)
	if s, ok := f.stores[id]; ok {
		return s
	}
	s := &fakeOrgStore{id: id}
	f.stores[id] = s
	return s
}

func (f *fakeLocator) get(name string) *fakeOrgStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stores[f.StoreID(name)]
}

// fakeHasher implements domain.PasswordHasher without real bcrypt work.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }
func (fakeHasher) Verify(password, hash string) bool    { return hash == "hashed:"+password }

func testLogger() *zap.Logger {
	logger, _ := zap.NewDevelopment()
	return logger
}

func setupOrgTest() (*OrgService, *fakeRegistry, *fakeAdminStore, *fakeLocator) {
	registry := newFakeRegistry()
	admins := newFakeAdminStore()
	locator := newFakeLocator()
	svc := NewOrgService(registry, admins, locator, store.NewCopier(2), fakeHasher{}, testLogger())
	return svc, registry, admins, locator
}

func TestOrgService_Create(t *testing.T) {
	svc, registry, admins, locator := setupOrgTest()
	ctx := context.Background()

	res, err := svc.Create(ctx, "Acme", "a@x.com", "pw")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if res.StoreID != "org_Acme" {
		t.Fatalf("expected store id derived from name, got %q", res.StoreID)
	}

	org, err := registry.Find(ctx, "Acme")
	if err != nil {
		t.Fatalf("expected registry entry, got %v", err)
	}
	if org.StoreID != "org_Acme" || org.AdminID != res.AdminID {
		t.Fatalf("registry entry mismatch: %+v", org)
	}

	st := locator.get("Acme")
	if st == nil || !st.exists {
		t.Fatal("expected data store to be provisioned")
	}
	if len(st.docs) != 1 {
		t.Fatalf("expected only the creation marker, got %d docs", len(st.docs))
	}
	if _, ok := st.docs[0].Data["_meta"]; !ok {
		t.Fatal("expected creation marker document")
	}

	owners := admins.byOrg("Acme")
	if len(owners) != 1 {
		t.Fatalf("expected one admin, got %d", len(owners))
	}
	if owners[0].Email != "a@x.com" || owners[0].PasswordHash != "hashed:pw" {
		t.Fatalf("admin record mismatch: %+v", owners[0])
	}
}

func TestOrgService_Create_Duplicate(t *testing.T) {
	svc, registry, _, _ := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Dup", "a@x.com", "pw"); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(ctx, "Dup", "b@x.com", "pw")
	if !errors.Is(err, ErrOrgConflict) {
		t.Fatalf("expected ErrOrgConflict, got %v", err)
	}
	if len(registry.orgs) != 1 {
		t.Fatalf("expected exactly one registry entry, got %d", len(registry.orgs))
	}
}

func TestOrgService_Get_NotFound(t *testing.T) {
	svc, _, _, _ := setupOrgTest()

	_, err := svc.Get(context.Background(), "Ghost")
	if !errors.Is(err, ErrOrgNotFound) {
		t.Fatalf("expected ErrOrgNotFound, got %v", err)
	}
}

func TestOrgService_Update_Rename(t *testing.T) {
	svc, registry, admins, locator := setupOrgTest()
	ctx := context.Background()

	res, err := svc.Create(ctx, "Acme", "a@x.com", "pw")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	oldStore := locator.get("Acme")
	for i := 0; i < 5; i++ {
		_, _ = oldStore.Insert(ctx, map[string]any{"type": "wedding", "venue": strconv.Itoa(i)})
	}

	newName := "Acme2"
	out, err := svc.Update(ctx, "Acme", domain.OrgUpdate{NewName: &newName})
	if err != nil {
		t.Fatalf("rename failed: %v", err)
	}
	if out.Name != "Acme2" {
		t.Fatalf("expected result name Acme2, got %q", out.Name)
	}

	if _, err := registry.Find(ctx, "Acme"); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("expected old name to be gone from registry")
	}
	org, err := registry.Find(ctx, "Acme2")
	if err != nil {
		t.Fatalf("expected new registry entry, got %v", err)
	}
	if org.StoreID != "org_Acme2" {
		t.Fatalf("expected repointed store id, got %q", org.StoreID)
	}
	if org.AdminID != res.AdminID {
		t.Fatal("expected admin reference lineage preserved across rename")
	}

	if !oldStore.dropped {
		t.Fatal("expected old store to be destroyed")
	}
	newStore := locator.get("Acme2")
	// marker + 5 weddings, ids reassigned by the destination store
	if len(newStore.docs) != 6 {
		t.Fatalf("expected 6 copied documents, got %d", len(newStore.docs))
	}
	weddings, _ := newStore.ListByType(ctx, "wedding")
	if len(weddings) != 5 {
		t.Fatalf("expected 5 weddings after copy, got %d", len(weddings))
	}

	owners := admins.byOrg("Acme2")
	if len(owners) != 1 || owners[0].Email != "a@x.com" {
		t.Fatalf("expected admin repointed with credentials unchanged, got %+v", owners)
	}
	if len(admins.byOrg("Acme")) != 0 {
		t.Fatal("expected no admins left on the old name")
	}
}

func TestOrgService_Update_NoopRename(t *testing.T) {
	svc, _, admins, locator := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	st := locator.get("Acme")
	st.batches = 0

	same := "Acme"
	email := "new@x.com"
	out, err := svc.Update(ctx, "Acme", domain.OrgUpdate{NewName: &same, Email: &email})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if out.Name != "Acme" {
		t.Fatalf("expected name unchanged, got %q", out.Name)
	}
	if st.dropped {
		t.Fatal("no-op rename must not touch the store")
	}
	if st.batches != 0 {
		t.Fatalf("no-op rename must perform zero copies, got %d batches", st.batches)
	}
	if owners := admins.byOrg("Acme"); len(owners) != 1 || owners[0].Email != "new@x.com" {
		t.Fatalf("expected email update applied, got %+v", owners)
	}
}

func TestOrgService_Update_EmptyNewNameIsNoRename(t *testing.T) {
	svc, registry, admins, locator := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	st := locator.get("Acme")

	empty := ""
	email := "new@x.com"
	out, err := svc.Update(ctx, "Acme", domain.OrgUpdate{NewName: &empty, Email: &email})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if out.Name != "Acme" {
		t.Fatalf("expected name unchanged, got %q", out.Name)
	}
	if st.dropped {
		t.Fatal("empty new name must not drop the store")
	}
	org, err := registry.Find(ctx, "Acme")
	if err != nil || org.StoreID != "org_Acme" {
		t.Fatalf("expected registry entry untouched, got %+v, %v", org, err)
	}
	if _, err := registry.Find(ctx, ""); !errors.Is(err, store.ErrNotFound) {
		t.Fatal("expected no nameless registry entry")
	}
	if owners := admins.byOrg("Acme"); len(owners) != 1 || owners[0].Email != "new@x.com" {
		t.Fatalf("expected email update applied, got %+v", owners)
	}
}

func TestOrgService_Create_NameTooLong(t *testing.T) {
	svc, registry, _, locator := setupOrgTest()
	ctx := context.Background()

	// Store ids live in identifiers capped at 63 bytes; longer names would
	// silently collide after truncation.
	long := strings.Repeat("a", store.MaxOrgNameLen+1)
	_, err := svc.Create(ctx, long, "a@x.com", "pw")
	if !errors.Is(err, ErrOrgNameTooLong) {
		t.Fatalf("expected ErrOrgNameTooLong, got %v", err)
	}
	if len(registry.orgs) != 0 {
		t.Fatal("expected no registry entry for rejected name")
	}
	if locator.get(long) != nil {
		t.Fatal("expected no store provisioned for rejected name")
	}

	// The boundary itself is fine.
	if _, err := svc.Create(ctx, strings.Repeat("a", store.MaxOrgNameLen), "b@x.com", "pw"); err != nil {
		t.Fatalf("expected max-length name accepted, got %v", err)
	}
}

func TestOrgService_Update_RenameTooLong(t *testing.T) {
	svc, registry, _, locator := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	long := strings.Repeat("b", store.MaxOrgNameLen+1)
	_, err := svc.Update(ctx, "Acme", domain.OrgUpdate{NewName: &long})
	if !errors.Is(err, ErrOrgNameTooLong) {
		t.Fatalf("expected ErrOrgNameTooLong, got %v", err)
	}
	org, err := registry.Find(ctx, "Acme")
	if err != nil || org.StoreID != "org_Acme" {
		t.Fatalf("expected Acme left untouched, got %+v, %v", org, err)
	}
	if locator.get("Acme").dropped {
		t.Fatal("expected Acme's store left untouched")
	}
}

func TestOrgService_Create_Concurrent(t *testing.T) {
	svc, registry, _, _ := setupOrgTest()
	ctx := context.Background()

	// Two racing creates for the same name: the registry insert is the
	// arbiter, so exactly one wins and the loser sees a conflict.
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := svc.Create(ctx, "Same", "admin"+strconv.Itoa(n)+"@x.com", "pw")
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	var won, lost int
	for err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrOrgConflict):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if won != 1 || lost != 1 {
		t.Fatalf("expected one winner and one conflict, got %d/%d", won, lost)
	}
	if registry.count() != 1 {
		t.Fatalf("expected exactly one registry entry, got %d", registry.count())
	}
}

func TestOrgService_Update_CredentialsOnly(t *testing.T) {
	svc, _, admins, _ := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	pw := "better-pw"
	if _, err := svc.Update(ctx, "Acme", domain.OrgUpdate{Password: &pw}); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	owners := admins.byOrg("Acme")
	if owners[0].PasswordHash != "hashed:better-pw" {
		t.Fatalf("expected password rehashed, got %q", owners[0].PasswordHash)
	}
}

func TestOrgService_Update_RenameConflict(t *testing.T) {
	svc, registry, _, locator := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "A", "a@x.com", "pw"); err != nil {
		t.Fatalf("create A failed: %v", err)
	}
	if _, err := svc.Create(ctx, "B", "b@x.com", "pw"); err != nil {
		t.Fatalf("create B failed: %v", err)
	}

	target := "B"
	_, err := svc.Update(ctx, "A", domain.OrgUpdate{NewName: &target})
	if !errors.Is(err, ErrOrgConflict) {
		t.Fatalf("expected ErrOrgConflict, got %v", err)
	}

	// A untouched: registry entry intact, store intact
	org, err := registry.Find(ctx, "A")
	if err != nil || org.StoreID != "org_A" {
		t.Fatalf("expected A left untouched, got %+v, %v", org, err)
	}
	if locator.get("A").dropped {
		t.Fatal("expected A's store left untouched")
	}
}

func TestOrgService_Update_NotFound(t *testing.T) {
	svc, _, _, _ := setupOrgTest()

	newName := "X"
	_, err := svc.Update(context.Background(), "Ghost", domain.OrgUpdate{NewName: &newName})
	if !errors.Is(err, ErrOrgNotFound) {
		t.Fatalf("expected ErrOrgNotFound, got %v", err)
	}
}

func TestOrgService_Delete(t *testing.T) {
	svc, registry, admins, locator := setupOrgTest()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	st := locator.get("Acme")
	_, _ = st.Insert(ctx, map[string]any{"type": "wedding", "venue": "barn"})

	if err := svc.Delete(ctx, "Acme"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := svc.Get(ctx, "Acme"); !errors.Is(err, ErrOrgNotFound) {
		t.Fatal("expected organization gone after delete")
	}
	if !st.dropped {
		t.Fatal("expected store destroyed")
	}
	if len(admins.byOrg("Acme")) != 0 {
		t.Fatal("expected admin records purged")
	}
	if len(registry.orgs) != 0 {
		t.Fatalf("expected empty registry, got %d entries", len(registry.orgs))
	}

	// Re-creating the same name starts from scratch
	if _, err := svc.Create(ctx, "Acme", "a@x.com", "pw"); err != nil {
		t.Fatalf("re-create failed: %v", err)
	}
	fresh := locator.get("Acme")
	if len(fresh.docs) != 1 {
		t.Fatalf("expected a brand-new store with only the marker, got %d docs", len(fresh.docs))
	}
}

func TestOrgService_Delete_NotFound(t *testing.T) {
	svc, _, _, _ := setupOrgTest()

	err := svc.Delete(context.Background(), "Ghost")
	if !errors.Is(err, ErrOrgNotFound) {
		t.Fatalf("expected ErrOrgNotFound, got %v", err)
	}
}
