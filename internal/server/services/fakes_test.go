package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dsmirnov/padkeeper/internal/common"
	"github.com/dsmirnov/padkeeper/internal/dbx"
	"github.com/dsmirnov/padkeeper/internal/server/models"
	groupsrepo "github.com/dsmirnov/padkeeper/internal/server/repositories/groups"
	identitiesrepo "github.com/dsmirnov/padkeeper/internal/server/repositories/identities"
	padsrepo "github.com/dsmirnov/padkeeper/internal/server/repositories/pads"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) *sql.DB {
	t.Helper()
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// --- in-memory repository fakes ---

type fakeIdentitiesRepo struct {
	byLogin map[string]*models.Identity

	createErr error
	updateErr error
	deleted   []string
}

func newFakeIdentitiesRepo(ids ...*models.Identity) *fakeIdentitiesRepo {
	f := &fakeIdentitiesRepo{byLogin: make(map[string]*models.Identity)}
	for _, id := range ids {
		f.byLogin[id.Login] = id
	}
	return f
}

func (f *fakeIdentitiesRepo) Create(ctx context.Context, identity *models.Identity) (*models.Identity, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.byLogin[identity.Login]; exists {
		return nil, common.ErrorAlreadyExists
	}
	if identity.ID == "" {
		identity.ID = "id-" + identity.Login
	}
	f.byLogin[identity.Login] = identity
	return identity, nil
}

func (f *fakeIdentitiesRepo) GetByID(ctx context.Context, id string) (*models.Identity, error) {
	for _, identity := range f.byLogin {
		if identity.ID == id {
			cp := *identity
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentitiesRepo) GetByLogin(ctx context.Context, login string) (*models.Identity, error) {
	identity, ok := f.byLogin[login]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *identity
	return &cp, nil
}

func (f *fakeIdentitiesRepo) GetByEmail(ctx context.Context, email string) (*models.Identity, error) {
	for _, identity := range f.byLogin {
		if identity.Email == email {
			cp := *identity
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeIdentitiesRepo) Update(ctx context.Context, identity *models.Identity) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byLogin[identity.Login]; !ok {
		return common.ErrorNotFound
	}
	cp := *identity
	f.byLogin[identity.Login] = &cp
	return nil
}

func (f *fakeIdentitiesRepo) Delete(ctx context.Context, id string) error {
	for login, identity := range f.byLogin {
		if identity.ID == id {
			delete(f.byLogin, login)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return common.ErrorNotFound
}

type fakeGroupsRepo struct {
	byID map[string]*models.Group
}

func newFakeGroupsRepo(gs ...*models.Group) *fakeGroupsRepo {
	f := &fakeGroupsRepo{byID: make(map[string]*models.Group)}
	for _, g := range gs {
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGroupsRepo) Create(ctx context.Context, g *models.Group) (*models.Group, error) {
	f.byID[g.ID] = g
	return g, nil
}

func (f *fakeGroupsRepo) Get(ctx context.Context, id string) (*models.Group, error) {
	g, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return g, nil
}

func (f *fakeGroupsRepo) Update(ctx context.Context, g *models.Group) error {
	f.byID[g.ID] = g
	return nil
}

func (f *fakeGroupsRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakePadsRepo struct {
	byID map[string]*models.Pad
}

func newFakePadsRepo(ps ...*models.Pad) *fakePadsRepo {
	f := &fakePadsRepo{byID: make(map[string]*models.Pad)}
	for _, p := range ps {
		f.byID[p.ID] = p
	}
	return f
}

func (f *fakePadsRepo) Create(ctx context.Context, p *models.Pad) (*models.Pad, error) {
	f.byID[p.ID] = p
	return p, nil
}

func (f *fakePadsRepo) Get(ctx context.Context, id string) (*models.Pad, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (f *fakePadsRepo) ListByGroup(ctx context.Context, groupID string) ([]*models.Pad, error) {
	var out []*models.Pad
	for _, p := range f.byID {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePadsRepo) Update(ctx context.Context, p *models.Pad) error {
	f.byID[p.ID] = p
	return nil
}

func (f *fakePadsRepo) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeRepoManager struct {
	identities *fakeIdentitiesRepo
	groups     *fakeGroupsRepo
	pads       *fakePadsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }

func (m *fakeRepoManager) Identities(db dbx.DBTX) identitiesrepo.Repository { return m.identities }
func (m *fakeRepoManager) Groups(db dbx.DBTX) groupsrepo.Repository         { return m.groups }
func (m *fakeRepoManager) Pads(db dbx.DBTX) padsrepo.Repository             { return m.pads }
