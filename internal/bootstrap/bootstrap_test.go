package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openkiosk/kioskd/internal/identity"
	"github.com/openkiosk/kioskd/internal/model"
)

type fakeStore struct {
	users       map[string]*model.User
	roles       map[string]*model.Role
	rolePerms   map[int][]string
	passwordSet int

	failing bool // simulate an unmigrated database
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     map[string]*model.User{},
		roles:     map[string]*model.Role{},
		rolePerms: map[int][]string{},
	}
}

var errNoTable = errors.New(`relation "users" does not exist`)

func (f *fakeStore) GetOrCreateRole(_ context.Context, name string) (*model.Role, error) {
	if f.failing {
		return nil, errNoTable
	}
	if r, ok := f.roles[name]; ok {
		return r, nil
	}
	r := &model.Role{ID: len(f.roles) + 1, Name: name}
	f.roles[name] = r
	return r, nil
}

func (f *fakeStore) SetRolePermissions(_ context.Context, roleID int, permissions []string) error {
	if f.failing {
		return errNoTable
	}
	f.rolePerms[roleID] = permissions
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.failing {
		return nil, errNoTable
	}
	if u, ok := f.users[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) CreateUser(_ context.Context, email, hashedPassword string) (*model.User, error) {
	if f.failing {
		return nil, errNoTable
	}
	u := &model.User{ID: len(f.users) + 1, Email: email, HashedPassword: hashedPassword}
	f.users[email] = u
	return u, nil
}

func (f *fakeStore) UpdateUser(_ context.Context, id int, _, _ *string, isStaff, isSuperuser *bool) error {
	for _, u := range f.users {
		if u.ID != id {
			continue
		}
		if isStaff != nil {
			u.IsStaff = *isStaff
		}
		if isSuperuser != nil {
			u.IsSuperuser = *isSuperuser
		}
		return nil
	}
	return sql.ErrNoRows
}

func (f *fakeStore) SetUserPassword(_ context.Context, id int, hashedPassword string) error {
	f.passwordSet++
	for _, u := range f.users {
		if u.ID == id {
			u.HashedPassword = hashedPassword
			return nil
		}
	}
	return sql.ErrNoRows
}

func TestEnsureDefaultsCreatesRoleAndAdmin(t *testing.T) {
	store := newFakeStore()
	EnsureDefaults(context.Background(), store, Config{
		AdminEmail:    "admin@localhost",
		AdminPassword: "changeme",
	})

	role, ok := store.roles[identity.ContentManagersRole]
	require.True(t, ok)
	assert.ElementsMatch(t, contentManagerPermissions, store.rolePerms[role.ID])

	admin, ok := store.users["admin@localhost"]
	require.True(t, ok)
	assert.True(t, admin.IsStaff)
	assert.True(t, admin.IsSuperuser)
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(admin.HashedPassword), []byte("changeme")))
}

func TestEnsureDefaultsSkipsAdminWithoutPassword(t *testing.T) {
	store := newFakeStore()
	EnsureDefaults(context.Background(), store, Config{AdminEmail: "admin@localhost"})

	assert.Contains(t, store.roles, identity.ContentManagersRole)
	assert.Empty(t, store.users)
}

func TestEnsureDefaultsIsIdempotent(t *testing.T) {
	store := newFakeStore()
	cfg := Config{AdminEmail: "admin@localhost", AdminPassword: "changeme"}

	EnsureDefaults(context.Background(), store, cfg)
	EnsureDefaults(context.Background(), store, cfg)

	assert.Len(t, store.users, 1)
	assert.Len(t, store.roles, 1)
	assert.Zero(t, store.passwordSet, "matching password is not rewritten")
}

func TestEnsureDefaultsRotatesChangedPassword(t *testing.T) {
	store := newFakeStore()
	EnsureDefaults(context.Background(), store, Config{
		AdminEmail: "admin@localhost", AdminPassword: "old",
	})
	EnsureDefaults(context.Background(), store, Config{
		AdminEmail: "admin@localhost", AdminPassword: "new",
	})

	assert.Equal(t, 1, store.passwordSet)
	admin := store.users["admin@localhost"]
	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(admin.HashedPassword), []byte("new")))
}

func TestEnsureDefaultsSurvivesUnmigratedDatabase(t *testing.T) {
	store := newFakeStore()
	store.failing = true

	// must not panic or abort startup
	EnsureDefaults(context.Background(), store, Config{
		AdminEmail: "admin@localhost", AdminPassword: "changeme",
	})
	assert.Empty(t, store.users)
	assert.Empty(t, store.roles)
}
