package endpoints_test

import (
	"context"
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkiosk/kioskd/internal/http/api"
	adminapi "github.com/openkiosk/kioskd/internal/http/api/admin/endpoints"
	"github.com/openkiosk/kioskd/internal/http/middleware"
	"github.com/openkiosk/kioskd/internal/model"
)

func (f *fakeStore) GetBrowser(_ context.Context, identifier uuid.UUID) (*model.Browser, error) {
	if b, ok := f.browsers[identifier]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeStore) ListBrowsers(context.Context) ([]model.Browser, error) {
	var out []model.Browser
	for _, b := range f.browsers {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) UpdateBrowserName(_ context.Context, identifier uuid.UUID, name *string) error {
	if b, ok := f.browsers[identifier]; ok {
		b.Name = name
		return nil
	}
	return sql.ErrNoRows
}

func (f *fakeStore) AssignBrowserToGroup(_ context.Context, identifier uuid.UUID, groupID *int) error {
	if b, ok := f.browsers[identifier]; ok {
		b.GroupID = groupID
		return nil
	}
	return sql.ErrNoRows
}

func (f *fakeStore) DeleteBrowser(_ context.Context, identifier uuid.UUID) error {
	if _, ok := f.browsers[identifier]; !ok {
		return sql.ErrNoRows
	}
	delete(f.browsers, identifier)
	return nil
}

func setupBrowserRouter(store *fakeStore, user *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			middleware.SetCurrentUser(c, user)
		}},
	}, adminapi.BrowserModule(store))
	return r
}

func seedBrowser(store *fakeStore) uuid.UUID {
	id := uuid.New()
	store.browsers[id] = &model.Browser{Identifier: id, LastSeen: time.Now()}
	return id
}

func TestAssignBrowserChecksTargetGroupScope(t *testing.T) {
	store := newFakeStore()
	seedGroups(store)
	id := seedBrowser(store)

	// manager of group 1 cannot park a browser on group 2
	router := setupBrowserRouter(store, manager)
	w := doJSON(t, router, http.MethodPut, "/api/admin/browsers/"+id.String(), gin.H{"group_id": 2})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Nil(t, store.browsers[id].GroupID)

	w = doJSON(t, router, http.MethodPut, "/api/admin/browsers/"+id.String(), gin.H{"group_id": 1})
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, store.browsers[id].GroupID)
	assert.Equal(t, 1, *store.browsers[id].GroupID)
}

func TestAssignBrowserUnknownGroup(t *testing.T) {
	store := newFakeStore()
	id := seedBrowser(store)

	router := setupBrowserRouter(store, superuser)
	w := doJSON(t, router, http.MethodPut, "/api/admin/browsers/"+id.String(), gin.H{"group_id": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRenameAndUnassignBrowser(t *testing.T) {
	store := newFakeStore()
	seedGroups(store)
	id := seedBrowser(store)
	groupID := 1
	store.browsers[id].GroupID = &groupID

	router := setupBrowserRouter(store, manager)
	w := doJSON(t, router, http.MethodPut, "/api/admin/browsers/"+id.String(),
		gin.H{"name": "Lobby left screen", "unassign": true})
	require.Equal(t, http.StatusOK, w.Code)

	b := store.browsers[id]
	require.NotNil(t, b.Name)
	assert.Equal(t, "Lobby left screen", *b.Name)
	assert.Nil(t, b.GroupID)
}

func TestDeleteBrowserRequiresSuperuser(t *testing.T) {
	store := newFakeStore()
	id := seedBrowser(store)

	router := setupBrowserRouter(store, manager)
	w := doJSON(t, router, http.MethodDelete, "/api/admin/browsers/"+id.String(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, store.browsers, id)

	router = setupBrowserRouter(store, superuser)
	w = doJSON(t, router, http.MethodDelete, "/api/admin/browsers/"+id.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.browsers, id)
}

func TestListBrowsersRequiresStaff(t *testing.T) {
	store := newFakeStore()
	seedBrowser(store)

	router := setupBrowserRouter(store, &model.User{ID: 7})
	w := doJSON(t, router, http.MethodGet, "/api/admin/browsers", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
