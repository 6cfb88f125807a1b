package endpoints_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/openkiosk/kioskd/internal/http/api"
	adminapi "github.com/openkiosk/kioskd/internal/http/api/admin/endpoints"
	"github.com/openkiosk/kioskd/internal/model"
)

const jwtSecret = "test-secret"

// setupAuthRouter mounts the login endpoint publicly and the session
// endpoints behind the real JWT middleware.
func setupAuthRouter(store *fakeStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: "/api/admin"},
		adminapi.AuthPublicModule(jwtSecret, store))
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: jwtSecret,
		Store:     store,
	}, adminapi.AuthSessionModule(jwtSecret, store))
	return r
}

func seedUser(t *testing.T, store *fakeStore, email, password string) *model.User {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		ID:             len(store.users) + 1,
		Email:          email,
		HashedPassword: string(hashed),
		IsStaff:        true,
	}
	store.users[u.ID] = u
	return u
}

func TestLoginAndProfile(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "admin@example.com", "correct-horse")
	router := setupAuthRouter(store)

	w := doJSON(t, router, http.MethodPost, "/api/admin/auth/login",
		gin.H{"email": "admin@example.com", "password": "correct-horse"})
	require.Equal(t, http.StatusOK, w.Code)

	var loginResp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loginResp))
	require.NotEmpty(t, loginResp.Token)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/current_profile", nil)
	req.Header.Set("Authorization", "Bearer "+loginResp.Token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Email   string `json:"email"`
		IsStaff bool   `json:"is_staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "admin@example.com", profile.Email)
	assert.True(t, profile.IsStaff)
}

func TestLoginRejectsBadPassword(t *testing.T) {
	store := newFakeStore()
	seedUser(t, store, "admin@example.com", "correct-horse")
	router := setupAuthRouter(store)

	w := doJSON(t, router, http.MethodPost, "/api/admin/auth/login",
		gin.H{"email": "admin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/admin/auth/login",
		gin.H{"email": "nobody@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	router := setupAuthRouter(newFakeStore())

	req := httptest.NewRequest(http.MethodGet, "/api/admin/auth/current_profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/auth/current_profile", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
