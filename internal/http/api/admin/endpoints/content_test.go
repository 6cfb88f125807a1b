package endpoints_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkiosk/kioskd/internal/http/api"
	adminapi "github.com/openkiosk/kioskd/internal/http/api/admin/endpoints"
	"github.com/openkiosk/kioskd/internal/http/middleware"
	"github.com/openkiosk/kioskd/internal/model"
	"github.com/openkiosk/kioskd/internal/storage"
)

func (f *fakeStore) CreateContentItem(_ context.Context, title, contentType string, videoFile, url *string, duration *int) (*model.ContentItem, error) {
	item := &model.ContentItem{
		ID:          len(f.content) + 1,
		Title:       title,
		ContentType: contentType,
		VideoFile:   videoFile,
		URL:         url,
		Duration:    duration,
	}
	f.content[item.ID] = item
	return item, nil
}

func (f *fakeStore) ListContentItems(context.Context) ([]model.ContentItem, error) {
	var out []model.ContentItem
	for _, c := range f.content {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeStore) UpdateContentItem(_ context.Context, id int, title, videoFile, url *string, duration *int) error {
	item := f.content[id]
	if title != nil {
		item.Title = *title
	}
	if videoFile != nil {
		item.VideoFile = videoFile
	}
	if url != nil {
		item.URL = url
	}
	if duration != nil {
		item.Duration = duration
	}
	return nil
}

func (f *fakeStore) DeleteContentItem(_ context.Context, id int) error {
	delete(f.content, id)
	return nil
}

func setupContentRouter(store *fakeStore, storageSystem storage.Storage, user *model.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
		Middleware: []gin.HandlerFunc{func(c *gin.Context) {
			middleware.SetCurrentUser(c, user)
		}},
	}, adminapi.ContentModule(store, storageSystem))
	return r
}

var contentEditor = &model.User{ID: 4, IsStaff: true, Permissions: []string{
	"contentitem.add", "contentitem.change", "contentitem.view",
}}

func TestCreateContentValidatesType(t *testing.T) {
	store := newFakeStore()
	router := setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), contentEditor)

	w := doJSON(t, router, http.MethodPost, "/api/admin/content",
		gin.H{"title": "Promo", "content_type": "slideshow"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodPost, "/api/admin/content",
		gin.H{"title": "Promo", "content_type": "video"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.content, 1)
}

func TestCreateContentAcceptsIncompleteItems(t *testing.T) {
	store := newFakeStore()
	router := setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), contentEditor)

	// website without url or duration: stored, just never served
	w := doJSON(t, router, http.MethodPost, "/api/admin/content",
		gin.H{"title": "Menu", "content_type": "website"})
	require.Equal(t, http.StatusCreated, w.Code)

	item := store.content[1]
	assert.Nil(t, item.URL)
	assert.Nil(t, item.Duration)
}

func TestDeleteContentRequiresSuperuser(t *testing.T) {
	store := newFakeStore()
	store.content[1] = &model.ContentItem{ID: 1, Title: "Promo", ContentType: model.ContentTypeVideo}

	router := setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), contentEditor)
	w := doJSON(t, router, http.MethodDelete, "/api/admin/content/1", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, store.content, 1)

	router = setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), superuser)
	w = doJSON(t, router, http.MethodDelete, "/api/admin/content/1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, store.content, 1)
}

func uploadRequest(t *testing.T, path, filename string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadVideoAttachesFileReference(t *testing.T) {
	store := newFakeStore()
	store.content[1] = &model.ContentItem{ID: 1, Title: "Promo", ContentType: model.ContentTypeVideo}
	router := setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), contentEditor)

	req := uploadRequest(t, "/api/admin/content/1/video", "promo reel.mp4", []byte("not really a video"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		VideoFile string `json:"video_file"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.VideoFile, "uploads/promo_reel")
	assert.Contains(t, resp.VideoFile, ".mp4")
}

func TestUploadVideoRejectsWebsiteItems(t *testing.T) {
	store := newFakeStore()
	store.content[1] = &model.ContentItem{ID: 1, Title: "Menu", ContentType: model.ContentTypeWebsite}
	router := setupContentRouter(store, storage.NewLocalStorage(t.TempDir()), contentEditor)

	req := uploadRequest(t, "/api/admin/content/1/video", "menu.mp4", []byte("x"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, store.content[1].VideoFile)
}
