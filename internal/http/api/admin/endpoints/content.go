package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/authz"
	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/http/api/admin/packets"
	"github.com/openkiosk/kioskd/internal/model"
	"github.com/openkiosk/kioskd/internal/storage"
)

type ContentController struct {
	store   db.Store
	storage storage.Storage
}

// ContentModule mounts the content item endpoints. Content items are
// global: any user with the generic content permission may create and edit
// them; only superusers may delete, since an item can be shared across
// groups managed by others.
func ContentModule(store db.Store, storageSystem storage.Storage) api.Module {
	ctl := &ContentController{store: store, storage: storageSystem}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/content", ctl.listContent)
		c.POST("/content", ctl.createContent)
		c.GET("/content/:id", ctl.getContent)
		c.PUT("/content/:id", ctl.updateContent)
		c.DELETE("/content/:id", ctl.deleteContent)
		c.POST("/content/:id/video", ctl.uploadVideo)
	})
}

func contentResponse(x *model.ContentItem) packets.ContentResponse {
	return packets.ContentResponse{
		ID:          x.ID,
		Title:       x.Title,
		ContentType: x.ContentType,
		VideoFile:   x.VideoFile,
		URL:         x.URL,
		Duration:    x.Duration,
		UploadedAt:  x.UploadedAt.Format(time.RFC3339),
	}
}

func (c *ContentController) loadContent(ctx *gin.Context) (*model.ContentItem, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	item, err := c.store.GetContentItemByID(ctx.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "content item not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load content item"}
	}
	return item, nil
}

func (c *ContentController) listContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanViewContent(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	all, err := c.store.ListContentItems(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list content"}
	}
	out := make([]packets.ContentResponse, 0, len(all))
	for i := range all {
		out = append(out, contentResponse(&all[i]))
	}
	return out, nil
}

func (c *ContentController) getContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanViewContent(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	item, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return contentResponse(item), nil
}

// createContent takes the metadata as JSON; video files are attached
// afterwards through uploadVideo. Incomplete items are accepted (they are
// simply skipped from served playlists until completed).
func (c *ContentController) createContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanAddContent(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.CreateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	item, err := c.store.CreateContentItem(ctx.Request.Context(), req.Title, req.ContentType, nil, req.URL, req.Duration)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create content item"}
	}
	ctx.Status(http.StatusCreated)
	return contentResponse(item), nil
}

func (c *ContentController) updateContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanEditContent(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	item, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateContentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := c.store.UpdateContentItem(ctx.Request.Context(), item.ID, req.Title, nil, req.URL, req.Duration); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update content item"}
	}

	updated, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return contentResponse(updated), nil
}

func (c *ContentController) deleteContent(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanDeleteContent(user) {
		log.Warn().Int("user", user.ID).Msg("[content] forbidden delete of shared content item")
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	item, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := c.store.DeleteContentItem(ctx.Request.Context(), item.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete content item"}
	}
	return gin.H{"deleted": item.ID}, nil
}

// uploadVideo stores the media file and attaches its reference to a video
// content item.
func (c *ContentController) uploadVideo(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanEditContent(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	item, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if item.ContentType != model.ContentTypeVideo {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "content item is not a video"}
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "file is required"}
	}

	fileRef, err := c.storage.SaveFile(fileHeader, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Msg("[content] uploadVideo: save failed")
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not store file"}
	}

	if err := c.store.UpdateContentItem(ctx.Request.Context(), item.ID, nil, &fileRef, nil, nil); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update content item"}
	}

	updated, apiErr := c.loadContent(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return contentResponse(updated), nil
}
