package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openkiosk/kioskd/internal/authz"
	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/http/api/admin/packets"
	"github.com/openkiosk/kioskd/internal/model"
)

type BrowserController struct {
	store db.Store
}

// BrowserModule mounts the browser administration endpoints. Browsers
// register themselves on first poll; the admin surface only renames them,
// assigns groups, and (superuser-only) deletes records.
func BrowserModule(store db.Store) api.Module {
	ctl := &BrowserController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/browsers", ctl.listBrowsers)
		c.PUT("/browsers/:identifier", ctl.updateBrowser)
		c.DELETE("/browsers/:identifier", ctl.deleteBrowser)
	})
}

func browserResponse(b *model.Browser) packets.BrowserResponse {
	return packets.BrowserResponse{
		Identifier: b.Identifier.String(),
		Name:       b.Name,
		GroupID:    b.GroupID,
		LastSeen:   b.LastSeen.Format(time.RFC3339),
	}
}

func (b *BrowserController) listBrowsers(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageBrowsers(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	all, err := b.store.ListBrowsers(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list browsers"}
	}
	out := make([]packets.BrowserResponse, 0, len(all))
	for i := range all {
		out = append(out, browserResponse(&all[i]))
	}
	return out, nil
}

func (b *BrowserController) updateBrowser(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageBrowsers(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	identifier, err := uuid.Parse(ctx.Param("identifier"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid identifier"}
	}

	var req packets.UpdateBrowserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if req.Name != nil {
		if err := b.store.UpdateBrowserName(ctx.Request.Context(), identifier, req.Name); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update browser"}
		}
	}

	switch {
	case req.Unassign:
		if err := b.store.AssignBrowserToGroup(ctx.Request.Context(), identifier, nil); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update browser"}
		}
	case req.GroupID != nil:
		// assigning a browser to a group requires change permission on
		// that specific group
		group, err := b.store.GetDisplayGroupByID(ctx.Request.Context(), *req.GroupID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown group"}
		}
		if err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load group"}
		}
		if !authz.CanChangeGroup(user, group.ManagerIDs) {
			return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
		}
		if err := b.store.AssignBrowserToGroup(ctx.Request.Context(), identifier, req.GroupID); err != nil {
			return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update browser"}
		}
	}

	browser, err := b.store.GetBrowser(ctx.Request.Context(), identifier)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "browser not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load browser"}
	}
	return browserResponse(browser), nil
}

func (b *BrowserController) deleteBrowser(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanDeleteBrowser(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	identifier, err := uuid.Parse(ctx.Param("identifier"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid identifier"}
	}
	if err := b.store.DeleteBrowser(ctx.Request.Context(), identifier); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &api.APIError{Code: http.StatusNotFound, Message: "browser not found"}
		}
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete browser"}
	}
	return gin.H{"deleted": identifier.String()}, nil
}
