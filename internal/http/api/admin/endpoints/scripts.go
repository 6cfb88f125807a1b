package endpoints

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openkiosk/kioskd/internal/authz"
	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	"github.com/openkiosk/kioskd/internal/http/api/admin/packets"
	"github.com/openkiosk/kioskd/internal/model"
)

type ScriptController struct {
	store db.Store
}

// ScriptModule mounts the automation script endpoints. Every operation
// requires the dedicated manage permission, separate from the basic content
// permissions.
func ScriptModule(store db.Store) api.Module {
	ctl := &ScriptController{store: store}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/scripts", ctl.listScripts)
		c.POST("/scripts", ctl.createScript)
		c.GET("/scripts/:id", ctl.getScript)
		c.PUT("/scripts/:id", ctl.updateScript)
		c.DELETE("/scripts/:id", ctl.deleteScript)
		c.PUT("/scripts/:id/content_items", ctl.setContentItems)
	})
}

func scriptResponse(s *model.AutomationScript) packets.ScriptResponse {
	pattern := ""
	if s.URLPattern != nil {
		pattern = *s.URLPattern
	}
	return packets.ScriptResponse{
		ID:             s.ID,
		Name:           s.Name,
		URLPattern:     pattern,
		Content:        s.Content,
		Enabled:        s.Enabled,
		Position:       s.Position,
		ContentItemIDs: s.ContentItemIDs,
	}
}

func (s *ScriptController) loadScript(ctx *gin.Context) (*model.AutomationScript, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	script, err := s.store.GetAutomationScriptByID(ctx.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "script not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load script"}
	}
	return script, nil
}

func (s *ScriptController) listScripts(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	all, err := s.store.ListAutomationScripts(ctx.Request.Context())
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list scripts"}
	}
	out := make([]packets.ScriptResponse, 0, len(all))
	for i := range all {
		out = append(out, scriptResponse(&all[i]))
	}
	return out, nil
}

func (s *ScriptController) createScript(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.CreateScriptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	script, err := s.store.CreateAutomationScript(ctx.Request.Context(), req.Name, req.URLPattern, req.Content, enabled, req.Position)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create script"}
	}
	ctx.Status(http.StatusCreated)
	return scriptResponse(script), nil
}

func (s *ScriptController) getScript(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	script, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return scriptResponse(script), nil
}

func (s *ScriptController) updateScript(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	script, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdateScriptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := s.store.UpdateAutomationScript(ctx.Request.Context(), script.ID, req.Name, req.URLPattern, req.Content, req.Enabled, req.Position); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update script"}
	}

	updated, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return scriptResponse(updated), nil
}

func (s *ScriptController) deleteScript(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	script, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if err := s.store.DeleteAutomationScript(ctx.Request.Context(), script.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete script"}
	}
	return gin.H{"deleted": script.ID}, nil
}

func (s *ScriptController) setContentItems(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanManageScripts(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	script, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.SetScriptContentItemsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	for _, itemID := range req.ContentItemIDs {
		if _, err := s.store.GetContentItemByID(ctx.Request.Context(), itemID); err != nil {
			return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown content item"}
		}
	}
	if err := s.store.SetScriptContentItems(ctx.Request.Context(), script.ID, req.ContentItemIDs); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set content items"}
	}

	updated, apiErr := s.loadScript(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return scriptResponse(updated), nil
}
