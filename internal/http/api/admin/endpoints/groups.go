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
	"github.com/openkiosk/kioskd/internal/notify"
)

type GroupController struct {
	store    db.Store
	notifier notify.Notifier
}

// GroupModule mounts the display group endpoints, including playlist entry
// management on the group's edit surface.
func GroupModule(store db.Store, notifier notify.Notifier) api.Module {
	ctl := &GroupController{store: store, notifier: notifier}
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/groups", ctl.listGroups)
		c.POST("/groups", ctl.createGroup)
		c.GET("/groups/:id", ctl.getGroup)
		c.PUT("/groups/:id", ctl.updateGroup)
		c.DELETE("/groups/:id", ctl.deleteGroup)
		c.PUT("/groups/:id/managers", ctl.setManagers)

		c.GET("/groups/:id/playlist", ctl.getPlaylist)
		c.POST("/groups/:id/playlist", ctl.addPlaylistEntry)
		c.DELETE("/groups/:id/playlist", ctl.clearPlaylist)
		c.PUT("/groups/:id/playlist/:entryID", ctl.updatePlaylistEntry)
		c.DELETE("/groups/:id/playlist/:entryID", ctl.removePlaylistEntry)
	})
}

func groupResponse(g *model.DisplayGroup) packets.GroupResponse {
	managers := g.ManagerIDs
	if managers == nil {
		managers = []int{}
	}
	return packets.GroupResponse{
		ID:         g.ID,
		Name:       g.Name,
		ShowStatus: g.ShowStatus,
		ManagerIDs: managers,
		CreatedAt:  g.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  g.UpdatedAt.Format(time.RFC3339),
	}
}

// loadGroup fetches the group with its manager set, mapping missing rows to
// a 404.
func (g *GroupController) loadGroup(ctx *gin.Context) (*model.DisplayGroup, *api.APIError) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	group, err := g.store.GetDisplayGroupByID(ctx.Request.Context(), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "group not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load group"}
	}
	return group, nil
}

// listGroups shows everything to superusers and only managed groups to
// everyone else.
func (g *GroupController) listGroups(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	var groups []model.DisplayGroup
	var err error
	if user.IsSuperuser {
		groups, err = g.store.ListDisplayGroups(ctx.Request.Context())
	} else {
		groups, err = g.store.ListDisplayGroupsForManager(ctx.Request.Context(), user.ID)
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not list groups"}
	}

	out := make([]packets.GroupResponse, 0, len(groups))
	for i := range groups {
		out = append(out, groupResponse(&groups[i]))
	}
	return out, nil
}

func (g *GroupController) createGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !authz.CanAddGroup(user) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.CreateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	showStatus := true
	if req.ShowStatus != nil {
		showStatus = *req.ShowStatus
	}
	group, err := g.store.CreateDisplayGroup(ctx.Request.Context(), req.Name, showStatus)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not create group"}
	}
	ctx.Status(http.StatusCreated)
	return groupResponse(group), nil
}

func (g *GroupController) getGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanViewGroup(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	return groupResponse(group), nil
}

func (g *GroupController) updateGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanChangeGroup(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.UpdateGroupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := g.store.UpdateDisplayGroup(ctx.Request.Context(), group.ID, req.Name, req.ShowStatus); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update group"}
	}

	g.notifier.GroupChanged(group.ID)
	updated, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return groupResponse(updated), nil
}

func (g *GroupController) deleteGroup(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanDeleteGroup(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	if err := g.store.DeleteDisplayGroup(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not delete group"}
	}
	g.notifier.GroupChanged(group.ID)
	return gin.H{"deleted": group.ID}, nil
}

// setManagers replaces the group's manager set. Superuser-only: managers
// cannot grant themselves access to other groups.
func (g *GroupController) setManagers(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	if !user.IsSuperuser {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.SetManagersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := g.store.SetGroupManagers(ctx.Request.Context(), group.ID, req.UserIDs); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not set managers"}
	}

	updated, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	return groupResponse(updated), nil
}

func (g *GroupController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanViewGroup(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	entries, err := g.store.ListPlaylistEntriesForGroup(ctx.Request.Context(), group.ID)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load playlist"}
	}

	out := make([]packets.PlaylistEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := packets.PlaylistEntryResponse{
			ID:            e.ID,
			GroupID:       e.GroupID,
			ContentItemID: e.ContentItemID,
			Position:      e.Position,
		}
		if e.Item != nil {
			item := contentResponse(e.Item)
			resp.Item = &item
		}
		out = append(out, resp)
	}
	return out, nil
}

func (g *GroupController) addPlaylistEntry(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanEditPlaylist(user, group.ManagerIDs) {
		log.Warn().Int("group", group.ID).Int("user", user.ID).Msg("[groups] forbidden playlist edit")
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	var req packets.AddPlaylistEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := g.store.GetContentItemByID(ctx.Request.Context(), req.ContentItemID); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "unknown content item"}
	}

	entry, err := g.store.AddPlaylistEntry(ctx.Request.Context(), group.ID, req.ContentItemID, req.Position)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not add playlist entry"}
	}

	g.notifier.GroupChanged(group.ID)
	ctx.Status(http.StatusCreated)
	return packets.PlaylistEntryResponse{
		ID:            entry.ID,
		GroupID:       entry.GroupID,
		ContentItemID: entry.ContentItemID,
		Position:      entry.Position,
	}, nil
}

// loadEntryForGroup resolves the :entryID param and verifies the entry
// belongs to the group from the URL.
func (g *GroupController) loadEntryForGroup(ctx *gin.Context, groupID int) (*model.PlaylistEntry, *api.APIError) {
	entryID, err := strconv.Atoi(ctx.Param("entryID"))
	if err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: "invalid entry id"}
	}
	entry, err := g.store.GetPlaylistEntryByID(ctx.Request.Context(), entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist entry not found"}
	}
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not load playlist entry"}
	}
	if entry.GroupID != groupID {
		return nil, &api.APIError{Code: http.StatusNotFound, Message: "playlist entry not found"}
	}
	return entry, nil
}

func (g *GroupController) updatePlaylistEntry(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanEditPlaylist(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	entry, apiErr := g.loadEntryForGroup(ctx, group.ID)
	if apiErr != nil {
		return nil, apiErr
	}

	var req packets.UpdatePlaylistEntryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := g.store.UpdatePlaylistEntryPosition(ctx.Request.Context(), entry.ID, req.Position); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not update playlist entry"}
	}

	g.notifier.GroupChanged(group.ID)
	return gin.H{"updated": entry.ID}, nil
}

func (g *GroupController) clearPlaylist(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanEditPlaylist(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}

	if err := g.store.ClearPlaylistForGroup(ctx.Request.Context(), group.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not clear playlist"}
	}
	g.notifier.GroupChanged(group.ID)
	return gin.H{"cleared": group.ID}, nil
}

func (g *GroupController) removePlaylistEntry(ctx *gin.Context, user *model.User) (any, *api.APIError) {
	group, apiErr := g.loadGroup(ctx)
	if apiErr != nil {
		return nil, apiErr
	}
	if !authz.CanEditPlaylist(user, group.ManagerIDs) {
		return nil, &api.APIError{Code: http.StatusForbidden, Message: "forbidden"}
	}
	entry, apiErr := g.loadEntryForGroup(ctx, group.ID)
	if apiErr != nil {
		return nil, apiErr
	}

	if err := g.store.RemovePlaylistEntry(ctx.Request.Context(), entry.ID); err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not remove playlist entry"}
	}
	g.notifier.GroupChanged(group.ID)
	return gin.H{"deleted": entry.ID}, nil
}
