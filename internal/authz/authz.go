// Package authz holds the permission predicates for the admin API. Two
// roles exist: superusers are unrestricted, managers act only on display
// groups whose manager set contains them. Content items are global;
// automation scripts require their own permission.
package authz

import (
	"errors"

	"github.com/openkiosk/kioskd/internal/model"
)

var ErrPermissionDenied = errors.New("permission denied")

// Permission strings granted through roles.
const (
	PermGroupView     = "displaygroup.view"
	PermGroupChange   = "displaygroup.change"
	PermEntryAdd      = "playlistentry.add"
	PermEntryChange   = "playlistentry.change"
	PermEntryDelete   = "playlistentry.delete"
	PermEntryView     = "playlistentry.view"
	PermContentAdd    = "contentitem.add"
	PermContentChange = "contentitem.change"
	PermContentView   = "contentitem.view"
	PermManageScripts = "automationscript.manage"
)

func isManager(user *model.User, managerIDs []int) bool {
	for _, id := range managerIDs {
		if id == user.ID {
			return true
		}
	}
	return false
}

// CanViewGroup allows superusers and managers of the specific group.
func CanViewGroup(user *model.User, managerIDs []int) bool {
	return user.IsSuperuser || isManager(user, managerIDs)
}

// CanChangeGroup allows superusers and managers of the specific group.
// Editing a group's playlist requires the same predicate: generic playlist
// entry permissions never grant access to a group the user does not manage.
func CanChangeGroup(user *model.User, managerIDs []int) bool {
	return user.IsSuperuser || isManager(user, managerIDs)
}

// CanDeleteGroup allows superusers and managers of the specific group.
func CanDeleteGroup(user *model.User, managerIDs []int) bool {
	return user.IsSuperuser || isManager(user, managerIDs)
}

// CanAddGroup restricts creation of new display groups to superusers.
func CanAddGroup(user *model.User) bool {
	return user.IsSuperuser
}

// CanEditPlaylist gates adding, reordering and removing playlist entries
// through a group's edit surface.
func CanEditPlaylist(user *model.User, managerIDs []int) bool {
	return CanChangeGroup(user, managerIDs)
}

// CanAddContent allows any user holding the generic content permission.
func CanAddContent(user *model.User) bool {
	return user.HasPermission(PermContentAdd)
}

// CanEditContent allows any user holding the generic content permission.
// Content items are global and not owned by a single group.
func CanEditContent(user *model.User) bool {
	return user.HasPermission(PermContentChange)
}

// CanViewContent allows any user holding the generic content permission.
func CanViewContent(user *model.User) bool {
	return user.HasPermission(PermContentView)
}

// CanDeleteContent is superuser-only: deleting a content item removes it
// from every group's playlist, including groups managed by others.
func CanDeleteContent(user *model.User) bool {
	return user.IsSuperuser
}

// CanManageScripts requires the dedicated automation script permission,
// distinct from the basic content permissions.
func CanManageScripts(user *model.User) bool {
	return user.HasPermission(PermManageScripts)
}

// CanManageBrowsers gates manual browser administration (rename, group
// assignment). Managers may assign browsers to groups they manage; the
// object-scoped check is CanChangeGroup on the target group.
func CanManageBrowsers(user *model.User) bool {
	return user.IsStaff || user.IsSuperuser
}

// CanDeleteBrowser is superuser-only; browsers re-register on their next
// poll, so deletion is an administrative cleanup action.
func CanDeleteBrowser(user *model.User) bool {
	return user.IsSuperuser
}
