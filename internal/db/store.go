// Package db exposes a Store interface over the relational schema. All joins
// are explicit; callers never rely on lazy relationship traversal.
package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/openkiosk/kioskd/internal/model"
)

type Store interface {
	// user functions
	CreateUser(ctx context.Context, email, hashedPassword string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	UpdateUser(ctx context.Context, id int, firstName, lastName *string, isStaff, isSuperuser *bool) error
	SetUserPassword(ctx context.Context, id int, hashedPassword string) error
	ListUsers(ctx context.Context) ([]model.User, error)

	// role functions
	GetOrCreateRole(ctx context.Context, name string) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	SetRolePermissions(ctx context.Context, roleID int, permissions []string) error
	SetUserRoles(ctx context.Context, userID int, roleIDs []int) error
	AddUserToRole(ctx context.Context, userID, roleID int) error

	// display group functions
	CreateDisplayGroup(ctx context.Context, name string, showStatus bool) (*model.DisplayGroup, error)
	GetDisplayGroupByID(ctx context.Context, id int) (*model.DisplayGroup, error)
	ListDisplayGroups(ctx context.Context) ([]model.DisplayGroup, error)
	ListDisplayGroupsForManager(ctx context.Context, userID int) ([]model.DisplayGroup, error)
	UpdateDisplayGroup(ctx context.Context, id int, name *string, showStatus *bool) error
	DeleteDisplayGroup(ctx context.Context, id int) error
	SetGroupManagers(ctx context.Context, groupID int, userIDs []int) error
	GetGroupManagerIDs(ctx context.Context, groupID int) ([]int, error)

	// content item functions
	CreateContentItem(ctx context.Context, title, contentType string, videoFile, url *string, duration *int) (*model.ContentItem, error)
	GetContentItemByID(ctx context.Context, id int) (*model.ContentItem, error)
	ListContentItems(ctx context.Context) ([]model.ContentItem, error)
	UpdateContentItem(ctx context.Context, id int, title, videoFile, url *string, duration *int) error
	DeleteContentItem(ctx context.Context, id int) error

	// playlist entry functions
	ListPlaylistEntriesForGroup(ctx context.Context, groupID int) ([]model.PlaylistEntry, error)
	GetPlaylistEntryByID(ctx context.Context, id int) (*model.PlaylistEntry, error)
	AddPlaylistEntry(ctx context.Context, groupID, contentItemID, position int) (*model.PlaylistEntry, error)
	UpdatePlaylistEntryPosition(ctx context.Context, id, position int) error
	RemovePlaylistEntry(ctx context.Context, id int) error
	ClearPlaylistForGroup(ctx context.Context, groupID int) error

	// browser functions
	GetOrCreateBrowser(ctx context.Context, identifier uuid.UUID) (*model.Browser, bool, error)
	GetBrowser(ctx context.Context, identifier uuid.UUID) (*model.Browser, error)
	TouchBrowser(ctx context.Context, identifier uuid.UUID) error
	ListBrowsers(ctx context.Context) ([]model.Browser, error)
	UpdateBrowserName(ctx context.Context, identifier uuid.UUID, name *string) error
	AssignBrowserToGroup(ctx context.Context, identifier uuid.UUID, groupID *int) error
	DeleteBrowser(ctx context.Context, identifier uuid.UUID) error

	// automation script functions
	CreateAutomationScript(ctx context.Context, name string, urlPattern *string, content string, enabled bool, position int) (*model.AutomationScript, error)
	GetAutomationScriptByID(ctx context.Context, id int) (*model.AutomationScript, error)
	ListAutomationScripts(ctx context.Context) ([]model.AutomationScript, error)
	UpdateAutomationScript(ctx context.Context, id int, name, urlPattern, content *string, enabled *bool, position *int) error
	DeleteAutomationScript(ctx context.Context, id int) error
	SetScriptContentItems(ctx context.Context, scriptID int, contentItemIDs []int) error
	ListEnabledScriptsForContentItem(ctx context.Context, contentItemID int) ([]model.AutomationScript, error)
}

type pgStore struct {
	db *sqlx.DB
}

// compile-time check that pgStore implements Store
var _ Store = (*pgStore)(nil)

func NewStore(db *sqlx.DB) Store {
	return &pgStore{db: db}
}
