// Package identity maps external identity-provider claims onto local user
// records and roles.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/model"
)

// ContentManagersRole is the default role new content editors are enrolled
// into when auto-assignment is enabled.
const ContentManagersRole = "Content Managers"

// ClaimsConfig controls how provider claims map onto user fields. It is the
// only point of polymorphism; there is no per-provider subclassing.
type ClaimsConfig struct {
	FirstNameClaim        string
	LastNameClaim         string
	SuperuserClaimName    string
	SuperuserClaimValue   string
	GroupsClaimName       string
	GroupsSyncEnabled     bool
	AssignContentManagers bool
}

// Store is the slice of the persistence layer provisioning needs.
type Store interface {
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id int) (*model.User, error)
	CreateUser(ctx context.Context, email, hashedPassword string) (*model.User, error)
	UpdateUser(ctx context.Context, id int, firstName, lastName *string, isStaff, isSuperuser *bool) error
	GetOrCreateRole(ctx context.Context, name string) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
	SetUserRoles(ctx context.Context, userID int, roleIDs []int) error
	AddUserToRole(ctx context.Context, userID, roleID int) error
}

// ProvisionUser upserts the user matching the claims' email address: names
// come from the configured claims, staff is always set, superuser follows
// the configured claim/value match, and role membership is synchronized
// from the configured groups claim (creating roles on demand only when the
// sync flag is enabled).
func ProvisionUser(ctx context.Context, store Store, claims map[string]any, cfg ClaimsConfig) (*model.User, error) {
	email := stringClaim(claims, "email")
	if email == "" {
		return nil, fmt.Errorf("claims carry no email")
	}

	user, err := store.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		// externally authenticated, no local password
		user, err = store.CreateUser(ctx, email, "")
		if err != nil {
			return nil, fmt.Errorf("create user %q: %w", email, err)
		}
		log.Info().Str("email", email).Msg("provisioned new user from identity provider")
	} else if err != nil {
		return nil, fmt.Errorf("lookup user %q: %w", email, err)
	}

	firstName := stringClaim(claims, cfg.FirstNameClaim)
	lastName := stringClaim(claims, cfg.LastNameClaim)
	isStaff := true

	var isSuperuser *bool
	if cfg.SuperuserClaimName != "" && cfg.SuperuserClaimValue != "" {
		v := stringClaim(claims, cfg.SuperuserClaimName) == cfg.SuperuserClaimValue
		isSuperuser = &v
	}

	if err := store.UpdateUser(ctx, user.ID, &firstName, &lastName, &isStaff, isSuperuser); err != nil {
		return nil, fmt.Errorf("update user %q: %w", email, err)
	}

	if cfg.GroupsClaimName != "" {
		if err := syncRoles(ctx, store, user.ID, claims, cfg); err != nil {
			return nil, err
		}
	}

	if cfg.AssignContentManagers {
		role, err := store.GetOrCreateRole(ctx, ContentManagersRole)
		if err != nil {
			return nil, fmt.Errorf("ensure %q role: %w", ContentManagersRole, err)
		}
		if err := store.AddUserToRole(ctx, user.ID, role.ID); err != nil {
			return nil, fmt.Errorf("enroll into %q: %w", ContentManagersRole, err)
		}
	}

	return store.GetUserByID(ctx, user.ID)
}

func syncRoles(ctx context.Context, store Store, userID int, claims map[string]any, cfg ClaimsConfig) error {
	names := stringSliceClaim(claims, cfg.GroupsClaimName)
	roleIDs := make([]int, 0, len(names))
	for _, name := range names {
		var role *model.Role
		var err error
		if cfg.GroupsSyncEnabled {
			role, err = store.GetOrCreateRole(ctx, name)
		} else {
			role, err = store.GetRoleByName(ctx, name)
			if errors.Is(err, sql.ErrNoRows) {
				// unknown external group and sync disabled: ignore
				continue
			}
		}
		if err != nil {
			return fmt.Errorf("resolve role %q: %w", name, err)
		}
		roleIDs = append(roleIDs, role.ID)
	}
	if err := store.SetUserRoles(ctx, userID, roleIDs); err != nil {
		return fmt.Errorf("sync roles: %w", err)
	}
	return nil
}

func stringClaim(claims map[string]any, name string) string {
	if name == "" {
		return ""
	}
	if v, ok := claims[name].(string); ok {
		return v
	}
	return ""
}

func stringSliceClaim(claims map[string]any, name string) []string {
	var out []string
	switch v := claims[name].(type) {
	case []string:
		out = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	case string:
		if v != "" {
			out = []string{v}
		}
	}
	return out
}
