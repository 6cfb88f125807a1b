// Package bootstrap ensures the default role and administrative account
// exist at process start. Safe to run on every startup.
package bootstrap

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/openkiosk/kioskd/internal/authz"
	"github.com/openkiosk/kioskd/internal/identity"
	"github.com/openkiosk/kioskd/internal/model"
)

// contentManagerPermissions is the fixed permission set of the default
// "Content Managers" role.
var contentManagerPermissions = []string{
	authz.PermGroupView,
	authz.PermGroupChange,
	authz.PermEntryAdd,
	authz.PermEntryChange,
	authz.PermEntryDelete,
	authz.PermEntryView,
	authz.PermContentAdd,
	authz.PermContentChange,
	authz.PermContentView,
}

// Config carries the environment-derived admin credentials.
type Config struct {
	AdminEmail    string
	AdminPassword string
}

// Store is the slice of the persistence layer the bootstrap needs.
type Store interface {
	GetOrCreateRole(ctx context.Context, name string) (*model.Role, error)
	SetRolePermissions(ctx context.Context, roleID int, permissions []string) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateUser(ctx context.Context, email, hashedPassword string) (*model.User, error)
	UpdateUser(ctx context.Context, id int, firstName, lastName *string, isStaff, isSuperuser *bool) error
	SetUserPassword(ctx context.Context, id int, hashedPassword string) error
}

// EnsureDefaults creates the "Content Managers" role with its fixed
// permission set and synchronizes the admin account from configuration.
// Idempotent. Storage failures (typically an unmigrated database) are
// logged and skipped so startup never fails; setup runs again on the next
// start.
func EnsureDefaults(ctx context.Context, store Store, cfg Config) {
	if err := ensureContentManagersRole(ctx, store); err != nil {
		log.Warn().Err(err).Msg("database not ready, skipping default role setup")
	}
	if err := ensureAdminUser(ctx, store, cfg); err != nil {
		log.Warn().Err(err).Msg("database not ready, skipping admin account setup")
	}
}

func ensureContentManagersRole(ctx context.Context, store Store) error {
	role, err := store.GetOrCreateRole(ctx, identity.ContentManagersRole)
	if err != nil {
		return err
	}
	if err := store.SetRolePermissions(ctx, role.ID, contentManagerPermissions); err != nil {
		return err
	}
	log.Info().Str("role", role.Name).Msg("ensured default role")
	return nil
}

func ensureAdminUser(ctx context.Context, store Store, cfg Config) error {
	if cfg.AdminPassword == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set, skipping admin account setup")
		return nil
	}

	user, err := store.GetUserByEmail(ctx, cfg.AdminEmail)
	if errors.Is(err, sql.ErrNoRows) {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user, err = store.CreateUser(ctx, cfg.AdminEmail, string(hashed))
		if err != nil {
			return err
		}
		staff, super := true, true
		if err := store.UpdateUser(ctx, user.ID, nil, nil, &staff, &super); err != nil {
			return err
		}
		log.Info().Str("email", cfg.AdminEmail).Msg("created admin account")
		return nil
	}
	if err != nil {
		return err
	}

	// existing account: make sure flags are set and the password matches
	// the environment
	if !user.IsStaff || !user.IsSuperuser {
		staff, super := true, true
		if err := store.UpdateUser(ctx, user.ID, nil, nil, &staff, &super); err != nil {
			return err
		}
	}
	if bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(cfg.AdminPassword)) != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if err := store.SetUserPassword(ctx, user.ID, string(hashed)); err != nil {
			return err
		}
		log.Info().Str("email", cfg.AdminEmail).Msg("synchronized admin password from environment")
	}
	return nil
}
