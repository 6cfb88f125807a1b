package main

import (
	"context"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/config"
	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/http/api"
	adminapi "github.com/openkiosk/kioskd/internal/http/api/admin/endpoints"
	playerapi "github.com/openkiosk/kioskd/internal/http/api/player/endpoints"
	"github.com/openkiosk/kioskd/internal/identity"
	"github.com/openkiosk/kioskd/internal/notify"
	"github.com/openkiosk/kioskd/internal/playlist"
	redisclient "github.com/openkiosk/kioskd/internal/redis"
	"github.com/openkiosk/kioskd/internal/storage"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, store db.Store, storageSystem storage.Storage, heartbeat *redisclient.Client, notifier notify.Notifier) {
	// CORS
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	var hb playlist.Heartbeat
	if heartbeat != nil {
		hb = heartbeat
	}
	resolver := playlist.NewResolver(store, hb)

	// kiosk-facing endpoints, no auth
	api.MountGroup(r, api.GroupConfig{}, playerapi.PlayerModule(resolver))

	// public admin auth
	api.MountGroup(r, api.GroupConfig{
		Prefix: "/api/admin",
	},
		adminapi.AuthPublicModule(cfg.Server.JWTSecret, store),
	)

	// authenticated admin API
	api.MountGroup(r, api.GroupConfig{
		Prefix:    "/api/admin",
		Auth:      true,
		SecretKey: cfg.Server.JWTSecret,
		Store:     store,
	},
		adminapi.GroupModule(store, notifier),
		adminapi.ContentModule(store, storageSystem),
		adminapi.ScriptModule(store),
		adminapi.BrowserModule(store),
		adminapi.AuthSessionModule(cfg.Server.JWTSecret, store),
	)

	// identity provider login flow
	if cfg.OIDC.Enabled {
		provider, err := identity.NewOIDCProvider(
			context.Background(),
			cfg.OIDC.IssuerURL,
			cfg.OIDC.ClientID,
			cfg.OIDC.ClientSecret,
			cfg.OIDC.RedirectURL,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize OIDC provider")
		}
		claims := identity.ClaimsConfig{
			FirstNameClaim:        cfg.OIDC.FirstNameClaim,
			LastNameClaim:         cfg.OIDC.LastNameClaim,
			SuperuserClaimName:    cfg.OIDC.SuperuserClaimName,
			SuperuserClaimValue:   cfg.OIDC.SuperuserClaimValue,
			GroupsClaimName:       cfg.OIDC.GroupsClaimName,
			GroupsSyncEnabled:     cfg.OIDC.GroupsSyncEnabled,
			AssignContentManagers: cfg.OIDC.AssignContentManagers,
		}
		api.MountGroup(r, api.GroupConfig{},
			adminapi.OIDCModule(store, provider, claims, cfg.Server.JWTSecret))
	}

	// locally stored media
	if !cfg.Spaces.Enabled {
		r.Static("/uploads", "./uploads")
	}
}
