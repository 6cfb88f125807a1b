package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/bootstrap"
	"github.com/openkiosk/kioskd/internal/config"
	"github.com/openkiosk/kioskd/internal/db"
	"github.com/openkiosk/kioskd/internal/notify"
	redisclient "github.com/openkiosk/kioskd/internal/redis"
)

func main() {
	// load .env if present; real deployments use the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// initialize PostgreSQL
	conn, err := db.Init(cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(conn, cfg.Database.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	store := db.NewStore(conn)

	// idempotent startup defaults; never fails startup
	bootstrap.EnsureDefaults(context.Background(), store, bootstrap.Config{
		AdminEmail:    cfg.Bootstrap.AdminEmail,
		AdminPassword: cfg.Bootstrap.AdminPassword,
	})

	// optional heartbeat marker
	var heartbeat *redisclient.Client
	if cfg.Redis.Address != "" {
		heartbeat = redisclient.New(cfg.Redis.Address, cfg.Redis.Username, cfg.Redis.Password)
		defer heartbeat.Close()
	}

	// optional kiosk refresh notifications
	var notifier notify.Notifier = notify.NopNotifier{}
	if cfg.MQTT.BrokerURL != "" {
		mqttNotifier, err := notify.NewMQTTNotifier(cfg.MQTT.BrokerURL, cfg.MQTT.ClientID)
		if err != nil {
			log.Warn().Err(err).Msg("MQTT unavailable, kiosk refresh notifications disabled")
		} else {
			notifier = mqttNotifier
			defer mqttNotifier.Close()
		}
	}

	storageSystem := InitStorage(cfg)

	r := gin.Default()
	RegisterRoutes(r, cfg, store, storageSystem, heartbeat, notifier)

	log.Info().Str("address", cfg.Server.Address).Msg("listening")
	if err := r.Run(cfg.Server.Address); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
