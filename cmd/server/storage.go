package main

import (
	"github.com/rs/zerolog/log"

	"github.com/openkiosk/kioskd/internal/config"
	"github.com/openkiosk/kioskd/internal/storage"
)

// InitStorage selects and returns the configured media storage backend.
func InitStorage(cfg *config.Config) storage.Storage {
	if cfg.Spaces.Enabled {
		spacesStorage, err := storage.NewSpacesStorage(
			cfg.Spaces.Endpoint,
			cfg.Spaces.Region,
			cfg.Spaces.Bucket,
			cfg.Spaces.CDNURL,
			cfg.Spaces.AccessKey,
			cfg.Spaces.SecretKey,
		)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize Spaces storage")
		}
		log.Info().Str("cdn", cfg.Spaces.CDNURL).Msg("using Spaces media storage")
		return spacesStorage
	}

	log.Info().Msg("using local media storage in ./uploads")
	return storage.NewLocalStorage("./uploads")
}
