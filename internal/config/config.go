package config

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// Config holds all configuration for the application.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	MQTT      MQTTConfig
	Spaces    SpacesConfig
	OIDC      OIDCConfig
	Bootstrap BootstrapConfig
}

type ServerConfig struct {
	Address   string `env:"SERVER_ADDRESS" envDefault:":8080"`
	JWTSecret string `env:"JWT_SECRET"`
}

type DatabaseConfig struct {
	URL            string `env:"DATABASE_URL"`
	MigrationsPath string `env:"MIGRATIONS_PATH" envDefault:"./migrations"`
}

type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"`
	Username string `env:"REDIS_USERNAME"`
	Password string `env:"REDIS_PASSWORD"`
}

type MQTTConfig struct {
	BrokerURL string `env:"MQTT_BROKER_URL"`
	ClientID  string `env:"MQTT_CLIENT_ID" envDefault:"kioskd"`
}

// SpacesConfig selects S3-compatible media storage over local disk.
type SpacesConfig struct {
	Enabled   bool   `env:"USE_SPACES" envDefault:"false"`
	Endpoint  string `env:"SPACES_ENDPOINT"`
	Region    string `env:"SPACES_REGION"`
	Bucket    string `env:"SPACES_BUCKET"`
	CDNURL    string `env:"SPACES_CDN_URL"`
	AccessKey string `env:"SPACES_ACCESS_KEY"`
	SecretKey string `env:"SPACES_SECRET_KEY"`
}

type OIDCConfig struct {
	Enabled               bool   `env:"OIDC_ENABLED" envDefault:"false"`
	IssuerURL             string `env:"OIDC_ISSUER_URL"`
	ClientID              string `env:"OIDC_CLIENT_ID"`
	ClientSecret          string `env:"OIDC_CLIENT_SECRET"`
	RedirectURL           string `env:"OIDC_REDIRECT_URL"`
	FirstNameClaim        string `env:"OIDC_CLAIM_FIRST_NAME" envDefault:"given_name"`
	LastNameClaim         string `env:"OIDC_CLAIM_LAST_NAME" envDefault:"family_name"`
	SuperuserClaimName    string `env:"OIDC_SUPERUSER_CLAIM_NAME"`
	SuperuserClaimValue   string `env:"OIDC_SUPERUSER_CLAIM_VALUE"`
	GroupsClaimName       string `env:"OIDC_GROUPS_CLAIM_NAME"`
	GroupsSyncEnabled     bool   `env:"OIDC_GROUPS_SYNC_ENABLED" envDefault:"false"`
	AssignContentManagers bool   `env:"OIDC_ASSIGN_CONTENT_MANAGER" envDefault:"false"`
}

// BootstrapConfig feeds the idempotent startup defaults.
type BootstrapConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL" envDefault:"admin@localhost"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(&cfg.Server); err != nil {
		return nil, fmt.Errorf("parsing server config: %w", err)
	}
	if err := env.Parse(&cfg.Database); err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if err := env.Parse(&cfg.Redis); err != nil {
		return nil, fmt.Errorf("parsing redis config: %w", err)
	}
	if err := env.Parse(&cfg.MQTT); err != nil {
		return nil, fmt.Errorf("parsing mqtt config: %w", err)
	}
	if err := env.Parse(&cfg.Spaces); err != nil {
		return nil, fmt.Errorf("parsing spaces config: %w", err)
	}
	if err := env.Parse(&cfg.OIDC); err != nil {
		return nil, fmt.Errorf("parsing oidc config: %w", err)
	}
	if err := env.Parse(&cfg.Bootstrap); err != nil {
		return nil, fmt.Errorf("parsing bootstrap config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Server.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.OIDC.Enabled {
		if c.OIDC.IssuerURL == "" {
			return fmt.Errorf("OIDC_ISSUER_URL is required when OIDC is enabled")
		}
		if c.OIDC.ClientID == "" {
			return fmt.Errorf("OIDC_CLIENT_ID is required when OIDC is enabled")
		}
		if c.OIDC.ClientSecret == "" {
			return fmt.Errorf("OIDC_CLIENT_SECRET is required when OIDC is enabled")
		}
		if c.OIDC.RedirectURL == "" {
			return fmt.Errorf("OIDC_REDIRECT_URL is required when OIDC is enabled")
		}
	}
	if c.Spaces.Enabled {
		if c.Spaces.Endpoint == "" || c.Spaces.Bucket == "" || c.Spaces.CDNURL == "" {
			return fmt.Errorf("SPACES_ENDPOINT, SPACES_BUCKET and SPACES_CDN_URL are required when USE_SPACES is set")
		}
	}
	return nil
}
