// Package config reads process configuration from MEALPLAN_* environment
// variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

type Config struct {
	Port      string `env:"MEALPLAN_PORT" envDefault:"8080"`
	LogLevel  string `env:"MEALPLAN_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MEALPLAN_LOG_FORMAT" envDefault:"text"`

	Store       string `env:"MEALPLAN_STORE" envDefault:"sqlite"`
	DBPath      string `env:"MEALPLAN_DB_PATH" envDefault:"mealplan.db"`
	DatabaseURL string `env:"MEALPLAN_DATABASE_URL"`

	JWTSecret string `env:"MEALPLAN_JWT_SECRET,required"`
	JWTIssuer string `env:"MEALPLAN_JWT_ISSUER" envDefault:"mealplan"`

	AllowedOrigins []string `env:"MEALPLAN_ALLOWED_ORIGINS" envSeparator:","`

	NATSURL string `env:"MEALPLAN_NATS_URL"`

	S3Endpoint  string `env:"MEALPLAN_S3_ENDPOINT"`
	S3Bucket    string `env:"MEALPLAN_S3_BUCKET"`
	S3Region    string `env:"MEALPLAN_S3_REGION" envDefault:"auto"`
	S3AccessKey string `env:"MEALPLAN_S3_ACCESS_KEY"`
	S3SecretKey string `env:"MEALPLAN_S3_SECRET_KEY"`
	S3Prefix    string `env:"MEALPLAN_S3_PREFIX" envDefault:"backups"`

	BackupPassphrase    string        `env:"MEALPLAN_BACKUP_PASSPHRASE"`
	BackupInterval      time.Duration `env:"MEALPLAN_BACKUP_INTERVAL" envDefault:"24h"`
	BackupRetentionDays int           `env:"MEALPLAN_BACKUP_RETENTION_DAYS" envDefault:"30"`

	GenerateRateLimit  int           `env:"MEALPLAN_GENERATE_RATE_LIMIT" envDefault:"10"`
	GenerateRateWindow time.Duration `env:"MEALPLAN_GENERATE_RATE_WINDOW" envDefault:"1m"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses the given variables instead of the process environment.
func LoadFrom(vars map[string]string) (Config, error) {
	return parse(env.Options{Environment: vars})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	switch c.Store {
	case StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("MEALPLAN_DATABASE_URL is required when MEALPLAN_STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown MEALPLAN_STORE %q", c.Store)
	}
	if c.GenerateRateLimit < 1 {
		return fmt.Errorf("MEALPLAN_GENERATE_RATE_LIMIT must be at least 1")
	}
	return nil
}

// BackupsConfigured reports whether everything needed for S3 backups is set.
// Backups copy the SQLite file, so they never run against postgres.
func (c Config) BackupsConfigured() bool {
	return c.Store == StoreSQLite && c.S3Bucket != "" && c.S3AccessKey != "" &&
		c.S3SecretKey != "" && c.BackupPassphrase != ""
}
