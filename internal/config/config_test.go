package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{"MEALPLAN_JWT_SECRET": "s3cret"})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Port)
	}
	if cfg.Store != StoreSQLite {
		t.Errorf("store = %q, want sqlite", cfg.Store)
	}
	if cfg.DBPath != "mealplan.db" {
		t.Errorf("db path = %q, want mealplan.db", cfg.DBPath)
	}
	if cfg.BackupInterval != 24*time.Hour {
		t.Errorf("backup interval = %v, want 24h", cfg.BackupInterval)
	}
	if cfg.BackupRetentionDays != 30 {
		t.Errorf("retention = %d, want 30", cfg.BackupRetentionDays)
	}
	if cfg.GenerateRateLimit != 10 || cfg.GenerateRateWindow != time.Minute {
		t.Errorf("rate limit = %d per %v, want 10 per 1m", cfg.GenerateRateLimit, cfg.GenerateRateWindow)
	}
	if cfg.BackupsConfigured() {
		t.Error("backups should not be configured by default")
	}
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	if _, err := LoadFrom(map[string]string{}); err == nil {
		t.Error("expected error without MEALPLAN_JWT_SECRET")
	}
}

func TestLoadPostgresNeedsURL(t *testing.T) {
	_, err := LoadFrom(map[string]string{
		"MEALPLAN_JWT_SECRET": "s",
		"MEALPLAN_STORE":      "Postgres",
	})
	if err == nil {
		t.Fatal("expected error without database url")
	}

	cfg, err := LoadFrom(map[string]string{
		"MEALPLAN_JWT_SECRET":   "s",
		"MEALPLAN_STORE":        "postgres",
		"MEALPLAN_DATABASE_URL": "postgres://localhost/mealplan",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store != StorePostgres {
		t.Errorf("store = %q, want postgres", cfg.Store)
	}
}

func TestLoadUnknownStore(t *testing.T) {
	_, err := LoadFrom(map[string]string{"MEALPLAN_JWT_SECRET": "s", "MEALPLAN_STORE": "mongo"})
	if err == nil {
		t.Error("expected error for unknown store")
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := LoadFrom(map[string]string{
		"MEALPLAN_JWT_SECRET":            "s",
		"MEALPLAN_PORT":                  "9090",
		"MEALPLAN_ALLOWED_ORIGINS":       "app.example.com,*.example.org",
		"MEALPLAN_S3_BUCKET":             "b",
		"MEALPLAN_S3_ACCESS_KEY":         "a",
		"MEALPLAN_S3_SECRET_KEY":         "k",
		"MEALPLAN_BACKUP_PASSPHRASE":     "p",
		"MEALPLAN_BACKUP_INTERVAL":       "6h",
		"MEALPLAN_BACKUP_RETENTION_DAYS": "7",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("port = %q, want 9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "*.example.org" {
		t.Errorf("origins = %v", cfg.AllowedOrigins)
	}
	if cfg.BackupInterval != 6*time.Hour || cfg.BackupRetentionDays != 7 {
		t.Errorf("backup schedule = %v / %d days", cfg.BackupInterval, cfg.BackupRetentionDays)
	}
	if !cfg.BackupsConfigured() {
		t.Error("backups should be configured")
	}
}

func TestLoadRejectsZeroRateLimit(t *testing.T) {
	_, err := LoadFrom(map[string]string{"MEALPLAN_JWT_SECRET": "s", "MEALPLAN_GENERATE_RATE_LIMIT": "0"})
	if err == nil {
		t.Error("expected error for zero rate limit")
	}
}
