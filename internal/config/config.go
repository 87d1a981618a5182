package config

import (
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	LogLevel       string   `mapstructure:"LOG_LEVEL"`
	Storage        string   `mapstructure:"STORAGE"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthIssuer     string   `mapstructure:"AUTH_ISSUER"`
	AuthAudience   string   `mapstructure:"AUTH_AUDIENCE"`
	AuthSigningKey string   `mapstructure:"AUTH_SIGNING_KEY"`
	DevSubjectID   int64    `mapstructure:"DEV_SUBJECT_ID"`
	ClinicTimezone string   `mapstructure:"CLINIC_TIMEZONE"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	BodyLimit      string   `mapstructure:"BODY_LIMIT"`
}

var keys = []string{
	"PORT", "ENV", "LOG_LEVEL", "STORAGE", "DATABASE_URL", "DB_MAX_CONNS",
	"DB_MIN_CONNS", "AUTH_ISSUER", "AUTH_AUDIENCE", "AUTH_SIGNING_KEY",
	"DEV_SUBJECT_ID", "CLINIC_TIMEZONE", "CORS_ORIGINS", "BODY_LIMIT",
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("STORAGE", StoragePostgres)
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("DEV_SUBJECT_ID", 1)
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("BODY_LIMIT", "64K")

	// Unmarshal only sees env vars that were bound.
	for _, k := range keys {
		_ = v.BindEnv(k)
	}

	// .env is optional.
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.Storage = strings.ToLower(strings.TrimSpace(cfg.Storage))

	if cfg.Storage != StorageMemory && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required unless STORAGE=%s", StorageMemory)
	}

	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location resolves CLINIC_TIMEZONE. Empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.ClinicTimezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ClinicTimezone)
	if err != nil {
		return nil, fmt.Errorf("CLINIC_TIMEZONE %q: %w", c.ClinicTimezone, err)
	}
	return loc, nil
}

// SigningKey decodes AUTH_SIGNING_KEY.
func (c *Config) SigningKey() ([]byte, error) {
	if c.AuthSigningKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.AuthSigningKey)
	if err != nil {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY is not valid hex: %w", err)
	}
	if len(key) < 32 {
		return nil, fmt.Errorf("AUTH_SIGNING_KEY must be at least 32 bytes (64 hex chars), got %d bytes", len(key))
	}
	return key, nil
}

// Validate checks that the configuration is safe to run. Outside development
// a JWT signing key is mandatory, since development mode trusts the
// X-Subject-ID header.
func (c *Config) Validate() error {
	if c.Storage != StoragePostgres && c.Storage != StorageMemory {
		return fmt.Errorf("STORAGE must be %q or %q, got %q", StoragePostgres, StorageMemory, c.Storage)
	}
	if !c.IsDev() && c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY is required when ENV=%q", c.Env)
	}
	if _, err := c.SigningKey(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.IsDev() && c.DevSubjectID <= 0 {
		return fmt.Errorf("DEV_SUBJECT_ID must be positive, got %d", c.DevSubjectID)
	}
	return nil
}
