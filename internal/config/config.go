// Package config loads the storefront settings from an optional config file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the storefront settings.
type Config struct {
	AppPort           string
	DatabaseDriver    string
	DatabaseDSN       string
	AutoMigrate       bool
	LocalStorePath    string
	RabbitMQURL       string
	JWTSecret         string
	AdminEmail        string
	SyncDebounce      time.Duration
	BootstrapTimeout  time.Duration
	NotificationLimit int
}

// setDefaults registers the values used when nothing is configured.
func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=localhost user=postgres password=postgres dbname=bloxstore port=5432 sslmode=disable")
	v.SetDefault("AUTO_MIGRATE", false)
	v.SetDefault("LOCAL_STORE_PATH", "blox_local.db")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("SYNC_DEBOUNCE", 500*time.Millisecond)
	v.SetDefault("BOOTSTRAP_TIMEOUT", 15*time.Second)
	v.SetDefault("NOTIFICATION_LIMIT", 20)
}

// Load reads config.(yaml|json|toml) from the given directories, if present, and
// lets environment variables override it.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	if len(paths) == 0 {
		paths = []string{"."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	v.AutomaticEnv()

	cfg := &Config{
		AppPort:           v.GetString("APP_PORT"),
		DatabaseDriver:    strings.ToLower(v.GetString("DATABASE_DRIVER")),
		DatabaseDSN:       v.GetString("DATABASE_DSN"),
		AutoMigrate:       v.GetBool("AUTO_MIGRATE"),
		LocalStorePath:    v.GetString("LOCAL_STORE_PATH"),
		RabbitMQURL:       v.GetString("RABBITMQ_URL"),
		JWTSecret:         v.GetString("JWT_SECRET"),
		AdminEmail:        v.GetString("ADMIN_EMAIL"),
		SyncDebounce:      v.GetDuration("SYNC_DEBOUNCE"),
		BootstrapTimeout:  v.GetDuration("BOOTSTRAP_TIMEOUT"),
		NotificationLimit: v.GetInt("NOTIFICATION_LIMIT"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no usable fallback.
func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.DatabaseDriver)
	}
	if c.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	if c.SyncDebounce <= 0 {
		return fmt.Errorf("SYNC_DEBOUNCE must be positive, got %s", c.SyncDebounce)
	}
	if c.BootstrapTimeout <= 0 {
		return fmt.Errorf("BOOTSTRAP_TIMEOUT must be positive, got %s", c.BootstrapTimeout)
	}
	return nil
}
