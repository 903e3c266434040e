// Package config loads dynform settings from defaults, an optional config
// file and DYNFORM_* environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// DYNFORM_SERVER_ADDR.
const EnvPrefix = "DYNFORM"

// Config represents the complete dynform configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Notify  NotifyConfig  `mapstructure:"notify"`
	Logging LoggingConfig `mapstructure:"logging"`
	Schemas SchemasConfig `mapstructure:"schemas"`
	Theme   ThemeConfig   `mapstructure:"theme"`
}

// ServerConfig controls the HTTP front end.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	// SessionTTL drops browser sessions idle for longer than this; zero keeps
	// them for the life of the process.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// NotifyConfig controls the notification banner.
type NotifyConfig struct {
	DismissAfter time.Duration `mapstructure:"dismiss_after"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SchemasConfig points at form schema documents. An empty Dir uses the
// built-in forms.
type SchemasConfig struct {
	Dir string `mapstructure:"dir"`
}

// ThemeConfig selects the page theme.
type ThemeConfig struct {
	Name    string `mapstructure:"name"`
	Variant string `mapstructure:"variant"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			SessionTTL:      0,
		},
		Notify: NotifyConfig{
			DismissAfter: 3 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Theme: ThemeConfig{
			Name: "dynform",
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("server.addr", defaults.Server.Addr)
	v.SetDefault("server.read_timeout", defaults.Server.ReadTimeout)
	v.SetDefault("server.write_timeout", defaults.Server.WriteTimeout)
	v.SetDefault("server.shutdown_timeout", defaults.Server.ShutdownTimeout)
	v.SetDefault("server.session_ttl", defaults.Server.SessionTTL)

	v.SetDefault("notify.dismiss_after", defaults.Notify.DismissAfter)

	v.SetDefault("logging.level", defaults.Logging.Level)
	v.SetDefault("logging.format", defaults.Logging.Format)

	v.SetDefault("schemas.dir", defaults.Schemas.Dir)

	v.SetDefault("theme.name", defaults.Theme.Name)
	v.SetDefault("theme.variant", defaults.Theme.Variant)
}

// New returns a viper instance with defaults and environment overrides
// registered. When file is non-empty it is read as the config file.
func New(file string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file == "" {
		return v, nil
	}
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", file, err)
	}
	return v, nil
}

// Load reads the configuration from v into a Config struct and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return &cfg, nil
}
