// Package config loads fsview configuration through viper.
package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/viper"
)

// EnvPrefix is the environment variable prefix, e.g. FSVIEW_SERVER_PORT.
const EnvPrefix = "FSVIEW"

// EnvKeyReplacer maps nested keys onto env names: server.port becomes
// SERVER_PORT.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// Config is the full runtime configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Tree     TreeConfig     `mapstructure:"tree"`
	Settings SettingsConfig `mapstructure:"settings"`
	Events   EventsConfig   `mapstructure:"events"`
}

// ServerConfig configures the HTTP transport.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LogConfig configures logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// TreeConfig configures tree projection.
type TreeConfig struct {
	DefaultDepth uint     `mapstructure:"default_depth"`
	Exclude      []string `mapstructure:"exclude"`
}

// SettingsConfig locates the settings document. An empty Dir means the
// user config directory.
type SettingsConfig struct {
	Dir string `mapstructure:"dir"`
}

// EventsConfig configures event fan-out.
type EventsConfig struct {
	Buffer int `mapstructure:"buffer"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           1420,
			AllowedOrigins: []string{"tauri://localhost", "http://localhost:1420"},
		},
		Log: LogConfig{
			Level: "info",
		},
		Tree: TreeConfig{
			DefaultDepth: 3,
			Exclude:      []string{},
		},
		Events: EventsConfig{
			Buffer: 128,
		},
	}
}

// SetDefaults registers Default on v, so that unset keys and env lookups
// resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.development", d.Log.Development)
	v.SetDefault("tree.default_depth", d.Tree.DefaultDepth)
	v.SetDefault("tree.exclude", d.Tree.Exclude)
	v.SetDefault("settings.dir", d.Settings.Dir)
	v.SetDefault("events.buffer", d.Events.Buffer)
}

// Load applies defaults to v and decodes it into a validated Config.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if cfg.Tree.Exclude == nil {
		cfg.Tree.Exclude = []string{}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges and exclude patterns.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}
	if c.Events.Buffer <= 0 {
		errs = append(errs, fmt.Errorf("events.buffer must be positive: %d", c.Events.Buffer))
	}
	for _, pattern := range c.Tree.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			errs = append(errs, fmt.Errorf("tree.exclude: invalid pattern %q", pattern))
		}
	}
	return errors.Join(errs...)
}
