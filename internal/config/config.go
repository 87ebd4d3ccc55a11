// Package config provides the configuration schema and loader for the
// paldex bot.
//
// Configuration comes from an optional YAML file plus two environment
// variables, DISCORD_TOKEN and PAL_API_URL, which override their file
// counterparts. The bot refuses to start when either the token or the API
// base URL is missing after merging.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Discord DiscordConfig `yaml:"discord"`
	Paldeck PaldeckConfig `yaml:"paldeck"`
}

// ServerConfig holds logging and observability settings.
type ServerConfig struct {
	// ListenAddr is the TCP address for the /metrics, /healthz, and /readyz
	// endpoints (e.g., ":9090"). Empty disables the HTTP server.
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity. Defaults to "info".
	LogLevel LogLevel `yaml:"log_level"`
}

// DiscordConfig holds Discord gateway settings.
type DiscordConfig struct {
	// Token is the Discord bot token. Overridden by $DISCORD_TOKEN.
	Token string `yaml:"token"`

	// GuildID scopes slash command registration to one guild. Empty
	// registers the commands globally.
	GuildID string `yaml:"guild_id"`
}

// PaldeckConfig holds upstream API settings.
type PaldeckConfig struct {
	// BaseURL is the Paldeck API endpoint. Overridden by $PAL_API_URL.
	BaseURL string `yaml:"base_url"`

	// PageSize is the listing page size requested at startup. Defaults
	// to 200, the upstream maximum.
	PageSize int `yaml:"page_size"`
}

// Default returns a Config populated with default values.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			LogLevel: LogInfo,
		},
		Paldeck: PaldeckConfig{
			PageSize: 200,
		},
	}
}

// Load reads the YAML configuration file at path over the defaults.
// It does not validate; call [ApplyEnv] and [Validate] after merging.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r over the defaults. Useful in
// tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays the two environment settings onto cfg. Environment
// values win over file values when set.
func ApplyEnv(cfg *Config) {
	if token := os.Getenv("DISCORD_TOKEN"); token != "" {
		cfg.Discord.Token = token
	}
	if apiURL := os.Getenv("PAL_API_URL"); apiURL != "" {
		cfg.Paldeck.BaseURL = apiURL
	}
}

// Validate checks that cfg contains a coherent set of values. It returns a
// joined error listing all failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Discord.Token == "" {
		errs = append(errs, errors.New("discord.token is required (or set $DISCORD_TOKEN)"))
	}

	switch {
	case cfg.Paldeck.BaseURL == "":
		errs = append(errs, errors.New("paldeck.base_url is required (or set $PAL_API_URL)"))
	default:
		if u, err := url.Parse(cfg.Paldeck.BaseURL); err != nil || !u.IsAbs() {
			errs = append(errs, fmt.Errorf("paldeck.base_url %q is not an absolute URL", cfg.Paldeck.BaseURL))
		}
	}

	if cfg.Paldeck.PageSize < 1 || cfg.Paldeck.PageSize > 200 {
		errs = append(errs, fmt.Errorf("paldeck.page_size %d is out of range [1, 200]", cfg.Paldeck.PageSize))
	}

	return errors.Join(errs...)
}
