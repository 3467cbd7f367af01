// Package config provides the configuration schema and loader for the bot.
package config

import (
	"fmt"
	"time"

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

// Duration wraps [time.Duration] with YAML support for strings like "6s".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns d as a [time.Duration].
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config is the root configuration structure, typically loaded from a YAML
// file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Discord   DiscordConfig   `yaml:"discord"`
	Store     StoreConfig     `yaml:"store"`
	Translate TranslateConfig `yaml:"translate"`
	Cache     CacheConfig     `yaml:"cache"`
	Teach     TeachConfig     `yaml:"teach"`
	KeepAlive KeepAliveConfig `yaml:"keepalive"`
}

// ServerConfig holds network and logging settings for the HTTP sidecar
// serving /healthz, /readyz, and /metrics.
type ServerConfig struct {
	// ListenAddr is the TCP address the server listens on (e.g., ":8080").
	ListenAddr string `yaml:"listen_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// DiscordConfig holds the chat transport settings.
type DiscordConfig struct {
	// Token is the Discord bot token.
	Token string `yaml:"token"`

	// GuildID optionally restricts the bot to one guild.
	GuildID string `yaml:"guild_id"`
}

// StoreConfig holds the persistence settings.
type StoreConfig struct {
	// PostgresDSN is the database connection string. Empty runs the bot on
	// an in-memory store.
	PostgresDSN string `yaml:"postgres_dsn"`

	// ConnectTimeout bounds the startup connection attempt.
	ConnectTimeout Duration `yaml:"connect_timeout"`
}

// TranslateConfig holds the external translation settings.
type TranslateConfig struct {
	// Strategy selects how backends are consulted: "race" or "sequential".
	Strategy string `yaml:"strategy"`

	// Timeout bounds a single fetch across all backends.
	Timeout Duration `yaml:"timeout"`

	// Backends lists the external translation sources in priority order.
	Backends []BackendEntry `yaml:"backends"`
}

// BackendEntry configures one translation backend.
type BackendEntry struct {
	// Type selects the backend implementation: "openai", "anyllm", or
	// "rest".
	Type string `yaml:"type"`

	// Provider is the any-llm provider name for anyllm backends
	// (openai, anthropic, gemini, ollama).
	Provider string `yaml:"provider"`

	// APIKey is the authentication key, where the backend needs one.
	APIKey string `yaml:"api_key"`

	// Model selects a specific model for LLM-based backends.
	Model string `yaml:"model"`

	// BaseURL overrides the backend's default API endpoint. For rest
	// backends it is the full endpoint URL and required.
	BaseURL string `yaml:"base_url"`

	// LangPair is the language pair string for rest backends, e.g. "en|tcy".
	LangPair string `yaml:"lang_pair"`
}

// CacheConfig holds the cache TTL settings.
type CacheConfig struct {
	// TaughtTTL is the taught-dictionary snapshot lifetime.
	TaughtTTL Duration `yaml:"taught_ttl"`

	// APIMaxAge is the expiry window for persisted machine translations.
	APIMaxAge Duration `yaml:"api_max_age"`
}

// TeachConfig holds the contribution workflow settings.
type TeachConfig struct {
	// StateTTL is how long a teaching or correction conversation stays
	// open.
	StateTTL Duration `yaml:"state_ttl"`
}

// KeepAliveConfig holds the self-ping settings for free-tier hosts that
// idle out quiet processes.
type KeepAliveConfig struct {
	// URL is the address to ping. Empty disables the pinger.
	URL string `yaml:"url"`

	// Interval is the time between pings.
	Interval Duration `yaml:"interval"`
}
