package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultPath is the config file read when no path is given.
const DefaultPath = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. VPA_SERVER__PORT=9000.
const EnvPrefix = "VPA_"

type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Storage    StorageConfig    `koanf:"storage"`
	Revocation RevocationConfig `koanf:"revocation"`
	Log        LogConfig        `koanf:"log"`
}

type ServerConfig struct {
	Port           int    `koanf:"port"`
	RequestTimeout string `koanf:"request_timeout"` // Duration string like "30s"
}

type StorageConfig struct {
	Type   string       `koanf:"type"` // sqlite, postgres, memory
	SQLite SQLiteConfig `koanf:"sqlite"`
	// Database is the generic database configuration for multi-dialect support
	Database DatabaseConfig `koanf:"database"`
}

type SQLiteConfig struct {
	Path string `koanf:"path"`
}

// DatabaseConfig is the generic database configuration supporting multiple dialects.
type DatabaseConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres
	DSN    string `koanf:"dsn"`    // Data source name / connection string
}

// RevocationConfig selects where revocation status comes from.
type RevocationConfig struct {
	Source  string                  `koanf:"source"` // store, webhook
	Webhook RevocationWebhookConfig `koanf:"webhook"`
	Cache   RevocationCacheConfig   `koanf:"cache"`
}

type RevocationWebhookConfig struct {
	URL          string            `koanf:"url"`
	Timeout      string            `koanf:"timeout"`  // Duration string like "5s"
	Retries      int               `koanf:"retries"`  // Extra attempts after the first
	OnError      string            `koanf:"on_error"` // deny (default) or allow
	AllowPrivate bool              `koanf:"allow_private"`
	Headers      map[string]string `koanf:"headers"`
}

// RevocationCacheConfig sizes the cache of revoked statuses. Size 0 disables it.
type RevocationCacheConfig struct {
	Size int    `koanf:"size"`
	TTL  string `koanf:"ttl"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// RequestTimeoutDuration parses server.request_timeout.
func (c ServerConfig) RequestTimeoutDuration() (time.Duration, error) {
	return parseDuration("server.request_timeout", c.RequestTimeout)
}

// TimeoutDuration parses revocation.webhook.timeout.
func (c RevocationWebhookConfig) TimeoutDuration() (time.Duration, error) {
	return parseDuration("revocation.webhook.timeout", c.Timeout)
}

// TTLDuration parses revocation.cache.ttl.
func (c RevocationCacheConfig) TTLDuration() (time.Duration, error) {
	return parseDuration("revocation.cache.ttl", c.TTL)
}

// SlogLevel maps log.level to a slog level. Unknown levels map to info.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads DefaultPath and environment overrides.
func Load() (*Config, error) {
	return LoadFile(DefaultPath)
}

// LoadFile reads the YAML file at path (a missing file is not an error),
// applies environment overrides and fills defaults.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		// File not found is OK, we'll use env vars
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	// Load environment variables (can override file config)
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".", -1)
	}), nil); err != nil {
		return nil, err
	}

	// Default values
	defaults := map[string]any{
		"server.port":                 8080,
		"server.request_timeout":      "30s",
		"storage.type":                "sqlite",
		"storage.sqlite.path":         "./data/vaccine-proof.db",
		"revocation.source":           "store",
		"revocation.webhook.timeout":  "5s",
		"revocation.webhook.on_error": "deny",
		"revocation.cache.ttl":        "10m",
		"log.level":                   "info",
	}
	for key, value := range defaults {
		if !k.Exists(key) {
			k.Set(key, value)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	// Substitute environment variables in secrets
	cfg.Storage.Database.DSN = substituteEnvVars(cfg.Storage.Database.DSN)
	for name, value := range cfg.Revocation.Webhook.Headers {
		cfg.Revocation.Webhook.Headers[name] = substituteEnvVars(value)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects configurations the runtime cannot start with.
func (c *Config) Validate() error {
	switch c.Storage.Type {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.Database.DSN == "" {
			return fmt.Errorf("storage.database.dsn is required for postgres storage")
		}
	default:
		return fmt.Errorf("invalid storage.type %q (must be sqlite, postgres or memory)", c.Storage.Type)
	}

	switch c.Revocation.Source {
	case "store":
	case "webhook":
		if c.Revocation.Webhook.URL == "" {
			return fmt.Errorf("revocation.webhook.url is required for webhook revocation source")
		}
	default:
		return fmt.Errorf("invalid revocation.source %q (must be store or webhook)", c.Revocation.Source)
	}

	switch c.Revocation.Webhook.OnError {
	case "", "deny", "allow":
	default:
		return fmt.Errorf("invalid revocation.webhook.on_error %q (must be allow or deny)", c.Revocation.Webhook.OnError)
	}

	if c.Revocation.Cache.Size < 0 {
		return fmt.Errorf("revocation.cache.size must not be negative")
	}

	for _, d := range []func() (time.Duration, error){
		c.Server.RequestTimeoutDuration,
		c.Revocation.Webhook.TimeoutDuration,
		c.Revocation.Cache.TTLDuration,
	} {
		if _, err := d(); err != nil {
			return err
		}
	}

	return nil
}

func parseDuration(key, value string) (time.Duration, error) {
	if value == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
