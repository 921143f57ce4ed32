package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config captures the runtime configuration for the application.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Session  SessionConfig  `toml:"session"`
	Media    MediaConfig    `toml:"media"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string        `toml:"url"`
	MaxIdleConns    int           `toml:"max_idle_conns"`
	MaxOpenConns    int           `toml:"max_open_conns"`
	ConnMaxLifetime time.Duration `toml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `toml:"conn_max_idle_time"`
}

// SessionConfig controls the authentication session cookie.
type SessionConfig struct {
	Lifetime     time.Duration `toml:"lifetime"`
	CookieName   string        `toml:"cookie_name"`
	CookieDomain string        `toml:"cookie_domain"`
	CookieSecure bool          `toml:"cookie_secure"`
}

// MediaConfig locates uploaded recipe images on disk.
type MediaConfig struct {
	Root string `toml:"root"`
}

// LogConfig selects the minimum logging level.
type LogConfig struct {
	Level string `toml:"level"`
}

// Load builds a Config value from an optional TOML file pointed at by
// CONFIG_FILE, with environment variables taking precedence over file values.
func Load() (Config, error) {
	cfg := Config{}

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return Config{}, err
		}
		cfg = loaded
	}

	cfg.Server.Addr = firstNonEmpty(
		os.Getenv("SERVER_ADDR"),
		os.Getenv("ADDR"),
		cfg.Server.Addr,
		":8080",
	)

	cfg.Database.URL = firstNonEmpty(
		os.Getenv("DATABASE_URL"),
		os.Getenv("DB_URL"),
		cfg.Database.URL,
	)
	cfg.Database.MaxIdleConns = parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), cfg.Database.MaxIdleConns)
	cfg.Database.MaxOpenConns = parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), cfg.Database.MaxOpenConns)
	cfg.Database.ConnMaxLifetime = parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), cfg.Database.ConnMaxLifetime)
	cfg.Database.ConnMaxIdleTime = parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), cfg.Database.ConnMaxIdleTime)

	if cfg.Session.Lifetime <= 0 {
		cfg.Session.Lifetime = 12 * time.Hour
	}
	cfg.Session.Lifetime = parseDurationWithDefault(os.Getenv("SESSION_LIFETIME"), cfg.Session.Lifetime)
	cfg.Session.CookieName = firstNonEmpty(
		os.Getenv("SESSION_COOKIE_NAME"),
		cfg.Session.CookieName,
		"foodgram_session",
	)
	cfg.Session.CookieDomain = firstNonEmpty(os.Getenv("SESSION_COOKIE_DOMAIN"), cfg.Session.CookieDomain)
	cfg.Session.CookieSecure = parseBoolWithDefault(os.Getenv("SESSION_COOKIE_SECURE"), cfg.Session.CookieSecure)

	cfg.Media.Root = firstNonEmpty(
		os.Getenv("MEDIA_ROOT"),
		cfg.Media.Root,
		"media",
	)

	cfg.Log.Level = firstNonEmpty(os.Getenv("LOG_LEVEL"), cfg.Log.Level, "info")

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

func loadFile(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := toml.NewDecoder(file).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config file: %w", err)
	}
	return cfg, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.Atoi(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := time.ParseDuration(trimmed)
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return def
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return def
	}
	return parsed
}
