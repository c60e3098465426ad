package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/sessiond/pkg/httpx"
	"github.com/aussiebroadwan/sessiond/pkg/jwtx"
)

// Store drivers accepted by SESSION_STORE_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	SigningSecret     string        // Required: HS256 secret (SESSION_SIGNING_SECRET or SESSION_SIGNING_SECRET_FILE)
	SigningSecretFile string        // Optional: file holding the secret, read when SigningSecret is empty
	AccessTTL         time.Duration // Access token lifetime (default: 15m)
	RenewalTTL        time.Duration // Renewal token lifetime, configured in seconds (default: 7 days)

	StoreDriver  string // sqlite or postgres (default: sqlite)
	DatabaseFile string // SQLite database file (default: sessiond.db)
	DatabaseURL  string // Postgres DSN, required for the postgres driver
	PepperFile   string // Password hashing pepper (default: pepper)

	SeedUsername string // Optional: account created at startup when missing
	SeedPassword     string // Optional: generated when empty
	SeedPasswordFile string // Where a generated seed password is written, mode 0600 (default: seed-password)

	Env                  string        // dev, staging, prod (default: dev)
	LogLevel             string        // debug, info, warn, error (default: info)
	LogFormat            string        // json, text (default: json)
	Port                 int           // HTTP port (default: 4000)
	ShutdownGracePeriod  time.Duration // default: 10s
	HousekeepingInterval time.Duration // 0 disables the sweeper (default: 0)

	RateLimits     httpx.RateLimits
	TrustedProxies string // Comma separated CIDRs allowed to set X-Forwarded-For (default: none)
}

func LoadConfig() Config {
	return Config{
		SigningSecret:     os.Getenv("SESSION_SIGNING_SECRET"),
		SigningSecretFile: os.Getenv("SESSION_SIGNING_SECRET_FILE"),
		AccessTTL:         getEnvDurationOrDefault("SESSION_ACCESS_TTL", jwtx.DefaultAccessTokenTTL),
		RenewalTTL:        time.Duration(getEnvIntOrDefault("SESSION_REFRESH_TTL_SECONDS", int(jwtx.DefaultRefreshTokenTTL/time.Second))) * time.Second,

		StoreDriver:  strings.ToLower(getEnvOrDefault("SESSION_STORE_DRIVER", DriverSQLite)),
		DatabaseFile: getEnvOrDefault("SESSION_DATABASE_FILE", "sessiond.db"),
		DatabaseURL:  os.Getenv("SESSION_DATABASE_URL"),
		PepperFile:   getEnvOrDefault("SESSION_PEPPER_FILE", "pepper"),

		SeedUsername: strings.TrimSpace(os.Getenv("SESSION_SEED_USERNAME")),
		SeedPassword:     os.Getenv("SESSION_SEED_PASSWORD"),
		SeedPasswordFile: getEnvOrDefault("SESSION_SEED_PASSWORD_FILE", "seed-password"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 4000),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 0),

		RateLimits:     httpx.RateLimitsFromEnv(),
		TrustedProxies: os.Getenv("RATELIMIT_TRUSTED_PROXIES"),
	}
}

// Validate resolves the signing secret file and trusted proxy list and checks
// required settings.
func (c *Config) Validate() error {
	if c.SigningSecret == "" && c.SigningSecretFile != "" {
		raw, err := os.ReadFile(c.SigningSecretFile)
		if err != nil {
			return fmt.Errorf("read signing secret file: %w", err)
		}
		c.SigningSecret = strings.TrimSpace(string(raw))
	}

	var errs []error
	if c.SigningSecret == "" {
		errs = append(errs, errors.New("SESSION_SIGNING_SECRET is required"))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("SESSION_ACCESS_TTL must be positive"))
	}
	if c.RenewalTTL <= 0 {
		errs = append(errs, errors.New("SESSION_REFRESH_TTL_SECONDS must be positive"))
	}
	switch c.StoreDriver {
	case DriverSQLite:
		switch {
		case strings.TrimSpace(c.DatabaseFile) == "":
			errs = append(errs, errors.New("SESSION_DATABASE_FILE is required for the sqlite driver"))
		case isMemoryDatabase(c.DatabaseFile):
			errs = append(errs, fmt.Errorf("SESSION_DATABASE_FILE %q is an in-memory database; the store must be durable", c.DatabaseFile))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("SESSION_DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE_DRIVER %q", c.StoreDriver))
	}
	if c.SeedUsername != "" && c.SeedPassword == "" && strings.TrimSpace(c.SeedPasswordFile) == "" {
		errs = append(errs, errors.New("SESSION_SEED_PASSWORD_FILE is required when SESSION_SEED_PASSWORD is empty"))
	}
	if proxies, err := httpx.ParseTrustedProxies(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("RATELIMIT_TRUSTED_PROXIES: %w", err))
	} else {
		c.RateLimits.TrustedProxies = proxies
	}
	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT %d", c.Port))
	}
	return errors.Join(errs...)
}

// isMemoryDatabase reports whether path names an SQLite database that lives
// only as long as its connection.
func isMemoryDatabase(path string) bool {
	p := strings.ToLower(strings.TrimSpace(path))
	return strings.Contains(p, ":memory:") || strings.Contains(p, "mode=memory")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are minutes.
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
