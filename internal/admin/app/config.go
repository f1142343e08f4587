package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/blogadmin/internal/admin/service"
	"github.com/aussiebroadwan/blogadmin/pkg/cryptox"
	"github.com/aussiebroadwan/blogadmin/pkg/httpx"
	"github.com/aussiebroadwan/blogadmin/pkg/jwtx"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

type Config struct {
	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	HTTPAddr  string // Listen address (default: :8080)
	StaticDir string // Optional: directory served for unrouted GET requests

	TrustedProxies []string // Optional: proxies whose X-Forwarded-For is believed (CIDRs or addresses)

	DBDriver     string // Database driver (sqlite, mysql) (default: sqlite)
	DatabaseFile string // SQLite database file (default: blogadmin.db)
	DatabaseDSN  string // MySQL DSN, e.g. user:pw@tcp(host:3306)/blog

	Issuer        string        // Issuer claim (default: blogadmin)
	Algorithms    []string      // Signing algorithms (default: HS512,EdDSA)
	JWTSecret     string        // Optional: pins the HS512 key; ephemeral when empty
	EdDSAKeyFile  string        // Optional: PEM file holding the EdDSA key, created on first start
	NumKeys       int           // Ephemeral keys per algorithm (default: 2)
	AccessTTL     time.Duration // Token lifetime (default: 7 days)
	RefreshWindow time.Duration // Tokens younger than this are not reissued (default: 30m)

	BcryptCost    int    // bcrypt cost (default: 10)
	AdminUsername string // First admin account (default: admin)
	AdminPassword string // Optional: generated and logged once when empty
	PermitAll     bool   // Open every path without authentication (default: false)

	LoginLogRetention    time.Duration // Login logs older than this are deleted (default: 90 days)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

// LoadConfig reads the environment, after loading ENV_FILE (default .env)
// when it exists. Variables already set win over the file.
func LoadConfig() (Config, error) {
	if err := loadEnvFile(getEnvOrDefault("ENV_FILE", ".env")); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Env:       getEnvOrDefault("ENV", "dev"),
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		HTTPAddr:  getEnvOrDefault("HTTP_ADDR", ":8080"),
		StaticDir: os.Getenv("STATIC_DIR"),

		TrustedProxies: splitList(os.Getenv("TRUSTED_PROXIES")),

		DBDriver:     strings.ToLower(getEnvOrDefault("DB_DRIVER", DriverSQLite)),
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "blogadmin.db"),
		DatabaseDSN:  os.Getenv("DB_DSN"),

		Issuer:        getEnvOrDefault("JWT_ISSUER", "blogadmin"),
		Algorithms:    splitList(getEnvOrDefault("JWT_ALGORITHMS", jwtx.AlgorithmHS512+","+jwtx.AlgorithmEdDSA)),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		EdDSAKeyFile:  os.Getenv("JWT_EDDSA_KEY_FILE"),
		NumKeys:       getEnvIntOrDefault("JWT_NUM_KEYS", 2),
		AccessTTL:     getEnvDurationOrDefault("JWT_EXPIRATION", jwtx.DefaultAccessTokenTTL),
		RefreshWindow: getEnvDurationOrDefault("JWT_REFRESH_WINDOW", jwtx.DefaultRefreshWindow),

		BcryptCost:    getEnvIntOrDefault("BCRYPT_COST", cryptox.DefaultBcryptCost),
		AdminUsername: getEnvOrDefault("ADMIN_USERNAME", "admin"),
		AdminPassword: os.Getenv("ADMIN_PASSWORD"),
		PermitAll:     getEnvBoolOrDefault("SECURITY_PERMIT_ALL", false),

		LoginLogRetention:    getEnvDurationOrDefault("LOGIN_LOG_RETENTION", service.DefaultLoginLogRetention),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot start with.
func (c Config) Validate() error {
	var errs []error

	switch c.DBDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			errs = append(errs, errors.New("DATABASE_FILE must not be empty"))
		}
	case DriverMySQL:
		if c.DatabaseDSN == "" {
			errs = append(errs, errors.New("DB_DSN is required for the mysql driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver))
	}

	for _, alg := range c.Algorithms {
		if alg != jwtx.AlgorithmHS512 && alg != jwtx.AlgorithmEdDSA {
			errs = append(errs, fmt.Errorf("unsupported JWT algorithm %q", alg))
		}
	}
	if len(c.Algorithms) == 0 {
		errs = append(errs, errors.New("JWT_ALGORITHMS must name at least one algorithm"))
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < jwtx.MinHMACSecretSize {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", jwtx.MinHMACSecretSize))
	}
	if c.AccessTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION must be positive"))
	}
	if c.RefreshWindow < 0 || c.RefreshWindow >= c.AccessTTL {
		errs = append(errs, errors.New("JWT_REFRESH_WINDOW must be shorter than JWT_EXPIRATION"))
	}
	if _, err := httpx.NewClientIPResolver(c.TrustedProxies); err != nil {
		errs = append(errs, fmt.Errorf("TRUSTED_PROXIES: %w", err))
	}
	if c.HousekeepingInterval <= 0 {
		errs = append(errs, errors.New("HOUSEKEEPING_INTERVAL must be positive"))
	}

	return errors.Join(errs...)
}

func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
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

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Plain integers are seconds, as in jwt.expiration=604800
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
