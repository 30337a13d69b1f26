package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppPort string
	AppURL  string

	DBDriver      string
	MySQLHost     string
	MySQLPort     string
	MySQLDB       string
	MySQLUser     string
	MySQLPass     string
	DatabaseURL   string
	DBAutoMigrate bool

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	JWTSecret      string
	SessionTTLMins int

	NATSURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPass     string
	SMTPFrom     string
	SupportEmail string

	StorageDir       string
	StoragePublicURL string

	GeocoderURL         string
	GeocoderUserAgent   string
	GeocodeCacheTTLSecs int

	LogLevel string
	LogDev   bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort: getenv("APP_PORT", "8080"),
		AppURL:  strings.TrimRight(getenv("APP_URL", "http://localhost:8080"), "/"),

		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "mysql")),
		MySQLHost:     getenv("MYSQL_HOST", "mysql"),
		MySQLPort:     getenv("MYSQL_PORT", "3306"),
		MySQLDB:       getenv("MYSQL_DB", "foodrescue"),
		MySQLUser:     getenv("MYSQL_USER", "foodrescue"),
		MySQLPass:     getenv("MYSQL_PASS", "foodrescue"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		DBAutoMigrate: getbool("DB_AUTO_MIGRATE", true),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		JWTSecret:      os.Getenv("JWT_SECRET"),
		SessionTTLMins: getint("SESSION_TTL_MINUTES", 60*24),

		NATSURL: os.Getenv("NATS_URL"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getint("SMTP_PORT", 587),
		SMTPUser:     os.Getenv("SMTP_USER"),
		SMTPPass:     os.Getenv("SMTP_PASS"),
		SMTPFrom:     getenv("SMTP_FROM", "no-reply@foodrescue.local"),
		SupportEmail: getenv("SUPPORT_EMAIL", "support@foodrescue.local"),

		StorageDir:       getenv("STORAGE_DIR", "./data/storage"),
		StoragePublicURL: strings.TrimRight(getenv("STORAGE_PUBLIC_URL", "http://localhost:8080/storage"), "/"),

		GeocoderURL:         strings.TrimRight(getenv("GEOCODER_URL", "https://nominatim.openstreetmap.org"), "/"),
		GeocoderUserAgent:   getenv("GEOCODER_USER_AGENT", "foodrescue-backend/1.0"),
		GeocodeCacheTTLSecs: getint("GEOCODE_CACHE_TTL_SECONDS", 7*24*3600),

		LogLevel: getenv("LOG_LEVEL", "info"),
		LogDev:   getbool("LOG_DEV", false),
	}
	return c
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return errors.New("missing DATABASE_URL for postgres driver")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if len(c.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 bytes")
	}
	if c.SessionTTLMins <= 0 {
		return errors.New("SESSION_TTL_MINUTES must be positive")
	}
	if c.SMTPHost != "" && c.SMTPPort <= 0 {
		return fmt.Errorf("invalid SMTP_PORT %d", c.SMTPPort)
	}
	return nil
}

func (c *Config) SessionTTL() time.Duration { return time.Duration(c.SessionTTLMins) * time.Minute }

func (c *Config) IdempTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) GeocodeCacheTTL() time.Duration {
	return time.Duration(c.GeocodeCacheTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "postgres" {
		return c.DatabaseURL
	}
	return c.MySQLDSN()
}
