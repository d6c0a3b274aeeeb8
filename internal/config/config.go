package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Session   SessionConfig
	Swag      SwagConfig
	Dashboard DashboardConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string

	// BaseURL is the externally visible URL, used to build the swag-claim
	// links embedded in QR codes.
	BaseURL string
}

type DatabaseConfig struct {
	Driver   string // "postgres" or "sqlite3"
	URL      string // Full database URL (postgres) or file path (sqlite3)
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

type SessionConfig struct {
	Secret string
}

type SwagConfig struct {
	// SigningKey keys the HMAC over claim tokens. Tokens become invalid
	// when it rotates.
	SigningKey string

	// TokenTTL bounds how long an issued claim token stays valid.
	TokenTTL time.Duration

	// ExemptTypes lists ticket types that carry no swag entitlement.
	ExemptTypes []string
}

type DashboardConfig struct {
	// SuppressionWindow is how long a locally initiated staff edit mutes
	// change-feed notifications for that attendee.
	SuppressionWindow time.Duration
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port:    getEnv("PORT", "8080"),
			Host:    getEnv("HOST", "localhost"),
			Env:     getEnv("ENV", "development"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		Database: parseDatabaseConfig(),
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "eventflow:checkins"),
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Swag: SwagConfig{
			SigningKey:  getEnv("SWAG_SIGNING_KEY", "dev-swag-signing-key-change-me"),
			TokenTTL:    getEnvAsDuration("SWAG_TOKEN_TTL", 12*time.Hour),
			ExemptTypes: getEnvAsList("SWAG_EXEMPT_TYPES", []string{"Day Pass"}),
		},
		Dashboard: DashboardConfig{
			SuppressionWindow: getEnvAsDuration("DASHBOARD_SUPPRESSION_WINDOW", 30*time.Second),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	driver := getEnv("DB_DRIVER", "postgres")

	if driver == "sqlite3" {
		return DatabaseConfig{
			Driver: "sqlite3",
			URL:    getEnv("DATABASE_URL", "eventflow.db"),
		}
	}

	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Driver:   "postgres",
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "eventflow"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		Driver: "postgres",
		URL:    databaseURL,
	}

	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if u.Port() != "" {
		config.Port, _ = strconv.Atoi(u.Port())
	} else {
		config.Port = 5432 // Default PostgreSQL port
	}

	if u.User != nil {
		config.User = u.User.Username()
		config.Password, _ = u.User.Password()
	}

	// Remove leading slash from path to get database name
	config.DBName = strings.TrimPrefix(u.Path, "/")

	query := u.Query()
	config.SSLMode = query.Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
