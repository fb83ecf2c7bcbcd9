package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port           string
	GinMode        string
	DBDriver       string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	JWTSecret      string
	JWTExpiryHours int
	SessionSecret  string
	RedisHost      string
	RedisPort      string
	CORSOrigins    []string
	UploadDir      string
	PublicBaseURL  string
	NATSURL        string
	OpenAIAPIKey   string
	ClerkJWTKey    string
	ClerkIssuer    string
	OverdueCron    string
	LogLevel       string
	LogFormat      string
	SnowflakeNode  int64
}

// Load reads configuration from the environment, after merging a .env file when present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using process environment")
	}

	return &Config{
		Port:           getEnv("PORT", "8080"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		DBDriver:       getEnv("DB_DRIVER", "mysql"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "3306"),
		DBUser:         getEnv("DB_USER", "agencyuser"),
		DBPassword:     getEnv("DB_PASSWORD", "agencypassword"),
		DBName:         getEnv("DB_NAME", "agency_hub"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "agency_hub.db"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		SessionSecret:  getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		RedisHost:      getEnv("REDIS_HOST", ""),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		NATSURL:        getEnv("NATS_URL", ""),
		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		ClerkJWTKey:    strings.ReplaceAll(getEnv("CLERK_JWT_KEY", ""), `\n`, "\n"),
		ClerkIssuer:    getEnv("CLERK_ISSUER", ""),
		OverdueCron:    getEnv("OVERDUE_CRON", "0 * * * *"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", ""),
		SnowflakeNode:  int64(getEnvInt("SNOWFLAKE_NODE", 1)),
	}
}

const devJWTSecret = "dev-jwt-secret-change-me"

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set in release mode")

// Validate rejects settings the server cannot start with. Outside release mode a
// missing JWT secret falls back to a development value.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		if c.IsRelease() {
			return ErrMissingJWTSecret
		}
		log.Warn().Msg("JWT_SECRET not set, using development secret")
		c.JWTSecret = devJWTSecret
	}
	if c.SnowflakeNode < 0 || c.SnowflakeNode > 1023 {
		return errors.New("SNOWFLAKE_NODE must be between 0 and 1023")
	}
	return nil
}

// IsRelease reports whether gin runs in release mode.
func (c *Config) IsRelease() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Warn().Str("key", key).Str("value", value).Msg("invalid integer in environment, using default")
		return defaultValue
	}
	return n
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
