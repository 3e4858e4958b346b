package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	// App
	AppEnv string // production/development

	// Database
	DatabaseDriver string // sqlite/postgres
	DatabaseDSN    string
	DatabaseLogSQL bool
	RedisURL       string // пусто = redis отключён

	// Auth
	JWTSecret     string
	JWKSURL       string
	JWTIssuer     string
	JWTAudience   string
	JWTExpiration time.Duration

	// HTTP
	APIPort            string
	RateLimitPerMinute int
	CORSOrigins        string
	GraphQLPlayground  bool
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv: getEnv("APP_ENV", "production"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverSQLite)),
		DatabaseDSN:    getEnv("DATABASE_DSN", "db.sqlite"),
		DatabaseLogSQL: getEnvBool("DATABASE_LOG_SQL", false),
		RedisURL:       getEnv("REDIS_URL", ""),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWKSURL:       getEnv("JWKS_URL", ""),
		JWTIssuer:     getEnv("JWT_ISSUER", ""),
		JWTAudience:   getEnv("JWT_AUDIENCE", ""),
		JWTExpiration: time.Duration(getEnvInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,

		APIPort:            getEnv("API_PORT", "3000"),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		CORSOrigins:        getEnv("CORS_ORIGINS", "*"),
	}

	cfg.GraphQLPlayground = getEnvBool("GRAPHQL_PLAYGROUND", cfg.IsDevelopment())

	return cfg
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// Validate warns about risky settings and fails when requests could never be authenticated.
func (c *Config) Validate(log *zap.Logger) error {
	if c.DatabaseDriver != DriverSQLite && c.DatabaseDriver != DriverPostgres {
		return errors.New("DATABASE_DRIVER must be sqlite or postgres")
	}
	if c.JWTSecret == "" && c.JWKSURL == "" {
		return errors.New("either JWT_SECRET or JWKS_URL must be set")
	}
	if c.JWTSecret != "" && len(c.JWTSecret) < 32 {
		log.Warn("JWT_SECRET is shorter than 32 bytes")
	}
	if c.RedisURL == "" {
		log.Warn("REDIS_URL is not set, rate limiting and live activity feed are disabled")
	}
	if c.GraphQLPlayground && !c.IsDevelopment() {
		log.Warn("GraphQL playground is enabled outside development")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
