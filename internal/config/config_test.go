package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_ENV", "DATABASE_DRIVER", "DATABASE_DSN", "REDIS_URL", "JWT_SECRET", "JWKS_URL", "API_PORT", "GRAPHQL_PLAYGROUND", "JWT_EXPIRATION_HOURS"} {
		t.Setenv(k, "")
	}

	cfg := Load()

	assert.Equal(t, "production", cfg.AppEnv)
	assert.Equal(t, DriverSQLite, cfg.DatabaseDriver)
	assert.Equal(t, "db.sqlite", cfg.DatabaseDSN)
	assert.Equal(t, "3000", cfg.APIPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, 100, cfg.RateLimitPerMinute)
	assert.False(t, cfg.GraphQLPlayground)
}

func TestLoad_PlaygroundFollowsEnv(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("GRAPHQL_PLAYGROUND", "")

	cfg := Load()
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.GraphQLPlayground)

	t.Setenv("GRAPHQL_PLAYGROUND", "false")
	assert.False(t, Load().GraphQLPlayground)
}

func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_PER_MINUTE", "lots")
	assert.Equal(t, 100, Load().RateLimitPerMinute)
}

func TestValidate(t *testing.T) {
	log := zap.NewNop()

	cfg := &Config{DatabaseDriver: DriverSQLite}
	require.Error(t, cfg.Validate(log), "no verifier configured")

	cfg.JWTSecret = "short"
	require.NoError(t, cfg.Validate(log))

	cfg.DatabaseDriver = "mysql"
	require.Error(t, cfg.Validate(log))

	cfg = &Config{DatabaseDriver: DriverPostgres, JWKSURL: "https://example.auth0.com/.well-known/jwks.json"}
	require.NoError(t, cfg.Validate(log))
}
