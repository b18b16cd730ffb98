package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "skillswap.events", cfg.AMQPExchange)
	assert.Equal(t, "development", cfg.Environment)
	assert.Empty(t, cfg.OTLPEndpoint)
	assert.NotEmpty(t, cfg.DatabaseDSN)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_DSN", "postgres://app@db:5432/skillswap")
	t.Setenv("JWT_SECRET", "prod-secret")
	t.Setenv("REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "postgres://app@db:5432/skillswap", cfg.DatabaseDSN)
	assert.Equal(t, "prod-secret", cfg.JWTSecret)
	assert.Equal(t, "redis:6379", cfg.RedisAddr)
}
