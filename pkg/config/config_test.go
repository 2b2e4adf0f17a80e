package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("DATABASE_DRIVER", "")
	t.Setenv("VITA_HORIZON_DAYS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.DatabaseDriver)
	assert.Equal(t, 90, cfg.HorizonDays)
	assert.NotEmpty(t, cfg.SQLitePath)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://localhost/vita")
	t.Setenv("VITA_HORIZON_DAYS", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.AppEnv)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, "postgres", cfg.DatabaseDriver)
	assert.Equal(t, "postgres://localhost/vita", cfg.PostgresURL)
	assert.Equal(t, 30, cfg.HorizonDays)
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("VITA_HORIZON_DAYS", "not a number")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("VITA_HORIZON_DAYS", "0")
	_, err = Load()
	assert.Error(t, err)

	t.Setenv("VITA_HORIZON_DAYS", "14")
	t.Setenv("DATABASE_DRIVER", "mongodb")
	_, err = Load()
	assert.Error(t, err)
}
