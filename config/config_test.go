package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"casamattos/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("JWT_SECRET_KEY", "segredo")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, config.StorageMemory, cfg.StorageDriver)
	assert.Equal(t, 5*time.Second, cfg.DBTimeout)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 100, cfg.RateLimitMaxRequests)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://u:p@localhost/casamattos?sslmode=disable")
	t.Setenv("JWT_SECRET_KEY", "segredo")
	t.Setenv("DB_TIMEOUT_SEC", "2")
	t.Setenv("RATE_LIMIT_PERIOD_MIN", "3")
	t.Setenv("ADMIN_LOGIN", "chefe")

	cfg, err := config.LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, config.StoragePostgres, cfg.StorageDriver)
	assert.Equal(t, 2*time.Second, cfg.DBTimeout)
	assert.Equal(t, 3*time.Minute, cfg.RateLimitPeriod)
	assert.Equal(t, "chefe", cfg.AdminLogin)
}

func TestLoadConfig_Erros(t *testing.T) {
	casos := map[string]map[string]string{
		"postgres sem url":   {"STORAGE_DRIVER": "postgres", "DATABASE_URL": "", "JWT_SECRET_KEY": "s"},
		"driver invalido":    {"STORAGE_DRIVER": "sqlite", "JWT_SECRET_KEY": "s"},
		"sem segredo":        {"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": ""},
		"timeout nao numero": {"STORAGE_DRIVER": "memory", "JWT_SECRET_KEY": "s", "DB_TIMEOUT_SEC": "cinco"},
	}

	for nome, env := range casos {
		t.Run(nome, func(t *testing.T) {
			for k, v := range env {
				t.Setenv(k, v)
			}
			_, err := config.LoadConfig()
			assert.Error(t, err)
		})
	}
}
