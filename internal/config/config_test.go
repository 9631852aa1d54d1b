package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(env(nil))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.False(t, cfg.BotEnabled())
}

func TestLoadFromEnv(t *testing.T) {
	cfg, err := Load(env(map[string]string{
		"TASKAPI_ADDR":             ":9090",
		"TASKAPI_STORAGE":          "SQLite",
		"TASKAPI_SQLITE_DRIVER":    "sqlite3",
		"TASKAPI_LOG_LEVEL":        "debug",
		"TASKAPI_SEED":             "false",
		"TASKAPI_SHUTDOWN_TIMEOUT": "3s",
		"TASKAPI_TELEGRAM_TOKEN":   "123:abc",
	}))
	require.NoError(t, err)

	assert.Equal(t, &Config{
		Addr:            ":9090",
		Storage:         StorageSQLite,
		SQLiteDriver:    "sqlite3",
		LogLevel:        "debug",
		Seed:            false,
		ShutdownTimeout: 3 * time.Second,
		TelegramToken:   "123:abc",
	}, cfg)
	assert.True(t, cfg.BotEnabled())
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"bad seed", map[string]string{"TASKAPI_SEED": "maybe"}},
		{"bad timeout", map[string]string{"TASKAPI_SHUTDOWN_TIMEOUT": "soon"}},
		{"negative timeout", map[string]string{"TASKAPI_SHUTDOWN_TIMEOUT": "-1s"}},
		{"unknown storage", map[string]string{"TASKAPI_STORAGE": "postgres"}},
		{"unknown driver", map[string]string{"TASKAPI_SQLITE_DRIVER": "libsql"}},
		{"unknown log level", map[string]string{"TASKAPI_LOG_LEVEL": "trace"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(env(tt.vars))
			assert.Error(t, err)
		})
	}
}

func TestValidateEmptyAddr(t *testing.T) {
	cfg := Default()
	cfg.Addr = ""
	assert.Error(t, cfg.Validate())
}
