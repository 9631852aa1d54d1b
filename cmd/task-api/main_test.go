package main

import (
	"context"
	"testing"

	"task-api/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"bad storage flag", []string{"--storage", "postgres"}, nil},
		{"bad log level flag", []string{"--log-level", "loud"}, nil},
		{"bad env", nil, map[string]string{"TASKAPI_SEED": "perhaps"}},
		{"bad env with valid flag", []string{"--seed=false"}, map[string]string{"TASKAPI_SHUTDOWN_TIMEOUT": "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cmd := newRootCommand()
			cmd.SetArgs(tt.args)
			assert.Error(t, cmd.Execute())
		})
	}
}

func TestApplyFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--addr", ":9999", "--storage", "sqlite", "--seed=false"}))

	cfg := config.Default()
	require.NoError(t, applyFlags(cmd, cfg))

	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, config.StorageSQLite, cfg.Storage)
	assert.False(t, cfg.Seed)
	assert.Equal(t, config.Default().ShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, config.Default().LogLevel, cfg.LogLevel)
}

func TestNewTaskManager(t *testing.T) {
	for _, backend := range []string{config.StorageMemory, config.StorageSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()

			cfg := config.Default()
			cfg.Storage = backend
			tm, err := newTaskManager(ctx, cfg)
			require.NoError(t, err)
			defer tm.Close()

			tasks, err := tm.ListTasks(ctx)
			require.NoError(t, err)
			assert.Len(t, tasks, 2)

			cfg.Seed = false
			empty, err := newTaskManager(ctx, cfg)
			require.NoError(t, err)
			defer empty.Close()

			tasks, err = empty.ListTasks(ctx)
			require.NoError(t, err)
			assert.Empty(t, tasks)
		})
	}
}
