package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"task-api/internal/bot"
	"task-api/internal/config"
	"task-api/internal/logger"
	"task-api/internal/manager"
	"task-api/internal/models"
	"task-api/internal/server"
	"task-api/internal/storage"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var cfg *config.Config

	cmd := &cobra.Command{
		Use:   "task-api",
		Short: "In-memory task tracking HTTP API",
		Long: `task-api serves a task collection over HTTP:

  GET    /tasks         list all tasks
  GET    /tasks/{id}    get a task
  POST   /tasks         create a task
  PUT    /tasks/{id}    replace a task (id is taken from the path)
  DELETE /tasks/{id}    delete a task

Tasks live in memory and are lost on exit.

CONFIGURATION:
  Flags override environment variables, which override defaults.
    TASKAPI_ADDR              listen address (default 0.0.0.0:8080)
    TASKAPI_STORAGE           memory|sqlite (default memory)
    TASKAPI_SQLITE_DRIVER     sqlite|sqlite3 (default sqlite)
    TASKAPI_LOG_LEVEL         debug|info|error (default info)
    TASKAPI_SEED              start with the two sample tasks (default true)
    TASKAPI_SHUTDOWN_TIMEOUT  graceful shutdown timeout (default 10s)
    TASKAPI_TELEGRAM_TOKEN    enables the Telegram bot when set`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load(os.Getenv)
			if err != nil {
				return err
			}
			if err := applyFlags(cmd, loaded); err != nil {
				return err
			}
			cfg = loaded
			return cfg.Validate()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("addr", "", "listen address (overrides TASKAPI_ADDR)")
	flags.String("storage", "", "storage backend: memory|sqlite (overrides TASKAPI_STORAGE)")
	flags.String("sqlite-driver", "", "sqlite driver: sqlite|sqlite3 (overrides TASKAPI_SQLITE_DRIVER)")
	flags.String("log-level", "", "log level: debug|info|error (overrides TASKAPI_LOG_LEVEL)")
	flags.Bool("seed", true, "start with sample tasks (overrides TASKAPI_SEED)")
	flags.Duration("shutdown-timeout", 0, "graceful shutdown timeout (overrides TASKAPI_SHUTDOWN_TIMEOUT)")
	flags.String("telegram-token", "", "Telegram bot token (overrides TASKAPI_TELEGRAM_TOKEN)")

	return cmd
}

// applyFlags переносит в конфиг только явно заданные флаги.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("addr") {
		cfg.Addr, err = flags.GetString("addr")
	}
	if err == nil && flags.Changed("storage") {
		cfg.Storage, err = flags.GetString("storage")
	}
	if err == nil && flags.Changed("sqlite-driver") {
		cfg.SQLiteDriver, err = flags.GetString("sqlite-driver")
	}
	if err == nil && flags.Changed("log-level") {
		cfg.LogLevel, err = flags.GetString("log-level")
	}
	if err == nil && flags.Changed("seed") {
		cfg.Seed, err = flags.GetBool("seed")
	}
	if err == nil && flags.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout, err = flags.GetDuration("shutdown-timeout")
	}
	if err == nil && flags.Changed("telegram-token") {
		cfg.TelegramToken, err = flags.GetString("telegram-token")
	}
	return err
}

func run(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	logger.Info(ctx, "Запуск task-api", "storage", cfg.Storage, "addr", cfg.Addr)

	tm, err := newTaskManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer tm.Close()

	var b *bot.Bot
	if cfg.BotEnabled() {
		if b, err = bot.New(cfg.TelegramToken, tm); err != nil {
			return err
		}
	}

	// первая завершившаяся часть останавливает остальные
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	running := 1
	srv := server.New(cfg.Addr, tm, cfg.ShutdownTimeout)
	go func() { errCh <- srv.ListenAndServe(ctx) }()
	if b != nil {
		running++
		go func() { errCh <- b.Run(ctx) }()
	}

	var firstErr error
	for ; running > 0; running-- {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
		cancel()
	}
	return firstErr
}

func newTaskManager(ctx context.Context, cfg *config.Config) (*manager.TaskManager, error) {
	var store manager.Storage
	switch cfg.Storage {
	case config.StorageSQLite:
		s, err := storage.NewSQLiteStorage(ctx, cfg.SQLiteDriver)
		if err != nil {
			return nil, err
		}
		store = s
	default:
		store = storage.NewMemoryStorage()
	}

	tm := manager.NewTaskManagerWithStorage(store)
	if cfg.Seed {
		if err := tm.Seed(ctx, models.DefaultTasks()); err != nil {
			tm.Close()
			return nil, err
		}
	}
	return tm, nil
}
