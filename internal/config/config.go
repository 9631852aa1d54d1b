package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"task-api/internal/logger"
)

const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config собирает все настройки сервиса. Источник - переменные
// окружения TASKAPI_*, флаги командной строки их перекрывают.
type Config struct {
	Addr            string
	Storage         string
	SQLiteDriver    string
	LogLevel        string
	Seed            bool
	ShutdownTimeout time.Duration
	TelegramToken   string
}

func Default() *Config {
	return &Config{
		Addr:            "0.0.0.0:8080",
		Storage:         StorageMemory,
		SQLiteDriver:    "sqlite",
		LogLevel:        "info",
		Seed:            true,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Load читает окружение через getenv (os.Getenv в main, map в тестах).
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()

	if v := getenv("TASKAPI_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := getenv("TASKAPI_STORAGE"); v != "" {
		cfg.Storage = strings.ToLower(v)
	}
	if v := getenv("TASKAPI_SQLITE_DRIVER"); v != "" {
		cfg.SQLiteDriver = v
	}
	if v := getenv("TASKAPI_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("TASKAPI_SEED"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("TASKAPI_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := getenv("TASKAPI_SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("TASKAPI_SHUTDOWN_TIMEOUT: %w", err)
		}
		cfg.ShutdownTimeout = d
	}
	cfg.TelegramToken = getenv("TASKAPI_TELEGRAM_TOKEN")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("адрес сервера не задан")
	}
	switch c.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return fmt.Errorf("неизвестное хранилище %q (memory|sqlite)", c.Storage)
	}
	switch c.SQLiteDriver {
	case "sqlite", "sqlite3":
	default:
		return fmt.Errorf("неизвестный драйвер sqlite %q (sqlite|sqlite3)", c.SQLiteDriver)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("таймаут остановки должен быть положительным: %s", c.ShutdownTimeout)
	}
	return nil
}

func (c *Config) BotEnabled() bool {
	return strings.TrimSpace(c.TelegramToken) != ""
}
