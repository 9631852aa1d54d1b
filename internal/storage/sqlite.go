package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"task-api/internal/apperrors"
	"task-api/internal/models"

	_ "modernc.org/sqlite"
)

const (
	// DriverSQLite - чистый Go драйвер modernc.org/sqlite.
	DriverSQLite = "sqlite"
	// DriverSQLite3 - cgo драйвер mattn/go-sqlite3, есть только в сборках с cgo.
	DriverSQLite3 = "sqlite3"

	memoryDSN = ":memory:"
)

// SQLiteStorage держит коллекцию в базе SQLite в памяти. База живёт
// ровно столько, сколько одно соединение, поэтому пул ограничен одним
// соединением: это же сериализует все записи.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(ctx context.Context, driver string) (*SQLiteStorage, error) {
	if !DriverAvailable(driver) {
		return nil, fmt.Errorf("драйвер %q недоступен в этой сборке", driver)
	}

	db, err := sql.Open(driver, memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия БД: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	// Проверяем соединение
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStorage{db: db}, nil
}

// DriverAvailable сообщает, зарегистрирован ли драйвер database/sql.
func DriverAvailable(driver string) bool {
	for _, d := range sql.Drivers() {
		if d == driver {
			return true
		}
	}
	return false
}

func createTables(ctx context.Context, db *sql.DB) error {
	// position задаёт порядок вставки, id - идентификатор задачи
	createTasksTable := `
	CREATE TABLE IF NOT EXISTS tasks (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id INTEGER NOT NULL UNIQUE,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE
	)`

	if _, err := db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("ошибка создания таблицы tasks: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) ListTasks(ctx context.Context) ([]models.Task, error) {
	query := `SELECT id, title, description, completed FROM tasks ORDER BY position`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("list tasks", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var task models.Task
		if err := rows.Scan(&task.ID, &task.Title, &task.Description, &task.Completed); err != nil {
			return nil, apperrors.NewStorageError("scan task", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("list tasks", err)
	}
	return tasks, nil
}

func (s *SQLiteStorage) GetTask(ctx context.Context, id int) (*models.Task, error) {
	query := `SELECT id, title, description, completed FROM tasks WHERE id = ?`

	var task models.Task
	err := s.db.QueryRowContext(ctx, query, id).Scan(&task.ID, &task.Title, &task.Description, &task.Completed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NewNotFoundError(id)
		}
		return nil, apperrors.NewStorageError("get task", err)
	}
	return &task, nil
}

// AddTask делает проверку id и вставку в одной транзакции.
func (s *SQLiteStorage) AddTask(ctx context.Context, task models.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("begin transaction", err)
	}
	defer tx.Rollback()

	var exists bool
	err = tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM tasks WHERE id = ?)`, task.ID).Scan(&exists)
	if err != nil {
		return apperrors.NewStorageError("check task id", err)
	}
	if exists {
		return apperrors.NewDuplicateIdentifierError(task.ID)
	}

	query := `INSERT INTO tasks (id, title, description, completed) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, task.ID, task.Title, task.Description, task.Completed); err != nil {
		return apperrors.NewStorageError("insert task", err)
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("commit transaction", err)
	}
	return nil
}

// ReplaceTask обновляет строку на месте, position не меняется.
func (s *SQLiteStorage) ReplaceTask(ctx context.Context, task models.Task) error {
	query := `UPDATE tasks SET title = ?, description = ?, completed = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, task.Title, task.Description, task.Completed, task.ID)
	if err != nil {
		return apperrors.NewStorageError("update task", err)
	}
	return checkAffected(result, task.ID, "update task")
}

func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return apperrors.NewStorageError("delete task", err)
	}
	return checkAffected(result, id, "delete task")
}

func (s *SQLiteStorage) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n); err != nil {
		return 0, apperrors.NewStorageError("count tasks", err)
	}
	return n, nil
}

func checkAffected(result sql.Result, id int, operation string) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewStorageError(operation, err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(id)
	}
	return nil
}
