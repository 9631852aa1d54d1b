package storage

import (
	"context"
	"sync"

	"task-api/internal/apperrors"
	"task-api/internal/models"
)

// MemoryStorage хранит задачи в слайсе в порядке добавления.
// Чтения идут параллельно, записи под эксклюзивной блокировкой.
type MemoryStorage struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{tasks: []models.Task{}}
}

func (m *MemoryStorage) ListTasks(ctx context.Context) ([]models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	tasks := make([]models.Task, len(m.tasks))
	copy(tasks, m.tasks)
	return tasks, nil
}

func (m *MemoryStorage) GetTask(ctx context.Context, id int) (*models.Task, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if i := m.indexOf(id); i >= 0 {
		task := m.tasks[i]
		return &task, nil
	}
	return nil, apperrors.NewNotFoundError(id)
}

// AddTask проверяет уникальность id и добавляет задачу в конец
// под одной блокировкой.
func (m *MemoryStorage) AddTask(ctx context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.indexOf(task.ID) >= 0 {
		return apperrors.NewDuplicateIdentifierError(task.ID)
	}
	m.tasks = append(m.tasks, task)
	return nil
}

// ReplaceTask заменяет задачу с task.ID на её же позиции.
func (m *MemoryStorage) ReplaceTask(ctx context.Context, task models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(task.ID)
	if i < 0 {
		return apperrors.NewNotFoundError(task.ID)
	}
	m.tasks[i] = task
	return nil
}

// DeleteTask удаляет первую задачу с таким id.
func (m *MemoryStorage) DeleteTask(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexOf(id)
	if i < 0 {
		return apperrors.NewNotFoundError(id)
	}
	m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
	return nil
}

func (m *MemoryStorage) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tasks), nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func (m *MemoryStorage) indexOf(id int) int {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
