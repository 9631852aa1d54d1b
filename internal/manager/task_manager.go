package manager

import (
	"context"
	"time"

	"task-api/internal/apperrors"
	"task-api/internal/logger"
	"task-api/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	opList   = "list"
	opGet    = "get"
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

var (
	operationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskapi_operations_total",
			Help: "Total number of task store operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskapi_operation_duration_seconds",
			Help:    "Duration of task store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskapi_task_title_length_bytes",
			Help:    "Length distribution of created and updated task titles",
			Buckets: []float64{10, 50, 100, 500, 1000},
		},
	)

	tasksTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "taskapi_tasks",
			Help: "Number of tasks in the collection",
		},
	)
)

// Storage - упорядоченная коллекция задач. Реализация сама отвечает за
// атомарность каждой операции.
type Storage interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int) (*models.Task, error)
	AddTask(ctx context.Context, task models.Task) error
	ReplaceTask(ctx context.Context, task models.Task) error
	DeleteTask(ctx context.Context, id int) error
	Count(ctx context.Context) (int, error)
	Close() error
}

// TaskManager реализует пять операций над коллекцией задач.
type TaskManager struct {
	storage Storage
}

func NewTaskManagerWithStorage(storage Storage) *TaskManager {
	return &TaskManager{storage: storage}
}

// Seed добавляет начальные задачи. Ошибка на дубликате id не глотается.
func (tm *TaskManager) Seed(ctx context.Context, tasks []models.Task) error {
	for _, task := range tasks {
		if err := tm.storage.AddTask(ctx, task); err != nil {
			return err
		}
	}
	tm.refreshGauge(ctx)
	logger.Info(ctx, "Коллекция задач заполнена", "count", len(tasks))
	return nil
}

func (tm *TaskManager) ListTasks(ctx context.Context) ([]models.Task, error) {
	defer observe(opList, time.Now())

	tasks, err := tm.storage.ListTasks(ctx)
	record(ctx, opList, err)
	return tasks, err
}

func (tm *TaskManager) GetTask(ctx context.Context, id int) (*models.Task, error) {
	defer observe(opGet, time.Now())

	task, err := tm.storage.GetTask(ctx, id)
	record(ctx, opGet, err)
	return task, err
}

// AddTask добавляет задачу в конец коллекции и возвращает её.
func (tm *TaskManager) AddTask(ctx context.Context, task models.Task) (*models.Task, error) {
	defer observe(opCreate, time.Now())

	if err := tm.storage.AddTask(ctx, task); err != nil {
		record(ctx, opCreate, err)
		return nil, err
	}

	record(ctx, opCreate, nil)
	taskTitleLength.Observe(float64(len(task.Title)))
	tm.refreshGauge(ctx)
	logger.Info(ctx, "Задача создана", "id", task.ID)
	return &task, nil
}

// UpdateTask заменяет задачу целиком. id всегда берётся из аргумента,
// id из тела запроса игнорируется.
func (tm *TaskManager) UpdateTask(ctx context.Context, id int, task models.Task) (*models.Task, error) {
	defer observe(opUpdate, time.Now())

	task.ID = id
	if err := tm.storage.ReplaceTask(ctx, task); err != nil {
		record(ctx, opUpdate, err)
		return nil, err
	}

	record(ctx, opUpdate, nil)
	taskTitleLength.Observe(float64(len(task.Title)))
	logger.Info(ctx, "Задача обновлена", "id", id)
	return &task, nil
}

func (tm *TaskManager) DeleteTask(ctx context.Context, id int) error {
	defer observe(opDelete, time.Now())

	if err := tm.storage.DeleteTask(ctx, id); err != nil {
		record(ctx, opDelete, err)
		return err
	}

	record(ctx, opDelete, nil)
	tm.refreshGauge(ctx)
	logger.Info(ctx, "Задача удалена", "id", id)
	return nil
}

func (tm *TaskManager) Close() error {
	return tm.storage.Close()
}

func (tm *TaskManager) refreshGauge(ctx context.Context) {
	n, err := tm.storage.Count(ctx)
	if err != nil {
		logger.Error(ctx, err, "Не удалось посчитать задачи")
		return
	}
	tasksTotal.Set(float64(n))
}

func observe(operation string, start time.Time) {
	operationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func record(ctx context.Context, operation string, err error) {
	if err == nil {
		operationCount.WithLabelValues(operation, "success").Inc()
		return
	}

	status := "error"
	if appErr, ok := apperrors.AsAppError(err); ok {
		status = appErr.Type.String()
	}
	operationCount.WithLabelValues(operation, status).Inc()

	if apperrors.ShouldLogError(err) {
		logger.Error(ctx, err, "Ошибка операции с задачами", "operation", operation)
	} else {
		logger.Debug(ctx, "Операция отклонена", "operation", operation, "reason", status)
	}
}
