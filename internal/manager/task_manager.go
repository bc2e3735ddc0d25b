package manager

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"taskboard/internal/logger"
	"taskboard/internal/models"
	"taskboard/internal/storage"
)

var (
	addTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_added_total",
			Help: "Total number of CreateTask operations",
		},
		[]string{"status"},
	)

	updateTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_updated_total",
			Help: "Total number of UpdateTask operations",
		},
		[]string{"status"},
	)

	deleteTaskCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "taskboard_tasks_deleted_total",
			Help: "Total number of DeleteTask operations",
		},
		[]string{"status"},
	)

	taskTitleLength = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_task_title_length_bytes",
			Help:    "Length distribution of task titles",
			Buckets: []float64{10, 25, 50, 100, 255},
		},
	)

	listResultSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "taskboard_list_result_size",
			Help:    "Number of tasks returned by list queries",
			Buckets: prometheus.ExponentialBuckets(1, 4, 6),
		},
	)

	storeDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "taskboard_store_duration_seconds",
			Help:    "Duration of store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)
)

// statusOf labels an outcome; a missing task is not a server error.
func statusOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, models.ErrNotFound):
		return "not_found"
	case models.IsValidation(err):
		return "invalid"
	default:
		return "error"
	}
}

func observe(op string, start time.Time) {
	storeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// TaskManager validates requests, fills defaults and delegates to storage.
type TaskManager struct {
	storage storage.Storage
}

func NewTaskManagerWithStorage(s storage.Storage) *TaskManager {
	return &TaskManager{storage: s}
}

func (tm *TaskManager) CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error) {
	defer observe("create", time.Now())

	newTask, err := validateCreate(req)
	if err != nil {
		addTaskCount.WithLabelValues(statusOf(err)).Inc()
		return nil, err
	}

	task, err := tm.storage.CreateTask(ctx, newTask)
	addTaskCount.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		logger.Error(ctx, err, "create task failed")
		return nil, fmt.Errorf("create task: %w", err)
	}

	taskTitleLength.Observe(float64(len(task.Title)))
	logger.Info(ctx, "task created", "id", task.ID, "tags", len(task.Tags))
	return task, nil
}

func (tm *TaskManager) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	defer observe("get", time.Now())

	task, err := tm.storage.GetTask(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// UpdateTask applies only the supplied fields; omitted fields keep their
// stored values. UpdatedAt is refreshed on every successful call.
func (tm *TaskManager) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	defer observe("update", time.Now())

	patch, err := validateUpdate(req)
	if err != nil {
		updateTaskCount.WithLabelValues(statusOf(err)).Inc()
		return nil, err
	}

	task, err := tm.storage.UpdateTask(ctx, id, patch)
	updateTaskCount.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Error(ctx, err, "update task failed", "id", id)
		}
		return nil, fmt.Errorf("update task %d: %w", id, err)
	}

	logger.Info(ctx, "task updated", "id", id)
	return task, nil
}

func (tm *TaskManager) DeleteTask(ctx context.Context, id int64) error {
	defer observe("delete", time.Now())

	err := tm.storage.DeleteTask(ctx, id)
	deleteTaskCount.WithLabelValues(statusOf(err)).Inc()
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			logger.Error(ctx, err, "delete task failed", "id", id)
		}
		return fmt.Errorf("delete task %d: %w", id, err)
	}

	logger.Info(ctx, "task deleted", "id", id)
	return nil
}

func (tm *TaskManager) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	defer observe("list", time.Now())

	filter = filter.Normalized()
	logger.Debug(ctx, "listing tasks",
		"sortField", filter.SortField,
		"sortOrder", filter.SortOrder,
		"tags", filter.Tags,
	)

	tasks, err := tm.storage.ListTasks(ctx, filter)
	if err != nil {
		logger.Error(ctx, err, "list tasks failed")
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	listResultSize.Observe(float64(len(tasks)))
	return tasks, nil
}

// Tags returns every distinct tag in use across all tasks.
func (tm *TaskManager) Tags(ctx context.Context) ([]string, error) {
	defer observe("tags", time.Now())

	tags, err := tm.storage.DistinctTags(ctx)
	if err != nil {
		logger.Error(ctx, err, "distinct tags failed")
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func (tm *TaskManager) Ping(ctx context.Context) error {
	return tm.storage.Ping(ctx)
}
