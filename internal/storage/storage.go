package storage

import (
	"context"

	"taskboard/internal/models"
)

// Storage is the persistence contract shared by every backend in this
// package and consumed by manager.TaskManager.
type Storage interface {
	// Tasks
	CreateTask(ctx context.Context, task models.NewTask) (*models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error)
	DistinctTags(ctx context.Context) ([]string, error)

	Ping(ctx context.Context) error
	Close() error
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Storage = (*SQLiteStorage)(nil)
	_ Storage = (*PostgresStorage)(nil)
)
