package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"taskboard/internal/models"
)

// MemoryStorage keeps tasks in process memory. Ids come from a counter
// that never goes backwards, so deleted ids are not reused.
type MemoryStorage struct {
	mu     sync.Mutex
	tasks  map[int64]models.Task
	nextID int64
	now    func() time.Time
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:  make(map[int64]models.Task),
		nextID: 1,
		now:    time.Now,
	}
}

func (m *MemoryStorage) CreateTask(_ context.Context, nt models.NewTask) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	task := models.Task{
		ID:          m.nextID,
		Title:       nt.Title,
		Description: nt.Description,
		Completed:   nt.Completed,
		Tags:        nt.Tags,
		DueDate:     nt.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}.Clone()
	m.tasks[task.ID] = task
	m.nextID++

	out := task.Clone()
	return &out, nil
}

func (m *MemoryStorage) GetTask(_ context.Context, id int64) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, notFound(id)
	}
	out := task.Clone()
	return &out, nil
}

func (m *MemoryStorage) UpdateTask(_ context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	task, ok := m.tasks[id]
	if !ok {
		return nil, notFound(id)
	}
	patch.Apply(&task, m.now())
	m.tasks[id] = task.Clone()

	out := task.Clone()
	return &out, nil
}

func (m *MemoryStorage) DeleteTask(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.tasks[id]; !ok {
		return notFound(id)
	}
	delete(m.tasks, id)
	return nil
}

func (m *MemoryStorage) ListTasks(_ context.Context, filter models.TaskFilter) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	filter = filter.Normalized()
	tasks := make([]models.Task, 0, len(m.tasks))
	for _, task := range m.tasks {
		if filter.Matches(task) {
			tasks = append(tasks, task.Clone())
		}
	}
	models.SortTasks(tasks, filter)
	return tasks, nil
}

func (m *MemoryStorage) DistinctTags(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]struct{})
	tags := []string{}
	for _, task := range m.tasks {
		for _, tag := range task.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	return tags, nil
}

func (m *MemoryStorage) Ping(context.Context) error {
	return nil
}

func (m *MemoryStorage) Close() error {
	return nil
}

func notFound(id int64) error {
	return fmt.Errorf("task with ID %d: %w", id, models.ErrNotFound)
}
