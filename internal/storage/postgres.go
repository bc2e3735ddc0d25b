package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"taskboard/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          BIGSERIAL    PRIMARY KEY,
	title       VARCHAR(255) NOT NULL,
	description TEXT,
	completed   BOOLEAN      NOT NULL DEFAULT FALSE,
	tags        TEXT[]       NOT NULL DEFAULT '{}',
	due_date    TIMESTAMPTZ,
	created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks (due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_tags ON tasks USING GIN (tags);`

type PostgresOptions struct {
	DatabaseURL string
	MaxConns    int32
	MinConns    int32
	MaxLifetime time.Duration
	MaxIdleTime time.Duration
}

type PostgresStorage struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewPostgresStorage connects a pgx pool and creates the schema.
func NewPostgresStorage(ctx context.Context, opts PostgresOptions) (*PostgresStorage, error) {
	cfg, err := pgxpool.ParseConfig(opts.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse postgres url: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.MinConns > 0 {
		cfg.MinConns = opts.MinConns
	}
	if opts.MaxLifetime > 0 {
		cfg.MaxConnLifetime = opts.MaxLifetime
	}
	if opts.MaxIdleTime > 0 {
		cfg.MaxConnIdleTime = opts.MaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create postgres pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create postgres schema: %w", err)
	}

	return &PostgresStorage{pool: pool, now: time.Now}, nil
}

func (p *PostgresStorage) Close() error {
	p.pool.Close()
	return nil
}

func (p *PostgresStorage) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStorage) CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error) {
	tags := nt.Tags
	if tags == nil {
		tags = []string{}
	}
	now := p.now()

	row := p.pool.QueryRow(ctx, `
	INSERT INTO tasks (title, description, completed, tags, due_date, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $6)
	RETURNING `+taskColumns,
		nt.Title, nt.Description, nt.Completed, tags, nt.DueDate, now,
	)
	task, err := scanPostgresTask(row)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

func (p *PostgresStorage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	task, err := scanPostgresTask(p.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return task, nil
}

func (p *PostgresStorage) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	task, err := scanPostgresTask(tx.QueryRow(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}

	patch.Apply(task, p.now())

	_, err = tx.Exec(ctx, `
	UPDATE tasks
	SET title = $1, description = $2, completed = $3, tags = $4, due_date = $5, updated_at = $6
	WHERE id = $7`,
		task.Title, task.Description, task.Completed, task.Tags, task.DueDate, task.UpdatedAt, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return task, nil
}

func (p *PostgresStorage) DeleteTask(ctx context.Context, id int64) error {
	tag, err := p.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(id)
	}
	return nil
}

func (p *PostgresStorage) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query, args := BuildListQuery(DialectPostgres, filter)

	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanPostgresTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (p *PostgresStorage) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, "SELECT DISTINCT unnest(tags) AS tag FROM tasks")
	if err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	tags, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	return tags, nil
}

func scanPostgresTask(row pgx.Row) (*models.Task, error) {
	var task models.Task
	err := row.Scan(
		&task.ID, &task.Title, &task.Description, &task.Completed,
		&task.Tags, &task.DueDate, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	return &task, nil
}
