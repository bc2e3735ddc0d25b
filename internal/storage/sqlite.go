package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"taskboard/internal/models"
)

// timeLayout is fixed width in UTC so text comparison orders like time.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse stored time %q: %w", s, err)
	}
	return t.Local(), nil
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT    NOT NULL,
	description TEXT,
	completed   BOOLEAN NOT NULL DEFAULT FALSE,
	tags        TEXT    NOT NULL DEFAULT '[]',
	due_date    TEXT,
	created_at  TEXT    NOT NULL,
	updated_at  TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_due_date ON tasks (due_date);
CREATE INDEX IF NOT EXISTS idx_tasks_completed ON tasks (completed);`

type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage opens dbPath (":memory:" is allowed) and creates the schema.
func NewSQLiteStorage(ctx context.Context, dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection keeps ":memory:" databases shared and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}

	return &SQLiteStorage{db: db, now: time.Now}, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStorage) CreateTask(ctx context.Context, nt models.NewTask) (*models.Task, error) {
	tagsJSON, err := encodeTags(nt.Tags)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result, err := s.db.ExecContext(ctx, `
	INSERT INTO tasks (title, description, completed, tags, due_date, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nt.Title, nullString(nt.Description), nt.Completed, tagsJSON,
		nullTime(nt.DueDate), formatTime(now), formatTime(now),
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("insert task id: %w", err)
	}
	return s.GetTask(ctx, id)
}

func (s *SQLiteStorage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)
	task, err := scanSQLiteTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}
	return task, nil
}

func (s *SQLiteStorage) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.Task, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback()

	task, err := scanSQLiteTask(tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(id)
		}
		return nil, err
	}

	patch.Apply(task, s.now())

	tagsJSON, err := encodeTags(task.Tags)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
	UPDATE tasks
	SET title = ?, description = ?, completed = ?, tags = ?, due_date = ?, updated_at = ?
	WHERE id = ?`,
		task.Title, nullString(task.Description), task.Completed, tagsJSON,
		nullTime(task.DueDate), formatTime(task.UpdatedAt), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}
	return task, nil
}

func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return notFound(id)
	}
	return nil
}

func (s *SQLiteStorage) ListTasks(ctx context.Context, filter models.TaskFilter) ([]models.Task, error) {
	query, args := BuildListQuery(DialectSQLite, filter)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		task, err := scanSQLiteTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStorage) DistinctTags(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT j.value FROM tasks, json_each(tasks.tags) AS j")
	if err != nil {
		return nil, fmt.Errorf("distinct tags: %w", err)
	}
	defer rows.Close()

	tags := []string{}
	for rows.Next() {
		var tag string
		if err := rows.Scan(&tag); err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteTask(row rowScanner) (*models.Task, error) {
	var (
		task        models.Task
		description sql.NullString
		tagsJSON    string
		dueDate     sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := row.Scan(
		&task.ID, &task.Title, &description, &task.Completed,
		&tagsJSON, &dueDate, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	if err := json.Unmarshal([]byte(tagsJSON), &task.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of task %d: %w", task.ID, err)
	}
	if task.Tags == nil {
		task.Tags = []string{}
	}
	if dueDate.Valid {
		t, err := parseTime(dueDate.String)
		if err != nil {
			return nil, err
		}
		task.DueDate = &t
	}
	if task.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if task.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &task, nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func nullString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}
