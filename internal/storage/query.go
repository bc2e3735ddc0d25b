package storage

import (
	"fmt"
	"strings"
	"time"

	"taskboard/internal/models"
)

type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

const taskColumns = "id, title, description, completed, tags, due_date, created_at, updated_at"

// sortColumns is the only way a sort field reaches SQL text.
var sortColumns = map[models.SortField]string{
	models.SortByID:        "id",
	models.SortByTitle:     "title",
	models.SortByDueDate:   "due_date",
	models.SortByCreatedAt: "created_at",
	models.SortByUpdatedAt: "updated_at",
}

type queryBuilder struct {
	dialect Dialect
	where   []string
	args    []any
}

func (b *queryBuilder) placeholder(v any) string {
	b.args = append(b.args, v)
	if b.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", len(b.args))
	}
	return "?"
}

func (b *queryBuilder) timeArg(t time.Time) any {
	if b.dialect == DialectSQLite {
		return formatTime(t)
	}
	return t
}

// BuildListQuery translates a filter and sort specification into a SELECT
// over the tasks table and its positional arguments.
func BuildListQuery(dialect Dialect, filter models.TaskFilter) (string, []any) {
	f := filter.Normalized()
	b := &queryBuilder{dialect: dialect}

	if f.Completed != nil {
		b.where = append(b.where, "completed = "+b.placeholder(*f.Completed))
	}
	if f.DueDateStart != nil {
		b.where = append(b.where, "due_date >= "+b.placeholder(b.timeArg(*f.DueDateStart)))
	}
	if f.DueDateEnd != nil {
		b.where = append(b.where, "due_date <= "+b.placeholder(b.timeArg(*f.DueDateEnd)))
	}
	if len(f.Tags) > 0 {
		switch dialect {
		case DialectPostgres:
			b.where = append(b.where, "tags && "+b.placeholder(f.Tags)+"::text[]")
		default:
			marks := make([]string, len(f.Tags))
			for i, tag := range f.Tags {
				marks[i] = b.placeholder(tag)
			}
			b.where = append(b.where, fmt.Sprintf(
				"EXISTS (SELECT 1 FROM json_each(tasks.tags) WHERE json_each.value IN (%s))",
				strings.Join(marks, ", ")))
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(taskColumns)
	sb.WriteString(" FROM tasks")
	if len(b.where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderClause(dialect, f))

	return sb.String(), b.args
}

func orderClause(dialect Dialect, f models.TaskFilter) string {
	column, ok := sortColumns[f.SortField]
	if !ok {
		column = "id"
	}
	dir := "ASC"
	if f.SortOrder == models.SortDesc {
		dir = "DESC"
	}

	clause := column + " " + dir
	// Postgres puts NULLs last on ASC; match SQLite and the memory store.
	if dialect == DialectPostgres && column == "due_date" {
		if dir == "ASC" {
			clause += " NULLS FIRST"
		} else {
			clause += " NULLS LAST"
		}
	}
	if column != "id" {
		clause += ", id ASC"
	}
	return clause
}
