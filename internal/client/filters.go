package client

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"taskboard/internal/models"
)

// Filters is the persisted list selection. Dates are kept as the user typed
// them (YYYY-MM-DD) so the file stays readable.
type Filters struct {
	Completed    *bool    `yaml:"completed,omitempty"`
	DueDateStart string   `yaml:"dueDateStart,omitempty"`
	DueDateEnd   string   `yaml:"dueDateEnd,omitempty"`
	Tags         []string `yaml:"tags,omitempty"`
	SortField    string   `yaml:"sortField,omitempty"`
	SortOrder    string   `yaml:"sortOrder,omitempty"`
}

func (f Filters) IsZero() bool {
	return f.Completed == nil && f.DueDateStart == "" && f.DueDateEnd == "" &&
		len(f.Tags) == 0 && f.SortField == "" && f.SortOrder == ""
}

// TaskFilter validates f with the same rules the server applies to query
// parameters.
func (f Filters) TaskFilter() (models.TaskFilter, error) {
	return models.ParseTaskFilter(f.toTaskFilterValues())
}

func (f Filters) toTaskFilterValues() url.Values {
	q := url.Values{}
	if f.Completed != nil {
		q["completed"] = []string{fmt.Sprint(*f.Completed)}
	}
	if f.DueDateStart != "" {
		q["dueDateStart"] = []string{f.DueDateStart}
	}
	if f.DueDateEnd != "" {
		q["dueDateEnd"] = []string{f.DueDateEnd}
	}
	if len(f.Tags) > 0 {
		q["tags"] = f.Tags
	}
	if f.SortField != "" {
		q["sortField"] = []string{f.SortField}
	}
	if f.SortOrder != "" {
		q["sortOrder"] = []string{f.SortOrder}
	}
	return q
}

func (f Filters) Describe() string {
	if f.IsZero() {
		return "all tasks"
	}
	var parts []string
	if f.Completed != nil {
		if *f.Completed {
			parts = append(parts, "completed")
		} else {
			parts = append(parts, "pending")
		}
	}
	if f.DueDateStart != "" || f.DueDateEnd != "" {
		parts = append(parts, "due "+orDots(f.DueDateStart)+".."+orDots(f.DueDateEnd))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tags "+strings.Join(f.Tags, ","))
	}
	if f.SortField != "" {
		order := f.SortOrder
		if order == "" {
			order = string(models.SortAsc)
		}
		parts = append(parts, "by "+f.SortField+" "+order)
	}
	return strings.Join(parts, ", ")
}

func orDots(s string) string {
	if s == "" {
		return "…"
	}
	return s
}

// FilterStore keeps Filters in a YAML file between runs.
type FilterStore struct {
	path string
}

func NewFilterStore(path string) *FilterStore {
	return &FilterStore{path: path}
}

func DefaultFilterPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "taskboard", "filters.yaml"), nil
}

func (s *FilterStore) Path() string {
	return s.path
}

// Load returns the saved filters, or the unconstrained default when nothing
// has been saved yet.
func (s *FilterStore) Load() (Filters, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return Filters{}, nil
	}
	if err != nil {
		return Filters{}, fmt.Errorf("read filters: %w", err)
	}

	var f Filters
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Filters{}, fmt.Errorf("parse filters %s: %w", s.path, err)
	}
	return f, nil
}

func (s *FilterStore) Save(f Filters) error {
	if f.IsZero() {
		_, err := s.Clear()
		return err
	}

	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("encode filters: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create filters dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write filters: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace filters: %w", err)
	}
	return nil
}

// Clear forgets the saved filters and returns the unconstrained default.
func (s *FilterStore) Clear() (Filters, error) {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Filters{}, fmt.Errorf("remove filters: %w", err)
	}
	return Filters{}, nil
}
