package manager

import (
	"strings"
	"unicode/utf8"

	"taskboard/internal/models"
)

const (
	MinTitleLength = 3
	MaxTitleLength = 255
)

// validateTitle trims title and checks the trimmed length; padding does not
// count toward the minimum.
func validateTitle(verr *models.ValidationError, title string) string {
	title = strings.TrimSpace(title)
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		verr.Add("title", "should not be empty")
	case n < MinTitleLength:
		verr.Add("title", "must be longer than or equal to 3 characters")
	case n > MaxTitleLength:
		verr.Add("title", "must be shorter than or equal to 255 characters")
	}
	return title
}

// validateCreate checks a create request and fills server-side defaults.
func validateCreate(req models.CreateTaskRequest) (models.NewTask, error) {
	verr := &models.ValidationError{}

	task := models.NewTask{
		Title:       validateTitle(verr, req.Title),
		Description: req.Description,
		Tags:        []string{},
		DueDate:     req.DueDate.Value,
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}
	if req.Tags != nil {
		task.Tags = append(task.Tags, req.Tags...)
	}

	if err := verr.OrNil(); err != nil {
		return models.NewTask{}, err
	}
	return task, nil
}

// validateUpdate checks the supplied fields of a partial update.
func validateUpdate(req models.UpdateTaskRequest) (models.TaskPatch, error) {
	verr := &models.ValidationError{}

	patch := models.TaskPatch{
		Description: req.Description,
		Completed:   req.Completed,
		DueDate:     req.DueDate,
	}
	if req.Title != nil {
		title := validateTitle(verr, *req.Title)
		patch.Title = &title
	}
	if req.Tags != nil {
		tags := append([]string{}, (*req.Tags)...)
		patch.Tags = &tags
	}

	if err := verr.OrNil(); err != nil {
		return models.TaskPatch{}, err
	}
	return patch, nil
}
