package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"taskboard/internal/logger"
	"taskboard/internal/models"
)

// ErrorBody is the JSON shape of every non-2xx response. Message is a
// string, or a list of strings for validation failures.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    any    `json:"message"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message any) {
	writeJSON(w, status, ErrorBody{
		StatusCode: status,
		Message:    message,
		Error:      http.StatusText(status),
	})
}

func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	var ve *models.ValidationError
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, validationMessages(ve))
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "Task not found.")
	default:
		logger.Error(r.Context(), err, "request failed", "method", r.Method, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeTaskFailure is writeFailure for routes addressing a single task.
func writeTaskFailure(w http.ResponseWriter, r *http.Request, id int64, err error) {
	if errors.Is(err, models.ErrNotFound) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Task with ID \"%d\" not found.", id))
		return
	}
	writeFailure(w, r, err)
}

func validationMessages(ve *models.ValidationError) []string {
	out := make([]string, 0, len(ve.Fields))
	for _, f := range ve.Fields {
		out = append(out, f.Field+" "+f.Message)
	}
	return out
}

// decodeBody reads a size-limited JSON body into dst, rejecting unknown
// fields. It writes the error response itself and reports false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err == nil && dec.More() {
		err = errors.New("request body must contain a single JSON object")
	}
	if err == nil {
		return true
	}

	var (
		ve        *models.ValidationError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
		tooLarge  *http.MaxBytesError
	)
	switch {
	case errors.As(err, &ve):
		writeError(w, http.StatusBadRequest, validationMessages(ve))
	case errors.As(err, &tooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	case errors.As(err, &typeErr):
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		writeError(w, http.StatusBadRequest, []string{field + " must be of type " + typeErr.Type.String()})
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		writeError(w, http.StatusBadRequest, "malformed JSON body")
	case errors.Is(err, io.EOF):
		writeError(w, http.StatusBadRequest, "request body is required")
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		name := strings.Trim(strings.TrimPrefix(err.Error(), "json: unknown field "), `"`)
		writeError(w, http.StatusBadRequest, []string{"property " + name + " should not exist"})
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
	return false
}
