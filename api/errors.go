package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
)

var (
	errAuthenticationRequired = errors.New("authentication required")
	errInvalidCredentials     = errors.New("invalid credentials")
	errUnconfirmedAccount     = errors.New("you must confirm your email before logging in")
	errConflict               = errors.New("email is already registered")
	errNotFound               = errors.New("the requested resource could not be found")
	errForbidden              = errors.New("you do not have permission to access this resource")
	errInvalidToken           = errors.New("invalid or expired confirmation link")
	errAlreadyConfirmed       = errors.New("email is already confirmed")
)

// validationError carries per-field messages so the boundary can report
// exactly which inputs were rejected.
type validationError struct {
	fields map[string]string
}

func (e *validationError) Error() string {
	data, err := json.Marshal(e.fields)
	if err != nil {
		return "invalid input"
	}
	return string(data)
}

func validationErrorf(key, format string, args ...any) *validationError {
	return &validationError{
		fields: map[string]string{key: fmt.Sprintf(format, args...)},
	}
}

func statusForError(err error) int {
	var ve *validationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, errAuthenticationRequired), errors.Is(err, errInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errUnconfirmedAccount), errors.Is(err, errForbidden):
		return http.StatusForbidden
	case errors.Is(err, errNotFound), errors.Is(err, errInvalidToken):
		return http.StatusNotFound
	case errors.Is(err, errConflict), errors.Is(err, errAlreadyConfirmed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("marshaling response", "error", err)
		writeError(w, errors.New("internal server error"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	w.Write(data)
}

func writeError(w http.ResponseWriter, err error, statusCode int) {
	body := map[string]any{
		"success": false,
		"error":   err.Error(),
	}
	var ve *validationError
	if errors.As(err, &ve) {
		body["error"] = ve.fields
	}
	data, merr := json.Marshal(body)
	if merr != nil {
		slog.Error("marshaling error response", "error", merr)
		data = []byte(`{"success":false,"error":"internal server error"}`)
	}
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Type", "application/json")
	h.Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	w.Write(data)
}

// writeOperationError is the shorthand used by handlers once an operation
// has failed with a taxonomy error.
func writeOperationError(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		slog.Error("operation failed", "error", err)
		err = errors.New("internal server error")
	}
	writeError(w, err, status)
}
