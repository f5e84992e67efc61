// Package respond implements the uniform response envelope returned by every
// endpoint: {"success": bool, "data": ..., "msg": ...}. Expected failures are
// expressed through this envelope, never as raw HTTP error bodies.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"linkup/infrastructure"
)

type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Msg     string `json:"msg,omitempty"`
}

func JSON(w http.ResponseWriter, status int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Envelope{Success: true, Data: data})
}

func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Envelope{Success: true, Data: data})
}

func Error(w http.ResponseWriter, err error) {
	ErrorWithData(w, err, nil)
}

// ErrorWithData reports a failure while still carrying best-effort data, such
// as a placeholder profile for a user that could not be resolved.
func ErrorWithData(w http.ResponseWriter, err error, data any) {
	JSON(w, StatusCode(err), Envelope{Success: false, Data: data, Msg: err.Error()})
}

// StatusCode maps the shared error taxonomy onto HTTP statuses.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, infrastructure.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, infrastructure.ErrNotFound),
		errors.Is(err, infrastructure.ErrConversationNotFound):
		return http.StatusNotFound
	case errors.Is(err, infrastructure.ErrSchemaNotProvisioned):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
