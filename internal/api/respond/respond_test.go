package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"linkup/infrastructure"
)

func TestOKEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]string{"id": "u1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}

	var env struct {
		Success bool              `json:"success"`
		Data    map[string]string `json:"data"`
		Msg     string            `json:"msg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if !env.Success || env.Data["id"] != "u1" || env.Msg != "" {
		t.Fatalf("unexpected envelope: %+v", env)
	}
}

func TestErrorOmitsData(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, fmt.Errorf("%w: bad id", infrastructure.ErrInvalidArgument))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}

	var raw map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if raw["success"] != false {
		t.Fatalf("success = %v, want false", raw["success"])
	}
	if _, present := raw["data"]; present {
		t.Fatal("data key must be omitted when there is none")
	}
	if raw["msg"] == "" {
		t.Fatal("msg must carry the error text")
	}
}

func TestErrorWithDataCarriesFallback(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorWithData(rec, infrastructure.ErrNotFound, map[string]string{"name": "Unknown User"})

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("invalid JSON body: %v", err)
	}
	if env.Success {
		t.Fatal("success must be false on error")
	}
	if env.Data == nil {
		t.Fatal("fallback data must survive alongside the failure")
	}
}

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{infrastructure.ErrInvalidArgument, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", infrastructure.ErrInvalidArgument), http.StatusBadRequest},
		{infrastructure.ErrNotFound, http.StatusNotFound},
		{infrastructure.ErrConversationNotFound, http.StatusNotFound},
		{infrastructure.ErrSchemaNotProvisioned, http.StatusServiceUnavailable},
		{infrastructure.ErrTransientServiceError, http.StatusInternalServerError},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusCode(tt.err); got != tt.want {
			t.Errorf("StatusCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
