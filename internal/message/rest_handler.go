package message

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"linkup/infrastructure"
	"linkup/internal/api/respond"
	"linkup/internal/auth"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) SendMessage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var req struct {
		Content string `json:"content"`
		Media   *Media `json:"media,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, fmt.Errorf("%w: malformed request body", infrastructure.ErrInvalidArgument))
		return
	}

	msg, err := h.service.Send(r.Context(), vars["id"], auth.UserID(r.Context()), req.Content, req.Media)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.Created(w, msg)
}

func (h *JSONHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			respond.Error(w, fmt.Errorf("%w: limit must be an integer", infrastructure.ErrInvalidArgument))
			return
		}
		limit = parsed
	}

	msgs, err := h.service.List(r.Context(), vars["id"], limit)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, msgs)
}

func (h *JSONHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.MarkRead(r.Context(), vars["id"], auth.UserID(r.Context())); err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, nil)
}

func (h *JSONHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.service.UnreadCount(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, map[string]int{"unread_count": count})
}

// SetupJSONRoutes Helper function to set up routes
func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/conversations/{id}/messages", h.SendMessage).Methods("POST")
	r.HandleFunc("/conversations/{id}/messages", h.ListMessages).Methods("GET")
	r.HandleFunc("/conversations/{id}/read", h.MarkRead).Methods("POST")
	r.HandleFunc("/me/unread_count", h.UnreadCount).Methods("GET")
}
