package conversation

import (
	"encoding/json"
	"fmt"
	"net/http"

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

func (h *JSONHandler) OpenConversation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OtherUserID string `json:"other_user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, fmt.Errorf("%w: malformed request body", infrastructure.ErrInvalidArgument))
		return
	}

	id, err := h.service.GetOrCreate(r.Context(), auth.UserID(r.Context()), req.OtherUserID)
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, map[string]string{"conversation_id": id})
}

func (h *JSONHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.ListForUser(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, convs)
}

// SetupJSONRoutes Helper function to set up routes
func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/conversations", h.OpenConversation).Methods("POST")
	r.HandleFunc("/conversations", h.ListConversations).Methods("GET")
}
