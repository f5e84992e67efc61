package follow

import (
	"net/http"

	"github.com/gorilla/mux"

	"linkup/internal/api/respond"
	"linkup/internal/auth"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	stats, err := h.service.Counts(r.Context(), vars["id"])
	if err != nil {
		respond.Error(w, err)
		return
	}

	viewer := auth.UserID(r.Context())
	following := false
	if viewer != vars["id"] {
		following, err = h.service.IsFollowing(r.Context(), viewer, vars["id"])
		if err != nil {
			respond.Error(w, err)
			return
		}
	}

	respond.OK(w, struct {
		Stats
		IsFollowing bool `json:"is_following"`
	}{Stats: stats, IsFollowing: following})
}

func (h *JSONHandler) Follow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.Follow(r.Context(), auth.UserID(r.Context()), vars["id"]); err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, nil)
}

func (h *JSONHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	if err := h.service.Unfollow(r.Context(), auth.UserID(r.Context()), vars["id"]); err != nil {
		respond.Error(w, err)
		return
	}

	respond.OK(w, nil)
}

// SetupJSONRoutes Helper function to set up routes
func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/users/{id}/follow_stats", h.GetStats).Methods("GET")
	r.HandleFunc("/users/{id}/follow", h.Follow).Methods("POST")
	r.HandleFunc("/users/{id}/follow", h.Unfollow).Methods("DELETE")
}
