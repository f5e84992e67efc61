package profile

import (
	"net/http"

	"github.com/gorilla/mux"

	"linkup/internal/api/respond"
)

type JSONHandler struct {
	service *Service
}

func NewJSONHandler(service *Service) *JSONHandler {
	return &JSONHandler{service: service}
}

func (h *JSONHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	user, err := h.service.Fetch(r.Context(), vars["id"])
	if err != nil {
		// The placeholder travels with the failure so clients can render it.
		respond.ErrorWithData(w, err, user)
		return
	}

	respond.OK(w, user)
}

// SetupJSONRoutes Helper function to set up routes
func SetupJSONRoutes(r *mux.Router, h *JSONHandler) {
	r.HandleFunc("/profiles/{id}", h.GetProfile).Methods("GET")
}
