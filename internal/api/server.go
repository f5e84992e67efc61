package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"linkup/config"
	"linkup/internal/api/respond"
	"linkup/internal/auth"
	"linkup/internal/conversation"
	"linkup/internal/follow"
	"linkup/internal/message"
	"linkup/internal/profile"
	"linkup/internal/realtime"
)

type Server struct {
	router *mux.Router
	port   string
	logger *slog.Logger
}

func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	authMiddleware *auth.Middleware,
	profileHandler *profile.JSONHandler,
	conversationHandler *conversation.JSONHandler,
	messageHandler *message.JSONHandler,
	followHandler *follow.JSONHandler,
	wsHandler *realtime.WSHandler,
) *Server {
	r := mux.NewRouter()
	r.Use(recoverMiddleware(logger), requestLogMiddleware(logger))

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		respond.OK(w, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(authMiddleware.Handler)
	profile.SetupJSONRoutes(api, profileHandler)
	conversation.SetupJSONRoutes(api, conversationHandler)
	message.SetupJSONRoutes(api, messageHandler)
	follow.SetupJSONRoutes(api, followHandler)

	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authMiddleware.Handler)
	realtime.SetupWSRoutes(ws, wsHandler)

	return &Server{router: r, port: cfg.Port, logger: logger}
}

func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Run() error {
	s.logger.Info("starting http server", "port", s.port)
	return http.ListenAndServe(":"+s.port, s.router)
}
