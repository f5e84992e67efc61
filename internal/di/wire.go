//go:build wireinject
// +build wireinject

package di

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"

	"linkup/config"
	"linkup/internal/api"
	"linkup/internal/auth"
	"linkup/internal/conversation"
	"linkup/internal/follow"
	"linkup/internal/message"
	"linkup/internal/profile"
	"linkup/internal/realtime"
)

func InitializeServer(cfg *config.Config, db *sql.DB, logger *slog.Logger) (*api.Server, error) {
	wire.Build(
		auth.Set,
		profile.Set,
		conversation.Set,
		message.Set,
		follow.Set,
		realtime.Set,
		api.NewServer,
	)
	return &api.Server{}, nil
}
