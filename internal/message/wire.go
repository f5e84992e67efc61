package message

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"

	"linkup/internal/profile"
)

func ProvideRepository(db *sql.DB) Repository {
	return NewPostgresRepository(db)
}

func ProvideService(repo Repository, profiles *profile.Service, logger *slog.Logger) *Service {
	return NewService(repo, profiles, logger)
}

func ProvideJSONHandler(service *Service) *JSONHandler {
	return NewJSONHandler(service)
}

var Set = wire.NewSet(ProvideRepository, ProvideService, ProvideJSONHandler)
