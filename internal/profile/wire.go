package profile

import (
	"database/sql"
	"log/slog"

	"github.com/google/wire"
)

func ProvideRepository(db *sql.DB) Repository {
	return NewPostgresRepository(db)
}

func ProvideService(repo Repository, logger *slog.Logger) *Service {
	return NewService(repo, logger)
}

func ProvideJSONHandler(service *Service) *JSONHandler {
	return NewJSONHandler(service)
}

var Set = wire.NewSet(ProvideRepository, ProvideService, ProvideJSONHandler)
