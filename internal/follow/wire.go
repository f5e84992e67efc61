package follow

import (
	"database/sql"

	"github.com/google/wire"
)

func ProvideRepository(db *sql.DB) Repository {
	return NewPostgresRepository(db)
}

func ProvideService(repo Repository) *Service {
	return NewService(repo)
}

func ProvideJSONHandler(service *Service) *JSONHandler {
	return NewJSONHandler(service)
}

var Set = wire.NewSet(ProvideRepository, ProvideService, ProvideJSONHandler)
