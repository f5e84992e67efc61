package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"linkup/infrastructure"
)

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// sentinelID catches identifiers that are the serialized form of a missing
// value rather than a real id. These come from upstream clients that
// interpolate an unset variable into a request path.
func sentinelID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return true
	}
	return false
}

// Fetch resolves a user's public profile. On any failure the returned *User
// is still non-nil: a placeholder carrying the requested id, so rendering
// code never deals with an absent profile. The error tells the caller which
// failure occurred.
func (s *Service) Fetch(ctx context.Context, userID string) (*User, error) {
	if sentinelID(userID) {
		s.logger.Warn("rejected sentinel user id", "user_id", userID)
		return Placeholder(userID), infrastructure.ErrInvalidArgument
	}

	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, infrastructure.ErrNotFound) {
			s.logger.Info("profile not found, substituting placeholder", "user_id", userID)
			return Placeholder(userID), infrastructure.ErrNotFound
		}
		s.logger.Error("profile lookup failed, substituting placeholder", "user_id", userID, "error", err)
		return Placeholder(userID), fmt.Errorf("%w: %v", infrastructure.ErrTransientServiceError, err)
	}

	s.logger.Debug("profile resolved", "user_id", userID)
	return user, nil
}

// FetchMany resolves a set of profiles in one batched lookup, keyed by id.
// Identifiers that could not be resolved are absent from the map; callers
// substitute Placeholder values during their in-memory joins.
func (s *Service) FetchMany(ctx context.Context, userIDs []string) (map[string]*User, error) {
	ids := make([]string, 0, len(userIDs))
	seen := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if sentinelID(id) {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	users, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}
	return byID, nil
}
