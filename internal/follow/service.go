package follow

import (
	"context"
	"fmt"
	"strings"

	"linkup/infrastructure"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func validID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return false
	}
	return true
}

func (s *Service) Counts(ctx context.Context, userID string) (Stats, error) {
	if !validID(userID) {
		return Stats{}, fmt.Errorf("%w: user id %q", infrastructure.ErrInvalidArgument, userID)
	}
	return s.repo.Counts(ctx, userID)
}

func (s *Service) IsFollowing(ctx context.Context, followerID, followeeID string) (bool, error) {
	if !validID(followerID) || !validID(followeeID) {
		return false, fmt.Errorf("%w: user ids %q, %q", infrastructure.ErrInvalidArgument, followerID, followeeID)
	}
	return s.repo.IsFollowing(ctx, followerID, followeeID)
}

// Follow records the relationship. Idempotent; following yourself is
// rejected.
func (s *Service) Follow(ctx context.Context, followerID, followeeID string) error {
	if !validID(followerID) || !validID(followeeID) {
		return fmt.Errorf("%w: user ids %q, %q", infrastructure.ErrInvalidArgument, followerID, followeeID)
	}
	if followerID == followeeID {
		return fmt.Errorf("%w: cannot follow yourself", infrastructure.ErrInvalidArgument)
	}
	return s.repo.Insert(ctx, followerID, followeeID)
}

// Unfollow removes the relationship. Idempotent.
func (s *Service) Unfollow(ctx context.Context, followerID, followeeID string) error {
	if !validID(followerID) || !validID(followeeID) {
		return fmt.Errorf("%w: user ids %q, %q", infrastructure.ErrInvalidArgument, followerID, followeeID)
	}
	return s.repo.Delete(ctx, followerID, followeeID)
}
