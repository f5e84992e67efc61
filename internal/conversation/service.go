package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"linkup/infrastructure"
	"linkup/internal/profile"
)

type Service struct {
	repo     Repository
	profiles *profile.Service
	logger   *slog.Logger
}

func NewService(repo Repository, profiles *profile.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, logger: logger}
}

func validID(id string) bool {
	switch strings.TrimSpace(id) {
	case "", "undefined", "null":
		return false
	}
	return true
}

// GetOrCreate resolves the single conversation for an unordered user pair,
// creating it on first contact. The atomic stored procedure is the primary
// path; when it is absent the client-side select-then-insert sequence runs
// instead, relying on the pair uniqueness index to collapse concurrent
// creators onto one row.
func (s *Service) GetOrCreate(ctx context.Context, userA, userB string) (string, error) {
	if !validID(userA) || !validID(userB) {
		return "", fmt.Errorf("%w: user ids %q, %q", infrastructure.ErrInvalidArgument, userA, userB)
	}
	if userA == userB {
		return "", fmt.Errorf("%w: cannot open a conversation with yourself", infrastructure.ErrInvalidArgument)
	}

	id, err := s.repo.FindOrCreateProc(ctx, userA, userB)
	if err == nil {
		return id, nil
	}

	switch {
	case infrastructure.IsUndefinedTable(err):
		return "", infrastructure.ErrSchemaNotProvisioned
	case infrastructure.IsUndefinedFunction(err):
		s.logger.Warn("find_or_create_conversation procedure missing, using client-side fallback")
	default:
		s.logger.Warn("find_or_create_conversation procedure failed, using client-side fallback", "error", err)
	}

	return s.getOrCreateFallback(ctx, userA, userB)
}

func (s *Service) getOrCreateFallback(ctx context.Context, userA, userB string) (string, error) {
	lo, hi := CanonicalPair(userA, userB)

	id, err := s.repo.FindByPair(ctx, lo, hi)
	if err == nil {
		return id, nil
	}
	if infrastructure.IsUndefinedTable(err) {
		return "", infrastructure.ErrSchemaNotProvisioned
	}
	if !errors.Is(err, infrastructure.ErrNotFound) {
		return "", fmt.Errorf("failed to look up conversation: %w", err)
	}

	id, err = s.repo.Insert(ctx, lo, hi)
	if err != nil {
		// A concurrent caller created the row between our lookup and insert;
		// the uniqueness index turned the race into this error, so the row is
		// there to be read.
		if infrastructure.IsUniqueViolation(err) {
			return s.repo.FindByPair(ctx, lo, hi)
		}
		if infrastructure.IsUndefinedTable(err) {
			return "", infrastructure.ErrSchemaNotProvisioned
		}
		return "", fmt.Errorf("failed to create conversation: %w", err)
	}
	return id, nil
}

// ListForUser returns the viewer's conversations newest-activity first, each
// carrying the other participant's profile. The joined query is preferred;
// when the profile relation is unavailable the method degrades to separate
// queries joined in memory, producing the identical shape.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]EnrichedConversation, error) {
	if !validID(userID) {
		return nil, fmt.Errorf("%w: user id %q", infrastructure.ErrInvalidArgument, userID)
	}

	convs, err := s.repo.ListJoined(ctx, userID)
	if err == nil {
		s.logger.Debug("conversation list served by joined query", "user_id", userID, "count", len(convs))
		return convs, nil
	}
	if !infrastructure.IsMissingRelation(err) {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	s.logger.Warn("profile join unavailable, degrading to separate queries", "user_id", userID)

	raw, err := s.repo.ListRaw(ctx, userID)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return nil, infrastructure.ErrSchemaNotProvisioned
		}
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	others := make([]string, 0, len(raw))
	for i := range raw {
		others = append(others, raw[i].OtherParticipant(userID))
	}

	profiles, err := s.profiles.FetchMany(ctx, others)
	if err != nil {
		s.logger.Error("batched profile fetch failed, using placeholders", "error", err)
		profiles = nil
	}

	return AttachProfiles(userID, raw, profiles), nil
}

// AttachProfiles joins raw conversations with fetched profiles in memory.
// Participants without a resolved profile get a fresh placeholder.
func AttachProfiles(viewerID string, convs []Conversation, profiles map[string]*profile.User) []EnrichedConversation {
	enriched := make([]EnrichedConversation, 0, len(convs))
	for _, c := range convs {
		otherID := c.OtherParticipant(viewerID)
		user, ok := profiles[otherID]
		if !ok || user == nil {
			user = profile.Placeholder(otherID)
		}
		enriched = append(enriched, EnrichedConversation{Conversation: c, OtherUser: user})
	}
	return enriched
}
