package message

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"linkup/infrastructure"
	"linkup/internal/profile"
)

// DefaultListLimit bounds message listings when the caller does not override.
const DefaultListLimit = 50

type Service struct {
	repo     Repository
	profiles *profile.Service
	logger   *slog.Logger
}

func NewService(repo Repository, profiles *profile.Service, logger *slog.Logger) *Service {
	return &Service{repo: repo, profiles: profiles, logger: logger}
}

// Send persists a message and returns it enriched with the sender's profile.
// A nil error means the row is durable and the conversation's last-message
// summary was updated in the same transaction; the attached profile is
// best-effort and may be a placeholder. Content is trimmed, and a message
// must carry either text or media.
func (s *Service) Send(ctx context.Context, conversationID, senderID, content string, media *Media) (*EnrichedMessage, error) {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(senderID) == "" {
		return nil, fmt.Errorf("%w: conversation and sender ids are required", infrastructure.ErrInvalidArgument)
	}

	content = strings.TrimSpace(content)
	if content == "" && media == nil {
		return nil, fmt.Errorf("%w: message needs text content or media", infrastructure.ErrInvalidArgument)
	}

	msg := &Message{
		ID:             uuid.New().String(),
		ConversationID: conversationID,
		SenderID:       senderID,
		Content:        content,
		Media:          media,
	}

	enriched, err := s.repo.InsertJoined(ctx, msg)
	if err != nil {
		if !infrastructure.IsMissingRelation(err) {
			return nil, classifyInsertError(err)
		}
		s.logger.Warn("joined insert unavailable, degrading to plain insert", "conversation_id", conversationID)
		enriched, err = s.sendFallback(ctx, msg)
		if err != nil {
			return nil, err
		}
	}

	return enriched, nil
}

func (s *Service) sendFallback(ctx context.Context, msg *Message) (*EnrichedMessage, error) {
	inserted, err := s.repo.Insert(ctx, msg)
	if err != nil {
		return nil, classifyInsertError(err)
	}

	// The message is durable at this point. Profile resolution failing only
	// degrades the return value, never the send.
	sender, err := s.profiles.Fetch(ctx, msg.SenderID)
	if err != nil {
		s.logger.Info("sender profile unresolved after send, using placeholder",
			"message_id", msg.ID, "sender_id", msg.SenderID)
	}
	return &EnrichedMessage{Message: *inserted, Sender: sender}, nil
}

func classifyInsertError(err error) error {
	if infrastructure.IsUndefinedTable(err) {
		return infrastructure.ErrSchemaNotProvisioned
	}
	return fmt.Errorf("failed to send message: %w", err)
}

// Preview derives the list-display summary for a message.
func Preview(m *Message) string {
	if m.Content != "" {
		return m.Content
	}
	if m.Media != nil {
		return "Attachment"
	}
	return ""
}

// List returns up to limit messages oldest first, each with its sender's
// profile. limit <= 0 selects DefaultListLimit.
func (s *Service) List(ctx context.Context, conversationID string, limit int) ([]EnrichedMessage, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, fmt.Errorf("%w: conversation id is required", infrastructure.ErrInvalidArgument)
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	msgs, err := s.repo.ListJoined(ctx, conversationID, limit)
	if err == nil {
		return msgs, nil
	}
	if !infrastructure.IsMissingRelation(err) {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	s.logger.Warn("profile join unavailable, degrading to separate queries", "conversation_id", conversationID)

	raw, err := s.repo.ListRaw(ctx, conversationID, limit)
	if err != nil {
		if infrastructure.IsUndefinedTable(err) {
			return nil, infrastructure.ErrSchemaNotProvisioned
		}
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}

	senders := make([]string, 0, len(raw))
	for i := range raw {
		senders = append(senders, raw[i].SenderID)
	}

	profiles, err := s.profiles.FetchMany(ctx, senders)
	if err != nil {
		s.logger.Error("batched profile fetch failed, using placeholders", "error", err)
		profiles = nil
	}

	return AttachSenders(raw, profiles), nil
}

// AttachSenders joins raw messages with fetched sender profiles in memory,
// substituting placeholders for senders that did not resolve.
func AttachSenders(msgs []Message, profiles map[string]*profile.User) []EnrichedMessage {
	enriched := make([]EnrichedMessage, 0, len(msgs))
	for _, m := range msgs {
		sender, ok := profiles[m.SenderID]
		if !ok || sender == nil {
			sender = profile.Placeholder(m.SenderID)
		}
		enriched = append(enriched, EnrichedMessage{Message: m, Sender: sender})
	}
	return enriched
}

// MarkRead marks every message in the conversation sent by someone other
// than the reader as read. Safe to call repeatedly.
func (s *Service) MarkRead(ctx context.Context, conversationID, readerID string) error {
	if strings.TrimSpace(conversationID) == "" || strings.TrimSpace(readerID) == "" {
		return fmt.Errorf("%w: conversation and reader ids are required", infrastructure.ErrInvalidArgument)
	}
	return s.repo.MarkRead(ctx, conversationID, readerID)
}

// UnreadCount reports the reader's inbox badge count: unread messages from
// others across all of their conversations.
func (s *Service) UnreadCount(ctx context.Context, readerID string) (int, error) {
	if strings.TrimSpace(readerID) == "" {
		return 0, fmt.Errorf("%w: reader id is required", infrastructure.ErrInvalidArgument)
	}
	return s.repo.UnreadCount(ctx, readerID)
}

// GetEnriched re-fetches the canonical message row and attaches the sender
// profile. The realtime bridge uses this instead of trusting event payloads.
func (s *Service) GetEnriched(ctx context.Context, messageID string) (*EnrichedMessage, error) {
	msg, err := s.repo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	sender, err := s.profiles.Fetch(ctx, msg.SenderID)
	if err != nil {
		s.logger.Info("sender profile unresolved for realtime event, using placeholder",
			"message_id", messageID, "sender_id", msg.SenderID)
	}
	return &EnrichedMessage{Message: *msg, Sender: sender}, nil
}
