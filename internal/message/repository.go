package message

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"linkup/infrastructure"
	"linkup/internal/profile"
)

type Repository interface {
	// InsertJoined persists the message and returns it with the sender's
	// profile resolved in the same round trip. The conversation's
	// denormalized last-message summary is refreshed in the same
	// transaction.
	InsertJoined(ctx context.Context, m *Message) (*EnrichedMessage, error)
	// Insert persists the message without profile enrichment, refreshing
	// the conversation summary in the same transaction.
	Insert(ctx context.Context, m *Message) (*Message, error)
	GetByID(ctx context.Context, id string) (*Message, error)
	ListJoined(ctx context.Context, conversationID string, limit int) ([]EnrichedMessage, error)
	ListRaw(ctx context.Context, conversationID string, limit int) ([]Message, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	UnreadCount(ctx context.Context, readerID string) (int, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const messageColumns = `id, conversation_id, sender_id, content, media_url, media_type, is_read, created_at`

func (r *PostgresRepository) InsertJoined(ctx context.Context, m *Message) (*EnrichedMessage, error) {
	var em *EnrichedMessage
	err := infrastructure.WithTransaction(r.db, ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			WITH ins AS (
				INSERT INTO messages (id, conversation_id, sender_id, content, media_url, media_type)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING `+messageColumns+`
			)
			SELECT ins.id, ins.conversation_id, ins.sender_id, ins.content,
			       ins.media_url, ins.media_type, ins.is_read, ins.created_at,
			       u.id, u.name, u.username, u.avatar_url, u.bio
			FROM ins
			LEFT JOIN users u ON u.id = ins.sender_id
		`, m.ID, m.ConversationID, m.SenderID, m.Content, mediaURL(m.Media), mediaType(m.Media))

		scanned, err := scanEnriched(row)
		if err != nil {
			return err
		}
		em = scanned
		return touchConversation(ctx, tx, em.ConversationID, Preview(&em.Message), em.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return em, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, m *Message) (*Message, error) {
	var inserted *Message
	err := infrastructure.WithTransaction(r.db, ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			INSERT INTO messages (id, conversation_id, sender_id, content, media_url, media_type)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING `+messageColumns+`
		`, m.ID, m.ConversationID, m.SenderID, m.Content, mediaURL(m.Media), mediaType(m.Media))

		scanned, err := scanMessage(row)
		if err != nil {
			return err
		}
		inserted = scanned
		return touchConversation(ctx, tx, inserted.ConversationID, Preview(inserted), inserted.CreatedAt)
	})
	if err != nil {
		return nil, err
	}
	return inserted, nil
}

// touchConversation runs inside the insert transaction so the summary can
// never drift from the message log.
func touchConversation(ctx context.Context, tx *sql.Tx, conversationID, preview string, at time.Time) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE conversations
		SET last_message = $2, last_message_at = $3, updated_at = $3
		WHERE id = $1
	`, conversationID, preview, at)
	if err != nil {
		return fmt.Errorf("failed to update conversation summary: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Message, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages WHERE id = $1
	`, id)

	msg, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, infrastructure.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query message: %w", err)
	}
	return msg, nil
}

func (r *PostgresRepository) ListJoined(ctx context.Context, conversationID string, limit int) ([]EnrichedMessage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT m.id, m.conversation_id, m.sender_id, m.content,
		       m.media_url, m.media_type, m.is_read, m.created_at,
		       u.id, u.name, u.username, u.avatar_url, u.bio
		FROM messages m
		LEFT JOIN users u ON u.id = m.sender_id
		WHERE m.conversation_id = $1
		ORDER BY m.created_at ASC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []EnrichedMessage
	for rows.Next() {
		em, err := scanEnriched(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *em)
	}
	return msgs, rows.Err()
}

func (r *PostgresRepository) ListRaw(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+messageColumns+`
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
		LIMIT $2
	`, conversationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, *msg)
	}
	return msgs, rows.Err()
}

// MarkRead flips unread flags on messages the reader received. A zero-row
// update is success; the operation is idempotent.
func (r *PostgresRepository) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE messages SET is_read = TRUE
		WHERE conversation_id = $1
		  AND sender_id <> $2
		  AND is_read = FALSE
	`, conversationID, readerID)
	if err != nil {
		return fmt.Errorf("failed to mark messages read: %w", err)
	}
	return nil
}

// UnreadCount counts unread messages addressed to the reader across all of
// their conversations. This feeds a single inbox badge, which is why it is
// not scoped to one conversation.
func (r *PostgresRepository) UnreadCount(ctx context.Context, readerID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.is_read = FALSE
		  AND m.sender_id <> $1
		  AND (c.participant_1 = $1 OR c.participant_2 = $1)
	`, readerID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread messages: %w", err)
	}
	return count, nil
}

func mediaURL(m *Media) *string {
	if m == nil {
		return nil
	}
	return &m.URL
}

func mediaType(m *Media) *string {
	if m == nil {
		return nil
	}
	return &m.Type
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*Message, error) {
	var m Message
	var mURL, mType sql.NullString

	err := row.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content,
		&mURL, &mType, &m.IsRead, &m.CreatedAt)
	if err != nil {
		return nil, err
	}
	if mURL.Valid {
		m.Media = &Media{URL: mURL.String, Type: mType.String}
	}
	return &m, nil
}

func scanEnriched(row rowScanner) (*EnrichedMessage, error) {
	var em EnrichedMessage
	var mURL, mType sql.NullString
	var senderID, senderName, senderUsername, senderAvatar, senderBio sql.NullString

	err := row.Scan(&em.ID, &em.ConversationID, &em.SenderID, &em.Content,
		&mURL, &mType, &em.IsRead, &em.CreatedAt,
		&senderID, &senderName, &senderUsername, &senderAvatar, &senderBio)
	if err != nil {
		return nil, err
	}
	if mURL.Valid {
		em.Media = &Media{URL: mURL.String, Type: mType.String}
	}
	if senderID.Valid {
		sender := &profile.User{ID: senderID.String, Name: senderName.String}
		if senderUsername.Valid {
			v := senderUsername.String
			sender.Username = &v
		}
		if senderAvatar.Valid {
			v := senderAvatar.String
			sender.AvatarURL = &v
		}
		if senderBio.Valid {
			v := senderBio.String
			sender.Bio = &v
		}
		em.Sender = sender
	} else {
		em.Sender = profile.Placeholder(em.SenderID)
	}
	return &em, nil
}
