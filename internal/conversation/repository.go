package conversation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"linkup/infrastructure"
	"linkup/internal/profile"
)

type Repository interface {
	// FindOrCreateProc invokes the atomic server-side procedure.
	FindOrCreateProc(ctx context.Context, a, b string) (string, error)
	// FindByPair looks up a conversation by its canonically ordered pair.
	FindByPair(ctx context.Context, lo, hi string) (string, error)
	// Insert creates a conversation row for a canonically ordered pair.
	Insert(ctx context.Context, lo, hi string) (string, error)
	GetByID(ctx context.Context, id string) (*Conversation, error)
	// ListJoined returns the viewer's conversations with the other
	// participant's profile resolved in the same query.
	ListJoined(ctx context.Context, viewerID string) ([]EnrichedConversation, error)
	// ListRaw returns the viewer's conversations without profile data.
	ListRaw(ctx context.Context, viewerID string) ([]Conversation, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) FindOrCreateProc(ctx context.Context, a, b string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx,
		`SELECT find_or_create_conversation($1, $2)`, a, b,
	).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (r *PostgresRepository) FindByPair(ctx context.Context, lo, hi string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		SELECT id FROM conversations
		WHERE participant_1 = $1 AND participant_2 = $2
	`, lo, hi).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", infrastructure.ErrNotFound
		}
		return "", err
	}
	return id, nil
}

func (r *PostgresRepository) Insert(ctx context.Context, lo, hi string) (string, error) {
	var id string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO conversations (participant_1, participant_2)
		VALUES ($1, $2)
		RETURNING id
	`, lo, hi).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

const conversationColumns = `id, participant_1, participant_2, last_message, last_message_at, created_at, updated_at`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Conversation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations WHERE id = $1
	`, id)

	conv, err := scanConversation(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, infrastructure.ErrConversationNotFound
		}
		return nil, fmt.Errorf("failed to query conversation: %w", err)
	}
	return conv, nil
}

func (r *PostgresRepository) ListJoined(ctx context.Context, viewerID string) ([]EnrichedConversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.id, c.participant_1, c.participant_2,
		       c.last_message, c.last_message_at, c.created_at, c.updated_at,
		       u.id, u.name, u.username, u.avatar_url, u.bio
		FROM conversations c
		LEFT JOIN users u
		  ON u.id = CASE WHEN c.participant_1 = $1 THEN c.participant_2 ELSE c.participant_1 END
		WHERE c.participant_1 = $1 OR c.participant_2 = $1
		ORDER BY c.updated_at DESC
	`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []EnrichedConversation
	for rows.Next() {
		var (
			ec            EnrichedConversation
			lastMessage   sql.NullString
			lastMessageAt sql.NullTime
			otherID       sql.NullString
			otherName     sql.NullString
			otherUsername sql.NullString
			otherAvatar   sql.NullString
			otherBio      sql.NullString
		)
		err := rows.Scan(
			&ec.ID, &ec.Participant1, &ec.Participant2,
			&lastMessage, &lastMessageAt, &ec.CreatedAt, &ec.UpdatedAt,
			&otherID, &otherName, &otherUsername, &otherAvatar, &otherBio,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		if lastMessage.Valid {
			v := lastMessage.String
			ec.LastMessage = &v
		}
		if lastMessageAt.Valid {
			t := lastMessageAt.Time
			ec.LastMessageAt = &t
		}
		if otherID.Valid {
			user := &profile.User{ID: otherID.String, Name: otherName.String}
			if otherUsername.Valid {
				v := otherUsername.String
				user.Username = &v
			}
			if otherAvatar.Valid {
				v := otherAvatar.String
				user.AvatarURL = &v
			}
			if otherBio.Valid {
				v := otherBio.String
				user.Bio = &v
			}
			ec.OtherUser = user
		} else {
			ec.OtherUser = profile.Placeholder(ec.OtherParticipant(viewerID))
		}
		convs = append(convs, ec)
	}
	return convs, rows.Err()
}

func (r *PostgresRepository) ListRaw(ctx context.Context, viewerID string) ([]Conversation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+conversationColumns+`
		FROM conversations
		WHERE participant_1 = $1 OR participant_2 = $1
		ORDER BY updated_at DESC
	`, viewerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []Conversation
	for rows.Next() {
		conv, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		convs = append(convs, *conv)
	}
	return convs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConversation(row rowScanner) (*Conversation, error) {
	var c Conversation
	var lastMessage sql.NullString
	var lastMessageAt sql.NullTime

	err := row.Scan(&c.ID, &c.Participant1, &c.Participant2,
		&lastMessage, &lastMessageAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastMessage.Valid {
		v := lastMessage.String
		c.LastMessage = &v
	}
	if lastMessageAt.Valid {
		t := lastMessageAt.Time
		c.LastMessageAt = &t
	}
	return &c, nil
}
