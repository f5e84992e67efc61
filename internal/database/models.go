package database

import "time"

// User rows are owned by the account directory; this service reads them and
// migrates the table only so local environments can run standalone.
type User struct {
	ID        string  `gorm:"primaryKey"`
	Name      string  `gorm:"not null"`
	Username  *string `gorm:"uniqueIndex"`
	AvatarURL *string `gorm:"column:avatar_url"`
	Bio       *string
	Email     *string
	Phone     *string
	Address   *string
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

// Conversation participants are stored in canonical order, smaller identifier
// first. The composite unique index is what makes concurrent find-or-create
// attempts collapse onto a single row.
type Conversation struct {
	ID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Participant1  string  `gorm:"column:participant_1;not null;uniqueIndex:idx_conversation_pair"`
	Participant2  string  `gorm:"column:participant_2;not null;uniqueIndex:idx_conversation_pair"`
	LastMessage   *string `gorm:"column:last_message"`
	LastMessageAt *time.Time
	CreatedAt     time.Time `gorm:"not null;default:now()"`
	UpdatedAt     time.Time `gorm:"not null;default:now()"`
}

type Message struct {
	ID             string `gorm:"type:uuid;primaryKey"`
	ConversationID string `gorm:"type:uuid;not null;index:idx_messages_conversation_created"`
	SenderID       string `gorm:"not null"`
	Content        string
	MediaURL       *string `gorm:"column:media_url"`
	MediaType      *string
	IsRead         bool      `gorm:"not null;default:false"`
	CreatedAt      time.Time `gorm:"not null;default:now();index:idx_messages_conversation_created"`
}

type Follow struct {
	FollowerID string    `gorm:"primaryKey"`
	FolloweeID string    `gorm:"primaryKey"`
	CreatedAt  time.Time `gorm:"not null;default:now()"`
}
