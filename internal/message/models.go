package message

import (
	"time"

	"linkup/internal/profile"
)

// Media is an attachment reference carried by a message.
type Media struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Content        string    `json:"content"`
	Media          *Media    `json:"media,omitempty"`
	IsRead         bool      `json:"is_read"`
	CreatedAt      time.Time `json:"created_at"`
}

// EnrichedMessage pairs a message with its sender's resolved profile for
// display. A read-time projection, never persisted.
type EnrichedMessage struct {
	Message
	Sender *profile.User `json:"sender"`
}
