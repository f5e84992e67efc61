package conversation

import (
	"time"

	"linkup/internal/profile"
)

type Conversation struct {
	ID            string     `json:"id"`
	Participant1  string     `json:"participant_1"`
	Participant2  string     `json:"participant_2"`
	LastMessage   *string    `json:"last_message,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// OtherParticipant resolves the participant that is not the viewer. The
// comparison against participant_1 is the single rule both list paths use.
func (c *Conversation) OtherParticipant(viewerID string) string {
	if c.Participant1 == viewerID {
		return c.Participant2
	}
	return c.Participant1
}

// EnrichedConversation pairs a conversation with the resolved profile of the
// other participant, relative to the viewing user. A read-time projection,
// never persisted.
type EnrichedConversation struct {
	Conversation
	OtherUser *profile.User `json:"other_user"`
}
