package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"linkup/internal/conversation"
	"linkup/internal/message"
)

// event mirrors the JSON payloads emitted by the notification triggers.
type event struct {
	Op             string `json:"op"`
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Participant1   string `json:"participant_1"`
	Participant2   string `json:"participant_2"`
}

// ConversationChange is delivered for insert/update/delete on a user's
// conversation set. Conversation is the re-fetched row; nil for deletes,
// where only the identifier survives.
type ConversationChange struct {
	Op             string                     `json:"op"`
	ConversationID string                     `json:"conversation_id"`
	Conversation   *conversation.Conversation `json:"conversation,omitempty"`
}

// MessageFetcher resolves the canonical enriched message for an event.
type MessageFetcher func(ctx context.Context, messageID string) (*message.EnrichedMessage, error)

// ConversationFetcher resolves the canonical conversation row for an event.
type ConversationFetcher func(ctx context.Context, conversationID string) (*conversation.Conversation, error)

const fetchTimeout = 5 * time.Second

// Bridge turns storage change streams into enriched callbacks. Event
// payloads are treated as pointers only: before dispatch the bridge
// re-fetches the row, because the payload lacks derived fields and the row
// may have changed since the event fired. Delivery is at-least-once and
// unordered across concurrent writers.
type Bridge struct {
	newSource         SourceFactory
	fetchMessage      MessageFetcher
	fetchConversation ConversationFetcher
	logger            *slog.Logger
}

func NewBridge(newSource SourceFactory, fetchMessage MessageFetcher, fetchConversation ConversationFetcher, logger *slog.Logger) *Bridge {
	return &Bridge{
		newSource:         newSource,
		fetchMessage:      fetchMessage,
		fetchConversation: fetchConversation,
		logger:            logger,
	}
}

// Subscription is a handle on one or more underlying change streams.
type Subscription struct {
	sources []Source
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Cancel terminates the streams. No handler runs after the streams drain,
// though an event already being dispatched may still complete.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		close(s.done)
		for _, src := range s.sources {
			_ = src.Close()
		}
	})
	s.wg.Wait()
}

// SubscribeToConversation streams new messages in a conversation to
// onMessage, each enriched with the sender's profile.
func (b *Bridge) SubscribeToConversation(conversationID string, onMessage func(*message.EnrichedMessage)) (*Subscription, error) {
	src, err := b.newSource(MessageEventsChannel)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{sources: []Source{src}, done: make(chan struct{})}
	sub.wg.Add(1)
	go func() {
		defer sub.wg.Done()
		b.run(sub, src, func(ev event) {
			if ev.Op != "INSERT" || ev.ConversationID != conversationID {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
			defer cancel()

			enriched, err := b.fetchMessage(ctx, ev.ID)
			if err != nil {
				b.logger.Warn("dropping message event, row fetch failed", "message_id", ev.ID, "error", err)
				return
			}
			onMessage(enriched)
		})
	}()
	return sub, nil
}

// SubscribeToUserConversations streams changes to any conversation the user
// participates in. Two streams feed the handler, one per participant slot;
// dispatch order between them is not guaranteed.
func (b *Bridge) SubscribeToUserConversations(userID string, onChange func(ConversationChange)) (*Subscription, error) {
	matchers := []func(event) bool{
		func(ev event) bool { return ev.Participant1 == userID },
		func(ev event) bool { return ev.Participant2 == userID },
	}

	sub := &Subscription{done: make(chan struct{})}
	for _, match := range matchers {
		src, err := b.newSource(ConversationEventsChannel)
		if err != nil {
			for _, opened := range sub.sources {
				_ = opened.Close()
			}
			return nil, err
		}
		sub.sources = append(sub.sources, src)

		match := match
		sub.wg.Add(1)
		go func(src Source) {
			defer sub.wg.Done()
			b.run(sub, src, func(ev event) {
				if !match(ev) {
					return
				}
				onChange(b.conversationChange(ev))
			})
		}(src)
	}
	return sub, nil
}

func (b *Bridge) conversationChange(ev event) ConversationChange {
	change := ConversationChange{Op: ev.Op, ConversationID: ev.ID}
	if ev.Op == "DELETE" {
		return change
	}

	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
	defer cancel()

	conv, err := b.fetchConversation(ctx, ev.ID)
	if err != nil {
		b.logger.Warn("conversation row fetch failed, delivering identifier only",
			"conversation_id", ev.ID, "error", err)
		return change
	}
	change.Conversation = conv
	return change
}

func (b *Bridge) run(sub *Subscription, src Source, dispatch func(event)) {
	for {
		select {
		case <-sub.done:
			return
		case n, ok := <-src.Notifications():
			if !ok {
				return
			}
			var ev event
			if err := json.Unmarshal([]byte(n.Payload), &ev); err != nil {
				b.logger.Warn("dropping malformed change event", "channel", n.Channel, "error", err)
				continue
			}
			dispatch(ev)
		}
	}
}
