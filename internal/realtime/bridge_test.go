package realtime

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"linkup/internal/conversation"
	"linkup/internal/message"
)

type fakeSource struct {
	ch     chan Notification
	mu     sync.Mutex
	closed bool
}

func newFakeSource() *fakeSource {
	return &fakeSource{ch: make(chan Notification, 16)}
}

func (f *fakeSource) Notifications() <-chan Notification { return f.ch }

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.ch)
	}
	return nil
}

func (f *fakeSource) emit(payload string) {
	f.ch <- Notification{Channel: MessageEventsChannel, Payload: payload}
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func singleSourceFactory(src Source) SourceFactory {
	return func(_ ...string) (Source, error) { return src, nil }
}

func waitFor[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		panic("unreachable")
	}
}

func TestSubscribeToConversationDeliversEnrichedMessage(t *testing.T) {
	src := newFakeSource()
	fetched := make(chan string, 1)
	bridge := NewBridge(singleSourceFactory(src),
		func(_ context.Context, id string) (*message.EnrichedMessage, error) {
			fetched <- id
			return &message.EnrichedMessage{Message: message.Message{ID: id, Content: "canonical"}}, nil
		},
		nil, testLogger())

	got := make(chan *message.EnrichedMessage, 1)
	sub, err := bridge.SubscribeToConversation("c1", func(m *message.EnrichedMessage) { got <- m })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Cancel()

	src.emit(`{"op":"INSERT","id":"m1","conversation_id":"c1","sender_id":"alice"}`)

	m := waitFor(t, got)
	if m.ID != "m1" || m.Content != "canonical" {
		t.Fatalf("delivered %+v, want re-fetched row m1", m.Message)
	}
	if id := waitFor(t, fetched); id != "m1" {
		t.Fatalf("fetched %q, want m1", id)
	}
}

func TestSubscribeToConversationFiltersEvents(t *testing.T) {
	src := newFakeSource()
	bridge := NewBridge(singleSourceFactory(src),
		func(_ context.Context, id string) (*message.EnrichedMessage, error) {
			return &message.EnrichedMessage{Message: message.Message{ID: id}}, nil
		},
		nil, testLogger())

	got := make(chan *message.EnrichedMessage, 4)
	sub, err := bridge.SubscribeToConversation("c1", func(m *message.EnrichedMessage) { got <- m })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Cancel()

	src.emit(`{"op":"INSERT","id":"other","conversation_id":"c2"}`)
	src.emit(`{"op":"UPDATE","id":"edited","conversation_id":"c1"}`)
	src.emit(`not json`)
	src.emit(`{"op":"INSERT","id":"mine","conversation_id":"c1"}`)

	if m := waitFor(t, got); m.ID != "mine" {
		t.Fatalf("delivered %q, want only the matching insert", m.ID)
	}
	select {
	case m := <-got:
		t.Fatalf("unexpected extra delivery: %+v", m.Message)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSubscribeToConversationDropsEventOnFetchFailure(t *testing.T) {
	src := newFakeSource()
	bridge := NewBridge(singleSourceFactory(src),
		func(_ context.Context, id string) (*message.EnrichedMessage, error) {
			if id == "gone" {
				return nil, errors.New("row vanished")
			}
			return &message.EnrichedMessage{Message: message.Message{ID: id}}, nil
		},
		nil, testLogger())

	got := make(chan *message.EnrichedMessage, 2)
	sub, err := bridge.SubscribeToConversation("c1", func(m *message.EnrichedMessage) { got <- m })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Cancel()

	src.emit(`{"op":"INSERT","id":"gone","conversation_id":"c1"}`)
	src.emit(`{"op":"INSERT","id":"live","conversation_id":"c1"}`)

	if m := waitFor(t, got); m.ID != "live" {
		t.Fatalf("delivered %q, want the fetchable event only", m.ID)
	}
}

func TestCancelStopsDelivery(t *testing.T) {
	src := newFakeSource()
	bridge := NewBridge(singleSourceFactory(src),
		func(_ context.Context, id string) (*message.EnrichedMessage, error) {
			return &message.EnrichedMessage{Message: message.Message{ID: id}}, nil
		},
		nil, testLogger())

	got := make(chan *message.EnrichedMessage, 2)
	sub, err := bridge.SubscribeToConversation("c1", func(m *message.EnrichedMessage) { got <- m })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	src.emit(`{"op":"INSERT","id":"m1","conversation_id":"c1"}`)
	waitFor(t, got)

	sub.Cancel()
	if !src.closed {
		t.Fatal("cancel must close the underlying source")
	}

	// Cancel is idempotent.
	sub.Cancel()
}

func TestSubscribeToUserConversationsMatchesEitherSlot(t *testing.T) {
	sources := make([]*fakeSource, 0, 2)
	factory := func(_ ...string) (Source, error) {
		src := newFakeSource()
		sources = append(sources, src)
		return src, nil
	}

	bridge := NewBridge(factory, nil,
		func(_ context.Context, id string) (*conversation.Conversation, error) {
			return &conversation.Conversation{ID: id, Participant1: "alice"}, nil
		},
		testLogger())

	got := make(chan ConversationChange, 4)
	sub, err := bridge.SubscribeToUserConversations("alice", func(c ConversationChange) { got <- c })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Cancel()

	if len(sources) != 2 {
		t.Fatalf("opened %d sources, want one per participant slot", len(sources))
	}

	// Matches slot 1 on the first stream, slot 2 on the second.
	sources[0].emit(`{"op":"INSERT","id":"c1","participant_1":"alice","participant_2":"bob"}`)
	sources[1].emit(`{"op":"UPDATE","id":"c2","participant_1":"bob","participant_2":"alice"}`)
	// Neither slot matches: silently skipped.
	sources[0].emit(`{"op":"INSERT","id":"c3","participant_1":"bob","participant_2":"carol"}`)

	seen := map[string]ConversationChange{}
	for i := 0; i < 2; i++ {
		c := waitFor(t, got)
		seen[c.ConversationID] = c
	}
	if _, ok := seen["c1"]; !ok {
		t.Error("participant_1 match not delivered")
	}
	if _, ok := seen["c2"]; !ok {
		t.Error("participant_2 match not delivered")
	}
	if c, ok := seen["c1"]; ok && (c.Conversation == nil || c.Conversation.ID != "c1") {
		t.Errorf("change not enriched with re-fetched row: %+v", c)
	}
	select {
	case c := <-got:
		t.Fatalf("unexpected delivery for non-participant: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDeleteDeliversIdentifierOnly(t *testing.T) {
	sources := make([]*fakeSource, 0, 2)
	factory := func(_ ...string) (Source, error) {
		src := newFakeSource()
		sources = append(sources, src)
		return src, nil
	}

	fetches := make(chan string, 1)
	bridge := NewBridge(factory, nil,
		func(_ context.Context, id string) (*conversation.Conversation, error) {
			fetches <- id
			return &conversation.Conversation{ID: id}, nil
		},
		testLogger())

	got := make(chan ConversationChange, 1)
	sub, err := bridge.SubscribeToUserConversations("alice", func(c ConversationChange) { got <- c })
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer sub.Cancel()

	sources[0].emit(`{"op":"DELETE","id":"c9","participant_1":"alice","participant_2":"bob"}`)

	c := waitFor(t, got)
	if c.Op != "DELETE" || c.ConversationID != "c9" {
		t.Fatalf("got %+v, want DELETE for c9", c)
	}
	if c.Conversation != nil {
		t.Fatal("delete must not carry a row, it no longer exists")
	}
	select {
	case id := <-fetches:
		t.Fatalf("unexpected row fetch %q for a delete", id)
	case <-time.After(100 * time.Millisecond):
	}
}
