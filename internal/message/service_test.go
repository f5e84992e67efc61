package message

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lib/pq"

	"linkup/infrastructure"
	"linkup/internal/profile"
)

type fakeRepo struct {
	joinedInsertErr error
	insertErr       error
	lastInserted    *Message

	joined    []EnrichedMessage
	joinedErr error
	raw       []Message
	rawErr    error
	lastLimit int

	markCalls   int
	unreadCount int
}

func (f *fakeRepo) InsertJoined(_ context.Context, m *Message) (*EnrichedMessage, error) {
	if f.joinedInsertErr != nil {
		return nil, f.joinedInsertErr
	}
	f.lastInserted = m
	stored := *m
	stored.CreatedAt = time.Now()
	return &EnrichedMessage{Message: stored, Sender: &profile.User{ID: m.SenderID, Name: "Resolved"}}, nil
}

func (f *fakeRepo) Insert(_ context.Context, m *Message) (*Message, error) {
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	f.lastInserted = m
	stored := *m
	stored.CreatedAt = time.Now()
	return &stored, nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Message, error) {
	return nil, infrastructure.ErrNotFound
}

func (f *fakeRepo) ListJoined(_ context.Context, _ string, limit int) ([]EnrichedMessage, error) {
	f.lastLimit = limit
	return f.joined, f.joinedErr
}

func (f *fakeRepo) ListRaw(_ context.Context, _ string, limit int) ([]Message, error) {
	f.lastLimit = limit
	return f.raw, f.rawErr
}

func (f *fakeRepo) MarkRead(_ context.Context, _, _ string) error {
	f.markCalls++
	return nil
}

func (f *fakeRepo) UnreadCount(_ context.Context, _ string) (int, error) {
	return f.unreadCount, nil
}

type fakeProfileRepo struct {
	users map[string]*profile.User
}

func (f *fakeProfileRepo) GetByID(_ context.Context, id string) (*profile.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, infrastructure.ErrNotFound
}

func (f *fakeProfileRepo) GetByIDs(_ context.Context, ids []string) ([]*profile.User, error) {
	var out []*profile.User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService(repo Repository, users map[string]*profile.User) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	profiles := profile.NewService(&fakeProfileRepo{users: users}, logger)
	return NewService(repo, profiles, logger)
}

func TestSendTrimsContent(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	msg, err := svc.Send(context.Background(), "c1", "alice", "  hello  ", nil)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.Content != "hello" {
		t.Fatalf("content = %q, want trimmed %q", msg.Content, "hello")
	}
	if repo.lastInserted.Content != "hello" {
		t.Fatalf("persisted content = %q, want trimmed", repo.lastInserted.Content)
	}
}

func TestSendRejectsEmptyWithoutMedia(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil)

	_, err := svc.Send(context.Background(), "c1", "alice", "   ", nil)
	if !errors.Is(err, infrastructure.ErrInvalidArgument) {
		t.Fatalf("got %v, want ErrInvalidArgument", err)
	}
}

func TestSendAllowsMediaOnly(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	msg, err := svc.Send(context.Background(), "c1", "alice", "", &Media{URL: "https://cdn/x.jpg", Type: "image"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.Media == nil || msg.Media.Type != "image" {
		t.Fatalf("media not preserved: %+v", msg.Media)
	}
}

func TestSendFallsBackToPlainInsert(t *testing.T) {
	repo := &fakeRepo{joinedInsertErr: &pq.Error{Code: "42703"}}
	svc := newTestService(repo, map[string]*profile.User{
		"alice": {ID: "alice", Name: "Alice"},
	})

	msg, err := svc.Send(context.Background(), "c1", "alice", "hi", nil)
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if msg.Sender == nil || msg.Sender.Name != "Alice" {
		t.Fatalf("fallback enrichment failed: %+v", msg.Sender)
	}
}

func TestSendFallbackUnresolvedSenderGetsPlaceholder(t *testing.T) {
	repo := &fakeRepo{joinedInsertErr: &pq.Error{Code: "42703"}}
	svc := newTestService(repo, nil)

	msg, err := svc.Send(context.Background(), "c1", "ghost", "hi", nil)
	if err != nil {
		t.Fatalf("send must not fail when only enrichment fails: %v", err)
	}
	if msg.Sender == nil || msg.Sender.Name != "Unknown User" {
		t.Fatalf("sender = %+v, want placeholder", msg.Sender)
	}
}

func TestSendSchemaNotProvisioned(t *testing.T) {
	repo := &fakeRepo{
		joinedInsertErr: &pq.Error{Code: "42P01"},
		insertErr:       &pq.Error{Code: "42P01"},
	}
	svc := newTestService(repo, nil)

	_, err := svc.Send(context.Background(), "c1", "alice", "hi", nil)
	if !errors.Is(err, infrastructure.ErrSchemaNotProvisioned) {
		t.Fatalf("got %v, want ErrSchemaNotProvisioned", err)
	}
}

func TestListDefaultsLimit(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	if _, err := svc.List(context.Background(), "c1", 0); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastLimit != DefaultListLimit {
		t.Fatalf("limit = %d, want default %d", repo.lastLimit, DefaultListLimit)
	}

	if _, err := svc.List(context.Background(), "c1", 10); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if repo.lastLimit != 10 {
		t.Fatalf("limit = %d, want caller override 10", repo.lastLimit)
	}
}

func TestListDegradesToClientSideJoin(t *testing.T) {
	repo := &fakeRepo{
		joinedErr: &pq.Error{Code: "42703"},
		raw: []Message{
			{ID: "m1", ConversationID: "c1", SenderID: "alice", Content: "hi"},
			{ID: "m2", ConversationID: "c1", SenderID: "ghost", Content: "yo"},
		},
	}
	svc := newTestService(repo, map[string]*profile.User{
		"alice": {ID: "alice", Name: "Alice"},
	})

	msgs, err := svc.List(context.Background(), "c1", 0)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(msgs) != 2 {
		t.Fatalf("got %d messages, want 2", len(msgs))
	}
	if msgs[0].Sender.Name != "Alice" {
		t.Errorf("resolved sender not attached: %+v", msgs[0].Sender)
	}
	if msgs[1].Sender.Name != "Unknown User" {
		t.Errorf("unresolved sender should get a placeholder: %+v", msgs[1].Sender)
	}
}

func TestMarkReadIdempotent(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, nil)

	for i := 0; i < 2; i++ {
		if err := svc.MarkRead(context.Background(), "c1", "bob"); err != nil {
			t.Fatalf("MarkRead call %d returned error: %v", i+1, err)
		}
	}
	if repo.markCalls != 2 {
		t.Fatalf("markCalls = %d, want 2", repo.markCalls)
	}
}

func TestPreview(t *testing.T) {
	tests := []struct {
		msg  Message
		want string
	}{
		{Message{Content: "hello"}, "hello"},
		{Message{Media: &Media{URL: "u", Type: "image"}}, "Attachment"},
		{Message{}, ""},
	}
	for _, tt := range tests {
		if got := Preview(&tt.msg); got != tt.want {
			t.Errorf("Preview(%+v) = %q, want %q", tt.msg, got, tt.want)
		}
	}
}

func TestValidationErrors(t *testing.T) {
	svc := newTestService(&fakeRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Send(ctx, "", "alice", "hi", nil); !errors.Is(err, infrastructure.ErrInvalidArgument) {
		t.Errorf("Send without conversation id: got %v", err)
	}
	if _, err := svc.List(ctx, "", 0); !errors.Is(err, infrastructure.ErrInvalidArgument) {
		t.Errorf("List without conversation id: got %v", err)
	}
	if err := svc.MarkRead(ctx, "c1", ""); !errors.Is(err, infrastructure.ErrInvalidArgument) {
		t.Errorf("MarkRead without reader id: got %v", err)
	}
	if _, err := svc.UnreadCount(ctx, ""); !errors.Is(err, infrastructure.ErrInvalidArgument) {
		t.Errorf("UnreadCount without reader id: got %v", err)
	}
}
