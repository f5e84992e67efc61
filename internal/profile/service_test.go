package profile

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"linkup/infrastructure"
)

type fakeRepo struct {
	users   map[string]*User
	err     error
	lastIDs []string
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, infrastructure.ErrNotFound
}

func (f *fakeRepo) GetByIDs(_ context.Context, ids []string) ([]*User, error) {
	f.lastIDs = ids
	if f.err != nil {
		return nil, f.err
	}
	var out []*User
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestFetchResolvesProfile(t *testing.T) {
	svc := newTestService(&fakeRepo{users: map[string]*User{
		"alice": {ID: "alice", Name: "Alice"},
	}})

	user, err := svc.Fetch(context.Background(), "alice")
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}
	if user.Name != "Alice" {
		t.Fatalf("got name %q, want Alice", user.Name)
	}
}

func TestFetchMissingUserGetsPlaceholder(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	user, err := svc.Fetch(context.Background(), "ghost")
	if !errors.Is(err, infrastructure.ErrNotFound) {
		t.Fatalf("got error %v, want ErrNotFound", err)
	}
	if user == nil {
		t.Fatal("Fetch returned nil user alongside the error")
	}
	if user.ID != "ghost" || user.Name != "Unknown User" {
		t.Fatalf("placeholder = %+v, want id ghost and name Unknown User", user)
	}
}

func TestFetchSentinelIDs(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	for _, id := range []string{"", "undefined", "null", "  "} {
		user, err := svc.Fetch(context.Background(), id)
		if !errors.Is(err, infrastructure.ErrInvalidArgument) {
			t.Errorf("Fetch(%q): got %v, want ErrInvalidArgument", id, err)
		}
		if user == nil || user.Name != "Unknown User" {
			t.Errorf("Fetch(%q): placeholder missing, got %+v", id, user)
		}
	}
}

func TestFetchStorageFailureStillYieldsPlaceholder(t *testing.T) {
	svc := newTestService(&fakeRepo{err: errors.New("connection refused")})

	user, err := svc.Fetch(context.Background(), "alice")
	if !errors.Is(err, infrastructure.ErrTransientServiceError) {
		t.Fatalf("got error %v, want ErrTransientServiceError", err)
	}
	if user == nil || user.ID != "alice" {
		t.Fatalf("placeholder = %+v, want id alice", user)
	}
}

func TestFetchManyDedupesAndSkipsSentinels(t *testing.T) {
	repo := &fakeRepo{users: map[string]*User{
		"alice": {ID: "alice", Name: "Alice"},
		"bob":   {ID: "bob", Name: "Bob"},
	}}
	svc := newTestService(repo)

	byID, err := svc.FetchMany(context.Background(), []string{"alice", "bob", "alice", "undefined", ""})
	if err != nil {
		t.Fatalf("FetchMany returned error: %v", err)
	}
	if len(repo.lastIDs) != 2 {
		t.Fatalf("repository received ids %v, want deduped pair", repo.lastIDs)
	}
	if byID["alice"] == nil || byID["bob"] == nil {
		t.Fatalf("resolved map incomplete: %v", byID)
	}
}

func TestPlaceholderIsFreshPerCall(t *testing.T) {
	a := Placeholder("x")
	b := Placeholder("x")
	if a == b {
		t.Fatal("Placeholder returned a shared value")
	}
	a.Name = "mutated"
	if b.Name != "Unknown User" {
		t.Fatal("mutating one placeholder affected another")
	}
}
