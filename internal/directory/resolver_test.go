package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

type fakeDirectory struct {
	users map[string]Recipient
	err   error
}

func (f *fakeDirectory) GetUser(_ context.Context, id string) (*Recipient, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *fakeDirectory) GetUsersBatch(_ context.Context, ids []string) (BatchResult, error) {
	if f.err != nil {
		return BatchResult{}, f.err
	}
	var res BatchResult
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			res.Found = append(res.Found, u)
		} else {
			res.NotFound = append(res.NotFound, id)
		}
	}
	return res, nil
}

func TestResolveMiss(t *testing.T) {
	r := NewResolver(&fakeDirectory{users: map[string]Recipient{}}, zerolog.Nop())
	if _, ok := r.Resolve(context.Background(), "ghost"); ok {
		t.Fatalf("expected miss for unknown user")
	}
	if _, ok := r.Resolve(context.Background(), ""); ok {
		t.Fatalf("expected miss for empty id")
	}
}

func TestResolveDirectoryErrorDegradesToMiss(t *testing.T) {
	r := NewResolver(&fakeDirectory{err: errors.New("directory down")}, zerolog.Nop())
	if _, ok := r.Resolve(context.Background(), "u1"); ok {
		t.Fatalf("directory error must surface as a miss, not a hit")
	}
}

func TestResolveBatchPartialMiss(t *testing.T) {
	dir := &fakeDirectory{users: map[string]Recipient{
		"u1": {UserID: "u1"},
		"u2": {UserID: "u2"},
	}}
	r := NewResolver(dir, zerolog.Nop())

	found, notFound := r.ResolveBatch(context.Background(), []string{"u1", "ghost", "u2", "u1", ""})
	if len(found) != 2 {
		t.Fatalf("found = %d, expected 2", len(found))
	}
	if len(notFound) != 1 || notFound[0] != "ghost" {
		t.Fatalf("notFound = %v, expected [ghost]", notFound)
	}
}

func TestResolveBatchErrorMarksAllNotFound(t *testing.T) {
	r := NewResolver(&fakeDirectory{err: errors.New("directory down")}, zerolog.Nop())
	found, notFound := r.ResolveBatch(context.Background(), []string{"u1", "u2"})
	if len(found) != 0 {
		t.Fatalf("expected no recipients on directory failure")
	}
	if len(notFound) != 2 {
		t.Fatalf("notFound = %v, expected both ids", notFound)
	}
}
