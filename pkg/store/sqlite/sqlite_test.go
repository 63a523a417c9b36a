package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"fieldagent/pkg/store"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, &store.Document{Topic: "Rice", Content: "Rice is a staple."}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Topics are normalized, lookup is case-insensitive.
	doc, err := s.Get(ctx, "RICE")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Topic != "rice" {
		t.Errorf("Topic = %q, want %q", doc.Topic, "rice")
	}
	if doc.Content != "Rice is a staple." {
		t.Errorf("Content = %q", doc.Content)
	}
	if doc.CreatedAt.IsZero() || doc.UpdatedAt.IsZero() {
		t.Error("timestamps not set")
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Get(context.Background(), "missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get(missing) = %v, want ErrNotFound", err)
	}
}

func TestPutUpsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, &store.Document{Topic: "rice", Content: "v1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, &store.Document{Topic: "rice", Content: "v2"}); err != nil {
		t.Fatalf("Put (update): %v", err)
	}

	doc, err := s.Get(ctx, "rice")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if doc.Content != "v2" {
		t.Errorf("Content = %q, want %q", doc.Content, "v2")
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(docs) != 1 {
		t.Errorf("List after upsert returned %d docs, want 1", len(docs))
	}
}

func TestListOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, topic := range []string{"wheat", "maize", "rice"} {
		if err := s.Put(ctx, &store.Document{Topic: topic, Content: topic}); err != nil {
			t.Fatalf("Put(%s): %v", topic, err)
		}
	}

	docs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"maize", "rice", "wheat"}
	if len(docs) != len(want) {
		t.Fatalf("List returned %d docs, want %d", len(docs), len(want))
	}
	for i, topic := range want {
		if docs[i].Topic != topic {
			t.Errorf("docs[%d].Topic = %q, want %q", i, docs[i].Topic, topic)
		}
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, &store.Document{Topic: "rice", Content: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Delete(ctx, "rice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(ctx, "rice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Get after delete = %v, want ErrNotFound", err)
	}
	if err := s.Delete(ctx, "rice"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("Delete(missing) = %v, want ErrNotFound", err)
	}
}
