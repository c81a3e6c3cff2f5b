package storage

import (
	"context"
	"testing"
	"time"
)

func TestSQLiteBackendStore(t *testing.T) {
	t.Parallel()

	store, err := OpenSQLite(t.TempDir(), DefaultSQLiteOptions())
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	defer store.Close() //nolint:errcheck

	ctx := context.Background()
	backend := store.Collection("items")

	first := NewItem("https://example.com/1", map[string]any{"title": "first"})
	first.Metadata = map[string]any{"spider": "links"}
	if err := backend.Store(ctx, first); err != nil {
		t.Fatalf("Store() error: %v", err)
	}
	if err := backend.Store(ctx, NewItem("https://example.com/2", map[string]any{"title": "second"})); err != nil {
		t.Fatalf("Store() error: %v", err)
	}

	t.Run("count", func(t *testing.T) {
		count, err := store.CountDocuments(ctx, "items")
		if err != nil {
			t.Fatalf("CountDocuments() error: %v", err)
		}
		if count != 2 {
			t.Errorf("count = %d, want 2", count)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		docs, err := store.Documents(ctx, "items")
		if err != nil {
			t.Fatalf("Documents() error: %v", err)
		}
		if len(docs) != 2 {
			t.Fatalf("document count = %d, want 2", len(docs))
		}
		if docs[0].ItemID != first.ID {
			t.Errorf("first ItemID = %q, want %q", docs[0].ItemID, first.ID)
		}
		if docs[0].Data["title"] != "first" {
			t.Errorf("first title = %v, want first", docs[0].Data["title"])
		}
		if docs[0].Metadata["spider"] != "links" {
			t.Errorf("first metadata = %v, want spider:links", docs[0].Metadata)
		}
		if docs[0].Timestamp.IsZero() {
			t.Error("timestamp not round-tripped")
		}
	})

	t.Run("collections are isolated", func(t *testing.T) {
		errBackend := store.Collection("errors")
		if err := errBackend.Store(ctx, NewItem("https://example.com/bad", map[string]any{"reason": "404"})); err != nil {
			t.Fatalf("Store() error: %v", err)
		}
		count, err := store.CountDocuments(ctx, "errors")
		if err != nil {
			t.Fatalf("CountDocuments() error: %v", err)
		}
		if count != 1 {
			t.Errorf("errors count = %d, want 1", count)
		}
	})
}

func TestOpenSQLiteRequiresExisting(t *testing.T) {
	t.Parallel()

	opts := SQLiteOptions{CreateIfNotExists: false}
	if _, err := OpenSQLite(t.TempDir(), opts); err == nil {
		t.Error("OpenSQLite() without create succeeded on empty dir, want error")
	}
}

func TestParseTimestamp(t *testing.T) {
	t.Parallel()

	got := parseTimestamp("2026-08-23 10:30:00")
	want := time.Date(2026, 8, 23, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("parseTimestamp() = %v, want %v", got, want)
	}
	if !parseTimestamp("not a time").IsZero() {
		t.Error("parseTimestamp() on garbage did not return zero time")
	}
}
