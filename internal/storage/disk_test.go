package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskBackendStore(t *testing.T) {
	t.Parallel()

	t.Run("writes one json file per item", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		backend, err := NewDiskBackend(dir, "data")
		if err != nil {
			t.Fatalf("NewDiskBackend() error: %v", err)
		}

		item := NewItem("https://example.com/page", map[string]any{"title": "hello"})
		if err := backend.Store(context.Background(), item); err != nil {
			t.Fatalf("Store() error: %v", err)
		}

		entries, err := os.ReadDir(filepath.Join(dir, "data", "example.com"))
		if err != nil {
			t.Fatalf("read host dir: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("file count = %d, want 1", len(entries))
		}

		raw, err := os.ReadFile(filepath.Join(dir, "data", "example.com", entries[0].Name()))
		if err != nil {
			t.Fatalf("read item file: %v", err)
		}
		var stored Item
		if err := json.Unmarshal(raw, &stored); err != nil {
			t.Fatalf("unmarshal item file: %v", err)
		}
		if stored.ID != item.ID {
			t.Errorf("stored ID = %q, want %q", stored.ID, item.ID)
		}
		if stored.URL != item.URL {
			t.Errorf("stored URL = %q, want %q", stored.URL, item.URL)
		}
	})

	t.Run("items without host go to unknown", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		backend, err := NewDiskBackend(dir, "error")
		if err != nil {
			t.Fatalf("NewDiskBackend() error: %v", err)
		}

		if err := backend.Store(context.Background(), NewItem("", map[string]any{"reason": "x"})); err != nil {
			t.Fatalf("Store() error: %v", err)
		}
		entries, err := os.ReadDir(filepath.Join(dir, "error", "unknown"))
		if err != nil {
			t.Fatalf("read unknown dir: %v", err)
		}
		if len(entries) != 1 {
			t.Errorf("file count = %d, want 1", len(entries))
		}
	})

	t.Run("host with port is sanitized", func(t *testing.T) {
		t.Parallel()

		if got := hostDir("http://example.com:8080/x"); got != "example.com_8080" {
			t.Errorf("hostDir() = %q, want example.com_8080", got)
		}
	})

	t.Run("empty base dir rejected", func(t *testing.T) {
		t.Parallel()

		if _, err := NewDiskBackend("", "data"); err == nil {
			t.Error("NewDiskBackend(\"\") succeeded, want error")
		}
	})
}
