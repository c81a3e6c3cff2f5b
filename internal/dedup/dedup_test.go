package dedup

import (
	"context"
	"net/url"
	"testing"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"fragment dropped", "https://example.com/page#section", "https://example.com/page"},
		{"scheme lowercased", "HTTPS://example.com/page", "https://example.com/page"},
		{"host lowercased", "https://EXAMPLE.com/page", "https://example.com/page"},
		{"empty path becomes slash", "https://example.com", "https://example.com/"},
		{"query kept", "https://example.com/list?page=2", "https://example.com/list?page=2"},
		{"path case kept", "https://example.com/Page", "https://example.com/Page"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			u, err := url.Parse(tt.in)
			if err != nil {
				t.Fatalf("parse %q: %v", tt.in, err)
			}
			if got := Normalize(u); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestMemoryStoreSeen(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	seen, err := store.Seen(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("Seen() error: %v", err)
	}
	if seen {
		t.Error("first visit reported as seen")
	}

	seen, err = store.Seen(ctx, "https://example.com/")
	if err != nil {
		t.Fatalf("Seen() error: %v", err)
	}
	if !seen {
		t.Error("second visit not reported as seen")
	}

	if got := store.Len(); got != 1 {
		t.Errorf("Len() = %d, want 1", got)
	}
}
