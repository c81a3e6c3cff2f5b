package storage

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
)

// fakeWriter records written messages in memory.
type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
	closed   bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func TestKafkaBackendStore(t *testing.T) {
	t.Parallel()

	t.Run("one message per item keyed by ID", func(t *testing.T) {
		t.Parallel()

		writer := &fakeWriter{}
		backend := NewKafkaBackendWithWriter(writer)

		item := NewItem("https://example.com/a", map[string]any{"title": "a"})
		if err := backend.Store(context.Background(), item); err != nil {
			t.Fatalf("Store() error: %v", err)
		}

		if len(writer.messages) != 1 {
			t.Fatalf("message count = %d, want 1", len(writer.messages))
		}
		msg := writer.messages[0]
		if string(msg.Key) != item.ID {
			t.Errorf("message key = %q, want %q", msg.Key, item.ID)
		}
		var decoded Item
		if err := json.Unmarshal(msg.Value, &decoded); err != nil {
			t.Fatalf("unmarshal message value: %v", err)
		}
		if decoded.URL != item.URL {
			t.Errorf("decoded URL = %q, want %q", decoded.URL, item.URL)
		}
	})

	t.Run("writer failure surfaces as connection error", func(t *testing.T) {
		t.Parallel()

		writer := &fakeWriter{err: errors.New("broker down")}
		backend := NewKafkaBackendWithWriter(writer)

		err := backend.Store(context.Background(), NewItem("https://example.com", nil))
		var serr *Error
		if !errors.As(err, &serr) {
			t.Fatalf("error type = %T, want *Error", err)
		}
		if serr.Kind != KindConnection {
			t.Errorf("kind = %q, want connection", serr.Kind)
		}
	})

	t.Run("close propagates", func(t *testing.T) {
		t.Parallel()

		writer := &fakeWriter{}
		backend := NewKafkaBackendWithWriter(writer)
		if err := backend.Close(); err != nil {
			t.Fatalf("Close() error: %v", err)
		}
		if !writer.closed {
			t.Error("underlying writer not closed")
		}
	})
}
