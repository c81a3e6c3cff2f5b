package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Category routes an item to a storage destination.
type Category string

const (
	// CategoryData is successfully extracted structured data.
	CategoryData Category = "data"

	// CategoryError is terminal-failure records for requests whose retry
	// budget ran out.
	CategoryError Category = "error"

	// CategoryRaw is unprocessed response bodies kept for reprocessing.
	CategoryRaw Category = "raw"
)

// CustomCategory returns a spider-defined storage category.
func CustomCategory(name string) Category {
	return Category("custom:" + name)
}

// String returns the category identifier.
func (c Category) String() string {
	return string(c)
}

// Item is one unit of persisted crawl output.
type Item struct {
	// ID uniquely identifies the item.
	ID string `json:"id"`

	// URL is the page the item was extracted from.
	URL string `json:"url"`

	// Timestamp is when the item was produced.
	Timestamp time.Time `json:"timestamp"`

	// Data is the item payload. It must be JSON-serializable.
	Data any `json:"data"`

	// Metadata carries context about how the item was produced, such as
	// the spider name or retry counts.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// NewItem creates an item with a fresh ID and the current time.
func NewItem(url string, data any) Item {
	return Item{
		ID:        uuid.NewString(),
		URL:       url,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// Backend persists items to one destination. Implementations must be safe
// for concurrent use; crawl workers store items in parallel.
type Backend interface {
	// Store persists one item. Errors are *Error values.
	Store(ctx context.Context, item Item) error

	// Close releases the backend's resources.
	Close() error
}

// ErrorKind classifies a storage failure.
type ErrorKind string

const (
	// KindConnection is a failure reaching the storage destination.
	KindConnection ErrorKind = "connection"

	// KindOperation is a failed write on an established connection.
	KindOperation ErrorKind = "operation"

	// KindSerialization is an item payload that could not be encoded.
	KindSerialization ErrorKind = "serialization"
)

// Error is a classified storage failure.
type Error struct {
	// Kind is the failure classification.
	Kind ErrorKind

	// Backend names the backend that failed.
	Backend string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("storage: %s backend %s: %v", e.Backend, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
