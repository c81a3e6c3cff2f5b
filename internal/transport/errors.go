package transport

import "fmt"

// ErrorKind classifies a transport failure for retry matching.
type ErrorKind string

const (
	// KindConnection is a network failure before or during the exchange.
	KindConnection ErrorKind = "connection"

	// KindTimeout is a request that exceeded its deadline.
	KindTimeout ErrorKind = "timeout"

	// KindDecode is a body that could not be read or decoded to UTF-8.
	KindDecode ErrorKind = "decode"
)

// Error is a classified transport failure.
type Error struct {
	// Kind is the failure classification.
	Kind ErrorKind

	// URL is the request URL that failed.
	URL string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("transport: %s fetching %s: %v", e.Kind, e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}
