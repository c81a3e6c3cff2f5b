package retry

// Category groups failures so that each failure source carries its own
// retry budget. A request exhausting its HTTP budget does not touch its
// parse budget.
type Category string

const (
	// CategoryHTTPError covers transport failures and non-2xx responses.
	CategoryHTTPError Category = "http_error"

	// CategoryParseError covers failures raised while parsing a response.
	CategoryParseError Category = "parse_error"

	// CategoryStorageError covers failures persisting extracted data.
	CategoryStorageError Category = "storage_error"
)

// CustomCategory returns a spider-defined retry category.
func CustomCategory(name string) Category {
	return Category("custom:" + name)
}

// String returns the category identifier.
func (c Category) String() string {
	return string(c)
}

// ErrorKind classifies the mechanical cause of a failure, independent of
// any HTTP status code.
type ErrorKind string

const (
	// KindNone means the failure carries no transport error, typically a
	// non-2xx status code.
	KindNone ErrorKind = ""

	// KindConnection is a network-level failure before or during the
	// exchange (refused, reset, DNS).
	KindConnection ErrorKind = "connection"

	// KindTimeout is a request that exceeded its deadline.
	KindTimeout ErrorKind = "timeout"

	// KindDecode is a body that could not be read or charset-decoded.
	KindDecode ErrorKind = "decode"

	// KindParse is a spider parse routine returning an error.
	KindParse ErrorKind = "parse"

	// KindStorage is a storage backend write failure.
	KindStorage ErrorKind = "storage"
)

// Failure describes one failed operation for condition matching.
// Zero-valued fields simply never match the corresponding conditions.
type Failure struct {
	// StatusCode is the HTTP status code, or 0 when no response exists.
	StatusCode int

	// Kind is the mechanical cause of the failure.
	Kind ErrorKind

	// Err is the underlying error, if any.
	Err error

	// Content is text associated with the failure that content conditions
	// match against: the response body for HTTP failures, the error
	// message for parse and storage failures.
	Content string
}
