package model

import (
	"bytes"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// ContentKind classifies a response body so spiders can pick a parsing
// strategy without re-inspecting headers.
type ContentKind string

const (
	// KindHTML is an HTML or XHTML document.
	KindHTML ContentKind = "html"

	// KindJSON is a JSON document.
	KindJSON ContentKind = "json"

	// KindText is plain text that is neither HTML nor JSON.
	KindText ContentKind = "text"

	// KindBinary is anything that does not decode as text.
	KindBinary ContentKind = "binary"
)

// sniffLimit is how many body bytes content detection inspects when the
// Content-Type header is missing or ambiguous.
const sniffLimit = 512

// Response is the outcome of fetching a Request.
type Response struct {
	// Request is the request that produced this response. The engine
	// hands each worker its own copy.
	Request *Request `json:"request"`

	// StatusCode is the HTTP status code.
	StatusCode int `json:"status_code"`

	// Header contains the response headers.
	Header http.Header `json:"header"`

	// Body is the raw response body, capped at the configured size limit.
	Body []byte `json:"-"`

	// DecodedBody is the body decoded to UTF-8 according to the declared
	// or detected charset. Empty for binary content.
	DecodedBody string `json:"-"`

	// Kind classifies the body content.
	Kind ContentKind `json:"kind"`

	// Timestamp is when the response was received.
	Timestamp time.Time `json:"timestamp"`

	// RetryCount is the total number of retry attempts spent on this
	// request before this response was produced.
	RetryCount int `json:"retry_count,omitempty"`

	// RetryHistory counts retry attempts per retry category name.
	RetryHistory map[string]int `json:"retry_history,omitempty"`
}

// Success reports whether the status code is in the 2xx range.
func (r *Response) Success() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ContentType returns the media type from the Content-Type header, without
// parameters. Returns "" when the header is absent or malformed.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return ""
	}
	return mediaType
}

// IsHTML reports whether the body was classified as HTML.
func (r *Response) IsHTML() bool { return r.Kind == KindHTML }

// IsJSON reports whether the body was classified as JSON.
func (r *Response) IsJSON() bool { return r.Kind == KindJSON }

// DetectContentKind classifies a body from its Content-Type media type,
// falling back to sniffing the body when the header is absent or generic.
func DetectContentKind(mediaType string, body []byte) ContentKind {
	switch {
	case mediaType == "text/html", mediaType == "application/xhtml+xml":
		return KindHTML
	case mediaType == "application/json", strings.HasSuffix(mediaType, "+json"):
		return KindJSON
	case strings.HasPrefix(mediaType, "text/"):
		return KindText
	case mediaType == "" || mediaType == "application/octet-stream":
		return sniffContentKind(body)
	default:
		if isTextLike(body) {
			return KindText
		}
		return KindBinary
	}
}

// sniffContentKind inspects the leading bytes of an unlabelled body.
func sniffContentKind(body []byte) ContentKind {
	head := body
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n")

	lower := bytes.ToLower(trimmed)
	if bytes.HasPrefix(lower, []byte("<!doctype html")) || bytes.HasPrefix(lower, []byte("<html")) {
		return KindHTML
	}
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		return KindJSON
	}
	if isTextLike(body) {
		return KindText
	}
	return KindBinary
}

// isTextLike reports whether the body looks like valid UTF-8 text without
// NUL bytes.
func isTextLike(body []byte) bool {
	head := body
	if len(head) > sniffLimit {
		head = head[:sniffLimit]
		// Drop a rune cut in half by the sniff limit.
		for len(head) > sniffLimit-utf8.UTFMax && !utf8.Valid(head) {
			head = head[:len(head)-1]
		}
	}
	if bytes.IndexByte(head, 0) >= 0 {
		return false
	}
	return utf8.Valid(head)
}
