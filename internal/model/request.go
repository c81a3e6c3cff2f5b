package model

import (
	"net/url"

	"github.com/google/uuid"
)

// Request describes one unit of crawl work: a URL to fetch and the spider
// callback that will parse its response.
type Request struct {
	// ID uniquely identifies the request across its whole lifecycle,
	// including retries. Retried attempts reuse the same ID.
	ID string `json:"id"`

	// URL is the absolute URL to fetch.
	URL *url.URL `json:"url"`

	// Callback selects the spider parse routine for the response.
	Callback Callback `json:"callback"`

	// Depth is the distance from the seed request that produced this one.
	// Seeds start at 0.
	Depth int `json:"depth"`

	// Meta carries spider-defined values from the request that discovered
	// this one to the parse of its response.
	Meta map[string]any `json:"meta,omitempty"`
}

// NewRequest creates a seed request at depth 0.
func NewRequest(u *url.URL, callback Callback) *Request {
	return &Request{
		ID:       uuid.NewString(),
		URL:      u,
		Callback: callback,
		Depth:    0,
	}
}

// Child derives a follow-up request discovered while parsing this request's
// response. The child's depth is the parent's depth plus one, except for
// pagination children, which keep the parent's depth.
func (r *Request) Child(u *url.URL, callback Callback) *Request {
	depth := r.Depth + 1
	if callback == CallbackPagination {
		depth = r.Depth
	}
	return &Request{
		ID:       uuid.NewString(),
		URL:      u,
		Callback: callback,
		Depth:    depth,
	}
}

// WithMeta sets a meta value and returns the request for chaining.
func (r *Request) WithMeta(key string, value any) *Request {
	if r.Meta == nil {
		r.Meta = make(map[string]any)
	}
	r.Meta[key] = value
	return r
}

// MetaValue returns the meta value for key, or nil if unset.
func (r *Request) MetaValue(key string) any {
	if r.Meta == nil {
		return nil
	}
	return r.Meta[key]
}

// Clone returns a deep copy of the request. The copy keeps the original ID
// so that a requeued request is still recognizable as the same work item.
func (r *Request) Clone() *Request {
	clone := &Request{
		ID:       r.ID,
		Callback: r.Callback,
		Depth:    r.Depth,
	}
	if r.URL != nil {
		u := *r.URL
		clone.URL = &u
	}
	if r.Meta != nil {
		clone.Meta = make(map[string]any, len(r.Meta))
		for k, v := range r.Meta {
			clone.Meta[k] = v
		}
	}
	return clone
}
