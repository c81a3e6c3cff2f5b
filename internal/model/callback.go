package model

import "strings"

// customPrefix tags callbacks registered by spiders beyond the built-in set.
const customPrefix = "custom:"

// Callback identifies which spider parse routine handles the response to a
// request. The built-in callbacks cover the common crawl shape (an entry
// page, pagination pages, and item pages); spiders with more routines
// register them under CustomCallback names.
type Callback string

const (
	// CallbackBootstrap marks the initial seed requests of a crawl.
	CallbackBootstrap Callback = "bootstrap"

	// CallbackPagination marks requests for further pages of a listing.
	// Children created under this callback keep their parent's depth so
	// that paging through a listing does not consume crawl depth.
	CallbackPagination Callback = "pagination"

	// CallbackItem marks requests for individual item pages.
	CallbackItem Callback = "item"
)

// CustomCallback returns a Callback for a spider-defined parse routine.
func CustomCallback(name string) Callback {
	return Callback(customPrefix + name)
}

// IsCustom reports whether the callback is spider-defined.
func (c Callback) IsCustom() bool {
	return strings.HasPrefix(string(c), customPrefix)
}

// CustomName returns the spider-defined routine name, or "" for built-in
// callbacks.
func (c Callback) CustomName() string {
	if !c.IsCustom() {
		return ""
	}
	return strings.TrimPrefix(string(c), customPrefix)
}

// String returns the callback identifier.
func (c Callback) String() string {
	return string(c)
}
