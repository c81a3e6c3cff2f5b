package spider

import (
	"context"

	"github.com/nao1215/arachne/internal/model"
	"github.com/nao1215/arachne/internal/storage"
)

// Spider is user-supplied crawl logic. Implementations must be safe for
// concurrent use; the engine calls Parse from multiple workers. New work
// reaches the scheduler only through ParseResult, never by side channel.
type Spider interface {
	// Name identifies the spider in logs, metadata, and reports.
	Name() string

	// StartRequests returns the seed requests of a crawl. An error here
	// fails the crawl before anything is fetched.
	StartRequests() ([]*model.Request, error)

	// Parse turns a response into follow-up requests and extracted data.
	// The returned error feeds the retry policy under the parse category.
	Parse(ctx context.Context, resp *model.Response) (ParseResult, ParsedData, error)

	// PersistExtractedData stores the data extracted from a response. The
	// engine calls it after a successful Parse with non-empty data.
	PersistExtractedData(ctx context.Context, data ParsedData, resp *model.Response) error
}

// Action says what the scheduler should do after a parse.
type Action int

const (
	// ActionContinue admits the result's follow-up requests.
	ActionContinue Action = iota

	// ActionSkip admits nothing and moves on.
	ActionSkip

	// ActionStop ends the whole crawl after in-flight work finishes.
	ActionStop

	// ActionRetrySameContent re-parses the already fetched response,
	// consuming parse retry budget.
	ActionRetrySameContent

	// ActionRetryNewContent re-fetches the request and parses the fresh
	// response, consuming parse retry budget.
	ActionRetryNewContent
)

// String returns the action name.
func (a Action) String() string {
	switch a {
	case ActionContinue:
		return "continue"
	case ActionSkip:
		return "skip"
	case ActionStop:
		return "stop"
	case ActionRetrySameContent:
		return "retry_same_content"
	case ActionRetryNewContent:
		return "retry_new_content"
	default:
		return "unknown"
	}
}

// ParseResult is a spider's scheduling verdict for one response.
type ParseResult struct {
	action   Action
	requests []*model.Request
}

// Continue schedules the given follow-up requests.
func Continue(requests ...*model.Request) ParseResult {
	return ParseResult{action: ActionContinue, requests: requests}
}

// Skip schedules nothing.
func Skip() ParseResult {
	return ParseResult{action: ActionSkip}
}

// Stop ends the crawl after in-flight work finishes.
func Stop() ParseResult {
	return ParseResult{action: ActionStop}
}

// RetrySameContent asks for the same response to be parsed again, for
// content that looks transiently wrong (a challenge page, a partial
// render).
func RetrySameContent() ParseResult {
	return ParseResult{action: ActionRetrySameContent}
}

// RetryNewContent asks for the request to be fetched again before the
// next parse.
func RetryNewContent() ParseResult {
	return ParseResult{action: ActionRetryNewContent}
}

// Action returns the scheduling verdict.
func (r ParseResult) Action() Action {
	return r.action
}

// Requests returns the follow-up requests of a Continue result.
func (r ParseResult) Requests() []*model.Request {
	return r.requests
}

// ParsedData is the data extracted from one response: either nothing or
// one document.
type ParsedData struct {
	document map[string]any
}

// Empty returns ParsedData carrying nothing.
func Empty() ParsedData {
	return ParsedData{}
}

// Item returns ParsedData carrying one document.
func Item(document map[string]any) ParsedData {
	return ParsedData{document: document}
}

// IsEmpty reports whether no data was extracted.
func (d ParsedData) IsEmpty() bool {
	return d.document == nil
}

// Document returns the extracted document, or nil.
func (d ParsedData) Document() map[string]any {
	return d.document
}

// Persister implements the common PersistExtractedData behavior: items go
// to the storage manager under the data category, stamped with the spider
// name and the response's retry history. Spiders embed it and keep only
// their parsing logic.
type Persister struct {
	// Manager routes items to storage backends.
	Manager *storage.Manager

	// SpiderName is recorded in each item's metadata.
	SpiderName string
}

// PersistExtractedData stores the document under the data category.
func (p *Persister) PersistExtractedData(ctx context.Context, data ParsedData, resp *model.Response) error {
	if data.IsEmpty() {
		return nil
	}
	item := storage.NewItem(resp.Request.URL.String(), data.Document())
	item.Metadata = map[string]any{
		"spider":   p.SpiderName,
		"callback": resp.Request.Callback.String(),
		"depth":    resp.Request.Depth,
	}
	if resp.RetryCount > 0 {
		item.Metadata["retry_count"] = resp.RetryCount
	}
	return p.Manager.Store(ctx, item, storage.CategoryData)
}
