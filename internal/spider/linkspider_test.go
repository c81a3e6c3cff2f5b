package spider

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/nao1215/arachne/internal/model"
	"github.com/nao1215/arachne/internal/storage"
)

// collectBackend records stored items for assertions.
type collectBackend struct {
	items []storage.Item
}

func (c *collectBackend) Store(_ context.Context, item storage.Item) error {
	c.items = append(c.items, item)
	return nil
}

func (c *collectBackend) Close() error { return nil }

func htmlResponse(t *testing.T, pageURL, body string) *model.Response {
	t.Helper()
	req := model.NewRequest(mustParse(t, pageURL), model.CallbackBootstrap)
	h := http.Header{}
	h.Set("Content-Type", "text/html; charset=utf-8")
	return &model.Response{
		Request:     req,
		StatusCode:  200,
		Header:      h,
		Body:        []byte(body),
		DecodedBody: body,
		Kind:        model.KindHTML,
		Timestamp:   time.Now(),
	}
}

func TestNewLinkSpider(t *testing.T) {
	t.Parallel()

	t.Run("valid seeds", func(t *testing.T) {
		t.Parallel()

		s, err := NewLinkSpider("links", []string{"https://example.com/"}, nil)
		if err != nil {
			t.Fatalf("NewLinkSpider() error: %v", err)
		}
		seeds, err := s.StartRequests()
		if err != nil {
			t.Fatalf("StartRequests() error: %v", err)
		}
		if len(seeds) != 1 || seeds[0].Depth != 0 {
			t.Errorf("seeds = %v, want one depth-0 request", seeds)
		}
		if seeds[0].Callback != model.CallbackBootstrap {
			t.Errorf("seed callback = %q, want bootstrap", seeds[0].Callback)
		}
	})

	t.Run("malformed seed fails fast", func(t *testing.T) {
		t.Parallel()

		if _, err := NewLinkSpider("links", []string{"://bad"}, nil); err == nil {
			t.Error("NewLinkSpider() accepted malformed seed")
		}
	})

	t.Run("relative seed fails fast", func(t *testing.T) {
		t.Parallel()

		if _, err := NewLinkSpider("links", []string{"/relative"}, nil); err == nil {
			t.Error("NewLinkSpider() accepted relative seed")
		}
	})

	t.Run("no seeds fails fast", func(t *testing.T) {
		t.Parallel()

		if _, err := NewLinkSpider("links", nil, nil); err == nil {
			t.Error("NewLinkSpider() accepted empty seed list")
		}
	})
}

func TestLinkSpiderParse(t *testing.T) {
	t.Parallel()

	s, err := NewLinkSpider("links", []string{"https://example.com/"}, nil)
	if err != nil {
		t.Fatalf("NewLinkSpider() error: %v", err)
	}

	t.Run("same host links become item children", func(t *testing.T) {
		t.Parallel()

		body := `<html><head><title>Home</title></head><body>
			<a href="/a">A</a>
			<a href="/b">B</a>
			<a href="https://other.com/c">C</a>
		</body></html>`
		resp := htmlResponse(t, "https://example.com/", body)

		result, data, err := s.Parse(context.Background(), resp)
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if result.Action() != ActionContinue {
			t.Fatalf("action = %v, want continue", result.Action())
		}

		reqs := result.Requests()
		if len(reqs) != 2 {
			t.Fatalf("children = %d, want 2 (external link dropped)", len(reqs))
		}
		for _, req := range reqs {
			if req.Callback != model.CallbackItem {
				t.Errorf("child callback = %q, want item", req.Callback)
			}
			if req.Depth != 1 {
				t.Errorf("child depth = %d, want 1", req.Depth)
			}
		}

		if data.IsEmpty() {
			t.Fatal("no data extracted")
		}
		doc := data.Document()
		if doc["title"] != "Home" {
			t.Errorf("title = %v, want Home", doc["title"])
		}
		if doc["link_count"] != 3 {
			t.Errorf("link_count = %v, want 3", doc["link_count"])
		}
	})

	t.Run("pagination keeps depth", func(t *testing.T) {
		t.Parallel()

		body := `<html><head><link rel="next" href="/list?page=2"></head><body></body></html>`
		resp := htmlResponse(t, "https://example.com/list", body)
		resp.Request.Depth = 3

		result, _, err := s.Parse(context.Background(), resp)
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		reqs := result.Requests()
		if len(reqs) != 1 {
			t.Fatalf("children = %d, want 1", len(reqs))
		}
		if reqs[0].Callback != model.CallbackPagination {
			t.Errorf("callback = %q, want pagination", reqs[0].Callback)
		}
		if reqs[0].Depth != 3 {
			t.Errorf("pagination depth = %d, want 3", reqs[0].Depth)
		}
	})

	t.Run("duplicate and self links dropped", func(t *testing.T) {
		t.Parallel()

		body := `<html><body>
			<a href="/a">A</a>
			<a href="/a#frag">A again</a>
			<a href="/page">self</a>
		</body></html>`
		resp := htmlResponse(t, "https://example.com/page", body)

		result, _, err := s.Parse(context.Background(), resp)
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if got := len(result.Requests()); got != 1 {
			t.Errorf("children = %d, want 1", got)
		}
	})

	t.Run("non-html skipped", func(t *testing.T) {
		t.Parallel()

		resp := htmlResponse(t, "https://example.com/data", `{"a":1}`)
		resp.Kind = model.KindJSON

		result, data, err := s.Parse(context.Background(), resp)
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if result.Action() != ActionSkip {
			t.Errorf("action = %v, want skip", result.Action())
		}
		if !data.IsEmpty() {
			t.Error("data extracted from non-HTML response")
		}
	})

	t.Run("follow external option", func(t *testing.T) {
		t.Parallel()

		open, err := NewLinkSpider("open", []string{"https://example.com/"}, nil, WithFollowExternal())
		if err != nil {
			t.Fatalf("NewLinkSpider() error: %v", err)
		}
		body := `<html><body><a href="https://other.com/c">C</a></body></html>`
		result, _, err := open.Parse(context.Background(), htmlResponse(t, "https://example.com/", body))
		if err != nil {
			t.Fatalf("Parse() error: %v", err)
		}
		if got := len(result.Requests()); got != 1 {
			t.Errorf("children = %d, want 1 external", got)
		}
	})
}

func TestPersisterStoresUnderData(t *testing.T) {
	t.Parallel()

	backend := &collectBackend{}
	manager := storage.NewManager(storage.CategoryData)
	manager.Register(storage.CategoryData, backend)

	p := &Persister{Manager: manager, SpiderName: "links"}
	resp := htmlResponse(t, "https://example.com/item", "<html></html>")
	resp.RetryCount = 2

	err := p.PersistExtractedData(context.Background(), Item(map[string]any{"title": "x"}), resp)
	if err != nil {
		t.Fatalf("PersistExtractedData() error: %v", err)
	}

	if len(backend.items) != 1 {
		t.Fatalf("stored items = %d, want 1", len(backend.items))
	}
	item := backend.items[0]
	if item.URL != "https://example.com/item" {
		t.Errorf("item URL = %q", item.URL)
	}
	if item.Metadata["spider"] != "links" {
		t.Errorf("spider metadata = %v, want links", item.Metadata["spider"])
	}
	if item.Metadata["retry_count"] != 2 {
		t.Errorf("retry_count metadata = %v, want 2", item.Metadata["retry_count"])
	}

	t.Run("empty data is a no-op", func(t *testing.T) {
		if err := p.PersistExtractedData(context.Background(), Empty(), resp); err != nil {
			t.Fatalf("PersistExtractedData() error: %v", err)
		}
		if len(backend.items) != 1 {
			t.Errorf("stored items = %d, want still 1", len(backend.items))
		}
	})
}
