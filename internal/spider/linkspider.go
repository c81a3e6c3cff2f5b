package spider

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/arachne/internal/dedup"
	"github.com/nao1215/arachne/internal/model"
	"github.com/nao1215/arachne/internal/storage"
)

// LinkSpider crawls same-host links from its seeds and extracts page
// metadata (title, meta tags, link count) as the item document. Pagination
// links declared with rel="next" are followed without consuming depth.
type LinkSpider struct {
	Persister

	name           string
	seeds          []*model.Request
	hosts          map[string]bool
	followExternal bool
}

// LinkOption configures a LinkSpider.
type LinkOption func(*LinkSpider)

// WithFollowExternal lets the spider follow links to hosts outside the
// seed set.
func WithFollowExternal() LinkOption {
	return func(s *LinkSpider) {
		s.followExternal = true
	}
}

// NewLinkSpider creates a LinkSpider from seed URLs. Malformed or
// non-absolute seeds fail construction, so a bad crawl config surfaces
// before anything is fetched.
func NewLinkSpider(name string, seedURLs []string, manager *storage.Manager, opts ...LinkOption) (*LinkSpider, error) {
	if len(seedURLs) == 0 {
		return nil, fmt.Errorf("spider %s: no seed URLs", name)
	}

	s := &LinkSpider{
		Persister: Persister{Manager: manager, SpiderName: name},
		name:      name,
		hosts:     make(map[string]bool),
	}
	for _, raw := range seedURLs {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("spider %s: invalid seed URL %q: %w", name, raw, err)
		}
		if !u.IsAbs() || u.Host == "" {
			return nil, fmt.Errorf("spider %s: seed URL %q is not absolute", name, raw)
		}
		s.seeds = append(s.seeds, model.NewRequest(u, model.CallbackBootstrap))
		s.hosts[strings.ToLower(u.Host)] = true
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Name returns the spider name.
func (s *LinkSpider) Name() string {
	return s.name
}

// StartRequests returns the seed requests.
func (s *LinkSpider) StartRequests() ([]*model.Request, error) {
	return s.seeds, nil
}

// Parse extracts the page document and follow-up requests. Non-HTML
// responses are skipped without data.
func (s *LinkSpider) Parse(_ context.Context, resp *model.Response) (ParseResult, ParsedData, error) {
	if !resp.IsHTML() {
		return Skip(), Empty(), nil
	}

	info, err := ParseHTML(strings.NewReader(resp.DecodedBody), resp.Request.URL)
	if err != nil {
		return Skip(), Empty(), fmt.Errorf("spider %s: parse %s: %w", s.name, resp.Request.URL, err)
	}

	var children []*model.Request
	emitted := make(map[string]bool)

	if info.NextPage != nil {
		key := dedup.Normalize(info.NextPage)
		if !emitted[key] {
			emitted[key] = true
			children = append(children, resp.Request.Child(info.NextPage, model.CallbackPagination))
		}
	}
	for _, link := range info.Links {
		if !s.followExternal && !s.hosts[strings.ToLower(link.URL.Host)] {
			continue
		}
		key := dedup.Normalize(link.URL)
		if emitted[key] || key == dedup.Normalize(resp.Request.URL) {
			continue
		}
		emitted[key] = true
		children = append(children, resp.Request.Child(link.URL, model.CallbackItem))
	}

	doc := map[string]any{
		"url":        resp.Request.URL.String(),
		"title":      info.Title,
		"link_count": len(info.Links),
	}
	if desc, ok := info.MetaTags["description"]; ok {
		doc["description"] = desc
	}

	return Continue(children...), Item(doc), nil
}
