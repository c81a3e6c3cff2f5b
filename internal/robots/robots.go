package robots

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// maxRobotsSize caps how many bytes of a robots.txt are read.
const maxRobotsSize = 512 * 1024

// Policy decides whether a URL may be fetched on behalf of userAgent.
type Policy interface {
	Allowed(ctx context.Context, u *url.URL, userAgent string) bool
}

// AllowAll permits every URL. It is the policy when robots.txt handling is
// disabled.
type AllowAll struct{}

// Allowed always returns true.
func (AllowAll) Allowed(context.Context, *url.URL, string) bool {
	return true
}

// Cache fetches and caches robots.txt per host. Missing files (404) and
// fetch failures permit everything for that host; a robots.txt the server
// refuses to serve should not halt a crawl.
type Cache struct {
	client *http.Client

	mu    sync.Mutex
	hosts map[string]*robotstxt.RobotsData
}

// NewCache creates a Cache fetching robots.txt with the given client. A
// nil client uses a default with a 10 second timeout.
func NewCache(client *http.Client) *Cache {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Cache{
		client: client,
		hosts:  make(map[string]*robotstxt.RobotsData),
	}
}

// Allowed reports whether the URL may be fetched. The per-host rules are
// fetched on first use.
func (c *Cache) Allowed(ctx context.Context, u *url.URL, userAgent string) bool {
	data := c.rules(ctx, u)
	if data == nil {
		return true
	}
	return data.TestAgent(u.Path, userAgent)
}

// rules returns the cached rules for the URL's host, fetching them if
// needed. Nil means no restrictions.
func (c *Cache) rules(ctx context.Context, u *url.URL) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host

	c.mu.Lock()
	data, ok := c.hosts[key]
	c.mu.Unlock()
	if ok {
		return data
	}

	data = c.fetch(ctx, key+"/robots.txt")

	c.mu.Lock()
	c.hosts[key] = data
	c.mu.Unlock()
	return data
}

// fetch retrieves and parses one robots.txt. Any failure yields nil,
// meaning unrestricted.
func (c *Cache) fetch(ctx context.Context, robotsURL string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxRobotsSize))
	if err != nil {
		return nil
	}

	data, err := robotstxt.FromStatusAndBytes(resp.StatusCode, body)
	if err != nil {
		return nil
	}
	return data
}
