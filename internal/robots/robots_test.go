package robots

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
)

func mustParse(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parse %q: %v", raw, err)
	}
	return u
}

func TestCacheAllowed(t *testing.T) {
	t.Parallel()

	var fetches int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		atomic.AddInt64(&fetches, 1)
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
	}))
	defer srv.Close()

	cache := NewCache(srv.Client())
	ctx := context.Background()

	if !cache.Allowed(ctx, mustParse(t, srv.URL+"/public/page"), "arachne") {
		t.Error("allowed path reported as disallowed")
	}
	if cache.Allowed(ctx, mustParse(t, srv.URL+"/private/secret"), "arachne") {
		t.Error("disallowed path reported as allowed")
	}
	if got := atomic.LoadInt64(&fetches); got != 1 {
		t.Errorf("robots.txt fetched %d times, want 1", got)
	}
}

func TestCacheFailsOpen(t *testing.T) {
	t.Parallel()

	t.Run("missing robots.txt", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		cache := NewCache(srv.Client())
		if !cache.Allowed(context.Background(), mustParse(t, srv.URL+"/anything"), "arachne") {
			t.Error("missing robots.txt blocked a fetch")
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		addr := srv.URL
		srv.Close()

		cache := NewCache(nil)
		if !cache.Allowed(context.Background(), mustParse(t, addr+"/x"), "arachne") {
			t.Error("unreachable robots.txt blocked a fetch")
		}
	})
}

func TestAllowAll(t *testing.T) {
	t.Parallel()

	var p AllowAll
	if !p.Allowed(context.Background(), mustParse(t, "https://example.com/private"), "arachne") {
		t.Error("AllowAll blocked a URL")
	}
}
