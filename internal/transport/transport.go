package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
	"golang.org/x/time/rate"

	"github.com/nao1215/arachne/internal/model"
)

// Defaults applied by NewHTTPFetcher when no option overrides them.
const (
	// DefaultUserAgent identifies the crawler to servers.
	DefaultUserAgent = "arachne/1.0 (+https://github.com/nao1215/arachne)"

	// DefaultTimeout bounds one fetch end to end.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodySize caps how many body bytes are read per response.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10 MB
)

// Fetcher retrieves the response for a crawl request. Implementations must
// honor context cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, req *model.Request) (*model.Response, error)
}

// HTTPFetcher fetches requests with net/http. A shared rate limiter spaces
// requests out across all workers, so the politeness delay holds for the
// whole crawl, not per goroutine.
type HTTPFetcher struct {
	client      *http.Client
	limiter     *rate.Limiter
	userAgent   string
	timeout     time.Duration
	maxBodySize int64
	headers     http.Header
}

// Option configures an HTTPFetcher.
type Option func(*HTTPFetcher)

// WithClient replaces the underlying HTTP client.
func WithClient(client *http.Client) Option {
	return func(f *HTTPFetcher) {
		f.client = client
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *HTTPFetcher) {
		f.userAgent = ua
	}
}

// WithTimeout sets the per-request deadline.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		f.timeout = d
	}
}

// WithRequestDelay enforces a minimum interval between requests. Zero
// disables the politeness delay.
func WithRequestDelay(d time.Duration) Option {
	return func(f *HTTPFetcher) {
		if d > 0 {
			f.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			f.limiter = nil
		}
	}
}

// WithMaxBodySize caps how many body bytes are read per response. Bodies
// larger than the cap are truncated, not failed.
func WithMaxBodySize(n int64) Option {
	return func(f *HTTPFetcher) {
		f.maxBodySize = n
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) Option {
	return func(f *HTTPFetcher) {
		if f.headers == nil {
			f.headers = http.Header{}
		}
		f.headers.Add(key, value)
	}
}

// NewHTTPFetcher creates an HTTPFetcher with the default client, timeout,
// and body cap.
func NewHTTPFetcher(opts ...Option) *HTTPFetcher {
	f := &HTTPFetcher{
		client:      &http.Client{},
		userAgent:   DefaultUserAgent,
		timeout:     DefaultTimeout,
		maxBodySize: DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves the response for req. The returned response carries the
// raw body, a UTF-8 decoded body for text content, and a content kind
// classification. Any non-nil error is a *Error.
func (f *HTTPFetcher) Fetch(ctx context.Context, req *model.Request) (*model.Response, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &Error{Kind: KindConnection, URL: req.URL.String(), Err: err}
		}
	}

	reqCtx := ctx
	if f.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(reqCtx, http.MethodGet, req.URL.String(), nil)
	if err != nil {
		return nil, &Error{Kind: KindConnection, URL: req.URL.String(), Err: err}
	}
	httpReq.Header.Set("User-Agent", f.userAgent)
	for key, values := range f.headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	httpResp, err := f.client.Do(httpReq)
	if err != nil {
		return nil, f.classify(req.URL.String(), err)
	}
	defer httpResp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, f.maxBodySize))
	if err != nil {
		return nil, f.classify(req.URL.String(), err)
	}

	resp := &model.Response{
		Request:    req,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		Timestamp:  time.Now(),
	}
	resp.Kind = model.DetectContentKind(resp.ContentType(), body)

	if resp.Kind != model.KindBinary {
		decoded, err := decodeBody(body, httpResp.Header.Get("Content-Type"))
		if err != nil {
			return nil, &Error{Kind: KindDecode, URL: req.URL.String(), Err: err}
		}
		resp.DecodedBody = decoded
	}
	return resp, nil
}

// classify maps an HTTP client error onto a transport error kind.
func (f *HTTPFetcher) classify(url string, err error) *Error {
	kind := KindConnection
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &netErr) && netErr.Timeout():
		kind = KindTimeout
	}
	return &Error{Kind: kind, URL: url, Err: err}
}

// decodeBody converts the body to UTF-8 using the charset declared in the
// Content-Type header, a BOM, or an HTML meta tag, falling back to a
// windows-1252 guess.
func decodeBody(body []byte, contentType string) (string, error) {
	enc, _, _ := charset.DetermineEncoding(body, contentType)
	decoded, _, err := transform.Bytes(enc.NewDecoder(), body)
	if err != nil {
		return "", err
	}
	return string(decoded), nil
}
