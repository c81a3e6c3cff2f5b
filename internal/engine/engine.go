package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/arachne/internal/config"
	"github.com/nao1215/arachne/internal/dedup"
	"github.com/nao1215/arachne/internal/model"
	"github.com/nao1215/arachne/internal/robots"
	"github.com/nao1215/arachne/internal/spider"
	"github.com/nao1215/arachne/internal/stats"
	"github.com/nao1215/arachne/internal/storage"
	"github.com/nao1215/arachne/internal/transport"
)

// Engine runs one crawl. All mutable crawl state (queue, visited set,
// counters) lives in the engine instance; create a fresh engine per crawl.
type Engine struct {
	cfg     *config.Config
	fetcher transport.Fetcher
	manager *storage.Manager
	visited dedup.Store
	policy  robots.Policy
	logger  *slog.Logger
	tracker *stats.Tracker
}

// Option configures an Engine.
type Option func(*Engine)

// WithDedupStore replaces the in-memory visited set, e.g. with the Redis
// store for multi-process crawls.
func WithDedupStore(store dedup.Store) Option {
	return func(e *Engine) {
		e.visited = store
	}
}

// WithRobotsPolicy replaces the robots.txt policy. Only consulted when the
// config enables RespectRobots.
func WithRobotsPolicy(policy robots.Policy) Option {
	return func(e *Engine) {
		e.policy = policy
	}
}

// WithLogger sets the crawl logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an engine for one crawl. The config is validated here so a
// bad crawl fails before anything is fetched.
func New(cfg *config.Config, fetcher transport.Fetcher, manager *storage.Manager, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		fetcher: fetcher,
		manager: manager,
		visited: dedup.NewMemoryStore(),
		logger:  slog.Default(),
		tracker: stats.NewTracker(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.policy == nil {
		if cfg.RespectRobots {
			e.policy = robots.NewCache(nil)
		} else {
			e.policy = robots.AllowAll{}
		}
	}
	return e, nil
}

// Stats returns a snapshot of the crawl counters, safe to call while the
// crawl runs.
func (e *Engine) Stats() stats.Snapshot {
	return e.tracker.Snapshot()
}

// Summary describes a finished crawl.
type Summary struct {
	// Spider is the spider name.
	Spider string `json:"spider"`

	// StartedAt is when the crawl began.
	StartedAt time.Time `json:"started_at"`

	// Duration is how long the crawl ran.
	Duration time.Duration `json:"duration"`

	// Stopped reports whether the spider ended the crawl with Stop.
	Stopped bool `json:"stopped"`

	// Cancelled reports whether the context was cancelled before
	// quiescence.
	Cancelled bool `json:"cancelled"`

	// Stats are the final crawl counters.
	Stats stats.Snapshot `json:"stats"`
}

// crawlResult is what a worker reports back to the dispatcher.
type crawlResult struct {
	action   spider.Action
	children []*model.Request
}

// Run crawls from the spider's seeds to quiescence. The dispatcher
// goroutine (this call) is the only owner of the queue and admission
// state; workers communicate exclusively through the results channel.
func (e *Engine) Run(ctx context.Context, sp spider.Spider) (*Summary, error) {
	startedAt := time.Now()

	seeds, err := sp.StartRequests()
	if err != nil {
		return nil, fmt.Errorf("engine: spider %s start requests: %w", sp.Name(), err)
	}

	e.logger.Info("crawl started",
		slog.String("spider", sp.Name()),
		slog.Int("seeds", len(seeds)),
		slog.Int("concurrency", e.cfg.Concurrency),
		slog.Int("max_depth", e.cfg.MaxDepth))

	queue := make([]*model.Request, 0, len(seeds))
	queue = append(queue, seeds...)

	results := make(chan crawlResult)
	active := 0
	stopped := false

	for len(queue) > 0 || active > 0 {
		if ctx.Err() != nil && !stopped {
			stopped = true
			e.logger.Info("crawl cancelled, draining in-flight requests",
				slog.String("spider", sp.Name()), slog.Int("in_flight", active))
		}

		if stopped && len(queue) > 0 {
			for range queue {
				e.tracker.RecordDrop(stats.DropCancelled)
			}
			queue = queue[:0]
		}

		for !stopped && active < e.cfg.Concurrency && len(queue) > 0 {
			req := queue[0]
			queue = queue[1:]
			if !e.admit(ctx, req) {
				continue
			}
			active++
			go func(req *model.Request) {
				results <- e.process(ctx, sp, req)
			}(req)
		}

		if active == 0 {
			break
		}

		res := <-results
		active--
		switch res.action {
		case spider.ActionContinue:
			if !stopped {
				queue = append(queue, res.children...)
			} else {
				for range res.children {
					e.tracker.RecordDrop(stats.DropCancelled)
				}
			}
		case spider.ActionStop:
			if !stopped {
				stopped = true
				e.logger.Info("crawl stopped by spider", slog.String("spider", sp.Name()))
			}
		}
	}

	summary := &Summary{
		Spider:    sp.Name(),
		StartedAt: startedAt,
		Duration:  time.Since(startedAt),
		Stopped:   stopped && ctx.Err() == nil,
		Cancelled: ctx.Err() != nil,
		Stats:     e.tracker.Snapshot(),
	}

	e.logger.Info("crawl finished",
		slog.String("spider", sp.Name()),
		slog.Duration("duration", summary.Duration),
		slog.Int("requests", summary.Stats.Requests),
		slog.Int("items", summary.Stats.ItemsStored),
		slog.Int("given_up", summary.Stats.GivenUp))

	return summary, nil
}

// admit runs the scheduler's gate checks: depth, robots.txt, and dedup.
// Rejected requests are counted, never fetched.
func (e *Engine) admit(ctx context.Context, req *model.Request) bool {
	if req.Depth > e.cfg.MaxDepth {
		e.tracker.RecordDrop(stats.DropDepth)
		e.logger.Debug("dropped: over max depth",
			slog.String("url", req.URL.String()), slog.Int("depth", req.Depth))
		return false
	}

	if e.cfg.RespectRobots && !e.policy.Allowed(ctx, req.URL, e.cfg.UserAgent) {
		e.tracker.RecordDrop(stats.DropRobots)
		e.logger.Debug("dropped: disallowed by robots.txt",
			slog.String("url", req.URL.String()))
		return false
	}

	if !e.cfg.AllowURLRevisit {
		seen, err := e.visited.Seen(ctx, dedup.Normalize(req.URL))
		if err != nil {
			// A broken dedup store should not halt the crawl; worst
			// case is a duplicate fetch.
			e.logger.Warn("dedup store failed, admitting request",
				slog.String("url", req.URL.String()), slog.String("error", err.Error()))
		} else if seen {
			e.tracker.RecordDrop(stats.DropDuplicate)
			return false
		}
	}
	return true
}
