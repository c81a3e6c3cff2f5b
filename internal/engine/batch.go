package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/arachne/internal/spider"
)

// Crawl pairs an engine with the spider it runs. Each crawl needs its own
// engine; engines hold per-crawl state.
type Crawl struct {
	// Engine runs the crawl.
	Engine *Engine

	// Spider supplies seeds and parsing.
	Spider spider.Spider
}

// BatchResult is the outcome of one crawl in a batch.
type BatchResult struct {
	// Name is the spider name.
	Name string

	// Summary describes the finished crawl. Nil when Err is set.
	Summary *Summary

	// Err is the crawl's failure, if any.
	Err error
}

// RunBatch runs the crawls with at most limit running at once (or all at
// once when limit <= 0). One crawl failing does not cancel the others;
// results keep the input order.
func RunBatch(ctx context.Context, crawls []Crawl, limit int) []BatchResult {
	results := make([]BatchResult, len(crawls))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, c := range crawls {
		g.Go(func() error {
			results[i] = BatchResult{Name: c.Spider.Name()}
			summary, err := c.Engine.Run(ctx, c.Spider)
			if err != nil {
				c.Engine.logger.Error("crawl failed",
					slog.String("spider", c.Spider.Name()),
					slog.String("error", err.Error()))
				results[i].Err = err
				return nil
			}
			results[i].Summary = summary
			return nil
		})
	}

	// Errors are carried per result, so Wait never returns one.
	_ = g.Wait()
	return results
}
