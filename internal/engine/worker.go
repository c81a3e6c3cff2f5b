package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nao1215/arachne/internal/model"
	"github.com/nao1215/arachne/internal/retry"
	"github.com/nao1215/arachne/internal/spider"
	"github.com/nao1215/arachne/internal/storage"
	"github.com/nao1215/arachne/internal/transport"
)

// process runs one request to completion inside a worker: fetch with HTTP
// retries, parse with parse retries, persist. All attempts for the request
// run sequentially here; the request's retry counters never race.
func (e *Engine) process(ctx context.Context, sp spider.Spider, req *model.Request) crawlResult {
	state := retry.NewState()

	for {
		resp, done := e.fetchWithRetry(ctx, sp, req, state)
		if done != nil {
			return *done
		}

		result, refetch := e.parseWithRetry(ctx, sp, resp, state)
		if refetch {
			continue
		}
		return result
	}
}

// fetchWithRetry fetches req until a 2xx response, a give-up, or
// cancellation. A non-nil crawlResult means the request is finished
// without a usable response.
func (e *Engine) fetchWithRetry(ctx context.Context, sp spider.Spider, req *model.Request, state *retry.State) (*model.Response, *crawlResult) {
	for {
		resp, err := e.fetcher.Fetch(ctx, req)

		var failure retry.Failure
		switch {
		case err != nil:
			e.tracker.RecordFailure()
			failure = transportFailure(err)
			e.logger.Debug("fetch failed",
				slog.String("url", req.URL.String()),
				slog.String("kind", string(failure.Kind)),
				slog.String("error", err.Error()))
		case resp.Success():
			e.tracker.RecordRequest(resp.StatusCode, len(resp.Body))
			resp.RetryCount = state.Total()
			resp.RetryHistory = state.History()
			return resp, nil
		default:
			e.tracker.RecordRequest(resp.StatusCode, len(resp.Body))
			failure = retry.Failure{
				StatusCode: resp.StatusCode,
				Content:    resp.DecodedBody,
			}
		}

		attempt := state.Attempts(retry.CategoryHTTPError)
		decision := e.cfg.Retry.Decide(retry.CategoryHTTPError, failure, attempt)
		if !decision.Retry {
			result := e.giveUp(ctx, sp, req, retry.CategoryHTTPError, failure, state)
			return nil, &result
		}

		state.Record(retry.CategoryHTTPError)
		e.tracker.RecordRetry(retry.CategoryHTTPError.String())
		e.logger.Debug("retrying fetch",
			slog.String("url", req.URL.String()),
			slog.Int("attempt", attempt+1),
			slog.Duration("delay", decision.Delay))

		if !sleepCtx(ctx, decision.Delay) {
			return nil, &crawlResult{action: spider.ActionSkip}
		}
	}
}

// parseWithRetry parses resp, honoring the spider's retry verdicts and the
// parse retry budget. refetch=true sends the worker back to the fetch
// phase for fresh content.
func (e *Engine) parseWithRetry(ctx context.Context, sp spider.Spider, resp *model.Response, state *retry.State) (crawlResult, bool) {
	for {
		result, data, err := sp.Parse(ctx, resp)
		if err != nil {
			e.tracker.RecordParseError()
			failure := retry.Failure{
				Kind:    retry.KindParse,
				Err:     err,
				Content: err.Error(),
			}
			retried, refetch := e.consumeParseRetry(ctx, sp, resp, failure, state)
			if !retried {
				return e.giveUp(ctx, sp, resp.Request, retry.CategoryParseError, failure, state), false
			}
			if refetch {
				return crawlResult{}, true
			}
			// Cancelled mid-wait.
			return crawlResult{action: spider.ActionSkip}, false
		}

		switch result.Action() {
		case spider.ActionRetrySameContent, spider.ActionRetryNewContent:
			failure := retry.Failure{
				Kind:    retry.KindParse,
				Content: resp.DecodedBody,
			}
			attempt := state.Attempts(retry.CategoryParseError)
			decision := e.cfg.Retry.Decide(retry.CategoryParseError, failure, attempt)
			if !decision.Retry {
				return e.giveUp(ctx, sp, resp.Request, retry.CategoryParseError, failure, state), false
			}
			state.Record(retry.CategoryParseError)
			e.tracker.RecordRetry(retry.CategoryParseError.String())
			if !sleepCtx(ctx, decision.Delay) {
				return crawlResult{action: spider.ActionSkip}, false
			}
			if result.Action() == spider.ActionRetryNewContent {
				return crawlResult{}, true
			}
			// Same content: parse the response we already have again.
			continue

		default:
			e.persist(ctx, sp, data, resp)
			e.tracker.RecordSuccess()
			return crawlResult{action: result.Action(), children: result.Requests()}, false
		}
	}
}

// consumeParseRetry spends one parse retry for a spider error. It returns
// retried=false when the budget is exhausted or the failure does not
// qualify. When retried, refetch says whether the wait completed (true)
// or the context was cancelled (false).
func (e *Engine) consumeParseRetry(ctx context.Context, sp spider.Spider, resp *model.Response, failure retry.Failure, state *retry.State) (retried, refetch bool) {
	attempt := state.Attempts(retry.CategoryParseError)
	decision := e.cfg.Retry.Decide(retry.CategoryParseError, failure, attempt)
	if !decision.Retry {
		return false, false
	}

	state.Record(retry.CategoryParseError)
	e.tracker.RecordRetry(retry.CategoryParseError.String())
	e.logger.Debug("retrying after parse error",
		slog.String("spider", sp.Name()),
		slog.String("url", resp.Request.URL.String()),
		slog.Int("attempt", attempt+1))

	if !sleepCtx(ctx, decision.Delay) {
		return true, false
	}
	return true, true
}

// persist stores extracted data through the spider. Storage failures are
// retried under the storage category and are terminal for the item only;
// they never fail the request or the crawl.
func (e *Engine) persist(ctx context.Context, sp spider.Spider, data spider.ParsedData, resp *model.Response) {
	if data.IsEmpty() {
		return
	}

	var attempt int
	for {
		err := sp.PersistExtractedData(ctx, data, resp)
		if err == nil {
			e.tracker.RecordItemStored()
			return
		}

		e.tracker.RecordStorageError()
		failure := retry.Failure{
			Kind:    retry.KindStorage,
			Err:     err,
			Content: err.Error(),
		}
		decision := e.cfg.Retry.Decide(retry.CategoryStorageError, failure, attempt)
		if !decision.Retry || !sleepCtx(ctx, decision.Delay) {
			e.logger.Error("item dropped: storage failed",
				slog.String("spider", sp.Name()),
				slog.String("url", resp.Request.URL.String()),
				slog.String("error", err.Error()))
			return
		}
		attempt++
		e.tracker.RecordRetry(retry.CategoryStorageError.String())
	}
}

// giveUp ends a request whose retry budget ran out (or whose failure
// qualified for no retry at all) and persists an error record under the
// error category.
func (e *Engine) giveUp(ctx context.Context, sp spider.Spider, req *model.Request, category retry.Category, failure retry.Failure, state *retry.State) crawlResult {
	e.tracker.RecordGiveUp()

	record := map[string]any{
		"category":   category.String(),
		"request_id": req.ID,
		"callback":   req.Callback.String(),
		"depth":      req.Depth,
	}
	if failure.StatusCode != 0 {
		record["status_code"] = failure.StatusCode
	}
	if failure.Err != nil {
		record["error"] = failure.Err.Error()
	}
	if history := state.History(); history != nil {
		record["retries"] = history
	}

	item := storage.NewItem(req.URL.String(), record)
	item.Metadata = map[string]any{
		"spider": sp.Name(),
		"reason": "retries_exhausted",
	}

	if err := e.manager.Store(ctx, item, storage.CategoryError); err != nil {
		e.tracker.RecordStorageError()
		e.logger.Error("failed to persist error record",
			slog.String("url", req.URL.String()),
			slog.String("error", err.Error()))
	} else {
		e.tracker.RecordErrorRecord()
	}

	e.logger.Warn("request given up",
		slog.String("spider", sp.Name()),
		slog.String("url", req.URL.String()),
		slog.String("category", category.String()),
		slog.Int("status_code", failure.StatusCode),
		slog.Int("retries", state.Total()))

	return crawlResult{action: spider.ActionSkip}
}

// transportFailure maps a fetch error onto a retry failure.
func transportFailure(err error) retry.Failure {
	kind := retry.KindConnection
	var terr *transport.Error
	if errors.As(err, &terr) {
		switch terr.Kind {
		case transport.KindTimeout:
			kind = retry.KindTimeout
		case transport.KindDecode:
			kind = retry.KindDecode
		}
	}
	return retry.Failure{
		Kind:    kind,
		Err:     err,
		Content: err.Error(),
	}
}

// sleepCtx waits for d, returning false if the context is cancelled
// first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
