// Package transport fetches crawl requests over HTTP. It enforces
// per-request deadlines, an inter-request politeness delay, and a body
// size cap, and normalizes response bodies to UTF-8. Non-2xx responses
// are returned as responses, not errors; classifying them is the retry
// policy's job.
package transport
