// Package stats collects per-crawl counters: requests, outcomes, retries
// by category, drops by reason, bytes downloaded, and a status code
// histogram. One Tracker belongs to one crawl.
package stats
