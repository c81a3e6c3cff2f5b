// Package report renders finished-crawl summaries. A Writer renders one
// summary to its destination; simple text, JSON, and Markdown writers are
// provided, plus a MultiWriter for emitting several formats at once.
package report
