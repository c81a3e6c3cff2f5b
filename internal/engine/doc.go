// Package engine schedules and runs a crawl. A dispatcher goroutine owns
// the pending queue and admission checks (depth, dedup, robots) while a
// bounded pool of workers fetches and parses. Retry attempts for one
// request run sequentially inside its worker; new requests enter only
// through spider parse results. The crawl ends when the queue is empty
// and no work is in flight, when the spider returns Stop, or when the
// context is cancelled.
package engine
