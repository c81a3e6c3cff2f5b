// Package dedup tracks which URLs a crawl has already admitted. URLs are
// normalized before lookup so that trivially different spellings of the
// same page count as one visit. Stores are per-crawl: the in-memory store
// is the default, the Redis store shares the visited set across processes.
package dedup
