// Package config provides the crawl configuration: scheduler limits,
// transport settings, storage and dedup backend selection, and retry
// policies. A Config is an immutable snapshot for one crawl; it is
// validated once before anything is fetched.
package config
