package config

import "errors"

// Configuration validation errors returned by Config.Validate().
var (
	// ErrNoSeeds is returned when the crawl has no seed URLs.
	ErrNoSeeds = errors.New("no seed URLs: provide at least one URL to crawl")

	// ErrInvalidMaxDepth is returned when the maximum depth is negative.
	// Depth 0 is valid and crawls only the seeds.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidConcurrency is returned when the worker count is not
	// positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidTimeout is returned when the request timeout is not
	// positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRequestDelay is returned when the politeness delay is
	// negative. Use 0 for no delay.
	ErrInvalidRequestDelay = errors.New("invalid request delay: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body cap is negative.
	// Use 0 for the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrUnknownStorageBackend is returned when the storage backend name
	// is not disk, sqlite, or kafka.
	ErrUnknownStorageBackend = errors.New("unknown storage backend: must be disk, sqlite, or kafka")

	// ErrUnknownDedupStore is returned when the dedup store name is not
	// memory or redis.
	ErrUnknownDedupStore = errors.New("unknown dedup store: must be memory or redis")

	// ErrKafkaNotConfigured is returned when the kafka backend is selected
	// without brokers or a topic.
	ErrKafkaNotConfigured = errors.New("kafka backend requires brokers and a topic")

	// ErrRedisNotConfigured is returned when the redis dedup store is
	// selected without an address.
	ErrRedisNotConfigured = errors.New("redis dedup store requires an address")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
