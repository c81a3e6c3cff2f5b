// Package storage persists crawl output. Items are routed by category
// (data, error, raw, or custom) through a Manager to pluggable backends:
// JSON files on disk, a SQLite document store, or a Kafka topic.
package storage
