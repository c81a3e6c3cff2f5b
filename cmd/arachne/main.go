// Package main provides the entry point for the arachne CLI.
//
// Arachne is a polite concurrent web crawler with per-category retry
// policies and pluggable storage backends.
//
// Usage:
//
//	arachne crawl https://example.com
//	arachne crawl --depth 2 --storage sqlite https://example.com
//
// See --help for all available options.
package main

// main is the entry point for arachne.
func main() {
	Execute()
}
