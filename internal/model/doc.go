// Package model defines the core data types exchanged between the crawl
// engine, transport layer, spiders, and storage backends: requests,
// responses, callbacks, and content classification.
package model
