// Package spider defines the contract between the crawl engine and
// user-supplied parsing logic. A spider names itself, emits seed requests,
// turns responses into follow-up requests and extracted items, and decides
// where extracted data is persisted. It also ships a ready-made link
// spider that follows same-host links and extracts page metadata.
package spider
