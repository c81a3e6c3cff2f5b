// Package robots answers whether a crawl may fetch a URL according to the
// host's robots.txt. Rules are fetched once per host and cached for the
// crawl's lifetime; unreachable or missing robots.txt fails open.
package robots
