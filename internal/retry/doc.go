// Package retry decides whether a failed crawl operation should be retried
// and after what delay. Decisions are pure functions of the configuration,
// the failure, and the attempt number; callers own the per-request attempt
// counters and perform the actual waiting and requeueing.
package retry
