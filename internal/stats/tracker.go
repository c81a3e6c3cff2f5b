package stats

import (
	"sync"
	"time"
)

// DropReason says why the scheduler discarded a request without fetching it.
type DropReason string

const (
	// DropDepth is a request beyond the configured maximum depth.
	DropDepth DropReason = "depth"

	// DropDuplicate is a request whose normalized URL was already seen.
	DropDuplicate DropReason = "duplicate"

	// DropRobots is a request disallowed by the host's robots.txt.
	DropRobots DropReason = "robots"

	// DropCancelled is a request abandoned because the crawl context was
	// cancelled before it was admitted.
	DropCancelled DropReason = "cancelled"
)

// Tracker accumulates crawl counters. All methods are safe for concurrent
// use; workers record outcomes while the CLI may snapshot progress.
type Tracker struct {
	mu sync.Mutex

	started         time.Time
	requests        int
	successes       int
	failures        int
	givenUp         int
	itemsStored     int
	errorRecords    int
	parseErrors     int
	storageErrors   int
	bytesDownloaded int64
	statusCodes     map[int]int
	retries         map[string]int
	drops           map[DropReason]int
}

// NewTracker returns a Tracker with its clock started.
func NewTracker() *Tracker {
	return &Tracker{
		started:     time.Now(),
		statusCodes: make(map[int]int),
		retries:     make(map[string]int),
		drops:       make(map[DropReason]int),
	}
}

// RecordRequest counts one completed fetch attempt with its status code and
// body size.
func (t *Tracker) RecordRequest(statusCode int, bodyBytes int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	if statusCode > 0 {
		t.statusCodes[statusCode]++
	}
	t.bytesDownloaded += int64(bodyBytes)
}

// RecordSuccess counts one request that was fetched and parsed to the end.
func (t *Tracker) RecordSuccess() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.successes++
}

// RecordFailure counts one fetch attempt that failed before yielding a
// response.
func (t *Tracker) RecordFailure() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests++
	t.failures++
}

// RecordGiveUp counts one request abandoned after its retry budget ran out.
func (t *Tracker) RecordGiveUp() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.givenUp++
}

// RecordRetry counts one retry attempt under the given category name.
func (t *Tracker) RecordRetry(category string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.retries[category]++
}

// RecordDrop counts one request discarded by the scheduler.
func (t *Tracker) RecordDrop(reason DropReason) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.drops[reason]++
}

// RecordItemStored counts one item persisted to a storage backend.
func (t *Tracker) RecordItemStored() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.itemsStored++
}

// RecordErrorRecord counts one terminal-failure record persisted under the
// error category.
func (t *Tracker) RecordErrorRecord() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.errorRecords++
}

// RecordParseError counts one spider parse failure.
func (t *Tracker) RecordParseError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.parseErrors++
}

// RecordStorageError counts one storage write failure.
func (t *Tracker) RecordStorageError() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.storageErrors++
}

// Snapshot is a point-in-time copy of the crawl counters.
type Snapshot struct {
	// Elapsed is the time since the tracker was created.
	Elapsed time.Duration `json:"elapsed"`

	// Requests is the number of completed fetch attempts, including
	// retries and failures.
	Requests int `json:"requests"`

	// Successes is the number of requests fetched and parsed to the end.
	Successes int `json:"successes"`

	// Failures is the number of fetch attempts that produced no response.
	Failures int `json:"failures"`

	// GivenUp is the number of requests abandoned after exhausting their
	// retry budget.
	GivenUp int `json:"given_up"`

	// ItemsStored is the number of items persisted to storage.
	ItemsStored int `json:"items_stored"`

	// ErrorRecords is the number of terminal-failure records persisted.
	ErrorRecords int `json:"error_records"`

	// ParseErrors is the number of spider parse failures.
	ParseErrors int `json:"parse_errors"`

	// StorageErrors is the number of storage write failures.
	StorageErrors int `json:"storage_errors"`

	// BytesDownloaded is the total raw body bytes received.
	BytesDownloaded int64 `json:"bytes_downloaded"`

	// StatusCodes is the histogram of HTTP status codes received.
	StatusCodes map[int]int `json:"status_codes,omitempty"`

	// Retries counts retry attempts per retry category name.
	Retries map[string]int `json:"retries,omitempty"`

	// Drops counts requests discarded by the scheduler per reason.
	Drops map[DropReason]int `json:"drops,omitempty"`
}

// Snapshot returns a copy of the current counters. The copy does not alias
// the tracker's maps.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Elapsed:         time.Since(t.started),
		Requests:        t.requests,
		Successes:       t.successes,
		Failures:        t.failures,
		GivenUp:         t.givenUp,
		ItemsStored:     t.itemsStored,
		ErrorRecords:    t.errorRecords,
		ParseErrors:     t.parseErrors,
		StorageErrors:   t.storageErrors,
		BytesDownloaded: t.bytesDownloaded,
	}
	if len(t.statusCodes) > 0 {
		snap.StatusCodes = make(map[int]int, len(t.statusCodes))
		for code, n := range t.statusCodes {
			snap.StatusCodes[code] = n
		}
	}
	if len(t.retries) > 0 {
		snap.Retries = make(map[string]int, len(t.retries))
		for cat, n := range t.retries {
			snap.Retries[cat] = n
		}
	}
	if len(t.drops) > 0 {
		snap.Drops = make(map[DropReason]int, len(t.drops))
		for reason, n := range t.drops {
			snap.Drops[reason] = n
		}
	}
	return snap
}

// TotalRetries returns the retry count summed across categories.
func (s Snapshot) TotalRetries() int {
	var total int
	for _, n := range s.Retries {
		total += n
	}
	return total
}

// TotalDrops returns the drop count summed across reasons.
func (s Snapshot) TotalDrops() int {
	var total int
	for _, n := range s.Drops {
		total += n
	}
	return total
}
