package stats

import (
	"sync"
	"testing"
)

func TestTrackerSnapshot(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.RecordRequest(200, 1024)
	tr.RecordRequest(200, 2048)
	tr.RecordRequest(503, 512)
	tr.RecordSuccess()
	tr.RecordSuccess()
	tr.RecordFailure()
	tr.RecordRetry("http_error")
	tr.RecordRetry("http_error")
	tr.RecordRetry("parse_error")
	tr.RecordDrop(DropDepth)
	tr.RecordDrop(DropDuplicate)
	tr.RecordDrop(DropDuplicate)
	tr.RecordGiveUp()
	tr.RecordItemStored()
	tr.RecordErrorRecord()
	tr.RecordParseError()
	tr.RecordStorageError()

	snap := tr.Snapshot()

	if snap.Requests != 4 {
		t.Errorf("Requests = %d, want 4", snap.Requests)
	}
	if snap.Successes != 2 {
		t.Errorf("Successes = %d, want 2", snap.Successes)
	}
	if snap.Failures != 1 {
		t.Errorf("Failures = %d, want 1", snap.Failures)
	}
	if snap.BytesDownloaded != 3584 {
		t.Errorf("BytesDownloaded = %d, want 3584", snap.BytesDownloaded)
	}
	if snap.StatusCodes[200] != 2 || snap.StatusCodes[503] != 1 {
		t.Errorf("StatusCodes = %v, want 200:2 503:1", snap.StatusCodes)
	}
	if got := snap.TotalRetries(); got != 3 {
		t.Errorf("TotalRetries() = %d, want 3", got)
	}
	if snap.Drops[DropDuplicate] != 2 || snap.Drops[DropDepth] != 1 {
		t.Errorf("Drops = %v, want depth:1 duplicate:2", snap.Drops)
	}
	if got := snap.TotalDrops(); got != 3 {
		t.Errorf("TotalDrops() = %d, want 3", got)
	}
	if snap.GivenUp != 1 || snap.ItemsStored != 1 || snap.ErrorRecords != 1 {
		t.Errorf("terminal counters = %d/%d/%d, want 1/1/1",
			snap.GivenUp, snap.ItemsStored, snap.ErrorRecords)
	}
	if snap.ParseErrors != 1 || snap.StorageErrors != 1 {
		t.Errorf("error counters = %d/%d, want 1/1", snap.ParseErrors, snap.StorageErrors)
	}
}

func TestSnapshotDoesNotAliasTracker(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	tr.RecordRequest(200, 1)

	snap := tr.Snapshot()
	snap.StatusCodes[200] = 99

	if got := tr.Snapshot().StatusCodes[200]; got != 1 {
		t.Errorf("tracker histogram mutated through snapshot: %d", got)
	}
}

func TestTrackerConcurrentUse(t *testing.T) {
	t.Parallel()

	tr := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.RecordRequest(200, 10)
				tr.RecordRetry("http_error")
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Requests != 800 {
		t.Errorf("Requests = %d, want 800", snap.Requests)
	}
	if snap.Retries["http_error"] != 800 {
		t.Errorf("Retries = %d, want 800", snap.Retries["http_error"])
	}
}
