package obs

import "sync"

var (
	counterMu sync.Mutex
	counters  map[string]uint64
)

// Count increments the named counter by delta. Used by the frame
// simulator's correlated-error bookkeeping to track operation volume
// cheaply.
func Count(name string, delta uint64) {
	counterMu.Lock()
	if counters == nil {
		counters = make(map[string]uint64)
	}
	counters[name] += delta
	counterMu.Unlock()
}

// SnapshotCountersAndReset returns the global counter map and clears it.
func SnapshotCountersAndReset() map[string]uint64 {
	counterMu.Lock()
	defer counterMu.Unlock()
	out := counters
	counters = nil
	return out
}
