package obs

import (
	"sync"
	"time"
)

// TimingEntry is a single recorded duration.
type TimingEntry struct {
	Label string
	Dur   time.Duration
}

var (
	timingMu  sync.Mutex
	timingLog []TimingEntry
)

// Track records the elapsed time since start under name. Call as
// defer obs.Track(time.Now(), "frame_sim.step") at the top of a function.
func Track(start time.Time, name string) {
	elapsed := time.Since(start)
	timingMu.Lock()
	timingLog = append(timingLog, TimingEntry{Label: name, Dur: elapsed})
	timingMu.Unlock()
}

// SnapshotTimings returns the collected timing entries and clears them.
func SnapshotTimings() []TimingEntry {
	timingMu.Lock()
	defer timingMu.Unlock()
	out := make([]TimingEntry, len(timingLog))
	copy(out, timingLog)
	timingLog = nil
	return out
}
