package clock

import (
	"sync"
	"time"
)

// Frozen is a Clock that only moves when told to. Invoice dates and the
// yearly number scope are read from it, so tests can pin or cross a year.
type Frozen struct {
	mu sync.Mutex
	at time.Time
}

func Freeze(at time.Time) *Frozen {
	return &Frozen{at: at.UTC()}
}

func (f *Frozen) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.at
}

// Set jumps to at.
func (f *Frozen) Set(at time.Time) {
	f.mu.Lock()
	f.at = at.UTC()
	f.mu.Unlock()
}

func (f *Frozen) Advance(d time.Duration) {
	f.mu.Lock()
	f.at = f.at.Add(d)
	f.mu.Unlock()
}
