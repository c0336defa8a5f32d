// internal/coordinator/timers.go
package coordinator

import (
	"sync"
	"time"
)

type timerEntry struct {
	timer *time.Timer
	seq   uint64
}

// Timers holds at most one pending callback per room. Arming a room again
// supersedes the earlier callback; a superseded or cancelled callback never
// runs, even if its timer already fired and is waiting on the lock.
type Timers struct {
	mu      sync.Mutex
	entries map[string]*timerEntry
	seq     uint64
}

func NewTimers() *Timers {
	return &Timers{entries: make(map[string]*timerEntry)}
}

// Arm schedules fn to run after d for roomID, replacing any pending callback.
func (t *Timers) Arm(roomID string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[roomID]; ok {
		old.timer.Stop()
	}
	t.seq++
	seq := t.seq
	t.entries[roomID] = &timerEntry{
		seq: seq,
		timer: time.AfterFunc(d, func() {
			if t.claim(roomID, seq) {
				fn()
			}
		}),
	}
}

// claim removes the entry for roomID if it is still the one armed as seq.
func (t *Timers) claim(roomID string, seq uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[roomID]
	if !ok || e.seq != seq {
		return false
	}
	delete(t.entries, roomID)
	return true
}

// Cancel drops roomID's pending callback, if any.
func (t *Timers) Cancel(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[roomID]; ok {
		e.timer.Stop()
		delete(t.entries, roomID)
	}
}

// Pending reports whether roomID has a callback waiting.
func (t *Timers) Pending(roomID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[roomID]
	return ok
}

// StopAll cancels every pending callback.
func (t *Timers) StopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for id, e := range t.entries {
		e.timer.Stop()
		delete(t.entries, id)
	}
}
