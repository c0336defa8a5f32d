// internal/events/recorder.go
package events

import "sync"

// Delivery is one event as seen by one recipient.
type Delivery struct {
	RoomID    string
	Recipient string
	Event     Event
}

// Recorder is a Publisher that keeps everything it is given, for tests.
type Recorder struct {
	mu         sync.Mutex
	deliveries []Delivery
}

func (r *Recorder) Broadcast(roomID string, recipients []string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range recipients {
		r.deliveries = append(r.deliveries, Delivery{RoomID: roomID, Recipient: id, Event: ev})
	}
}

func (r *Recorder) Send(playerID string, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = append(r.deliveries, Delivery{Recipient: playerID, Event: ev})
}

// For returns the events delivered to playerID, oldest first.
func (r *Recorder) For(playerID string) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, d := range r.deliveries {
		if d.Recipient == playerID {
			out = append(out, d.Event)
		}
	}
	return out
}

// LastOf returns the most recent event of type typ delivered to playerID.
func (r *Recorder) LastOf(playerID string, typ Type) (Event, bool) {
	events := r.For(playerID)
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == typ {
			return events[i], true
		}
	}
	return Event{}, false
}

// Count returns how many events of type typ reached playerID.
func (r *Recorder) Count(playerID string, typ Type) int {
	n := 0
	for _, ev := range r.For(playerID) {
		if ev.Type == typ {
			n++
		}
	}
	return n
}

// Clear forgets everything recorded so far.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deliveries = nil
}
