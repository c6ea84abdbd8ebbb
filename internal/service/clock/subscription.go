package clock

import (
	"context"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// EventType tells subscribers what changed.
type EventType string

const (
	// EventAlarmsChanged follows add, toggle and delete.
	EventAlarmsChanged EventType = "alarms_changed"
	// EventAlertRaised follows an alarm starting to ring.
	EventAlertRaised EventType = "alert_raised"
	// EventAlertCleared follows dismiss, snooze and expiry.
	EventAlertCleared EventType = "alert_cleared"
	// EventSnapshot marks the state returned by Snapshot. It is never published.
	EventSnapshot EventType = "snapshot"
)

// Event is a snapshot of the store taken right after a change.
type Event struct {
	// Type is the kind of change.
	Type EventType
	// At is when the change happened.
	At time.Time
	// Alarms is the list after the change, in insertion order.
	Alarms []*domain.Alarm
	// Alert is the active alert after the change, or nil.
	Alert *domain.Alert
}

// subBufferSize is how many events a subscriber may lag behind.
const subBufferSize = 16

// Subscription delivers store events.
//
// A subscriber that can't keep up has its subscription closed; it must
// subscribe again and re-read the store.
type Subscription struct {
	store *Store
	c     chan Event
	once  sync.Once
}

// Subscribe registers a subscription that is closed when ctx is done.
func (s *Store) Subscribe(ctx context.Context) *Subscription {
	sub := &Subscription{
		store: s,
		c:     make(chan Event, subBufferSize),
	}

	s.subsMu.Lock()
	s.subs[sub] = struct{}{}
	s.subsMu.Unlock()

	context.AfterFunc(ctx, func() {
		_ = sub.Close()
	})

	return sub
}

// C returns the event channel. It is closed when the subscription ends.
func (sub *Subscription) C() <-chan Event {
	return sub.c
}

// Close ends the subscription.
func (sub *Subscription) Close() error {
	sub.store.subsMu.Lock()
	defer sub.store.subsMu.Unlock()

	sub.closeLocked()

	return nil
}

func (sub *Subscription) closeLocked() {
	sub.once.Do(func() {
		close(sub.c)
	})

	delete(sub.store.subs, sub)
}

// publish fans the event out without blocking the store.
func (s *Store) publish(event Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for sub := range s.subs {
		select {
		case sub.c <- event:
		default:
			sub.closeLocked()
		}
	}
}
