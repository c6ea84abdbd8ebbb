package clock

import (
	"context"
	"time"
)

const (
	// DefaultPollInterval is how often the poller looks for due alarms.
	DefaultPollInterval = time.Second
	// DefaultSnoozeInterval is how far a snooze pushes the alarm.
	DefaultSnoozeInterval = 5 * time.Minute
)

// Player is the single audio resource an alert rings through.
// Play must restart playback from the beginning; Stop must stop it and
// rewind. Both are called with the store lock held and must not block.
type Player interface {
	Play(ctx context.Context) error
	Stop(ctx context.Context) error
}

// Option configures the store.
type Option func(*Store)

// WithPlayer sets the audio resource used while an alert is active.
func WithPlayer(player Player) Option {
	return func(s *Store) {
		if player != nil {
			s.player = player
		}
	}
}

// WithNow replaces the wall clock, mainly for tests.
func WithNow(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithPollInterval sets the interval between polls.
func WithPollInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.pollInterval = interval
		}
	}
}

// WithSnoozeInterval sets how far a snooze pushes the alarm.
func WithSnoozeInterval(interval time.Duration) Option {
	return func(s *Store) {
		if interval > 0 {
			s.snoozeInterval = interval
		}
	}
}

// silentPlayer is used when no audio resource is configured.
type silentPlayer struct{}

func (silentPlayer) Play(context.Context) error { return nil }

func (silentPlayer) Stop(context.Context) error { return nil }
