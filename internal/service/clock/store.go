package clock

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	repo "github.com/oshokin/alarm-clock/internal/repository/alarms"
)

var (
	// ErrNilAlarm is returned by AddAlarm when no alarm is given.
	ErrNilAlarm = errors.New("alarm is required")
	// ErrDuplicateID is returned by AddAlarm when the id is already taken.
	ErrDuplicateID = errors.New("alarm id already exists")
)

// Store is the single source of truth for the alarm list and the active
// alert. It mediates every mutation, persists the list after each change,
// and notifies subscribers.
type Store struct {
	// repo persists the alarm list; nil keeps the list in memory only.
	repo repo.Repository
	// player rings while an alert is active.
	player Player
	// now returns the current wall-clock time.
	now func() time.Time
	// pollInterval is the period of the polling loop.
	pollInterval time.Duration
	// snoozeInterval is how far a snooze pushes the alarm.
	snoozeInterval time.Duration

	// mu protects alarms and alert.
	mu sync.RWMutex
	// alarms is the live list in insertion order.
	alarms []*domain.Alarm
	// alert is the active alert, nil while idle.
	alert *domain.Alert

	// subsMu protects subs.
	subsMu sync.Mutex
	// subs holds the live subscriptions.
	subs map[*Subscription]struct{}
}

// New creates a store and restores the persisted alarm list.
// Restoring never fails: missing or malformed data yields an empty list.
func New(ctx context.Context, repository repo.Repository, opts ...Option) *Store {
	s := &Store{
		repo:           repository,
		player:         silentPlayer{},
		now:            time.Now,
		pollInterval:   DefaultPollInterval,
		snoozeInterval: DefaultSnoozeInterval,
		alarms:         make([]*domain.Alarm, 0),
		subs:           make(map[*Subscription]struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	if repository == nil {
		return s
	}

	alarms, err := repository.Load(ctx)

	switch {
	case err == nil:
		s.alarms = alarms
		logger.InfoKV(ctx, "Alarms restored", "count", len(alarms))
	case errors.Is(err, repo.ErrNotFound):
		logger.Info(ctx, "No saved alarms, starting with an empty list")
	default:
		logger.ErrorKV(ctx, "Failed to restore alarms, starting with an empty list", "error", err)
	}

	return s
}

// Alarms returns a copy of the alarm list in insertion order.
func (s *Store) Alarms() []*domain.Alarm {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return cloneAlarms(s.alarms)
}

// CurrentAlert returns a copy of the active alert, or nil.
func (s *Store) CurrentAlert() *domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.alert.Clone()
}

// Snapshot returns the alarm list and the active alert taken together.
func (s *Store) Snapshot() Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.eventLocked(EventSnapshot)
}

// Now returns the store's notion of the current time.
func (s *Store) Now() time.Time {
	return s.now()
}

// AddAlarm appends the alarm to the list.
func (s *Store) AddAlarm(ctx context.Context, a *domain.Alarm) error {
	if a == nil {
		return ErrNilAlarm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexLocked(a.ID) >= 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
	}

	s.alarms = append(s.alarms, a.Clone())

	logger.InfoKV(ctx, "Alarm added", "id", a.ID, "time", a.Time, "label", a.Label)

	return s.commitLocked(ctx, EventAlarmsChanged)
}

// ToggleAlarm sets the enabled flag of the alarm with the given id.
// Unknown ids are ignored.
func (s *Store) ToggleAlarm(ctx context.Context, id string, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(id)
	if i < 0 || s.alarms[i].Enabled == enabled {
		return nil
	}

	// Replace rather than mutate, so snapshots already handed out stay intact.
	updated := s.alarms[i].Clone()
	updated.Enabled = enabled
	s.alarms[i] = updated

	logger.InfoKV(ctx, "Alarm toggled", "id", id, "enabled", enabled)

	return s.commitLocked(ctx, EventAlarmsChanged)
}

// DeleteAlarm removes the alarm with the given id. Unknown ids are ignored.
func (s *Store) DeleteAlarm(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.removeLocked(id) {
		return nil
	}

	logger.InfoKV(ctx, "Alarm deleted", "id", id)

	return s.commitLocked(ctx, EventAlarmsChanged)
}

// DismissAlarm clears the active alert and deletes the alarm that raised it.
// It does nothing while no alert is active.
func (s *Store) DismissAlarm(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert == nil {
		return nil
	}

	source := s.alert.Alarm
	s.clearAlertLocked(ctx)
	s.removeLocked(source.ID)

	logger.InfoKV(ctx, "Alarm dismissed", "id", source.ID, "time", source.Time)

	return s.commitLocked(ctx, EventAlertCleared)
}

// SnoozeAlarm clears the active alert and replaces the alarm that raised it
// with a new one ringing after the snooze interval. It returns the new alarm,
// or nil while no alert is active.
func (s *Store) SnoozeAlarm(ctx context.Context) (*domain.Alarm, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert == nil {
		return nil, nil //nolint:nilnil // Nothing to snooze is not an error.
	}

	source := s.alert.Alarm
	snoozed := &domain.Alarm{
		ID:              domain.SnoozeIDPrefix + domain.GenerateID(),
		Time:            now.Add(s.snoozeInterval).Format("15:04"),
		Enabled:         true,
		Label:           snoozeLabel(source.Label),
		HasDuration:     source.HasDuration,
		DurationMinutes: source.DurationMinutes,
		Created:         now,
	}

	s.clearAlertLocked(ctx)
	s.removeLocked(source.ID)
	s.alarms = append(s.alarms, snoozed)

	logger.InfoKV(ctx, "Alarm snoozed", "id", source.ID, "snoozed_id", snoozed.ID, "time", snoozed.Time)

	return snoozed.Clone(), s.commitLocked(ctx, EventAlertCleared)
}

// snoozeLabel marks the label of a snoozed alarm.
func snoozeLabel(label string) string {
	if label == "" {
		return "Snoozed Alarm"
	}

	return label + " (Snoozed)"
}

// clearAlertLocked drops the active alert and silences the player.
func (s *Store) clearAlertLocked(ctx context.Context) {
	s.alert = nil

	if err := s.player.Stop(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to stop alarm sound", "error", err)
	}
}

// commitLocked notifies subscribers and persists the list.
// A failed write is logged and returned; the in-memory state is kept.
func (s *Store) commitLocked(ctx context.Context, eventType EventType) error {
	s.publish(s.eventLocked(eventType))

	if s.repo == nil {
		return nil
	}

	if err := s.repo.Save(ctx, s.alarms); err != nil {
		logger.ErrorKV(ctx, "Failed to persist alarms", "error", err)

		return fmt.Errorf("persist alarms: %w", err)
	}

	return nil
}

func (s *Store) eventLocked(eventType EventType) Event {
	return Event{
		Type:   eventType,
		At:     s.now(),
		Alarms: cloneAlarms(s.alarms),
		Alert:  s.alert.Clone(),
	}
}

func (s *Store) indexLocked(id string) int {
	return slices.IndexFunc(s.alarms, func(a *domain.Alarm) bool {
		return a.ID == id
	})
}

func (s *Store) removeLocked(id string) bool {
	i := s.indexLocked(id)
	if i < 0 {
		return false
	}

	s.alarms = slices.Delete(slices.Clone(s.alarms), i, i+1)

	return true
}

func cloneAlarms(alarms []*domain.Alarm) []*domain.Alarm {
	result := make([]*domain.Alarm, 0, len(alarms))
	for _, a := range alarms {
		result = append(result, a.Clone())
	}

	return result
}
