package clock

import (
	"context"
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// Run polls for due alarms until ctx is canceled.
// An alert that is still ringing at shutdown is silenced.
func (s *Store) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "poller")

	logger.InfoKV(ctx, "Polling alarms", "interval", s.pollInterval.String())

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.silence(context.WithoutCancel(ctx))
			logger.Info(ctx, "Poller stopped")

			return nil
		case <-ticker.C:
			s.Poll(ctx)
		}
	}
}

// Poll performs a single tick: it expires a finished duration-bound alert,
// or, while idle, raises an alert for the first due alarm. No new alarm is
// evaluated while an alert is active.
func (s *Store) Poll(ctx context.Context) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert != nil {
		if !s.alert.Expired(now) {
			return
		}

		source := s.alert.Alarm
		s.clearAlertLocked(ctx)

		logger.InfoKV(ctx, "Alert expired", "id", source.ID, "duration", domain.FormatDuration(source.DurationMinutes))
		s.publish(s.eventLocked(EventAlertCleared))

		return
	}

	due := scheduler.CheckAlarms(s.alarms, now)
	if due == nil {
		return
	}

	s.alert = &domain.Alert{
		Alarm:     *due.Clone(),
		Triggered: now,
		Ends:      scheduler.CalculateEndTime(due, now),
	}

	logger.InfoKV(ctx, "Alarm ringing", "id", due.ID, "time", domain.FormatTime(due.Time), "label", due.Label)

	if err := s.player.Play(ctx); err != nil {
		// The alert stays active without sound.
		logger.ErrorKV(ctx, "Failed to play alarm sound", "error", err)
	}

	s.publish(s.eventLocked(EventAlertRaised))
}

// silence stops the player if an alert is still ringing.
func (s *Store) silence(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.alert == nil {
		return
	}

	if err := s.player.Stop(ctx); err != nil {
		logger.ErrorKV(ctx, "Failed to stop alarm sound", "error", err)
	}
}
