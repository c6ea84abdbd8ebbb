package client

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// errNegativeDuration is returned for a negative --duration.
var errNegativeDuration = errors.New("duration must not be negative")

// List prints the alarms in display order followed by the ringing alert.
func (c *Console) List(ctx context.Context) error {
	alarms, err := c.api.ListAlarms(ctx)
	if err != nil {
		return err
	}

	alert, err := c.api.GetAlert(ctx)
	if err != nil {
		return err
	}

	now := c.now()

	if err := renderAlarms(c.out, alarms, now); err != nil {
		return err
	}

	if line := alertLine(alert, now); line != "" {
		fmt.Fprintln(c.out)
		fmt.Fprintln(c.out, line)
	}

	return nil
}

// Add creates an alarm. durationMinutes of zero means the alert rings until
// it is dismissed or snoozed.
func (c *Console) Add(ctx context.Context, timeInput, label string, durationMinutes int) error {
	if durationMinutes < 0 {
		return errNegativeDuration
	}

	// Reject bad input before bothering the daemon.
	if _, err := domain.FromInput(timeInput, label, durationMinutes > 0, durationMinutes); err != nil {
		return err
	}

	created, err := c.api.AddAlarm(ctx, timeInput, label, durationMinutes)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Added alarm %s: %s\n", created.ID, alarmTitle(created))

	return nil
}

// SetEnabled enables or disables an alarm.
func (c *Console) SetEnabled(ctx context.Context, id string, enabled bool) error {
	if err := c.api.SetEnabled(ctx, id, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}

	fmt.Fprintf(c.out, "Alarm %s %s\n", id, state)

	return nil
}

// Delete removes an alarm.
func (c *Console) Delete(ctx context.Context, id string) error {
	if err := c.api.DeleteAlarm(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Alarm %s deleted\n", id)

	return nil
}

// Snooze silences the ringing alarm and schedules it again a few minutes later.
func (c *Console) Snooze(ctx context.Context) error {
	snoozed, err := c.api.SnoozeAlarm(ctx)
	if err != nil {
		return err
	}

	if snoozed == nil {
		fmt.Fprintln(c.out, "No alarm is ringing.")

		return nil
	}

	fmt.Fprintf(c.out, "Snoozed until %s (%s)\n", domain.FormatTime(snoozed.Time), snoozed.ID)

	return nil
}

// Dismiss stops the ringing alarm and removes it.
func (c *Console) Dismiss(ctx context.Context) error {
	alert, err := c.api.GetAlert(ctx)
	if err != nil {
		return err
	}

	if alert == nil {
		fmt.Fprintln(c.out, "No alarm is ringing.")

		return nil
	}

	if err := c.api.DismissAlarm(ctx); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "Dismissed %s\n", alarmTitle(&alert.Alarm))

	return nil
}
