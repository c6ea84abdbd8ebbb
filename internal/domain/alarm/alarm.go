package alarm

import "time"

// Alarm is a user-configured trigger that rings every day at Time while Enabled.
type Alarm struct {
	// ID is an opaque identifier assigned at creation. It never changes.
	ID string
	// Time is the wall-clock time of day in 24-hour "HH:MM" form.
	Time string
	// Enabled reports whether the alarm is eligible to fire.
	Enabled bool
	// Label is optional display text of at most MaxLabelLength characters.
	Label string
	// HasDuration makes alerts raised by this alarm stop on their own.
	HasDuration bool
	// DurationMinutes is the length of the self-stopping window.
	// It is positive when HasDuration is set and ignored otherwise.
	DurationMinutes int
	// Created is the creation timestamp, used only to order alarms for display.
	Created time.Time
}

// New creates an enabled alarm with a fresh identifier.
// It performs no validation; transports call Validate before reaching it.
func New(timeOfDay, label string, hasDuration bool, durationMinutes int) *Alarm {
	return &Alarm{
		ID:              GenerateID(),
		Time:            timeOfDay,
		Enabled:         true,
		Label:           label,
		HasDuration:     hasDuration,
		DurationMinutes: durationMinutes,
		Created:         time.Now(),
	}
}

// Clone returns a copy of the alarm to avoid leaking internal references.
func (a *Alarm) Clone() *Alarm {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}

// Alert is the ephemeral ringing state produced when an alarm fires.
type Alert struct {
	// Alarm is a snapshot of the alarm that fired. Later changes to the
	// stored alarm are not reflected here.
	Alarm Alarm
	// Triggered is when the alert became active.
	Triggered time.Time
	// Ends is when a duration-bound alert stops on its own.
	// It is the zero time for alarms without a duration.
	Ends time.Time
}

// HasEnd reports whether the alert carries an end time.
func (a *Alert) HasEnd() bool {
	return !a.Ends.IsZero()
}

// Expired reports whether a duration-bound alert has reached its end time.
func (a *Alert) Expired(now time.Time) bool {
	return a.HasEnd() && !now.Before(a.Ends)
}

// OverdueMinutes returns the whole minutes elapsed since the alert was
// triggered, or 0 while no more than one minute has passed.
func (a *Alert) OverdueMinutes(now time.Time) int {
	elapsed := int(now.Sub(a.Triggered) / time.Minute)
	if elapsed <= 1 {
		return 0
	}

	return elapsed
}

// Clone returns a copy of the alert.
func (a *Alert) Clone() *Alert {
	if a == nil {
		return nil
	}

	cloned := *a

	return &cloned
}
