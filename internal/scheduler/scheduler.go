package scheduler

import (
	"time"

	"github.com/teambition/rrule-go"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// TriggerWindow is how long after the start of a due minute an alarm may
// still fire. Polling runs every second, so the window keeps a one-second
// poller from firing the same alarm sixty times.
const TriggerWindow = 10 * time.Second

// clockLayout renders a timestamp the way Alarm.Time is stored.
const clockLayout = "15:04"

// CheckAlarms returns the first enabled alarm due at now, or nil.
// An alarm is due when its time equals now's hour and minute in now's
// location and now lies within TriggerWindow of the minute's start.
// Ties are broken by slice order.
func CheckAlarms(alarms []*domain.Alarm, now time.Time) *domain.Alarm {
	if time.Duration(now.Second())*time.Second+time.Duration(now.Nanosecond()) >= TriggerWindow {
		return nil
	}

	current := now.Format(clockLayout)

	for _, a := range alarms {
		if a != nil && a.Enabled && a.Time == current {
			return a
		}
	}

	return nil
}

// CalculateEndTime returns when an alert raised at startTime stops on its own.
// It returns the zero time for alarms without a duration.
func CalculateEndTime(a *domain.Alarm, startTime time.Time) time.Time {
	if a == nil || !a.HasDuration {
		return time.Time{}
	}

	return startTime.Add(time.Duration(a.DurationMinutes) * time.Minute)
}

// NextTrigger returns the start of the next minute matching the alarm's daily
// rule, counting the minute now falls in. Disabled or malformed alarms yield
// the zero time.
func NextTrigger(a *domain.Alarm, now time.Time) time.Time {
	if a == nil || !a.Enabled {
		return time.Time{}
	}

	clock, err := time.Parse(clockLayout, a.Time)
	if err != nil {
		return time.Time{}
	}

	year, month, day := now.Date()

	//nolint:exhaustruct // Unset BYxxx parts mean "any".
	rule, err := rrule.NewRRule(rrule.ROption{
		Freq:     rrule.DAILY,
		Dtstart:  time.Date(year, month, day, 0, 0, 0, 0, now.Location()),
		Byhour:   []int{clock.Hour()},
		Byminute: []int{clock.Minute()},
		Bysecond: []int{0},
	})
	if err != nil {
		return time.Time{}
	}

	return rule.After(now.Truncate(time.Minute), true)
}
