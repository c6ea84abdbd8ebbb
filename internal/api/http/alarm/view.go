package alarm

import (
	"time"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

// alarmView is the JSON shape of an alarm.
type alarmView struct {
	ID              string     `json:"id"`
	Time            string     `json:"time"`
	DisplayTime     string     `json:"displayTime"`
	Enabled         bool       `json:"enabled"`
	Label           string     `json:"label"`
	HasDuration     bool       `json:"hasDuration"`
	DurationMinutes int        `json:"durationMinutes"`
	DisplayDuration string     `json:"displayDuration,omitempty"`
	Created         time.Time  `json:"created"`
	NextTrigger     *time.Time `json:"nextTrigger,omitempty"`
}

// alertView is the JSON shape of the alert state.
type alertView struct {
	Active         bool       `json:"active"`
	Alarm          *alarmView `json:"alarm,omitempty"`
	Triggered      *time.Time `json:"triggered,omitempty"`
	Ends           *time.Time `json:"ends,omitempty"`
	OverdueMinutes int        `json:"overdueMinutes"`
}

// snoozeView is returned by the snooze endpoint; Alarm is null when nothing was ringing.
type snoozeView struct {
	Alarm *alarmView `json:"alarm"`
}

// addAlarmRequest is the body of POST /api/alarms.
type addAlarmRequest struct {
	Time            string `json:"time"`
	Label           string `json:"label"`
	HasDuration     bool   `json:"hasDuration"`
	DurationMinutes int    `json:"durationMinutes"`
}

// toggleAlarmRequest is the body of PATCH /api/alarms/{id}.
type toggleAlarmRequest struct {
	Enabled *bool `json:"enabled"`
}

// errorView is the body of every error response.
type errorView struct {
	Error string `json:"error"`
}

func newAlarmView(a *domain.Alarm, now time.Time) *alarmView {
	view := &alarmView{
		ID:              a.ID,
		Time:            a.Time,
		DisplayTime:     domain.FormatTime(a.Time),
		Enabled:         a.Enabled,
		Label:           a.Label,
		HasDuration:     a.HasDuration,
		DurationMinutes: a.DurationMinutes,
		Created:         a.Created,
	}

	if a.HasDuration {
		view.DisplayDuration = domain.FormatDuration(a.DurationMinutes)
	}

	if next := scheduler.NextTrigger(a, now); !next.IsZero() {
		view.NextTrigger = &next
	}

	return view
}

func newAlarmViews(alarms []*domain.Alarm, now time.Time) []*alarmView {
	views := make([]*alarmView, 0, len(alarms))
	for _, a := range domain.SortForDisplay(alarms) {
		views = append(views, newAlarmView(a, now))
	}

	return views
}

func newAlertView(alert *domain.Alert, now time.Time) *alertView {
	if alert == nil {
		return &alertView{Active: false}
	}

	view := &alertView{
		Active:         true,
		Alarm:          newAlarmView(&alert.Alarm, now),
		Triggered:      &alert.Triggered,
		OverdueMinutes: alert.OverdueMinutes(now),
	}

	if alert.HasEnd() {
		view.Ends = &alert.Ends
	}

	return view
}
