package client

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/clock"
)

var errTestDaemon = errors.New("daemon unavailable")

// fakeAPI records calls and returns canned answers.
type fakeAPI struct {
	alarms  []*domain.Alarm
	alert   *domain.Alert
	snoozed *domain.Alarm
	events  []*api.Event
	err     error

	added     []string
	toggled   map[string]bool
	deleted   []string
	dismissed int
}

func (f *fakeAPI) ListAlarms(context.Context) ([]*domain.Alarm, error) {
	return f.alarms, f.err
}

func (f *fakeAPI) AddAlarm(_ context.Context, timeInput, label string, durationMinutes int) (*domain.Alarm, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.added = append(f.added, timeInput)

	a, err := domain.FromInput(timeInput, label, durationMinutes > 0, durationMinutes)
	if err != nil {
		return nil, err
	}

	a.ID = "a1"

	return a, nil
}

func (f *fakeAPI) SetEnabled(_ context.Context, id string, enabled bool) error {
	if f.toggled == nil {
		f.toggled = make(map[string]bool)
	}

	f.toggled[id] = enabled

	return f.err
}

func (f *fakeAPI) DeleteAlarm(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)

	return f.err
}

func (f *fakeAPI) GetAlert(context.Context) (*domain.Alert, error) {
	return f.alert, f.err
}

func (f *fakeAPI) SnoozeAlarm(context.Context) (*domain.Alarm, error) {
	return f.snoozed, f.err
}

func (f *fakeAPI) DismissAlarm(context.Context) error {
	f.dismissed++

	return f.err
}

func (f *fakeAPI) Watch(_ context.Context, fn func(*api.Event) error) error {
	for _, event := range f.events {
		if err := fn(event); err != nil {
			return err
		}
	}

	return f.err
}

func newTestConsole(f *fakeAPI, now time.Time) (*Console, *bytes.Buffer) {
	out := new(bytes.Buffer)
	c := NewConsole(f, out)
	c.now = func() time.Time { return now }

	return c, out
}

func ringing(label string, triggered time.Time, minutes int) *domain.Alert {
	a := domain.New("06:00", label, minutes > 0, minutes)

	alert := &domain.Alert{Alarm: *a, Triggered: triggered}
	if minutes > 0 {
		alert.Ends = triggered.Add(time.Duration(minutes) * time.Minute)
	}

	return alert
}

// TestConsole_List prints the table and the ringing alert.
func TestConsole_List(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 17, 6, 3, 0, 0, time.UTC)

	wake := domain.New("06:30", "Wake up", true, 15)
	wake.ID = "wake"

	late := domain.New("23:00", "", false, 0)
	late.ID = "late"
	late.Enabled = false

	f := &fakeAPI{
		alarms: []*domain.Alarm{wake, late},
		alert:  ringing("Gym", now.Add(-3*time.Minute), 30),
	}
	c, out := newTestConsole(f, now)

	require.NoError(t, c.List(context.Background()))

	text := out.String()
	require.Contains(t, text, "wake")
	require.Contains(t, text, "6:30 AM")
	require.Contains(t, text, "15 minutes")
	require.Contains(t, text, "Fri 06:30")
	require.Contains(t, text, "Wake up")
	require.Contains(t, text, "11:00 PM")
	require.Contains(t, text, `"Gym" at 6:00 AM, 3 min overdue, stops at 06:30`)
}

// TestConsole_ListEmpty prints a hint for an empty list.
func TestConsole_ListEmpty(t *testing.T) {
	t.Parallel()

	c, out := newTestConsole(new(fakeAPI), time.Now())

	require.NoError(t, c.List(context.Background()))
	require.Equal(t, "No alarms set.\n", out.String())
}

// TestConsole_Add validates locally before calling the daemon.
func TestConsole_Add(t *testing.T) {
	t.Parallel()

	f := new(fakeAPI)
	c, out := newTestConsole(f, time.Now())
	ctx := context.Background()

	require.NoError(t, c.Add(ctx, "7:05 pm", "Dinner", 0))
	require.Equal(t, "Added alarm a1: \"Dinner\" at 7:05 PM\n", out.String())

	require.ErrorIs(t, c.Add(ctx, "7:05", "", -1), errNegativeDuration)
	require.ErrorIs(t, c.Add(ctx, "25:00", "", 0), domain.ErrInvalidTime)
	require.Error(t, c.Add(ctx, "07:00", "", domain.MaxDurationMinutes+1))
	require.Equal(t, []string{"7:05 pm"}, f.added)
}

// TestConsole_Mutations covers enable, disable, delete and error propagation.
func TestConsole_Mutations(t *testing.T) {
	t.Parallel()

	f := new(fakeAPI)
	c, out := newTestConsole(f, time.Now())
	ctx := context.Background()

	require.NoError(t, c.SetEnabled(ctx, "x", false))
	require.NoError(t, c.SetEnabled(ctx, "y", true))
	require.NoError(t, c.Delete(ctx, "z"))

	require.Equal(t, map[string]bool{"x": false, "y": true}, f.toggled)
	require.Equal(t, []string{"z"}, f.deleted)
	require.Equal(t, "Alarm x disabled\nAlarm y enabled\nAlarm z deleted\n", out.String())

	f.err = errTestDaemon

	require.ErrorIs(t, c.Delete(ctx, "z"), errTestDaemon)
	require.ErrorIs(t, c.List(ctx), errTestDaemon)
}

// TestConsole_SnoozeAndDismiss reports both the idle and the ringing case.
func TestConsole_SnoozeAndDismiss(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 17, 6, 1, 0, 0, time.UTC)
	f := new(fakeAPI)
	c, out := newTestConsole(f, now)
	ctx := context.Background()

	require.NoError(t, c.Snooze(ctx))
	require.NoError(t, c.Dismiss(ctx))
	require.Zero(t, f.dismissed)
	require.Equal(t, "No alarm is ringing.\nNo alarm is ringing.\n", out.String())

	out.Reset()

	f.snoozed = &domain.Alarm{ID: "snooze-a1", Time: "06:06", Label: "Snoozed Alarm", Enabled: true}
	f.alert = ringing("", now, 0)

	require.NoError(t, c.Snooze(ctx))
	require.NoError(t, c.Dismiss(ctx))
	require.Equal(t, 1, f.dismissed)
	require.Equal(t, "Snoozed until 6:06 AM (snooze-a1)\nDismissed 6:00 AM\n", out.String())
}

// TestConsole_Watch prints each event and stops when the stream ends.
func TestConsole_Watch(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 5, 17, 6, 0, 30, 0, time.UTC)

	wake := domain.New("06:00", "Wake up", false, 0)
	wake.ID = "wake"

	alert := ringing("Wake up", now, 0)

	f := &fakeAPI{events: []*api.Event{
		{Type: api.EventSnapshot, At: now, Alarms: []*domain.Alarm{wake}},
		{Type: string(clock.EventAlertRaised), At: now, Alarms: []*domain.Alarm{wake}, Alert: alert},
		{Type: string(clock.EventAlertCleared), At: now, Alarms: nil},
	}}
	c, out := newTestConsole(f, now)

	require.NoError(t, c.Watch(context.Background()))

	text := out.String()
	require.Contains(t, text, "wake")
	require.Contains(t, text, `"Wake up" at 6:00 AM`)
	require.Contains(t, text, "Alert cleared.")
	require.Contains(t, text, "Friday, May 17 2024  06:00:30")
	require.Contains(t, text, "Alarm daemon closed the stream.")
}

// TestConsole_WatchError surfaces stream failures.
func TestConsole_WatchError(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(&fakeAPI{err: errTestDaemon}, time.Now())

	require.ErrorIs(t, c.Watch(context.Background()), errTestDaemon)
}

// TestConsole_WatchCanceled treats cancellation as a clean exit.
func TestConsole_WatchCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c, _ := newTestConsole(&fakeAPI{err: context.Canceled}, time.Now())

	require.NoError(t, c.Watch(ctx))
}

// TestWatchView_Status redraws the clock with the overdue minutes.
func TestWatchView_Status(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 5, 17, 23, 59, 0, 0, time.UTC)
	v := newWatchView(start)

	require.Equal(t, "Friday, May 17 2024  23:59:00", v.status(start))

	v.apply(&api.Event{Alert: ringing("", start, 0)})

	later := start.Add(2*time.Minute + 5*time.Second)
	require.Contains(t, v.status(later), "2 min overdue")

	// The date only changes when refreshed.
	require.Contains(t, v.status(later), "Friday, May 17 2024")

	v.refreshDate(later)
	require.Contains(t, v.status(later), "Saturday, May 18 2024  00:01:05")
}
