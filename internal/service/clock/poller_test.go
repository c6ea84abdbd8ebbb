package clock

import (
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// bubbleNow reads the fake clock of a synctest bubble, which starts at
// 2000-01-01 00:00:00 UTC.
func bubbleNow() time.Time {
	return time.Now().UTC()
}

// TestRun_RaisesAndExpires drives the polling loop through a full duration-bound alert.
func TestRun_RaisesAndExpires(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		player := new(fakePlayer)
		s := New(ctx, new(memoryRepository), WithNow(bubbleNow), WithPlayer(player))

		a := testAlarm("a", "00:01")
		a.HasDuration = true
		a.DurationMinutes = 1
		require.NoError(t, s.AddAlarm(ctx, a))

		go func() {
			_ = s.Run(ctx)
		}()

		// Just before the minute nothing rings.
		time.Sleep(59*time.Second + 500*time.Millisecond)
		synctest.Wait()
		require.Nil(t, s.CurrentAlert())

		time.Sleep(time.Second)
		synctest.Wait()

		alert := s.CurrentAlert()
		require.NotNil(t, alert)
		require.Equal(t, "a", alert.Alarm.ID)
		require.Equal(t, time.Date(2000, 1, 1, 0, 1, 0, 0, time.UTC), alert.Triggered)
		require.Equal(t, time.Date(2000, 1, 1, 0, 2, 0, 0, time.UTC), alert.Ends)

		plays, _ := player.counts()
		require.Equal(t, 1, plays)

		// The alert ends on its own and the alarm stays in the list.
		time.Sleep(time.Minute)
		synctest.Wait()

		require.Nil(t, s.CurrentAlert())
		require.Len(t, s.Alarms(), 1)

		plays, stops := player.counts()
		require.Equal(t, 1, plays)
		require.Equal(t, 1, stops)
	})
}

// TestRun_SuppressesWhileRinging verifies no alarm is evaluated while an alert is active.
func TestRun_SuppressesWhileRinging(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		player := new(fakePlayer)
		s := New(ctx, nil, WithNow(bubbleNow), WithPlayer(player))

		require.NoError(t, s.AddAlarm(ctx, testAlarm("first", "00:01")))
		require.NoError(t, s.AddAlarm(ctx, testAlarm("second", "00:02")))

		go func() {
			_ = s.Run(ctx)
		}()

		time.Sleep(2*time.Minute + 30*time.Second)
		synctest.Wait()

		alert := s.CurrentAlert()
		require.NotNil(t, alert)
		require.Equal(t, "first", alert.Alarm.ID)
		require.False(t, alert.HasEnd())

		plays, _ := player.counts()
		require.Equal(t, 1, plays)
	})
}

// TestRun_SilencesOnShutdown verifies a ringing alert is stopped when the loop exits.
func TestRun_SilencesOnShutdown(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())

		player := new(fakePlayer)
		s := New(ctx, nil, WithNow(bubbleNow), WithPlayer(player))
		require.NoError(t, s.AddAlarm(ctx, testAlarm("a", "00:00")))

		done := make(chan error, 1)

		go func() {
			done <- s.Run(ctx)
		}()

		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()
		require.NotNil(t, s.CurrentAlert())

		cancel()
		require.NoError(t, <-done)

		_, stops := player.counts()
		require.Equal(t, 1, stops)
	})
}

// TestPoll_PlayFailureKeepsAlert verifies the alert stays active when the sound can't start.
func TestPoll_PlayFailureKeepsAlert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &fakeClock{now: at(6, 30, 4)}
	player := &fakePlayer{playErr: errTestPlay}
	s := New(ctx, nil, WithNow(clk.Now), WithPlayer(player))

	require.NoError(t, s.AddAlarm(ctx, testAlarm("a", "06:30")))

	s.Poll(ctx)

	alert := s.CurrentAlert()
	require.NotNil(t, alert)
	require.Equal(t, "a", alert.Alarm.ID)
}

// TestPoll_OutsideWindow verifies the ten-second trigger window.
func TestPoll_OutsideWindow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &fakeClock{now: at(6, 30, 10)}
	s := New(ctx, nil, WithNow(clk.Now))

	require.NoError(t, s.AddAlarm(ctx, testAlarm("a", "06:30")))

	s.Poll(ctx)
	require.Nil(t, s.CurrentAlert())

	// Disabled alarms never ring.
	require.NoError(t, s.ToggleAlarm(ctx, "a", false))
	clk.Set(at(6, 30, 0))

	s.Poll(ctx)
	require.Nil(t, s.CurrentAlert())
}

// TestPoll_AlertSnapshot verifies the alert keeps the alarm as it was when raised.
func TestPoll_AlertSnapshot(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &fakeClock{now: at(6, 30, 0)}
	s := New(ctx, nil, WithNow(clk.Now))

	a := testAlarm("a", "06:30")
	a.Label = "Wake up"
	require.NoError(t, s.AddAlarm(ctx, a))

	s.Poll(ctx)
	require.NoError(t, s.DeleteAlarm(ctx, "a"))

	alert := s.CurrentAlert()
	require.NotNil(t, alert)
	require.Equal(t, domain.Alarm{
		ID:      "a",
		Time:    "06:30",
		Enabled: true,
		Label:   "Wake up",
		Created: at(0, 0, 0),
	}, alert.Alarm)
	require.Empty(t, s.Alarms())
}
