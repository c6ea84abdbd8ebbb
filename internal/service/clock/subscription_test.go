package clock

import (
	"context"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/require"
)

// TestSubscribe_ReceivesEvents checks the event sequence of a full alert cycle.
func TestSubscribe_ReceivesEvents(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	clk := &fakeClock{now: at(7, 15, 0)}
	s := New(ctx, nil, WithNow(clk.Now))

	sub := s.Subscribe(ctx)
	defer sub.Close()

	require.NoError(t, s.AddAlarm(ctx, testAlarm("a", "07:15")))

	event := <-sub.C()
	require.Equal(t, EventAlarmsChanged, event.Type)
	require.Equal(t, []string{"a"}, alarmIDs(event.Alarms))
	require.Nil(t, event.Alert)

	s.Poll(ctx)

	event = <-sub.C()
	require.Equal(t, EventAlertRaised, event.Type)
	require.NotNil(t, event.Alert)
	require.Equal(t, "a", event.Alert.Alarm.ID)
	require.Equal(t, at(7, 15, 0), event.At)

	require.NoError(t, s.DismissAlarm(ctx))

	event = <-sub.C()
	require.Equal(t, EventAlertCleared, event.Type)
	require.Nil(t, event.Alert)
	require.Empty(t, event.Alarms)
}

// TestSubscribe_ClosedWithContext verifies the channel closes when the context ends.
func TestSubscribe_ClosedWithContext(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		s := New(context.Background(), nil)

		sub := s.Subscribe(ctx)

		cancel()
		synctest.Wait()

		_, ok := <-sub.C()
		require.False(t, ok)

		// Closing twice is harmless and later changes go nowhere.
		require.NoError(t, sub.Close())
		require.NoError(t, s.AddAlarm(context.Background(), testAlarm("a", "07:00")))
	})
}

// TestSubscribe_DropsSlowSubscriber verifies a lagging subscriber is cut off instead of blocking the store.
func TestSubscribe_DropsSlowSubscriber(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New(ctx, nil)

	slow := s.Subscribe(ctx)
	fast := s.Subscribe(ctx)

	received := 0

	for i := range subBufferSize + 1 {
		require.NoError(t, s.AddAlarm(ctx, testAlarm(string(rune('a'+i)), "07:00")))

		<-fast.C()
		received++
	}

	delivered := 0
	for range slow.C() {
		delivered++
	}

	require.Equal(t, subBufferSize, delivered)
	require.Equal(t, subBufferSize+1, received)

	require.NoError(t, fast.Close())
}
