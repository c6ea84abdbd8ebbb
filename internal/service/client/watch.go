package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	api "github.com/oshokin/alarm-clock/internal/api/grpc/alarm"
	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/service/clock"
)

const (
	// redrawInterval refreshes the clock and overdue line.
	redrawInterval = time.Second
	// dateInterval refreshes the displayed date.
	dateInterval = time.Minute
	// clearLine returns the cursor and erases the status line.
	clearLine = "\r\033[K"
)

// watchView is the state shown by the watch command.
type watchView struct {
	date   string
	alarms []*domain.Alarm
	alert  *domain.Alert
}

func newWatchView(now time.Time) *watchView {
	v := new(watchView)
	v.refreshDate(now)

	return v
}

func (v *watchView) refreshDate(now time.Time) {
	v.date = now.Format(dateLayout)
}

// apply stores the snapshot carried by event.
func (v *watchView) apply(event *api.Event) {
	v.alarms = event.Alarms
	v.alert = event.Alert
}

// status is the single line redrawn every second.
func (v *watchView) status(now time.Time) string {
	line := v.date + "  " + now.Format(clockLayout)
	if alert := alertLine(v.alert, now); alert != "" {
		line += "  " + alert
	}

	return line
}

// Watch follows the daemon until ctx is canceled or the daemon goes away.
func (c *Console) Watch(ctx context.Context) error {
	events := make(chan *api.Event)
	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		defer close(events)

		return c.api.Watch(groupCtx, func(event *api.Event) error {
			select {
			case events <- event:
				return nil
			case <-groupCtx.Done():
				return groupCtx.Err()
			}
		})
	})

	group.Go(func() error {
		return c.follow(groupCtx, events)
	})

	err := group.Wait()
	if ctx.Err() != nil && errors.Is(err, context.Canceled) {
		return nil
	}

	return err
}

// follow prints events as they arrive and redraws the status line.
func (c *Console) follow(ctx context.Context, events <-chan *api.Event) error {
	view := newWatchView(c.now())

	redraw := time.NewTicker(redrawInterval)
	defer redraw.Stop()

	dateRefresh := time.NewTicker(dateInterval)
	defer dateRefresh.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(c.out)

			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				fmt.Fprintln(c.out)
				fmt.Fprintln(c.out, "Alarm daemon closed the stream.")

				return nil
			}

			view.apply(event)

			if err := c.printEvent(view, event); err != nil {
				return err
			}
		case <-redraw.C:
			fmt.Fprint(c.out, clearLine+view.status(c.now()))
		case <-dateRefresh.C:
			view.refreshDate(c.now())
		}
	}
}

// printEvent reports a change above the status line.
func (c *Console) printEvent(view *watchView, event *api.Event) error {
	now := c.now()

	fmt.Fprint(c.out, clearLine)

	switch event.Type {
	case string(clock.EventAlertRaised):
		fmt.Fprintln(c.out, alertLine(view.alert, now))
	case string(clock.EventAlertCleared):
		fmt.Fprintln(c.out, "Alert cleared.")
	default:
		if err := renderAlarms(c.out, view.alarms, now); err != nil {
			return err
		}
	}

	fmt.Fprint(c.out, view.status(now))

	return nil
}
