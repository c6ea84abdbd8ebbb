package client

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/scheduler"
)

const (
	// dateLayout renders the watch header date.
	dateLayout = "Monday, January 2 2006"
	// clockLayout renders wall-clock times with seconds.
	clockLayout = "15:04:05"
	// nextLayout renders the next trigger of an alarm.
	nextLayout = "Mon 15:04"
)

//nolint:gochecknoglobals // Shared palette.
var (
	enabledColor  = color.New(color.FgGreen)
	disabledColor = color.New(color.FgHiBlack)
	ringingColor  = color.New(color.FgRed, color.Bold)
	headerColor   = color.New(color.Bold)
)

// renderAlarms writes the alarm list as a table in the given order.
// Rows are colored whole so escape codes do not skew the columns.
func renderAlarms(w io.Writer, alarms []*domain.Alarm, now time.Time) error {
	if len(alarms) == 0 {
		_, err := fmt.Fprintln(w, "No alarms set.")

		return err
	}

	var table bytes.Buffer

	tw := tabwriter.NewWriter(&table, 0, 0, 2, ' ', 0)

	fmt.Fprintln(tw, "ID\tTIME\tSTATE\tDURATION\tNEXT\tLABEL")

	for _, a := range alarms {
		state := "on"
		if !a.Enabled {
			state = "off"
		}

		next := "-"
		if at := scheduler.NextTrigger(a, now); !at.IsZero() {
			next = at.Format(nextLayout)
		}

		duration := "-"
		if a.HasDuration {
			duration = domain.FormatDuration(a.DurationMinutes)
		}

		// Keep every alarm on one row.
		label := strings.Join(strings.Fields(a.Label), " ")
		if label == "" {
			label = "-"
		}

		fmt.Fprintf(
			tw,
			"%s\t%s\t%s\t%s\t%s\t%s\n",
			a.ID,
			domain.FormatTime(a.Time),
			state,
			duration,
			next,
			label,
		)
	}

	if err := tw.Flush(); err != nil {
		return err
	}

	lines := strings.Split(strings.TrimSuffix(table.String(), "\n"), "\n")

	for i, line := range lines {
		rowColor := headerColor

		if i > 0 {
			rowColor = enabledColor
			if !alarms[i-1].Enabled {
				rowColor = disabledColor
			}
		}

		if _, err := rowColor.Fprintln(w, line); err != nil {
			return err
		}
	}

	return nil
}

// alertLine describes a ringing alert, or returns "" when nothing rings.
func alertLine(alert *domain.Alert, now time.Time) string {
	if alert == nil {
		return ""
	}

	var b strings.Builder

	b.WriteString(ringingColor.Sprint("RINGING"))
	b.WriteString(" ")
	b.WriteString(alarmTitle(&alert.Alarm))

	if overdue := alert.OverdueMinutes(now); overdue > 0 {
		fmt.Fprintf(&b, ", %d min overdue", overdue)
	}

	if alert.HasEnd() {
		fmt.Fprintf(&b, ", stops at %s", alert.Ends.In(now.Location()).Format("15:04"))
	}

	return b.String()
}

// alarmTitle names an alarm by label and time.
func alarmTitle(a *domain.Alarm) string {
	when := domain.FormatTime(a.Time)
	if a.Label == "" {
		return when
	}

	return fmt.Sprintf("%q at %s", a.Label, when)
}
