package alarm

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTime renders a 24-hour "HH:MM" time as "H:MM AM" or "H:MM PM".
// Midnight is shown as 12 AM and noon as 12 PM.
// Input that is not "HH:MM" is returned unchanged.
func FormatTime(timeOfDay string) string {
	hours, minutes, found := strings.Cut(timeOfDay, ":")
	if !found {
		return timeOfDay
	}

	hour, err := strconv.Atoi(hours)
	if err != nil {
		return timeOfDay
	}

	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}

	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	return fmt.Sprintf("%d:%s %s", hour12, minutes, suffix)
}

// FormatDuration renders a minute count as a phrase such as
// "45 minutes", "1 hour" or "2 hours 1 minute".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return plural(minutes, "minute")
	}

	hours, rest := minutes/60, minutes%60
	if rest == 0 {
		return plural(hours, "hour")
	}

	return plural(hours, "hour") + " " + plural(rest, "minute")
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}

	return strconv.Itoa(n) + " " + unit + "s"
}
