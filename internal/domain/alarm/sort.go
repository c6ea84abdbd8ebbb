package alarm

import (
	"cmp"
	"slices"
	"strings"
)

// SortForDisplay returns a sorted copy of alarms: enabled before disabled,
// then by time of day, then newest first.
// The input slice is left untouched.
func SortForDisplay(alarms []*Alarm) []*Alarm {
	sorted := slices.Clone(alarms)

	slices.SortStableFunc(sorted, compareForDisplay)

	return sorted
}

func compareForDisplay(a, b *Alarm) int {
	if a.Enabled != b.Enabled {
		if a.Enabled {
			return -1
		}

		return 1
	}

	// Both sides are zero padded, so byte order is chronological order.
	if c := strings.Compare(a.Time, b.Time); c != 0 {
		return c
	}

	return cmp.Compare(b.Created.UnixNano(), a.Created.UnixNano())
}
