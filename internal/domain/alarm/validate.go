package alarm

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MaxLabelLength is the longest label accepted, in characters.
	MaxLabelLength = 50
	// MaxDurationMinutes caps the self-stopping window at one day.
	MaxDurationMinutes = 24 * 60

	// clockLayout is the canonical stored form of Alarm.Time.
	clockLayout = "15:04"
)

var (
	// ErrInvalidTime is returned for a time of day that is not "HH:MM".
	ErrInvalidTime = errors.New("time must be HH:MM in 24-hour format")
	// ErrLabelTooLong is returned when the label exceeds MaxLabelLength.
	ErrLabelTooLong = fmt.Errorf("label must be at most %d characters", MaxLabelLength)
	// ErrInvalidDuration is returned for a duration outside 1..MaxDurationMinutes.
	ErrInvalidDuration = fmt.Errorf("duration must be between 1 and %d minutes", MaxDurationMinutes)
)

// acceptedClockLayouts lists what ParseClock understands, tried in order.
//
//nolint:gochecknoglobals // Read-only lookup table.
var acceptedClockLayouts = []string{
	clockLayout,
	"3:04 PM",
	"3:04PM",
}

// ParseClock converts user input such as "7:05", "07:05" or "7:05 pm" into
// the canonical "HH:MM" form.
func ParseClock(input string) (string, error) {
	input = strings.ToUpper(strings.TrimSpace(input))

	for _, layout := range acceptedClockLayouts {
		parsed, err := time.Parse(layout, input)
		if err == nil {
			return parsed.Format(clockLayout), nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidTime, input)
}

// IsClock reports whether s is a well-formed zero-padded "HH:MM" time.
func IsClock(s string) bool {
	if len(s) != len(clockLayout) {
		return false
	}

	_, err := time.Parse(clockLayout, s)

	return err == nil
}

// Validate checks the fields a caller is about to pass to New.
func Validate(timeOfDay, label string, hasDuration bool, durationMinutes int) error {
	if !IsClock(timeOfDay) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, timeOfDay)
	}

	if utf8.RuneCountInString(label) > MaxLabelLength {
		return ErrLabelTooLong
	}

	if hasDuration && (durationMinutes < 1 || durationMinutes > MaxDurationMinutes) {
		return ErrInvalidDuration
	}

	return nil
}

// FromInput builds an enabled alarm from raw form input: the time is parsed
// leniently, the label is trimmed and the duration is dropped when
// hasDuration is not set.
func FromInput(timeInput, label string, hasDuration bool, durationMinutes int) (*Alarm, error) {
	timeOfDay, err := ParseClock(timeInput)
	if err != nil {
		return nil, err
	}

	label = strings.TrimSpace(label)
	if !hasDuration {
		durationMinutes = 0
	}

	if err := Validate(timeOfDay, label, hasDuration, durationMinutes); err != nil {
		return nil, err
	}

	return New(timeOfDay, label, hasDuration, durationMinutes), nil
}
