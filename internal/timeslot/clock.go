// Package timeslot holds the pure time-of-day arithmetic the booking engine
// is built on: HH:MM parsing, minute offsets, interval overlap and the
// business-day slot grid.
package timeslot

import (
	"fmt"
)

// MinutesPerDay bounds every MinuteOffset.
const MinutesPerDay = 24 * 60

// MinuteOffset counts minutes elapsed since local midnight, in [0, 1440).
type MinuteOffset = int

// TimeOfDay is an hour/minute pair serialized as zero-padded HH:MM.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// FormatError reports a malformed HH:MM (or date) input.
type FormatError struct {
	Input string
	Want  string
}

func (e *FormatError) Error() string {
	if e.Want == "" {
		return fmt.Sprintf("invalid time format: expected HH:MM format (got %q)", e.Input)
	}
	return fmt.Sprintf("invalid format: expected %s format (got %q)", e.Want, e.Input)
}

// RangeError reports a minute value outside the domain bounds.
type RangeError struct {
	Value  int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s (got %d)", e.Reason, e.Value)
}

// ParseTimeString parses a strict HH:MM string. Hours run 00-23 and minutes
// 00-59; anything else, including missing zero padding, is a FormatError.
func ParseTimeString(s string) (TimeOfDay, error) {
	if len(s) != 5 || s[2] != ':' {
		return TimeOfDay{}, &FormatError{Input: s}
	}
	hour, ok := twoDigits(s[0], s[1])
	if !ok || hour > 23 {
		return TimeOfDay{}, &FormatError{Input: s}
	}
	minute, ok := twoDigits(s[3], s[4])
	if !ok || minute > 59 {
		return TimeOfDay{}, &FormatError{Input: s}
	}
	return TimeOfDay{Hour: hour, Minute: minute}, nil
}

func twoDigits(a, b byte) (int, bool) {
	if a < '0' || a > '9' || b < '0' || b > '9' {
		return 0, false
	}
	return int(a-'0')*10 + int(b-'0'), true
}

// Minutes returns the offset since midnight.
func (t TimeOfDay) Minutes() MinuteOffset {
	return t.Hour*60 + t.Minute
}

// String renders the canonical HH:MM form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesSinceStartOfDay converts HH:MM to a minute offset.
func MinutesSinceStartOfDay(s string) (MinuteOffset, error) {
	t, err := ParseTimeString(s)
	if err != nil {
		return 0, err
	}
	return t.Minutes(), nil
}

// FormatMinutesToTime is the inverse of MinutesSinceStartOfDay.
func FormatMinutesToTime(m MinuteOffset) (string, error) {
	if m < 0 {
		return "", &RangeError{Value: m, Reason: "minutes must be non-negative"}
	}
	if m >= MinutesPerDay {
		return "", &RangeError{Value: m, Reason: "minutes must be less than 1440"}
	}
	return TimeOfDay{Hour: m / 60, Minute: m % 60}.String(), nil
}

// IsValidTimeFormat reports whether s parses as HH:MM.
func IsValidTimeFormat(s string) bool {
	_, err := ParseTimeString(s)
	return err == nil
}
