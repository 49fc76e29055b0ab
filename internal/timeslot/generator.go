package timeslot

import (
	"iter"
	"slices"
)

// DefaultIntervalMinutes is the slot spacing used when none is configured.
const DefaultIntervalMinutes = 30

// Slots returns the ordered slot start times from open (inclusive) to close
// (exclusive) spaced intervalMinutes apart. The sequence can be ranged over
// any number of times. Only start times are bounded by close; callers check
// service duration themselves.
func Slots(open, close string, intervalMinutes int) (iter.Seq[string], error) {
	start, err := MinutesSinceStartOfDay(open)
	if err != nil {
		return nil, err
	}
	end, err := MinutesSinceStartOfDay(close)
	if err != nil {
		return nil, err
	}
	if intervalMinutes <= 0 {
		return nil, &RangeError{Value: intervalMinutes, Reason: "slot interval must be positive"}
	}

	return func(yield func(string) bool) {
		for m := start; m < end; m += intervalMinutes {
			// m < end < 1440, so formatting cannot fail.
			s, _ := FormatMinutesToTime(m)
			if !yield(s) {
				return
			}
		}
	}, nil
}

// GenerateTimeSlots collects Slots into a slice.
func GenerateTimeSlots(open, close string, intervalMinutes int) ([]string, error) {
	seq, err := Slots(open, close, intervalMinutes)
	if err != nil {
		return nil, err
	}
	out := slices.Collect(seq)
	if out == nil {
		out = []string{}
	}
	return out, nil
}
