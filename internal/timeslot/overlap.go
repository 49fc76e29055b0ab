package timeslot

// Interval is a half-open [Start, End) range of minute offsets.
type Interval struct {
	Start MinuteOffset
	End   MinuteOffset
}

// NewInterval builds the interval occupied by a booking that starts at
// start (HH:MM) and lasts durationMinutes.
func NewInterval(start string, durationMinutes int) (Interval, error) {
	m, err := MinutesSinceStartOfDay(start)
	if err != nil {
		return Interval{}, err
	}
	if durationMinutes <= 0 {
		return Interval{}, &RangeError{Value: durationMinutes, Reason: "duration must be positive"}
	}
	return Interval{Start: m, End: m + durationMinutes}, nil
}

// Overlaps reports whether the two intervals share any instant.
func (i Interval) Overlaps(other Interval) bool {
	return HasTimeOverlap(i.Start, i.End, other.Start, other.End)
}

// HasTimeOverlap reports whether [startA, endA) and [startB, endB) overlap.
// Intervals that only touch at a boundary do not.
func HasTimeOverlap(startA, endA, startB, endB int) bool {
	return startA < endB && startB < endA
}

// IsWithin reports whether instant lies in [windowStart, windowEnd).
func IsWithin(instant, windowStart, windowEnd int) bool {
	return instant >= windowStart && instant < windowEnd
}

// IsBreakTime is IsWithin over HH:MM strings.
func IsBreakTime(t, breakStart, breakEnd string) (bool, error) {
	instant, err := MinutesSinceStartOfDay(t)
	if err != nil {
		return false, err
	}
	start, err := MinutesSinceStartOfDay(breakStart)
	if err != nil {
		return false, err
	}
	end, err := MinutesSinceStartOfDay(breakEnd)
	if err != nil {
		return false, err
	}
	return IsWithin(instant, start, end), nil
}
