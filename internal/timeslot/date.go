package timeslot

import "time"

// DateLayout is the wire format of reservation dates.
const DateLayout = "2006-01-02"

// ParseDate parses a YYYY-MM-DD calendar date into UTC midnight.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, &FormatError{Input: s, Want: "YYYY-MM-DD"}
	}
	return d, nil
}

// FormatDate renders a date in DateLayout.
func FormatDate(d time.Time) string {
	return d.Format(DateLayout)
}
