package service

import (
	"iter"
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/timeslot"
)

// SlotState is the calendar verdict on a start time, before reservations
// are considered.
type SlotState string

const (
	SlotOpen           SlotState = "OPEN"
	SlotClosedDay      SlotState = "CLOSED_DAY"
	SlotInBreak        SlotState = "IN_BREAK"
	SlotOutsideHours   SlotState = "OUTSIDE_HOURS"
	SlotEndsAfterClose SlotState = "ENDS_AFTER_CLOSE"
	SlotInPast         SlotState = "IN_PAST"
)

// BusinessDay evaluates start times of one date against a tenant's hours.
type BusinessDay struct {
	hours  domain.BusinessHours
	date   time.Time
	open   timeslot.MinuteOffset
	close  timeslot.MinuteOffset
	breaks []timeslot.Interval
	now    time.Time
}

// NewBusinessDay prepares the calendar of date. now is compared in the
// tenant's time zone to reject start times that already passed.
func NewBusinessDay(hours domain.BusinessHours, date, now time.Time) (*BusinessDay, error) {
	open, err := timeslot.MinutesSinceStartOfDay(hours.Open)
	if err != nil {
		return nil, err
	}
	closeAt, err := timeslot.MinutesSinceStartOfDay(hours.Close)
	if err != nil {
		return nil, err
	}

	breaks := make([]timeslot.Interval, 0, len(hours.Breaks))
	for _, b := range hours.Breaks {
		start, err := timeslot.MinutesSinceStartOfDay(b.Start)
		if err != nil {
			return nil, err
		}
		end, err := timeslot.MinutesSinceStartOfDay(b.End)
		if err != nil {
			return nil, err
		}
		breaks = append(breaks, timeslot.Interval{Start: start, End: end})
	}

	if hours.Location == nil {
		hours.Location = time.UTC
	}
	if hours.SlotIntervalMinutes <= 0 {
		hours.SlotIntervalMinutes = timeslot.DefaultIntervalMinutes
	}

	return &BusinessDay{
		hours:  hours,
		date:   date,
		open:   open,
		close:  closeAt,
		breaks: breaks,
		now:    now,
	}, nil
}

// Closed reports whether the date falls on the tenant's weekly closing day.
func (d *BusinessDay) Closed() bool {
	return d.hours.ClosedWeekday != nil && d.date.Weekday() == *d.hours.ClosedWeekday
}

// Slots returns the candidate start times of the day.
func (d *BusinessDay) Slots() (iter.Seq[string], error) {
	return timeslot.Slots(d.hours.Open, d.hours.Close, d.hours.SlotIntervalMinutes)
}

// Check classifies the interval [start, start+duration).
func (d *BusinessDay) Check(iv timeslot.Interval) SlotState {
	switch {
	case d.Closed():
		return SlotClosedDay
	case iv.Start < d.open || iv.Start >= d.close:
		return SlotOutsideHours
	case d.inBreak(iv.Start):
		return SlotInBreak
	case iv.End > d.close:
		return SlotEndsAfterClose
	case d.startsAt(iv.Start).Before(d.now):
		return SlotInPast
	}
	return SlotOpen
}

func (d *BusinessDay) inBreak(start timeslot.MinuteOffset) bool {
	for _, b := range d.breaks {
		if timeslot.IsWithin(start, b.Start, b.End) {
			return true
		}
	}
	return false
}

func (d *BusinessDay) startsAt(m timeslot.MinuteOffset) time.Time {
	y, mo, day := d.date.Date()
	return time.Date(y, mo, day, m/60, m%60, 0, 0, d.hours.Location)
}
