package domain

import "time"

// ReservationStatus enumerates lifecycle states for reservations.
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
	ReservationStatusCompleted ReservationStatus = "COMPLETED"
	ReservationStatusNoShow    ReservationStatus = "NO_SHOW"
)

// ActiveStatuses are the statuses that occupy time on the calendar.
var ActiveStatuses = []ReservationStatus{ReservationStatusPending, ReservationStatusConfirmed}

// MaxNotesLength bounds free-text notes on a reservation.
const MaxNotesLength = 500

// Occupies reports whether a reservation in this status blocks its slot.
func (s ReservationStatus) Occupies() bool {
	return s == ReservationStatusPending || s == ReservationStatusConfirmed
}

// Valid reports whether s is a known status.
func (s ReservationStatus) Valid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled,
		ReservationStatusCompleted, ReservationStatusNoShow:
		return true
	}
	return false
}

var reservationTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
	ReservationStatusConfirmed: {ReservationStatusCompleted, ReservationStatusCancelled, ReservationStatusNoShow},
}

// CanTransition reports whether the state machine allows current -> next.
func CanTransition(current, next ReservationStatus) bool {
	for _, allowed := range reservationTransitions[current] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Reservation is a booked service for one user.
type Reservation struct {
	ID           string
	TenantID     TenantID
	UserID       string
	MenuID       string
	StaffID      *string
	ReservedDate time.Time
	ReservedTime string
	Status       ReservationStatus
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveReservation is the projection the availability engine reads: a
// PENDING or CONFIRMED reservation with its menu duration resolved.
type ActiveReservation struct {
	ID              string
	UserID          string
	StaffID         *string
	StartTime       string
	DurationMinutes int
	Status          ReservationStatus
}
