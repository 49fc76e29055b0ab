package events

import (
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReservationCreated       EventType = "reservation_created"
	EventReservationStatusChanged EventType = "reservation_status_changed"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Role   domain.SubjectRole `json:"role"`
	UserID string             `json:"user_id"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	TenantID      domain.TenantID `json:"tenant_id"`
	ReservationID string          `json:"reservation_id"`
	Actor         Actor           `json:"actor"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       any             `json:"payload"`
}

// ReservationCreatedPayload payload.
type ReservationCreatedPayload struct {
	UserID       string  `json:"user_id"`
	MenuID       string  `json:"menu_id"`
	StaffID      *string `json:"staff_id,omitempty"`
	Date         string  `json:"date"`
	Time         string  `json:"time"`
	AutoAssigned bool    `json:"auto_assigned"`
}

// ReservationStatusChangedPayload payload.
type ReservationStatusChangedPayload struct {
	OldStatus domain.ReservationStatus `json:"old_status"`
	NewStatus domain.ReservationStatus `json:"new_status"`
}
