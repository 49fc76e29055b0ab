package dto

import (
	"time"

	"github.com/spec-kit/booking-service/internal/domain"
)

// CreateReservationRequest payload.
type CreateReservationRequest struct {
	MenuID  string  `json:"menu_id"`
	StaffID *string `json:"staff_id"`
	Date    string  `json:"date"`
	Time    string  `json:"time"`
	Notes   string  `json:"notes"`
}

// UpdateStatusRequest payload for admin status changes.
type UpdateStatusRequest struct {
	Status domain.ReservationStatus `json:"status"`
}

// ReservationResponse represents one reservation.
type ReservationResponse struct {
	ID        string                   `json:"id"`
	UserID    string                   `json:"user_id"`
	MenuID    string                   `json:"menu_id"`
	StaffID   *string                  `json:"staff_id"`
	Date      string                   `json:"date"`
	Time      string                   `json:"time"`
	Status    domain.ReservationStatus `json:"status"`
	Notes     string                   `json:"notes,omitempty"`
	CreatedAt time.Time                `json:"created_at"`
	UpdatedAt time.Time                `json:"updated_at"`
}
