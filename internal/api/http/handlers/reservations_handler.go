package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/service"
	"github.com/spec-kit/booking-service/internal/timeslot"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// ReservationsHandler manages booking endpoints for users and admins.
type ReservationsHandler struct {
	service *service.BookingService
}

// NewReservationsHandler constructs handler.
func NewReservationsHandler(booking *service.BookingService) *ReservationsHandler {
	return &ReservationsHandler{service: booking}
}

// Create POST /reservations.
func (h *ReservationsHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	var req dto.CreateReservationRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.MenuID == "" || req.Date == "" || req.Time == "" {
		return apperrors.NewValidationError("menu_id, date, time required", nil)
	}

	reservation, err := h.service.CreateReservation(c.UserContext(), service.CreateReservationInput{
		Tenant:  principal.TenantID,
		UserID:  principal.UserID,
		MenuID:  req.MenuID,
		Date:    req.Date,
		Time:    req.Time,
		StaffID: req.StaffID,
		Notes:   req.Notes,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, reservationResponse(reservation))
}

// Cancel POST /reservations/:id/cancel.
func (h *ReservationsHandler) Cancel(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("user required")
	}
	reservation, err := h.service.CancelReservation(c.UserContext(), principal.TenantID, principal.UserID, c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, reservationResponse(reservation))
}

// UpdateStatus PATCH /admin/reservations/:id/status.
func (h *ReservationsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	reservation, err := h.service.UpdateStatus(c.UserContext(), principal.TenantID, principal.UserID, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, reservationResponse(reservation))
}

func reservationResponse(r *domain.Reservation) dto.ReservationResponse {
	return dto.ReservationResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		MenuID:    r.MenuID,
		StaffID:   r.StaffID,
		Date:      timeslot.FormatDate(r.ReservedDate),
		Time:      r.ReservedTime,
		Status:    r.Status,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
