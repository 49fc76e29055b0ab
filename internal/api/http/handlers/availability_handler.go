package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// AvailabilityHandler serves the public slot listing.
type AvailabilityHandler struct {
	service *service.AvailabilityService
}

// NewAvailabilityHandler constructs handler.
func NewAvailabilityHandler(availability *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: availability}
}

// GetAvailability GET /availability?date=&menu_id=&staff_id=.
func (h *AvailabilityHandler) GetAvailability(c *fiber.Ctx) error {
	var q dto.AvailabilityQuery
	if err := c.QueryParser(&q); err != nil {
		return apperrors.NewValidationError("invalid query", nil)
	}
	q.Date = strings.TrimSpace(q.Date)
	q.MenuID = strings.TrimSpace(q.MenuID)
	if q.Date == "" || q.MenuID == "" {
		return apperrors.NewValidationError("date and menu_id required", nil)
	}

	query := service.AvailabilityQuery{
		Tenant: auth.TenantFromContext(c),
		Date:   q.Date,
		MenuID: q.MenuID,
	}
	if staff := strings.TrimSpace(q.StaffID); staff != "" {
		query.StaffID = &staff
	}

	result, err := h.service.ResolveSlots(c.UserContext(), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, availabilityResponse(result))
}

func availabilityResponse(r *service.AvailabilityResult) dto.AvailabilityResponse {
	slots := make([]dto.SlotResponse, 0, len(r.Slots))
	for _, s := range r.Slots {
		slots = append(slots, dto.SlotResponse{Time: s.Time, Available: s.Available, StaffID: s.StaffID})
	}
	return dto.AvailabilityResponse{
		Date:            r.Date,
		MenuID:          r.MenuID,
		StaffID:         r.StaffID,
		DurationMinutes: r.DurationMinutes,
		StaffSelection:  r.StaffSelection,
		Slots:           slots,
	}
}
