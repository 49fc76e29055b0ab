package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/booking-service/internal/api/dto"
	"github.com/spec-kit/booking-service/internal/auth"
	"github.com/spec-kit/booking-service/internal/domain"
	"github.com/spec-kit/booking-service/internal/service"
	apperrors "github.com/spec-kit/booking-service/pkg/util/errorutil"
)

// FeatureFlagsHandler exposes tenant toggles.
type FeatureFlagsHandler struct {
	service *service.FeatureFlagService
}

// NewFeatureFlagsHandler constructs handler.
func NewFeatureFlagsHandler(flags *service.FeatureFlagService) *FeatureFlagsHandler {
	return &FeatureFlagsHandler{service: flags}
}

// Get GET /feature-flags.
func (h *FeatureFlagsHandler) Get(c *fiber.Ctx) error {
	flags, err := h.service.Get(c.UserContext(), auth.TenantFromContext(c))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, featureFlagsResponse(flags))
}

// Update PUT /admin/feature-flags.
func (h *FeatureFlagsHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || !principal.IsAdmin() {
		return apperrors.NewForbidden("admin role required")
	}
	var req dto.FeatureFlagsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	flags, err := h.service.Get(c.UserContext(), principal.TenantID)
	if err != nil {
		return err
	}
	if req.EnableStaffSelection != nil {
		flags.EnableStaffSelection = *req.EnableStaffSelection
	}
	updated, err := h.service.Set(c.UserContext(), principal.TenantID, principal.UserID, flags)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, featureFlagsResponse(updated))
}

func featureFlagsResponse(f domain.FeatureFlags) dto.FeatureFlagsResponse {
	resp := dto.FeatureFlagsResponse{EnableStaffSelection: f.EnableStaffSelection}
	if !f.UpdatedAt.IsZero() {
		updated := f.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
