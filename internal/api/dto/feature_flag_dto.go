package dto

import "time"

// FeatureFlagsRequest payload. Omitted fields keep their stored value.
type FeatureFlagsRequest struct {
	EnableStaffSelection *bool `json:"enable_staff_selection"`
}

// FeatureFlagsResponse exposes the tenant's toggles.
type FeatureFlagsResponse struct {
	EnableStaffSelection bool       `json:"enable_staff_selection"`
	UpdatedAt            *time.Time `json:"updated_at,omitempty"`
}
