package domain

import "time"

// TenantID scopes every record and operation.
type TenantID string

// FeatureFlags holds the per-tenant toggles the engine reads.
type FeatureFlags struct {
	EnableStaffSelection bool
	UpdatedAt            time.Time
}

// DefaultFeatureFlags applies to tenants that have never stored flags.
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{EnableStaffSelection: true}
}

// BreakWindow is a daily [Start, End) pause, HH:MM.
type BreakWindow struct {
	Start string
	End   string
}

// BusinessHours describes a tenant's bookable day.
type BusinessHours struct {
	Open                string
	Close               string
	Breaks              []BreakWindow
	ClosedWeekday       *time.Weekday
	SlotIntervalMinutes int
	Location            *time.Location
}
