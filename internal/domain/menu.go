package domain

import "time"

// Menu is a bookable service with a fixed duration.
type Menu struct {
	ID              string
	TenantID        TenantID
	Name            string
	Price           int
	DurationMinutes int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
