package domain

import "time"

// StaffMember is a bookable practitioner of a tenant.
type StaffMember struct {
	ID        string
	TenantID  TenantID
	Name      string
	Email     string
	Role      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StaffLess orders staff by creation time, then id. Assignment relies on
// this order being stable across calls.
func StaffLess(a, b StaffMember) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
