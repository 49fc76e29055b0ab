package domain

// SubjectRole differentiates customers from tenant administrators.
type SubjectRole string

const (
	SubjectRoleUser  SubjectRole = "USER"
	SubjectRoleAdmin SubjectRole = "ADMIN"
)

// Principal is the authenticated caller of a request.
type Principal struct {
	UserID   string
	TenantID TenantID
	Role     SubjectRole
}

// IsAdmin reports whether the principal administers its tenant.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == SubjectRoleAdmin
}
