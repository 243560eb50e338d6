package auth

// Role carried in the access token.
type Role string

const (
	RoleOwner    Role = "owner"
	RoleManager  Role = "manager"
	RoleEmployee Role = "employee"
)

// CanManagePayroll reports whether the role may run and transition payroll.
func (r Role) CanManagePayroll() bool {
	return r == RoleOwner || r == RoleManager
}

// Claims is the subset of access token claims the engine relies on.
type Claims struct {
	UserID    string
	CompanyID string
	Role      Role
}
