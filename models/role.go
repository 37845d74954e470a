package models

// Role tags the two kinds of principal that can hold a token.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleFarmer Role = "farmer"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleFarmer:
		return true
	default:
		return false
	}
}

// LoginPath is the page a principal of this role signs in from.
func (r Role) LoginPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/login"
	default:
		return "/farmer/login"
	}
}

// DashboardPath is the landing page for a signed-in principal of this role.
func (r Role) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	default:
		return "/farmer/dashboard"
	}
}
