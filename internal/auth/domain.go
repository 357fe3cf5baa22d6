package auth

// Roles recognised by the LIMS backend.
const (
	RoleAdmin                 = "Admin"
	RoleUser                  = "User"
	RoleLabTechnician         = "Lab Technician"
	RoleResearcher            = "Researcher"
	RoleManufacturingEngineer = "Manufacturing Engineer"
)

// User is the authenticated identity as returned by the backend. It is a
// transient, non-authoritative copy cached in the session.
type User struct {
	ID         string `json:"_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	IsActive   bool   `json:"isActive"`
}

// IsAdmin reports whether the user holds the Admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanManageStock reports whether the user may create components and post
// inward transactions.
func (u User) CanManageStock() bool {
	return u.Role == RoleAdmin || u.Role == RoleLabTechnician
}
