package auth

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleEmployee   = "employee"
)

var Roles = []string{RoleAdmin, RoleSupervisor, RoleEmployee}

// UserContext is the authenticated caller attached to each request.
type UserContext struct {
	UserID     int64
	EmployeeID int64
	Username   string
	Role       string
	FullName   string
}

func (u UserContext) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanReview reports whether the caller may act on other employees' records.
func (u UserContext) CanReview() bool {
	return u.Role == RoleAdmin || u.Role == RoleSupervisor
}

// Owns reports whether the caller is the employee, or an admin.
func (u UserContext) Owns(employeeID int64) bool {
	return u.IsAdmin() || u.EmployeeID == employeeID
}

func HasRole(user UserContext, roles ...string) bool {
	for _, role := range roles {
		if user.Role == role {
			return true
		}
	}
	return false
}
