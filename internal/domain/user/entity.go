package user

import "time"

type Role string

const (
	RoleIntern Role = "intern" // Checks in/out and applies for leave
	RoleAdmin  Role = "admin"  // Manages users, decides leave, exports reports
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleIntern || r == RoleAdmin
}

// DefaultWorkHours is the daily target assigned when none is given.
const DefaultWorkHours = 8.0

type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	Role         Role
	WorkHours    float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin checks if user is an administrator
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsIntern checks if user records attendance
func (u *User) IsIntern() bool {
	return u.Role == RoleIntern
}
