package domain

import "time"

// UserRole enumerates account roles. Moderators and admins are eligible
// for ticket assignment.
type UserRole string

const (
	UserRoleUser      UserRole = "user"
	UserRoleModerator UserRole = "moderator"
	UserRoleAdmin     UserRole = "admin"
)

// User is the domain model for accounts: requesters, moderators and admins
// share one directory, distinguished by role and declared skills.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	Skills       []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStaff reports whether the user can be assigned tickets.
func (u *User) IsStaff() bool {
	return u != nil && (u.Role == UserRoleModerator || u.Role == UserRoleAdmin)
}
