package domain

import "time"

// UserStatus represents lifecycle states for a user account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// User is a person belonging to exactly one organization.
type User struct {
	ID               string
	OrganizationID   string
	Name             string
	Email            string
	PasswordHash     string
	OrganizationRole Role
	Status           UserStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
