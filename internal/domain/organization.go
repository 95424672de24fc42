package domain

import "time"

// Organization is the tenant boundary. Organizations may also log in directly
// and act as their own principal for administrative flows.
type Organization struct {
	ID           string
	Name         string
	Email        string
	Domain       string
	PasswordHash string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
