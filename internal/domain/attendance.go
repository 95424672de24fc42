package domain

import "time"

// AttendanceRecord captures one check-in/check-out pair for a user.
type AttendanceRecord struct {
	ID             string
	OrganizationID string
	UserID         string
	CheckIn        time.Time
	CheckOut       *time.Time
	Note           string
	CreatedAt      time.Time
}
