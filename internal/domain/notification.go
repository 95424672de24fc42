package domain

import "time"

// Notification is a persisted message for one recipient. Delivery through the
// stream feed is at-least-once; the row is the durable copy.
type Notification struct {
	ID             string
	OrganizationID string
	RecipientID    string
	Kind           string
	Subject        string
	Body           string
	ReadAt         *time.Time
	CreatedAt      time.Time
}
