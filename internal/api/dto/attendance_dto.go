package dto

import "time"

// AttendanceNoteRequest payload for check-in and check-out.
type AttendanceNoteRequest struct {
	Note string `json:"note"`
}

// AttendanceRecordResponse response.
type AttendanceRecordResponse struct {
	ID       string     `json:"id"`
	UserID   string     `json:"user_id"`
	CheckIn  time.Time  `json:"check_in"`
	CheckOut *time.Time `json:"check_out"`
	Note     string     `json:"note,omitempty"`
}
