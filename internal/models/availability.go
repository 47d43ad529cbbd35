package models

import "time"

// AvailabilityWindow is a recurring weekly interval keyed by weekday.
// Start and end are minutes since midnight in the service time zone;
// at most one window exists per weekday.
type AvailabilityWindow struct {
	Weekday     string    `json:"weekday"`
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
	UpdatedAt   time.Time `json:"updated_at"`
}
