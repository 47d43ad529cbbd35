package models

import "time"

type Booking struct {
	ID          int64  `json:"id"`
	EventTypeID int64  `json:"event_type_id"`
	// EventTitle is joined in on reads; "(deleted)" when the event type
	// no longer exists.
	EventTitle  string `json:"event_title,omitempty"`
	BookerName  string `json:"booker_name"`
	BookerEmail string `json:"booker_email"`
	// Date is the calendar day in the service time zone, YYYY-MM-DD.
	Date string `json:"date"`
	// StartMinute/EndMinute bound the half-open interval [start, end)
	// in minutes since midnight. EndMinute is denormalized from the
	// event type's duration at reservation time so the interval stays
	// valid even if the event type is later deleted.
	StartMinute int       `json:"start_minute"`
	EndMinute   int       `json:"end_minute"`
	CreatedAt   time.Time `json:"created_at"`
}
