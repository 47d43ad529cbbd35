package models

import "time"

type EventType struct {
	ID              int64     `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Description     string    `json:"description" yaml:"description"`
	DurationMinutes int       `json:"duration_minutes" yaml:"duration_minutes"`
	Slug            string    `json:"slug" yaml:"slug"`
	CreatedAt       time.Time `json:"created_at" yaml:"-"`
}
