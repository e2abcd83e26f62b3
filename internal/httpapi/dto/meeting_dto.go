package dto

import "time"

type CreateMeetingRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Agenda      *string    `json:"agenda,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at" binding:"required"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	AttendeeIDs []string   `json:"attendee_ids,omitempty"`
}

type UpdateMeetingRequest struct {
	Title       *string    `json:"title,omitempty"`
	Agenda      *string    `json:"agenda,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    *time.Time `json:"starts_at,omitempty"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	AttendeeIDs []string   `json:"attendee_ids,omitempty"`
}
