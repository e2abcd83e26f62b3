package models

import "time"

type Meeting struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string    `json:"title" gorm:"not null"`
	Agenda      *string   `json:"agenda,omitempty"`
	Location    *string   `json:"location,omitempty"`
	StartsAt    time.Time `json:"starts_at" gorm:"not null;index"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	OrganizerID string    `json:"organizer_id" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Associations
	Organizer *User  `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`
	Attendees []User `json:"attendees,omitempty" gorm:"many2many:meeting_attendees;constraint:OnDelete:CASCADE;"`
}

func (Meeting) TableName() string {
	return "meetings"
}
