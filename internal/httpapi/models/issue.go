package models

import "time"

type Issue struct {
	ID          int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string     `json:"title" gorm:"not null"`
	Description *string    `json:"description,omitempty"`
	Status      string     `json:"status" gorm:"default:'open';not null"` // open, in_progress, resolved, closed
	Priority    *string    `json:"priority,omitempty"`
	ReporterID  string     `json:"reporter_id" gorm:"type:uuid;not null;index"`
	AssigneeID  *string    `json:"assignee_id,omitempty" gorm:"type:uuid;index"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Associations
	Reporter *User     `json:"reporter,omitempty" gorm:"foreignKey:ReporterID"`
	Assignee *User     `json:"assignee,omitempty" gorm:"foreignKey:AssigneeID"`
	Comments []Comment `json:"comments,omitempty" gorm:"foreignKey:IssueID;constraint:OnDelete:CASCADE;"`
}

func (Issue) TableName() string {
	return "issues"
}
