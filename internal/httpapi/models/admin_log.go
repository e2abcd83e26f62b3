package models

import "time"

type AdminLog struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ActorID   string    `gorm:"type:uuid;index" json:"actor_id"`
	Action    string    `gorm:"not null" json:"action"` // e.g. POST /api/issues
	Entity    string    `json:"entity"`
	Status    int       `json:"status"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP;index" json:"created_at"`
}

func (AdminLog) TableName() string {
	return "admin_logs"
}
