package models

import "time"

// PushSubscription stores a device's web push subscription. The endpoint is
// the identity: registering the same endpoint twice upserts the keys.
type PushSubscription struct {
	ID        string    `gorm:"primaryKey;type:uuid" json:"id"`
	UserID    string    `gorm:"type:uuid;not null;index" json:"user_id"`
	Endpoint  string    `gorm:"uniqueIndex;type:text;not null" json:"endpoint"`
	P256dh    string    `gorm:"type:text;not null" json:"p256dh"`
	Auth      string    `gorm:"type:text;not null" json:"auth"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (PushSubscription) TableName() string {
	return "push_subscriptions"
}
