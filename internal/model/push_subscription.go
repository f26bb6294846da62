package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Reminders for every enabled medication fan out to all registered
// subscriptions; a subscription is a device registration, not user data,
// so it survives a full data reset.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
