package model

import "time"

// PushSubscription holds the information for a staff browser push subscription.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey" json:"endpoint"`
	P256DH    string    `gorm:"column:p256dh;not null" json:"p256dh"`
	Auth      string    `gorm:"not null" json:"auth"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`

	// Associations
	Wards []SubscriptionWard `gorm:"foreignKey:Endpoint;references:Endpoint" json:"wards"`
}

// SubscriptionWard maps a push subscription to one hospital ward it watches.
type SubscriptionWard struct {
	Endpoint string `gorm:"primaryKey;size:512" json:"endpoint"`
	Ward     string `gorm:"primaryKey;size:50" json:"ward"`
}
