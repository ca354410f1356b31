package model

import "time"

// PushSubscription holds a manager browser's push subscription and the sites
// whose geofence-exit alerts it receives.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Sites []*Site `gorm:"many2many:subscription_site_mapping;"`
}
