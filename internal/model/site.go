package model

import (
	"time"

	"github.com/google/uuid"
)

// Site represents a work site with a circular geofence.
type Site struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string    `gorm:"size:256;not null"`
	CenterLat           float64   `gorm:"not null"`
	CenterLng           float64   `gorm:"not null"`
	RadiusMeters        float64   `gorm:"not null"`
	RestIntervalMinutes int       `gorm:"not null"`
	CreatedAt           time.Time `gorm:"not null"`
	UpdatedAt           time.Time `gorm:"not null"`

	// Associations
	Workers []Worker `gorm:"foreignKey:SiteID"`
}
