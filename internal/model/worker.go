package model

import (
	"time"

	"github.com/google/uuid"
)

// PhoneType is the capability class of a worker's handset.
type PhoneType string

const (
	PhoneSmart   PhoneType = "SMART"
	PhoneFeature PhoneType = "FEATURE"
)

// Worker represents a field worker. SiteID is nil for unassigned workers.
type Worker struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name      string     `gorm:"size:256;not null"`
	Phone     string     `gorm:"uniqueIndex;size:32;not null"`
	PhoneType PhoneType  `gorm:"size:16;not null"`
	SiteID    *uuid.UUID `gorm:"type:uuid;index"`
	IsActive  bool       `gorm:"not null"`
	CreatedAt time.Time  `gorm:"not null"`
	UpdatedAt time.Time  `gorm:"not null"`

	// Associations
	Site *Site `gorm:"constraint:OnDelete:SET NULL"`
}
