package model

import (
	"time"

	"github.com/google/uuid"
)

// LiveStatus is the most recently observed presence snapshot of a worker (hot table).
// LastSeen holds the event time of the report, not its arrival time.
type LiveStatus struct {
	WorkerID     uuid.UUID `gorm:"type:uuid;primaryKey"`
	LastLat      float64   `gorm:"not null"`
	LastLng      float64   `gorm:"not null"`
	IsInside     bool      `gorm:"not null"`
	LastSeen     time.Time `gorm:"not null;index"`
	BatteryLevel *int
}
