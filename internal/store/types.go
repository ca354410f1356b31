package store

import (
	"time"

	"github.com/google/uuid"
)

// LiveUpdate is a candidate snapshot for a worker's live status.
type LiveUpdate struct {
	WorkerID     uuid.UUID
	Lat          float64
	Lng          float64
	IsInside     bool
	Timestamp    time.Time
	BatteryLevel *int
}
