package model

import (
	"time"

	"github.com/google/uuid"
)

// LocationMethod identifies how a reported coordinate was obtained.
type LocationMethod string

const (
	MethodGPS   LocationMethod = "GPS"
	MethodCell  LocationMethod = "CELL"
	MethodWiFi  LocationMethod = "WIFI"
	MethodPhone LocationMethod = "PHONE"
)

// Valid reports whether m is one of the known methods.
func (m LocationMethod) Valid() bool {
	switch m {
	case MethodGPS, MethodCell, MethodWiFi, MethodPhone:
		return true
	}
	return false
}

// Command is an attendance command a worker can issue by SMS.
type Command string

const (
	CommandNone     Command = ""
	CommandCheckIn  Command = "CHECKIN"
	CommandCheckOut Command = "CHECKOUT"
)

// AttendanceLogEntry is one processed location report (append-only cold table).
// Rows are never updated or deleted.
type AttendanceLogEntry struct {
	ID             int64          `gorm:"primaryKey;autoIncrement"`
	WorkerID       uuid.UUID      `gorm:"type:uuid;not null;index:idx_attendance_worker_time,priority:1"`
	EventTime      time.Time      `gorm:"not null;index:idx_attendance_worker_time,priority:2"`
	Lat            float64        `gorm:"not null"`
	Lng            float64        `gorm:"not null"`
	DistanceMeters float64        `gorm:"not null"`
	IsInside       bool           `gorm:"not null"`
	Method         LocationMethod `gorm:"size:16;not null"`
	IsOfflineSync  bool           `gorm:"not null"`
	Command        Command        `gorm:"size:16;not null"`
	AccuracyMeters *float64
	CreatedAt      time.Time `gorm:"not null"`
}
