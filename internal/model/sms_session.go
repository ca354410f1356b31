package model

import (
	"time"

	"github.com/google/uuid"
)

// SessionState is the lifecycle state of an SMS location-request session.
// Expiry is not stored; a REQUESTED session past ExpiresAt is expired.
type SessionState string

const (
	SessionRequested  SessionState = "REQUESTED"
	SessionFulfilled  SessionState = "FULFILLED"
	SessionSuperseded SessionState = "SUPERSEDED"
)

// SmsSession is a short-lived request for a worker's location after a
// CHECKIN or CHECKOUT command.
type SmsSession struct {
	Token       uuid.UUID    `gorm:"type:uuid;primaryKey"`
	Phone       string       `gorm:"size:32;not null;index"`
	Command     Command      `gorm:"size:16;not null"`
	State       SessionState `gorm:"size:16;not null;index"`
	CreatedAt   time.Time    `gorm:"not null"`
	ExpiresAt   time.Time    `gorm:"not null;index"`
	FulfilledAt *time.Time
}

// Expired reports whether the session can no longer be consumed at now.
func (s SmsSession) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
