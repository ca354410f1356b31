package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geoguard-backend/internal/model"
)

// Directory reads the worker and site records maintained by the management side.
type Directory interface {
	FindWorker(ctx context.Context, id uuid.UUID) (model.Worker, error)
	FindWorkerByPhone(ctx context.Context, phone string) (model.Worker, error)
	FindSite(ctx context.Context, id uuid.UUID) (model.Site, error)
	ListSiteWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error)
}

// LiveStatusStore owns the hot per-worker snapshot table.
type LiveStatusStore interface {
	// Advance writes u only if it is strictly newer than the stored
	// snapshot. It reports whether the row was written.
	Advance(ctx context.Context, u LiveUpdate) (bool, error)
	GetLiveStatus(ctx context.Context, workerID uuid.UUID) (model.LiveStatus, bool, error)
	ListLiveStatuses(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error)
}

// AttendanceLog is the append-only history of processed reports.
type AttendanceLog interface {
	AppendLog(ctx context.Context, entry *model.AttendanceLogEntry) error
	CommandsBetween(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]model.Command, error)
}

// SessionStore persists SMS location-request sessions.
type SessionStore interface {
	// CreateSession stores s and supersedes every other open session for the same phone.
	CreateSession(ctx context.Context, s *model.SmsSession) error
	// ConsumeSession moves an open, unexpired session to FULFILLED. Exactly one
	// concurrent caller succeeds. With ErrSessionExpired or ErrSessionConsumed
	// the stored session is returned alongside the error.
	ConsumeSession(ctx context.Context, token uuid.UUID, now time.Time) (model.SmsSession, error)
	ActiveSessionForPhone(ctx context.Context, phone string, now time.Time) (model.SmsSession, bool, error)
	DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Store defines the interface for all database operations.
type Store interface {
	Directory
	LiveStatusStore
	AttendanceLog
	SessionStore
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
