package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"geoguard-backend/internal/model"
)

// AppendLog inserts a new attendance row. Existing rows are never touched.
func (s *gormStore) AppendLog(ctx context.Context, entry *model.AttendanceLogEntry) error {
	entry.EventTime = entry.EventTime.UTC()
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to append attendance log for worker %s: %w", entry.WorkerID, err)
	}
	return nil
}

// CommandsBetween returns the distinct commands a worker recorded with event
// times in [from, to).
func (s *gormStore) CommandsBetween(ctx context.Context, workerID uuid.UUID, from, to time.Time) ([]model.Command, error) {
	var raw []string
	err := s.db.WithContext(ctx).
		Model(&model.AttendanceLogEntry{}).
		Where("worker_id = ? AND command <> ? AND event_time >= ? AND event_time < ?",
			workerID, model.CommandNone, from.UTC(), to.UTC()).
		Distinct("command").
		Pluck("command", &raw).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load commands for worker %s: %w", workerID, err)
	}

	cmds := make([]model.Command, 0, len(raw))
	for _, c := range raw {
		cmds = append(cmds, model.Command(c))
	}
	return cmds, nil
}
