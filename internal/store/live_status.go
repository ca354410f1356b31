package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"geoguard-backend/internal/model"
)

// Advance performs a single conditional upsert: insert when the worker has no
// snapshot, otherwise overwrite only when the stored last_seen is older.
// Equal timestamps are rejected, so the first writer of a given instant wins.
func (s *gormStore) Advance(ctx context.Context, u LiveUpdate) (bool, error) {
	row := model.LiveStatus{
		WorkerID:     u.WorkerID,
		LastLat:      u.Lat,
		LastLng:      u.Lng,
		IsInside:     u.IsInside,
		LastSeen:     u.Timestamp.UTC(),
		BatteryLevel: u.BatteryLevel,
	}

	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "worker_id"}},
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "live_statuses.last_seen < excluded.last_seen"},
		}},
		DoUpdates: clause.AssignmentColumns([]string{"last_lat", "last_lng", "is_inside", "last_seen", "battery_level"}),
	}).Create(&row)
	if res.Error != nil {
		return false, fmt.Errorf("failed to advance live status for worker %s: %w", u.WorkerID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) GetLiveStatus(ctx context.Context, workerID uuid.UUID) (model.LiveStatus, bool, error) {
	var ls model.LiveStatus
	if err := s.db.WithContext(ctx).First(&ls, "worker_id = ?", workerID).Error; err != nil {
		if isNotFound(err) {
			return model.LiveStatus{}, false, nil
		}
		return model.LiveStatus{}, false, fmt.Errorf("failed to load live status for worker %s: %w", workerID, err)
	}
	return ls, true, nil
}

// ListLiveStatuses returns the snapshots that exist for the given workers, keyed by worker.
func (s *gormStore) ListLiveStatuses(ctx context.Context, workerIDs []uuid.UUID) (map[uuid.UUID]model.LiveStatus, error) {
	out := make(map[uuid.UUID]model.LiveStatus, len(workerIDs))
	if len(workerIDs) == 0 {
		return out, nil
	}

	var rows []model.LiveStatus
	if err := s.db.WithContext(ctx).Where("worker_id IN ?", workerIDs).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list live statuses: %w", err)
	}
	for _, r := range rows {
		out[r.WorkerID] = r
	}
	return out, nil
}
