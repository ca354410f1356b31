package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/model"
)

func (s *gormStore) FindWorker(ctx context.Context, id uuid.UUID) (model.Worker, error) {
	var w model.Worker
	if err := s.db.WithContext(ctx).First(&w, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return model.Worker{}, apperror.ErrWorkerNotFound
		}
		return model.Worker{}, fmt.Errorf("failed to load worker %s: %w", id, err)
	}
	return w, nil
}

func (s *gormStore) FindWorkerByPhone(ctx context.Context, phone string) (model.Worker, error) {
	var w model.Worker
	if err := s.db.WithContext(ctx).First(&w, "phone = ?", phone).Error; err != nil {
		if isNotFound(err) {
			return model.Worker{}, apperror.ErrWorkerNotFound
		}
		return model.Worker{}, fmt.Errorf("failed to load worker by phone: %w", err)
	}
	return w, nil
}

func (s *gormStore) FindSite(ctx context.Context, id uuid.UUID) (model.Site, error) {
	var site model.Site
	if err := s.db.WithContext(ctx).First(&site, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return model.Site{}, apperror.ErrSiteNotFound
		}
		return model.Site{}, fmt.Errorf("failed to load site %s: %w", id, err)
	}
	return site, nil
}

// ListSiteWorkers returns the active workers assigned to a site, ordered by name.
func (s *gormStore) ListSiteWorkers(ctx context.Context, siteID uuid.UUID) ([]model.Worker, error) {
	var workers []model.Worker
	err := s.db.WithContext(ctx).
		Where("site_id = ? AND is_active = ?", siteID, true).
		Order("name").
		Find(&workers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list workers for site %s: %w", siteID, err)
	}
	return workers, nil
}
