package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/model"
)

func (s *gormStore) CreateSession(ctx context.Context, session *model.SmsSession) error {
	session.CreatedAt = session.CreatedAt.UTC()
	session.ExpiresAt = session.ExpiresAt.UTC()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&model.SmsSession{}).
			Where("phone = ? AND state = ?", session.Phone, model.SessionRequested).
			Update("state", model.SessionSuperseded).Error
		if err != nil {
			return fmt.Errorf("failed to supersede open sessions: %w", err)
		}
		if err := tx.Create(session).Error; err != nil {
			return fmt.Errorf("failed to create session: %w", err)
		}
		return nil
	})
}

func (s *gormStore) ConsumeSession(ctx context.Context, token uuid.UUID, now time.Time) (model.SmsSession, error) {
	now = now.UTC()
	var session model.SmsSession

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.SmsSession{}).
			Where("token = ? AND state = ? AND expires_at > ?", token, model.SessionRequested, now).
			Updates(map[string]any{"state": model.SessionFulfilled, "fulfilled_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to consume session: %w", res.Error)
		}

		if err := tx.First(&session, "token = ?", token).Error; err != nil {
			if isNotFound(err) {
				return apperror.ErrSessionNotFound
			}
			return fmt.Errorf("failed to load session: %w", err)
		}
		if res.RowsAffected == 1 {
			return nil
		}

		// Nothing was updated; report why.
		switch {
		case session.State == model.SessionFulfilled:
			return apperror.ErrSessionConsumed
		default:
			return apperror.ErrSessionExpired
		}
	})
	if err != nil {
		if errors.Is(err, apperror.ErrSessionExpired) || errors.Is(err, apperror.ErrSessionConsumed) {
			return session, err
		}
		return model.SmsSession{}, err
	}
	return session, nil
}

// ActiveSessionForPhone returns the newest open, unexpired session for phone.
func (s *gormStore) ActiveSessionForPhone(ctx context.Context, phone string, now time.Time) (model.SmsSession, bool, error) {
	var session model.SmsSession
	err := s.db.WithContext(ctx).
		Where("phone = ? AND state = ? AND expires_at > ?", phone, model.SessionRequested, now.UTC()).
		Order("created_at DESC").
		First(&session).Error
	if err != nil {
		if isNotFound(err) {
			return model.SmsSession{}, false, nil
		}
		return model.SmsSession{}, false, fmt.Errorf("failed to load active session: %w", err)
	}
	return session, true, nil
}

// DeleteSessionsBefore removes sessions that expired before cutoff, whatever their state.
func (s *gormStore) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", cutoff.UTC()).Delete(&model.SmsSession{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to prune sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}
