package repository

import (
	"context"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.Session) error
	ListByUser(ctx context.Context, userID uint64) ([]entity.Session, error)
	Touch(ctx context.Context, userID uint64, sessionID uuid.UUID, at time.Time) error
	Revoke(ctx context.Context, userID uint64, sessionID uuid.UUID, at time.Time) (bool, error)
	RevokeAllByUser(ctx context.Context, userID uint64, except *uuid.UUID, at time.Time) (int64, error)
}

type sessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &sessionRepository{db: db}
}

func (r *sessionRepository) Create(ctx context.Context, s *entity.Session) error {
	return conn(ctx, r.db).Create(s).Error
}

func (r *sessionRepository) ListByUser(ctx context.Context, userID uint64) ([]entity.Session, error) {
	var sessions []entity.Session
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		Order("last_activity_at DESC").
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepository) Touch(ctx context.Context, userID uint64, sessionID uuid.UUID, at time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
		Update("last_activity_at", at).
		Error
}

// Revoke deactivates a single session owned by userID. The boolean is false
// when no such session exists for that user. An already inactive session is
// left untouched and still reported as found.
func (r *sessionRepository) Revoke(ctx context.Context, userID uint64, sessionID uuid.UUID, at time.Time) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND user_id = ? AND is_active = ?", sessionID, userID, true).
		Updates(map[string]any{
			"is_active":        false,
			"revoked_at":       at,
			"last_activity_at": at,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	var n int64
	err := conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("id = ? AND user_id = ?", sessionID, userID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *sessionRepository) RevokeAllByUser(ctx context.Context, userID uint64, except *uuid.UUID, at time.Time) (int64, error) {
	query := conn(ctx, r.db).
		Model(&entity.Session{}).
		Where("user_id = ? AND is_active = ?", userID, true)
	if except != nil {
		query = query.Where("id <> ?", *except)
	}
	result := query.Updates(map[string]any{
		"is_active":  false,
		"revoked_at": at,
	})
	return result.RowsAffected, result.Error
}
