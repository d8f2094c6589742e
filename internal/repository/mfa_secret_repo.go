package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MFASecretRepository interface {
	FindByUserID(ctx context.Context, userID uint64) (*entity.MFASecret, error)
	Upsert(ctx context.Context, secret *entity.MFASecret) error
	Enable(ctx context.Context, userID uint64, at time.Time) error
	Disable(ctx context.Context, userID uint64) error
}

type mfaSecretRepository struct {
	db *gorm.DB
}

func NewMFASecretRepository(db *gorm.DB) MFASecretRepository {
	return &mfaSecretRepository{db: db}
}

func (r *mfaSecretRepository) FindByUserID(ctx context.Context, userID uint64) (*entity.MFASecret, error) {
	var secret entity.MFASecret
	err := conn(ctx, r.db).
		Where("user_id = ?", userID).
		First(&secret).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &secret, nil
}

func (r *mfaSecretRepository) Upsert(ctx context.Context, secret *entity.MFASecret) error {
	return conn(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"secret", "enabled_at"}),
		}).
		Create(secret).Error
}

func (r *mfaSecretRepository) Enable(ctx context.Context, userID uint64, at time.Time) error {
	return conn(ctx, r.db).
		Model(&entity.MFASecret{}).
		Where("user_id = ?", userID).
		Update("enabled_at", at).
		Error
}

func (r *mfaSecretRepository) Disable(ctx context.Context, userID uint64) error {
	return conn(ctx, r.db).
		Model(&entity.MFASecret{}).
		Where("user_id = ?", userID).
		Update("enabled_at", nil).
		Error
}
