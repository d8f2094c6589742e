package repository

import (
	"context"
	"errors"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VerificationTokenRepository interface {
	Create(ctx context.Context, token *entity.VerificationToken) error
	// Replace stores token after deleting every unused token of the same type
	// for the same user, in one transaction.
	Replace(ctx context.Context, token *entity.VerificationToken) error
	FindByHash(ctx context.Context, tokenHash string, tokenType entity.VerificationType) (*entity.VerificationToken, error)
	MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type verificationTokenRepository struct {
	db *gorm.DB
}

func NewVerificationTokenRepository(db *gorm.DB) VerificationTokenRepository {
	return &verificationTokenRepository{db: db}
}

func (r *verificationTokenRepository) Create(ctx context.Context, t *entity.VerificationToken) error {
	return conn(ctx, r.db).Create(t).Error
}

func (r *verificationTokenRepository) Replace(ctx context.Context, t *entity.VerificationToken) error {
	return conn(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		err := tx.
			Where("user_id = ? AND type = ? AND used_at IS NULL", t.UserID, t.Type).
			Delete(&entity.VerificationToken{}).
			Error
		if err != nil {
			return err
		}
		return tx.Create(t).Error
	})
}

func (r *verificationTokenRepository) FindByHash(
	ctx context.Context,
	tokenHash string,
	tokenType entity.VerificationType,
) (*entity.VerificationToken, error) {

	var token entity.VerificationToken
	err := conn(ctx, r.db).
		Where("token_hash = ? AND type = ?", tokenHash, tokenType).
		First(&token).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// MarkUsed flags an unused token as consumed. It reports false when the token
// had already been used, so only one of two concurrent consumers wins.
func (r *verificationTokenRepository) MarkUsed(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	result := conn(ctx, r.db).
		Model(&entity.VerificationToken{}).
		Where("id = ? AND used_at IS NULL", id).
		Update("used_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *verificationTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return conn(ctx, r.db).
		Where("id = ?", id).
		Delete(&entity.VerificationToken{}).
		Error
}
