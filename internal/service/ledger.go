package service

import (
	"context"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"
)

// VerificationLedger issues and consumes the single-use email verification
// and password reset tokens. Only the sha256 of a token is stored.
type VerificationLedger struct {
	tokens      repository.VerificationTokenRepository
	users       repository.UserRepository
	tx          repository.Transactor
	credentials *CredentialStore
	sessions    *SessionRegistry
	clock       Clock
	emailTTL    time.Duration
	resetTTL    time.Duration
}

func NewVerificationLedger(
	tokens repository.VerificationTokenRepository,
	users repository.UserRepository,
	tx repository.Transactor,
	credentials *CredentialStore,
	sessions *SessionRegistry,
	clock Clock,
	emailTTL time.Duration,
	resetTTL time.Duration,
) *VerificationLedger {
	if clock == nil {
		clock = RealClock{}
	}
	if emailTTL <= 0 {
		emailTTL = 24 * time.Hour
	}
	if resetTTL <= 0 {
		resetTTL = time.Hour
	}
	return &VerificationLedger{
		tokens:      tokens,
		users:       users,
		tx:          tx,
		credentials: credentials,
		sessions:    sessions,
		clock:       clock,
		emailTTL:    emailTTL,
		resetTTL:    resetTTL,
	}
}

func (l *VerificationLedger) IssueEmailVerification(ctx context.Context, user *entity.User) (string, error) {
	raw, token, err := l.newToken(user.ID, entity.EmailVerify, l.emailTTL)
	if err != nil {
		return "", err
	}
	if err := l.tokens.Create(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumeEmailVerification marks the owner verified and deletes the token.
func (l *VerificationLedger) ConsumeEmailVerification(ctx context.Context, raw string) (uint64, error) {
	token, err := l.tokens.FindByHash(ctx, utils.TokenDigest(raw), entity.EmailVerify)
	if err != nil {
		return 0, err
	}
	if token == nil {
		return 0, ErrTokenNotFound
	}
	now := l.clock.Now()
	if token.Expired(now) {
		return 0, ErrTokenExpired
	}
	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := l.users.VerifyEmail(ctx, token.UserID, now); err != nil {
			return err
		}
		return l.tokens.Delete(ctx, token.ID)
	})
	if err != nil {
		return 0, err
	}
	return token.UserID, nil
}

// IssuePasswordReset replaces any unused reset token of the user.
func (l *VerificationLedger) IssuePasswordReset(ctx context.Context, user *entity.User) (string, error) {
	raw, token, err := l.newToken(user.ID, entity.PasswordReset, l.resetTTL)
	if err != nil {
		return "", err
	}
	if err := l.tokens.Replace(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// ConsumePasswordReset sets the new password, burns the token and
// deactivates every session of the owner. The three writes commit together.
func (l *VerificationLedger) ConsumePasswordReset(ctx context.Context, raw string, newPassword string) (uint64, error) {
	token, err := l.tokens.FindByHash(ctx, utils.TokenDigest(raw), entity.PasswordReset)
	if err != nil {
		return 0, err
	}
	if token == nil {
		return 0, ErrTokenNotFound
	}
	now := l.clock.Now()
	if token.UsedAt != nil || token.Expired(now) {
		return 0, ErrTokenUsedOrExpired
	}

	user, err := l.users.FindByID(ctx, token.UserID)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, ErrTokenNotFound
	}

	err = l.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		won, err := l.tokens.MarkUsed(ctx, token.ID, now)
		if err != nil {
			return err
		}
		if !won {
			return ErrTokenUsedOrExpired
		}
		if err := l.credentials.SetPassword(ctx, user, newPassword); err != nil {
			return err
		}
		_, err = l.sessions.RevokeAll(ctx, user.ID, nil)
		return err
	})
	if err != nil {
		return 0, err
	}
	return user.ID, nil
}

func (l *VerificationLedger) newToken(
	userID uint64,
	typeValue entity.VerificationType,
	ttl time.Duration,
) (string, *entity.VerificationToken, error) {
	raw, digest, err := utils.NewOpaqueToken()
	if err != nil {
		return "", nil, err
	}
	now := l.clock.Now()
	return raw, &entity.VerificationToken{
		UserID:    userID,
		TokenHash: digest,
		Type:      typeValue,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}
