package service

import (
	"context"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

type AuthConfig struct {
	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	MFAIssuer            string
	RequireVerifiedEmail bool
}

// EmailSender delivers a single plain-text message.
type EmailSender interface {
	Send(ctx context.Context, to string, subject string, body string) error
}

// Mailer renders and sends the account emails.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, user entity.User, token string) error
	SendPasswordResetEmail(ctx context.Context, user entity.User, token string) error
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash string, password string) bool
}

type TokenCodec interface {
	IssueAccessToken(userID uint64, role string) (string, time.Duration, error)
	IssueRefreshToken(userID uint64, role string) (string, time.Duration, error)
	Verify(token string, kind utils.TokenKind) (*utils.Claims, error)
}

type MFATokenIssuer interface {
	IssueMFAToken(userID uint64) (string, time.Duration, error)
	ParseMFAToken(token string) (uint64, error)
}

type MFAProvider interface {
	GenerateSecret() (string, error)
	QRCodeURL(email string, issuer string, secret string) (string, error)
	ValidateCode(secret string, code string) bool
}

type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now()
}

type BcryptPasswordHasher struct {
	Cost int
}

func (h BcryptPasswordHasher) Hash(password string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (h BcryptPasswordHasher) Verify(hash string, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
