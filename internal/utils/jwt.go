package utils

import (
	"errors"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

type TokenKind string

const (
	AccessToken  TokenKind = "access"
	RefreshToken TokenKind = "refresh"
)

// JWTManager signs and verifies the stateless access and refresh tokens.
type JWTManager struct {
	Secret          []byte
	Issuer          string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	Now             func() time.Time
}

type Claims struct {
	UserID uint64    `json:"uid"`
	Role   string    `json:"role"`
	Kind   TokenKind `json:"typ"`
	jwt.RegisteredClaims
}

func (m JWTManager) IssueAccessToken(userID uint64, role string) (string, time.Duration, error) {
	ttl := m.AccessTokenTTL
	if ttl == 0 {
		ttl = 60 * time.Minute
	}
	token, err := m.Issue(userID, role, AccessToken, ttl)
	return token, ttl, err
}

func (m JWTManager) IssueRefreshToken(userID uint64, role string) (string, time.Duration, error) {
	ttl := m.RefreshTokenTTL
	if ttl == 0 {
		ttl = 7 * 24 * time.Hour
	}
	token, err := m.Issue(userID, role, RefreshToken, ttl)
	return token, ttl, err
}

func (m JWTManager) Issue(userID uint64, role string, kind TokenKind, ttl time.Duration) (string, error) {
	if len(m.Secret) == 0 {
		return "", errors.New("jwt secret is not configured")
	}
	now := m.now()
	claims := Claims{
		UserID: userID,
		Role:   role,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.Issuer,
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: ExpiresAt(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.Secret)
}

// ExpiresAt builds an exp claim rounded up to jwt.TimePrecision. NumericDate
// truncates, which would otherwise cut up to one unit off a token's lifetime.
func ExpiresAt(t time.Time) *jwt.NumericDate {
	truncated := t.Truncate(jwt.TimePrecision)
	if truncated.Before(t) {
		truncated = truncated.Add(jwt.TimePrecision)
	}
	return jwt.NewNumericDate(truncated)
}

// Verify checks signature, kind and expiry. Expiry is strict: a token is
// accepted at the exact instant it expires and rejected one moment later.
func (m JWTManager) Verify(tokenString string, kind TokenKind) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return m.Secret, nil
	}, jwt.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrTokenInvalid
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.UserID == 0 || claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	if m.Issuer != "" && claims.Issuer != m.Issuer {
		return nil, ErrTokenInvalid
	}
	if claims.ExpiresAt == nil {
		return nil, ErrTokenInvalid
	}
	if m.now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}
	return claims, nil
}

func (m JWTManager) ParseAccessToken(tokenString string) (*Claims, error) {
	return m.Verify(tokenString, AccessToken)
}

func (m JWTManager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
