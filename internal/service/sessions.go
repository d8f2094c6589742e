package service

import (
	"context"
	"strings"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"

	"github.com/google/uuid"
)

// SessionRegistry tracks logged-in devices. Tracking is best effort: tokens
// stay valid regardless of session state.
type SessionRegistry struct {
	sessions repository.SessionRepository
	clock    Clock
}

func NewSessionRegistry(sessions repository.SessionRepository, clock Clock) *SessionRegistry {
	if clock == nil {
		clock = RealClock{}
	}
	return &SessionRegistry{sessions: sessions, clock: clock}
}

// Open records a session, or returns nil without error when either the user
// agent or the IP address is missing.
func (r *SessionRegistry) Open(ctx context.Context, userID uint64, userAgent string, ipAddress string) (*entity.Session, error) {
	if strings.TrimSpace(userAgent) == "" || strings.TrimSpace(ipAddress) == "" {
		return nil, nil
	}
	now := r.clock.Now()
	session := &entity.Session{
		UserID:         userID,
		UserAgent:      userAgent,
		IPAddress:      ipAddress,
		IsActive:       true,
		LastActivityAt: now,
		CreatedAt:      now,
	}
	if err := r.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *SessionRegistry) List(ctx context.Context, userID uint64) ([]entity.Session, error) {
	return r.sessions.ListByUser(ctx, userID)
}

func (r *SessionRegistry) Touch(ctx context.Context, userID uint64, sessionID uuid.UUID) error {
	return r.sessions.Touch(ctx, userID, sessionID, r.clock.Now())
}

func (r *SessionRegistry) Revoke(ctx context.Context, userID uint64, sessionID uuid.UUID) error {
	found, err := r.sessions.Revoke(ctx, userID, sessionID, r.clock.Now())
	if err != nil {
		return err
	}
	if !found {
		return ErrSessionNotFound
	}
	return nil
}

func (r *SessionRegistry) RevokeAll(ctx context.Context, userID uint64, except *uuid.UUID) (int64, error) {
	return r.sessions.RevokeAllByUser(ctx, userID, except, r.clock.Now())
}
