package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/events"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type AuthService struct {
	credentials *CredentialStore
	ledger      *VerificationLedger
	sessions    *SessionRegistry
	audit       *Auditor
	mfaSecrets  repository.MFASecretRepository
	tx          repository.Transactor

	mailer      Mailer
	tokens      TokenCodec
	mfaTokens   MFATokenIssuer
	mfaProvider MFAProvider
	logger      logrus.FieldLogger
	clock       Clock
	config      AuthConfig

	background sync.WaitGroup
}

func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	verifications repository.VerificationTokenRepository,
	mfaSecrets repository.MFASecretRepository,
	securityLogs repository.SecurityLogRepository,
	tx repository.Transactor,
	publisher events.Publisher,
	mailer Mailer,
	passwordHash PasswordHasher,
	tokens TokenCodec,
	mfaTokens MFATokenIssuer,
	mfaProvider MFAProvider,
	logger logrus.FieldLogger,
	clock Clock,
	config AuthConfig,
) *AuthService {
	if clock == nil {
		clock = RealClock{}
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	credentials := NewCredentialStore(users, passwordHash)
	registry := NewSessionRegistry(sessions, clock)
	ledger := NewVerificationLedger(
		verifications,
		users,
		tx,
		credentials,
		registry,
		clock,
		config.VerificationTokenTTL,
		config.ResetTokenTTL,
	)
	return &AuthService{
		credentials: credentials,
		ledger:      ledger,
		sessions:    registry,
		audit:       NewAuditor(securityLogs, publisher, logger, clock),
		mfaSecrets:  mfaSecrets,
		tx:          tx,
		mailer:      mailer,
		tokens:      tokens,
		mfaTokens:   mfaTokens,
		mfaProvider: mfaProvider,
		logger:      logger,
		clock:       clock,
		config:      config,
	}
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || strings.TrimSpace(input.Username) == "" || input.Password == "" {
		return nil, ErrInvalidInput
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	if err := validatePhone(input.Phone); err != nil {
		return nil, err
	}

	user, err := s.credentials.Create(ctx, NewUser{
		Email:       input.Email,
		Username:    strings.TrimSpace(input.Username),
		Password:    input.Password,
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		PhoneNumber: input.Phone,
	})
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokens(user, nil)
	if err != nil {
		return nil, err
	}

	s.sendEmailVerification(ctx, user)
	s.audit.Record(ctx, &user.ID, stringPtr(input.IPAddress), entity.Registered, nil)
	return result, nil
}

func (s *AuthService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	userID, err := s.ledger.ConsumeEmailVerification(ctx, token)
	if err != nil {
		return s.normalizeLedgerError(err)
	}
	s.audit.Record(ctx, &userID, nil, entity.EmailVerified, nil)
	return nil
}

func (s *AuthService) ResendVerification(ctx context.Context, userID uint64) error {
	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if user.IsEmailVerified {
		return nil
	}
	s.sendEmailVerification(ctx, user)
	return nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return nil, ErrInvalidCredentials
	}

	ip := stringPtr(input.IPAddress)
	user, err := s.credentials.Authenticate(ctx, input.Email, input.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			s.audit.Record(ctx, nil, ip, entity.LoginFailed, map[string]any{"email": utils.NormalizeEmail(input.Email)})
		}
		return nil, err
	}

	if s.config.RequireVerifiedEmail && !user.IsEmailVerified {
		return nil, ErrEmailNotVerified
	}

	mfaEnabled, err := s.mfaEnabledFor(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if mfaEnabled {
		mfaToken, expiresIn, err := s.mfaTokens.IssueMFAToken(user.ID)
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			UserID:            user.ID,
			MFARequired:       true,
			MFAToken:          mfaToken,
			MFATokenExpiresIn: int64(expiresIn.Seconds()),
		}, nil
	}

	return s.completeLogin(ctx, user, input.UserAgent, input.IPAddress, false)
}

func (s *AuthService) LoginWithMFA(ctx context.Context, input LoginMFAInput) (*LoginResult, error) {
	if s.mfaProvider == nil || s.mfaTokens == nil || s.mfaSecrets == nil {
		return nil, ErrMFANotConfigured
	}
	if strings.TrimSpace(input.MFAToken) == "" || strings.TrimSpace(input.Code) == "" {
		return nil, ErrInvalidInput
	}
	userID, err := s.mfaTokens.ParseMFAToken(input.MFAToken)
	if err != nil {
		return nil, ErrInvalidToken
	}

	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}

	secret, err := s.mfaSecrets.FindByUserID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if secret == nil || secret.EnabledAt == nil {
		return nil, ErrMFARequired
	}
	if !s.mfaProvider.ValidateCode(secret.Secret, input.Code) {
		s.audit.Record(ctx, &user.ID, stringPtr(input.IPAddress), entity.MFAFailed, nil)
		return nil, ErrInvalidMFACode
	}

	return s.completeLogin(ctx, user, input.UserAgent, input.IPAddress, true)
}

// Refresh trades a valid refresh token for a new pair. The old refresh token
// stays valid until it expires.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.tokens.Verify(refreshToken, utils.RefreshToken)
	if err != nil {
		s.logger.WithError(err).Debug("refresh token rejected")
		return nil, ErrInvalidToken
	}

	user, err := s.credentials.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidToken
	}
	return s.issueTokens(user, nil)
}

// Logout deactivates the given session. Without a session id it does nothing.
func (s *AuthService) Logout(ctx context.Context, userID uint64, sessionID *uuid.UUID, ipAddress string) error {
	if sessionID == nil {
		return nil
	}
	err := s.sessions.Revoke(ctx, userID, *sessionID)
	if err != nil && !errors.Is(err, ErrSessionNotFound) {
		return err
	}
	s.audit.Record(ctx, &userID, stringPtr(ipAddress), entity.Logout, map[string]any{"session_id": sessionID.String()})
	return nil
}

// RequestPasswordReset never reports whether the email is registered. The
// lookup, token and email happen after it returns, so both cases answer in
// the same time. Every internal failure is logged and swallowed.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string, ipAddress string) error {
	normalized := utils.NormalizeEmail(email)
	if normalized == "" {
		return nil
	}
	detached := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		s.issuePasswordReset(detached, normalized, ipAddress)
	}()
	return nil
}

// Wait blocks until background password reset work has finished.
func (s *AuthService) Wait() {
	s.background.Wait()
}

func (s *AuthService) issuePasswordReset(ctx context.Context, email string, ipAddress string) {
	log := s.logger.WithField("email", email)

	user, err := s.credentials.users.FindByEmail(ctx, email)
	if err != nil {
		log.WithError(err).Warn("password reset lookup failed")
		return
	}
	if user == nil {
		log.Debug("password reset requested for unknown email")
		return
	}

	token, err := s.ledger.IssuePasswordReset(ctx, user)
	if err != nil {
		log.WithError(err).Error("password reset token issue failed")
		return
	}
	if s.mailer != nil {
		if err := s.mailer.SendPasswordResetEmail(ctx, *user, token); err != nil {
			log.WithError(err).Error("password reset email failed")
		}
	}

	s.audit.Record(ctx, &user.ID, stringPtr(ipAddress), entity.PasswordResetRequested, nil)
}

func (s *AuthService) ResetPassword(ctx context.Context, token string, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return ErrInvalidToken
	}
	userID, err := s.ledger.ConsumePasswordReset(ctx, token, newPassword)
	if err != nil {
		return s.normalizeLedgerError(err)
	}
	s.audit.Record(ctx, &userID, nil, entity.Reset, map[string]any{"sessions": "revoked"})
	return nil
}

func (s *AuthService) UserByID(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.credentials.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, userID uint64, update ProfileUpdate) (*entity.User, error) {
	if update.PhoneNumber != nil && *update.PhoneNumber == "" {
		update.PhoneNumber = nil
	}
	if err := validatePhone(update.PhoneNumber); err != nil {
		return nil, err
	}
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.credentials.UpdateProfile(ctx, user, update)
}

// ChangePassword replaces the password of a logged-in user and deactivates
// all of their sessions.
func (s *AuthService) ChangePassword(ctx context.Context, userID uint64, currentPassword string, newPassword string, ipAddress string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.credentials.CheckPassword(user, currentPassword) {
		return ErrIncorrectPassword
	}
	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.credentials.SetPassword(ctx, user, newPassword); err != nil {
			return err
		}
		_, err := s.sessions.RevokeAll(ctx, user.ID, nil)
		return err
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, &user.ID, stringPtr(ipAddress), entity.PasswordChanged, nil)
	return nil
}

func (s *AuthService) ListSessions(ctx context.Context, userID uint64) ([]entity.Session, error) {
	return s.sessions.List(ctx, userID)
}

func (s *AuthService) TouchSession(ctx context.Context, userID uint64, sessionID uuid.UUID) error {
	return s.sessions.Touch(ctx, userID, sessionID)
}

func (s *AuthService) RevokeSession(ctx context.Context, userID uint64, sessionID uuid.UUID, ipAddress string) error {
	if err := s.sessions.Revoke(ctx, userID, sessionID); err != nil {
		return err
	}
	s.audit.Record(ctx, &userID, stringPtr(ipAddress), entity.SessionRevoked, map[string]any{"session_id": sessionID.String()})
	return nil
}

func (s *AuthService) RevokeAllSessions(ctx context.Context, userID uint64, except *uuid.UUID, ipAddress string) error {
	revoked, err := s.sessions.RevokeAll(ctx, userID, except)
	if err != nil {
		return err
	}
	s.audit.Record(ctx, &userID, stringPtr(ipAddress), entity.SessionRevoked, map[string]any{"scope": "all", "count": revoked})
	return nil
}

func (s *AuthService) EnableMFA(ctx context.Context, userID uint64) (string, error) {
	if s.mfaProvider == nil || s.mfaSecrets == nil {
		return "", ErrMFANotConfigured
	}
	user, err := s.UserByID(ctx, userID)
	if err != nil {
		return "", err
	}
	existing, err := s.mfaSecrets.FindByUserID(ctx, user.ID)
	if err != nil {
		return "", err
	}
	// A confirmed factor has to be disabled with a code before re-enrolling.
	if existing != nil && existing.EnabledAt != nil {
		return "", ErrMFAAlreadyEnabled
	}

	secret, err := s.mfaProvider.GenerateSecret()
	if err != nil {
		return "", err
	}
	mfaSecret := &entity.MFASecret{
		UserID:    user.ID,
		Secret:    secret,
		EnabledAt: nil,
		CreatedAt: s.clock.Now(),
	}
	if err := s.mfaSecrets.Upsert(ctx, mfaSecret); err != nil {
		return "", err
	}
	return s.mfaProvider.QRCodeURL(user.Email, s.config.MFAIssuer, secret)
}

func (s *AuthService) VerifyMFA(ctx context.Context, userID uint64, code string) error {
	if s.mfaProvider == nil || s.mfaSecrets == nil {
		return ErrMFANotConfigured
	}
	if strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	secret, err := s.mfaSecrets.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if secret == nil {
		return ErrMFARequired
	}
	if !s.mfaProvider.ValidateCode(secret.Secret, code) {
		return ErrInvalidMFACode
	}
	if err := s.mfaSecrets.Enable(ctx, userID, s.clock.Now()); err != nil {
		return err
	}
	s.audit.Record(ctx, &userID, nil, entity.MFAEnabled, nil)
	return nil
}

// DisableMFA turns a confirmed second factor off and needs a current code
// from it. Without a confirmed factor it does nothing.
func (s *AuthService) DisableMFA(ctx context.Context, userID uint64, code string, ipAddress string) error {
	if s.mfaProvider == nil || s.mfaSecrets == nil {
		return ErrMFANotConfigured
	}
	secret, err := s.mfaSecrets.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if secret == nil || secret.EnabledAt == nil {
		return nil
	}
	if strings.TrimSpace(code) == "" {
		return ErrInvalidInput
	}
	if !s.mfaProvider.ValidateCode(secret.Secret, code) {
		s.audit.Record(ctx, &userID, stringPtr(ipAddress), entity.MFAFailed, nil)
		return ErrInvalidMFACode
	}
	if err := s.mfaSecrets.Disable(ctx, userID); err != nil {
		return err
	}
	s.audit.Record(ctx, &userID, stringPtr(ipAddress), entity.MFADisabled, nil)
	return nil
}

func (s *AuthService) ListUsers(ctx context.Context, limit, offset int) ([]entity.User, error) {
	return s.credentials.users.List(ctx, limit, offset)
}

func (s *AuthService) RevokeUserSessions(ctx context.Context, userID uint64) error {
	_, err := s.sessions.RevokeAll(ctx, userID, nil)
	return err
}

func (s *AuthService) completeLogin(ctx context.Context, user *entity.User, userAgent string, ipAddress string, viaMFA bool) (*LoginResult, error) {
	session, err := s.sessions.Open(ctx, user.ID, userAgent, ipAddress)
	if err != nil {
		return nil, err
	}
	var sessionID *uuid.UUID
	if session != nil {
		sessionID = &session.ID
	}

	result, err := s.issueTokens(user, sessionID)
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{"mfa": viaMFA}
	if sessionID != nil {
		metadata["session_id"] = sessionID.String()
	}
	s.audit.Record(ctx, &user.ID, stringPtr(ipAddress), entity.LoginSuccess, metadata)
	return result, nil
}

func (s *AuthService) issueTokens(user *entity.User, sessionID *uuid.UUID) (*LoginResult, error) {
	accessToken, accessTTL, err := s.tokens.IssueAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refreshToken, refreshTTL, err := s.tokens.IssueRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		UserID:           user.ID,
		AccessToken:      accessToken,
		ExpiresIn:        int64(accessTTL.Seconds()),
		RefreshToken:     refreshToken,
		RefreshExpiresIn: int64(refreshTTL.Seconds()),
		SessionID:        sessionID,
	}, nil
}

// sendEmailVerification is best effort. The user stays unverified when the
// email cannot be sent.
func (s *AuthService) sendEmailVerification(ctx context.Context, user *entity.User) {
	if s.mailer == nil {
		return
	}
	log := s.logger.WithField("user_id", user.ID)
	token, err := s.ledger.IssueEmailVerification(ctx, user)
	if err != nil {
		log.WithError(err).Error("email verification token issue failed")
		return
	}
	if err := s.mailer.SendVerificationEmail(ctx, *user, token); err != nil {
		log.WithError(err).Error("verification email failed")
	}
}

func (s *AuthService) mfaEnabledFor(ctx context.Context, userID uint64) (bool, error) {
	if s.mfaProvider == nil || s.mfaSecrets == nil || s.mfaTokens == nil {
		return false, nil
	}
	secret, err := s.mfaSecrets.FindByUserID(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("mfa lookup: %w", err)
	}
	return secret != nil && secret.EnabledAt != nil, nil
}

func (s *AuthService) normalizeLedgerError(err error) error {
	switch {
	case errors.Is(err, ErrTokenNotFound),
		errors.Is(err, ErrTokenExpired),
		errors.Is(err, ErrTokenUsedOrExpired):
		return ErrInvalidToken
	default:
		return err
	}
}

func validatePassword(password string) error {
	if problem := utils.PasswordProblem(password); problem != "" {
		return fmt.Errorf("%w: %s", ErrWeakPassword, problem)
	}
	return nil
}

func validatePhone(phone *string) error {
	if phone == nil || *phone == "" {
		return nil
	}
	if !utils.ValidPhoneNumber(*phone) {
		return ErrInvalidPhoneFormat
	}
	return nil
}

func stringPtr(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}
