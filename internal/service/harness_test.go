package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/events"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/testdb"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const strongPassword = "Abcd123!"

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type sentMail struct {
	kind  entity.VerificationType
	to    string
	token string
}

type captureMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *captureMailer) SendVerificationEmail(_ context.Context, user entity.User, token string) error {
	return m.record(entity.EmailVerify, user.Email, token)
}

func (m *captureMailer) SendPasswordResetEmail(_ context.Context, user entity.User, token string) error {
	return m.record(entity.PasswordReset, user.Email, token)
}

func (m *captureMailer) record(kind entity.VerificationType, to string, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{kind: kind, to: to, token: token})
	return nil
}

func (m *captureMailer) last(kind entity.VerificationType) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.sent) - 1; i >= 0; i-- {
		if m.sent[i].kind == kind {
			return m.sent[i].token, true
		}
	}
	return "", false
}

func (m *captureMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type capturePublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *capturePublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func (p *capturePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

type harness struct {
	db        *gorm.DB
	svc       *AuthService
	clock     *fakeClock
	mailer    *captureMailer
	publisher *capturePublisher
	tokens    utils.JWTManager
	logs      *test.Hook
}

type harnessSetup struct {
	config   AuthConfig
	sessions repository.SessionRepository
	mfa      repository.MFASecretRepository
}

type harnessOption func(*harnessSetup)

func withConfig(fn func(*AuthConfig)) harnessOption {
	return func(setup *harnessSetup) { fn(&setup.config) }
}

// withSessions swaps the session repository, usually for a wrapper around the
// real one.
func withSessions(fn func(repository.SessionRepository) repository.SessionRepository) harnessOption {
	return func(setup *harnessSetup) { setup.sessions = fn(setup.sessions) }
}

func withMFASecrets(fn func(repository.MFASecretRepository) repository.MFASecretRepository) harnessOption {
	return func(setup *harnessSetup) { setup.mfa = fn(setup.mfa) }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()

	db := testdb.Open(t)
	clock := &fakeClock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	mailer := &captureMailer{}
	publisher := &capturePublisher{}
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	tokens := utils.JWTManager{
		Secret:          []byte("test-secret"),
		Issuer:          "primeorganics-test",
		AccessTokenTTL:  time.Hour,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		Now:             clock.Now,
	}
	setup := harnessSetup{
		config: AuthConfig{
			VerificationTokenTTL: 24 * time.Hour,
			ResetTokenTTL:        time.Hour,
		},
		sessions: repository.NewSessionRepository(db),
		mfa:      repository.NewMFASecretRepository(db),
	}
	for _, opt := range opts {
		opt(&setup)
	}
	totp := NewTOTPProvider("PrimeOrganics")
	totp.Now = clock.Now

	svc := NewAuthService(
		repository.NewUserRepository(db),
		setup.sessions,
		repository.NewVerificationTokenRepository(db),
		setup.mfa,
		repository.NewSecurityLogRepository(db),
		repository.NewTransactor(db),
		publisher,
		mailer,
		BcryptPasswordHasher{Cost: bcrypt.MinCost},
		tokens,
		MFATokenIssuerJWT{Secret: []byte("mfa-secret"), Issuer: "primeorganics-test"},
		totp,
		logger,
		clock,
		setup.config,
	)
	return &harness{
		db:        db,
		svc:       svc,
		clock:     clock,
		mailer:    mailer,
		publisher: publisher,
		tokens:    tokens,
		logs:      hook,
	}
}

func (h *harness) register(t *testing.T, email string) *LoginResult {
	t.Helper()
	result, err := h.svc.Register(context.Background(), RegisterInput{
		Email:    email,
		Password: strongPassword,
		Username: "alice",
	})
	require.NoError(t, err)
	return result
}

func (h *harness) login(t *testing.T, email string, password string) *LoginResult {
	t.Helper()
	result, err := h.svc.Login(context.Background(), LoginInput{
		Email:     email,
		Password:  password,
		IPAddress: "10.0.0.1",
		UserAgent: "test-agent",
	})
	require.NoError(t, err)
	return result
}

func (h *harness) user(t *testing.T, email string) entity.User {
	t.Helper()
	var user entity.User
	require.NoError(t, h.db.Where("email = ?", email).First(&user).Error)
	return user
}

func (h *harness) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(model).Count(&n).Error)
	return n
}

func (h *harness) activeSessions(t *testing.T, userID uint64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, h.db.Model(&entity.Session{}).Where("user_id = ? AND is_active = ?", userID, true).Count(&n).Error)
	return n
}

var errMailDown = errors.New("smtp down")

var errStoreDown = errors.New("db unavailable")

type failingSessions struct {
	repository.SessionRepository
}

func (failingSessions) RevokeAllByUser(context.Context, uint64, *uuid.UUID, time.Time) (int64, error) {
	return 0, errStoreDown
}

type failingMFASecrets struct {
	repository.MFASecretRepository
	fail *bool
}

func (f failingMFASecrets) FindByUserID(ctx context.Context, userID uint64) (*entity.MFASecret, error) {
	if *f.fail {
		return nil, errStoreDown
	}
	return f.MFASecretRepository.FindByUserID(ctx, userID)
}

// blockingMailer holds password reset emails until release is closed.
type blockingMailer struct {
	*captureMailer
	release chan struct{}
}

func (m *blockingMailer) SendPasswordResetEmail(ctx context.Context, user entity.User, token string) error {
	<-m.release
	return m.captureMailer.SendPasswordResetEmail(ctx, user, token)
}
