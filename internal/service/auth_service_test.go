package service

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterVerifyLoginRevokeScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	registered := h.register(t, "a@x.com")
	require.NotEmpty(t, registered.AccessToken)
	require.NotEmpty(t, registered.RefreshToken)
	require.Nil(t, registered.SessionID)

	user := h.user(t, "a@x.com")
	require.False(t, user.IsEmailVerified)
	require.Equal(t, registered.UserID, user.ID)

	token, ok := h.mailer.last(entity.EmailVerify)
	require.True(t, ok, "registration sends a verification email")
	require.NoError(t, h.svc.VerifyEmail(ctx, token))
	require.True(t, h.user(t, "a@x.com").IsEmailVerified)

	_, err := h.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "Wrong123!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	loggedIn := h.login(t, "a@x.com", strongPassword)
	require.NotEmpty(t, loggedIn.AccessToken)
	require.NotEmpty(t, loggedIn.RefreshToken)
	require.NotNil(t, loggedIn.SessionID)

	require.NoError(t, h.svc.RevokeSession(ctx, user.ID, *loggedIn.SessionID, "10.0.0.1"))
	err = h.svc.RevokeSession(ctx, user.ID, uuid.New(), "10.0.0.1")
	require.ErrorIs(t, err, ErrSessionNotFound)

	assert.Equal(t, []string{
		string(entity.Registered),
		string(entity.EmailVerified),
		string(entity.LoginFailed),
		string(entity.LoginSuccess),
		string(entity.SessionRevoked),
	}, h.publisher.actions())
	assert.EqualValues(t, 5, h.countRows(t, &entity.SecurityLog{}))
}

func TestRegisterRejectsWeakPasswordsBeforeWriting(t *testing.T) {
	h := newHarness(t)
	for _, password := range []string{"Ab1!", "abcd123!", "ABCD123!", "Abcdefg!", "Abcd1234"} {
		_, err := h.svc.Register(context.Background(), RegisterInput{
			Email:    "weak@x.com",
			Password: password,
			Username: "weak",
		})
		require.ErrorIs(t, err, ErrWeakPassword, password)
	}
	require.Zero(t, h.countRows(t, &entity.User{}))
	require.Zero(t, h.mailer.count())
}

func TestRegisterDuplicateEmailLeavesOriginal(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com")
	original := h.user(t, "a@x.com")

	_, err := h.svc.Register(context.Background(), RegisterInput{
		Email:    " A@X.com ",
		Password: "Other123!",
		Username: "mallory",
	})
	require.ErrorIs(t, err, ErrDuplicateEmail)

	after := h.user(t, "a@x.com")
	require.Equal(t, original.PasswordHash, after.PasswordHash)
	require.Equal(t, "alice", after.Username)
	require.EqualValues(t, 1, h.countRows(t, &entity.User{}))
}

func TestRegisterValidatesPhone(t *testing.T) {
	h := newHarness(t)
	bad := "12-34"
	_, err := h.svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: strongPassword,
		Username: "alice",
		Phone:    &bad,
	})
	require.ErrorIs(t, err, ErrInvalidPhoneFormat)

	good := "+254712345678"
	_, err = h.svc.Register(context.Background(), RegisterInput{
		Email:    "a@x.com",
		Password: strongPassword,
		Username: "alice",
		Phone:    &good,
	})
	require.NoError(t, err)
}

func TestRegisterSurvivesMailFailureWithoutVerifying(t *testing.T) {
	h := newHarness(t)
	h.mailer.err = errMailDown

	result := h.register(t, "a@x.com")
	require.NotEmpty(t, result.AccessToken)
	require.False(t, h.user(t, "a@x.com").IsEmailVerified)
	require.NotEmpty(t, h.logs.AllEntries())
}

func TestVerifyEmailTokenIsSingleUseAndExpires(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "a@x.com")
	token, _ := h.mailer.last(entity.EmailVerify)

	require.NoError(t, h.svc.VerifyEmail(ctx, token))
	require.ErrorIs(t, h.svc.VerifyEmail(ctx, token), ErrInvalidToken)
	require.ErrorIs(t, h.svc.VerifyEmail(ctx, "bogus"), ErrInvalidToken)

	h.register(t, "b@x.com")
	late, _ := h.mailer.last(entity.EmailVerify)
	h.clock.Advance(24*time.Hour + time.Second)
	require.ErrorIs(t, h.svc.VerifyEmail(ctx, late), ErrInvalidToken)
	require.False(t, h.user(t, "b@x.com").IsEmailVerified)
}

func TestVerifyEmailValidAtExactExpiry(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com")
	token, _ := h.mailer.last(entity.EmailVerify)

	h.clock.Advance(24 * time.Hour)
	require.NoError(t, h.svc.VerifyEmail(context.Background(), token))
}

func TestResendVerification(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	result := h.register(t, "a@x.com")
	require.Equal(t, 1, h.mailer.count())

	require.NoError(t, h.svc.ResendVerification(ctx, result.UserID))
	require.Equal(t, 2, h.mailer.count())

	token, _ := h.mailer.last(entity.EmailVerify)
	require.NoError(t, h.svc.VerifyEmail(ctx, token))

	require.NoError(t, h.svc.ResendVerification(ctx, result.UserID))
	require.Equal(t, 2, h.mailer.count(), "verified users get no further mail")

	require.ErrorIs(t, h.svc.ResendVerification(ctx, 9999), ErrUserNotFound)
}

func TestLoginRequiresVerifiedEmailWhenConfigured(t *testing.T) {
	h := newHarness(t, withConfig(func(c *AuthConfig) { c.RequireVerifiedEmail = true }))
	ctx := context.Background()
	h.register(t, "a@x.com")

	_, err := h.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: strongPassword})
	require.ErrorIs(t, err, ErrEmailNotVerified)

	token, _ := h.mailer.last(entity.EmailVerify)
	require.NoError(t, h.svc.VerifyEmail(ctx, token))
	h.login(t, "a@x.com", strongPassword)
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com")

	_, unknown := h.svc.Login(context.Background(), LoginInput{Email: "nobody@x.com", Password: strongPassword})
	_, wrong := h.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: "Nope123!!"})
	require.ErrorIs(t, unknown, ErrInvalidCredentials)
	require.ErrorIs(t, wrong, ErrInvalidCredentials)
	require.Equal(t, unknown.Error(), wrong.Error())
}

func TestLoginWithoutClientDetailsOpensNoSession(t *testing.T) {
	h := newHarness(t)
	result := h.register(t, "a@x.com")

	loggedIn, err := h.svc.Login(context.Background(), LoginInput{Email: "a@x.com", Password: strongPassword, UserAgent: "ua"})
	require.NoError(t, err)
	require.Nil(t, loggedIn.SessionID)
	require.NotEmpty(t, loggedIn.AccessToken)
	require.Zero(t, h.activeSessions(t, result.UserID))
}

func TestPasswordResetFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	h.register(t, "a@x.com")
	first := h.login(t, "a@x.com", strongPassword)
	h.login(t, "a@x.com", strongPassword)
	userID := first.UserID
	require.EqualValues(t, 2, h.activeSessions(t, userID))

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "A@x.com", "10.0.0.1"))
	h.svc.Wait()
	token, ok := h.mailer.last(entity.PasswordReset)
	require.True(t, ok)

	require.NoError(t, h.svc.ResetPassword(ctx, token, "NewPass1!"))
	require.Zero(t, h.activeSessions(t, userID))

	claims, err := h.tokens.Verify(first.RefreshToken, utils.RefreshToken)
	require.NoError(t, err, "refresh tokens issued before the reset stay valid")
	require.Equal(t, userID, claims.UserID)

	require.ErrorIs(t, h.svc.ResetPassword(ctx, token, "Another1!"), ErrInvalidToken)

	_, err = h.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: strongPassword})
	require.ErrorIs(t, err, ErrInvalidCredentials)
	h.login(t, "a@x.com", "NewPass1!")
}

func TestPasswordResetWeakPasswordDoesNotBurnToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")
	before := h.user(t, "a@x.com").PasswordHash

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
	token, _ := h.mailer.last(entity.PasswordReset)

	for _, password := range []string{"Ab1!", "abcd123!", "ABCD123!", "Abcdefg!", "Abcd1234"} {
		require.ErrorIs(t, h.svc.ResetPassword(ctx, token, password), ErrWeakPassword, password)
	}
	require.Equal(t, before, h.user(t, "a@x.com").PasswordHash)

	require.NoError(t, h.svc.ResetPassword(ctx, token, "NewPass1!"))
}

func TestSecondResetRequestInvalidatesFirst(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
	first, _ := h.mailer.last(entity.PasswordReset)
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
	second, _ := h.mailer.last(entity.PasswordReset)
	require.NotEqual(t, first, second)

	require.ErrorIs(t, h.svc.ResetPassword(ctx, first, "NewPass1!"), ErrInvalidToken)
	require.NoError(t, h.svc.ResetPassword(ctx, second, "NewPass1!"))
}

func TestPasswordResetRollsBackWhenSessionsCannotBeEnded(t *testing.T) {
	h := newHarness(t, withSessions(func(next repository.SessionRepository) repository.SessionRepository {
		return failingSessions{SessionRepository: next}
	}))
	ctx := context.Background()
	h.register(t, "a@x.com")
	loggedIn := h.login(t, "a@x.com", strongPassword)
	before := h.user(t, "a@x.com").PasswordHash

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
	token, ok := h.mailer.last(entity.PasswordReset)
	require.True(t, ok)

	require.ErrorIs(t, h.svc.ResetPassword(ctx, token, "NewPass1!"), errStoreDown)

	require.Equal(t, before, h.user(t, "a@x.com").PasswordHash)
	require.EqualValues(t, 1, h.activeSessions(t, loggedIn.UserID))

	var stored entity.VerificationToken
	require.NoError(t, h.db.Where("token_hash = ?", utils.TokenDigest(token)).First(&stored).Error)
	require.Nil(t, stored.UsedAt, "the token must survive a failed reset")
}

func TestChangePasswordRollsBackWhenSessionsCannotBeEnded(t *testing.T) {
	h := newHarness(t, withSessions(func(next repository.SessionRepository) repository.SessionRepository {
		return failingSessions{SessionRepository: next}
	}))
	ctx := context.Background()
	h.register(t, "a@x.com")
	loggedIn := h.login(t, "a@x.com", strongPassword)

	err := h.svc.ChangePassword(ctx, loggedIn.UserID, strongPassword, "NewPass1!", "")
	require.ErrorIs(t, err, errStoreDown)

	h.login(t, "a@x.com", strongPassword)
	_, err = h.svc.Login(ctx, LoginInput{Email: "a@x.com", Password: "NewPass1!"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRequestPasswordResetReturnsBeforeMailing(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")

	release := make(chan struct{})
	mailer := &blockingMailer{captureMailer: h.mailer, release: release}
	h.svc.mailer = mailer

	done := make(chan error, 1)
	go func() { done <- h.svc.RequestPasswordReset(ctx, "a@x.com", "") }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("RequestPasswordReset waited on the mailer")
	}

	close(release)
	h.svc.Wait()
	_, ok := h.mailer.last(entity.PasswordReset)
	require.True(t, ok)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
	token, _ := h.mailer.last(entity.PasswordReset)

	h.clock.Advance(time.Hour + time.Second)
	require.ErrorIs(t, h.svc.ResetPassword(ctx, token, "NewPass1!"), ErrInvalidToken)
}

func TestRequestPasswordResetGivesNoSignal(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")
	sentBefore := h.mailer.count()

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "nobody@x.com", ""))
	h.svc.Wait()
	require.Equal(t, sentBefore, h.mailer.count())

	require.NoError(t, h.svc.RequestPasswordReset(ctx, "", ""))
	h.svc.Wait()

	h.mailer.err = errMailDown
	require.NoError(t, h.svc.RequestPasswordReset(ctx, "a@x.com", ""))
	h.svc.Wait()
}

func TestRefresh(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := h.register(t, "a@x.com")

	refreshed, err := h.svc.Refresh(ctx, registered.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, refreshed.AccessToken)
	require.Equal(t, registered.UserID, refreshed.UserID)

	_, err = h.svc.Refresh(ctx, registered.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken, "access tokens cannot be used to refresh")

	_, err = h.svc.Refresh(ctx, "")
	require.ErrorIs(t, err, ErrInvalidToken)

	h.clock.Advance(7*24*time.Hour + time.Second)
	_, err = h.svc.Refresh(ctx, registered.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesOnlyGivenSession(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")
	one := h.login(t, "a@x.com", strongPassword)
	h.login(t, "a@x.com", strongPassword)

	require.NoError(t, h.svc.Logout(ctx, one.UserID, one.SessionID, ""))
	require.EqualValues(t, 1, h.activeSessions(t, one.UserID))

	require.NoError(t, h.svc.Logout(ctx, one.UserID, nil, ""))
	unknown := uuid.New()
	require.NoError(t, h.svc.Logout(ctx, one.UserID, &unknown, ""))
	require.EqualValues(t, 1, h.activeSessions(t, one.UserID))
}

func TestSessionsAreScopedToOwner(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")
	h.register(t, "b@x.com")
	alice := h.login(t, "a@x.com", strongPassword)
	bob := h.login(t, "b@x.com", strongPassword)

	err := h.svc.RevokeSession(ctx, alice.UserID, *bob.SessionID, "")
	require.ErrorIs(t, err, ErrSessionNotFound)
	require.EqualValues(t, 1, h.activeSessions(t, bob.UserID))

	h.clock.Advance(time.Minute)
	second := h.login(t, "a@x.com", strongPassword)
	sessions, err := h.svc.ListSessions(ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, *second.SessionID, sessions[0].ID)

	h.clock.Advance(time.Minute)
	require.NoError(t, h.svc.TouchSession(ctx, alice.UserID, *alice.SessionID))
	sessions, err = h.svc.ListSessions(ctx, alice.UserID)
	require.NoError(t, err)
	require.Equal(t, *alice.SessionID, sessions[0].ID)

	require.NoError(t, h.svc.RevokeAllSessions(ctx, alice.UserID, second.SessionID, ""))
	require.EqualValues(t, 1, h.activeSessions(t, alice.UserID))
	require.NoError(t, h.svc.RevokeUserSessions(ctx, alice.UserID))
	require.Zero(t, h.activeSessions(t, alice.UserID))
}

func TestChangePassword(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.register(t, "a@x.com")
	loggedIn := h.login(t, "a@x.com", strongPassword)

	err := h.svc.ChangePassword(ctx, loggedIn.UserID, "Wrong123!", "NewPass1!", "")
	require.ErrorIs(t, err, ErrIncorrectPassword)

	err = h.svc.ChangePassword(ctx, loggedIn.UserID, strongPassword, "weak", "")
	require.ErrorIs(t, err, ErrWeakPassword)

	require.NoError(t, h.svc.ChangePassword(ctx, loggedIn.UserID, strongPassword, "NewPass1!", ""))
	require.Zero(t, h.activeSessions(t, loggedIn.UserID))
	h.login(t, "a@x.com", "NewPass1!")
}

func TestUpdateProfileIsPartial(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	result := h.register(t, "a@x.com")

	city := "Nairobi"
	first := "Alice"
	_, err := h.svc.UpdateProfile(ctx, result.UserID, ProfileUpdate{City: &city, FirstName: &first})
	require.NoError(t, err)

	country := "Kenya"
	updated, err := h.svc.UpdateProfile(ctx, result.UserID, ProfileUpdate{Country: &country})
	require.NoError(t, err)
	require.Equal(t, "Alice", updated.FirstName)
	require.Equal(t, "Kenya", *updated.Country)

	stored := h.user(t, "a@x.com")
	require.Equal(t, "Nairobi", *stored.City)
	require.Equal(t, "Kenya", *stored.Country)
	require.Nil(t, stored.Address)

	bad := "abc"
	_, err = h.svc.UpdateProfile(ctx, result.UserID, ProfileUpdate{PhoneNumber: &bad})
	require.ErrorIs(t, err, ErrInvalidPhoneFormat)

	_, err = h.svc.UpdateProfile(ctx, 9999, ProfileUpdate{City: &city})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestMFALoginFlow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := h.register(t, "a@x.com")

	otpURL, err := h.svc.EnableMFA(ctx, registered.UserID)
	require.NoError(t, err)
	parsed, err := url.Parse(otpURL)
	require.NoError(t, err)
	secret := parsed.Query().Get("secret")
	require.NotEmpty(t, secret)

	// Not enforced until the first code is confirmed.
	plain := h.login(t, "a@x.com", strongPassword)
	require.False(t, plain.MFARequired)

	require.ErrorIs(t, h.svc.VerifyMFA(ctx, registered.UserID, "000000"), ErrInvalidMFACode)
	code, err := totp.GenerateCode(secret, h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.svc.VerifyMFA(ctx, registered.UserID, code))

	challenge := h.login(t, "a@x.com", strongPassword)
	require.True(t, challenge.MFARequired)
	require.Empty(t, challenge.AccessToken)
	require.NotEmpty(t, challenge.MFAToken)

	_, err = h.svc.LoginWithMFA(ctx, LoginMFAInput{MFAToken: challenge.MFAToken, Code: "000000"})
	require.ErrorIs(t, err, ErrInvalidMFACode)

	_, err = h.svc.LoginWithMFA(ctx, LoginMFAInput{MFAToken: "garbage", Code: code})
	require.ErrorIs(t, err, ErrInvalidToken)

	result, err := h.svc.LoginWithMFA(ctx, LoginMFAInput{
		MFAToken:  challenge.MFAToken,
		Code:      code,
		IPAddress: "10.0.0.1",
		UserAgent: "ua",
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)
	require.NotNil(t, result.SessionID)

	require.ErrorIs(t, h.svc.DisableMFA(ctx, registered.UserID, "", ""), ErrInvalidInput)
	require.ErrorIs(t, h.svc.DisableMFA(ctx, registered.UserID, "000000", ""), ErrInvalidMFACode)
	require.True(t, h.login(t, "a@x.com", strongPassword).MFARequired)

	require.NoError(t, h.svc.DisableMFA(ctx, registered.UserID, code, ""))
	require.False(t, h.login(t, "a@x.com", strongPassword).MFARequired)
}

func TestConfirmedMFACannotBeReenrolled(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	registered := h.register(t, "a@x.com")

	otpURL, err := h.svc.EnableMFA(ctx, registered.UserID)
	require.NoError(t, err)
	parsed, err := url.Parse(otpURL)
	require.NoError(t, err)
	secret := parsed.Query().Get("secret")

	// Enrolling twice before confirming just rotates the pending secret.
	otpURL, err = h.svc.EnableMFA(ctx, registered.UserID)
	require.NoError(t, err)
	parsed, err = url.Parse(otpURL)
	require.NoError(t, err)
	require.NotEqual(t, secret, parsed.Query().Get("secret"))
	secret = parsed.Query().Get("secret")

	code, err := totp.GenerateCode(secret, h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.svc.VerifyMFA(ctx, registered.UserID, code))

	_, err = h.svc.EnableMFA(ctx, registered.UserID)
	require.ErrorIs(t, err, ErrMFAAlreadyEnabled)
	require.True(t, h.login(t, "a@x.com", strongPassword).MFARequired)

	var stored entity.MFASecret
	require.NoError(t, h.db.Where("user_id = ?", registered.UserID).First(&stored).Error)
	require.Equal(t, secret, stored.Secret)
	require.NotNil(t, stored.EnabledAt)
}

func TestLoginFailsClosedWhenMFALookupFails(t *testing.T) {
	fail := false
	h := newHarness(t, withMFASecrets(func(next repository.MFASecretRepository) repository.MFASecretRepository {
		return failingMFASecrets{MFASecretRepository: next, fail: &fail}
	}))
	ctx := context.Background()
	registered := h.register(t, "a@x.com")

	otpURL, err := h.svc.EnableMFA(ctx, registered.UserID)
	require.NoError(t, err)
	parsed, err := url.Parse(otpURL)
	require.NoError(t, err)
	code, err := totp.GenerateCode(parsed.Query().Get("secret"), h.clock.Now())
	require.NoError(t, err)
	require.NoError(t, h.svc.VerifyMFA(ctx, registered.UserID, code))

	fail = true
	result, err := h.svc.Login(ctx, LoginInput{
		Email:     "a@x.com",
		Password:  strongPassword,
		IPAddress: "10.0.0.1",
		UserAgent: "ua",
	})
	require.ErrorIs(t, err, errStoreDown)
	require.Nil(t, result)
	require.Zero(t, h.activeSessions(t, registered.UserID))
}

func TestListUsers(t *testing.T) {
	h := newHarness(t)
	h.register(t, "a@x.com")
	h.register(t, "b@x.com")

	users, err := h.svc.ListUsers(context.Background(), 1, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)

	users, err = h.svc.ListUsers(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
