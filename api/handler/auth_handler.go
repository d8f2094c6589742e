package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/api/middleware"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/dto"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const passwordResetRequestedMessage = "If an account exists for that email, a password reset link has been sent."

type AuthHandler struct {
	Service           *service.AuthService
	Validate          *validator.Validate
	Logger            logrus.FieldLogger
	RefreshCookieName string
	CookieDomain      string
	SecureCookies     bool
	SameSite          http.SameSite
}

func NewAuthHandler(svc *service.AuthService, validate *validator.Validate, logger logrus.FieldLogger) *AuthHandler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &AuthHandler{
		Service:           svc,
		Validate:          validate,
		Logger:            logger,
		RefreshCookieName: "refresh_token",
		SecureCookies:     true,
		SameSite:          http.SameSiteStrictMode,
	}
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	input := service.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		IPAddress: c.RealIP(),
	}
	result, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	return c.JSON(http.StatusCreated, dto.TokenResponseFromResult(result))
}

func (h *AuthHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	if err := h.Service.VerifyEmail(c.Request().Context(), req.Token); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Email verified successfully"})
}

func (h *AuthHandler) ResendVerification(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	if err := h.Service.ResendVerification(c.Request().Context(), userID); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusAccepted, dto.MessageResponse{Message: "Verification email sent"})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	input := service.LoginInput{
		Email:     req.Email,
		Password:  req.Password,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	result, err := h.Service.Login(c.Request().Context(), input)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	if !result.MFARequired {
		h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	}
	return c.JSON(http.StatusOK, dto.TokenResponseFromResult(result))
}

func (h *AuthHandler) LoginWithMFA(c echo.Context) error {
	var req dto.LoginMFARequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	input := service.LoginMFAInput{
		MFAToken:  req.MFAToken,
		Code:      req.Code,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}
	result, err := h.Service.LoginWithMFA(c.Request().Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return writeError(c, http.StatusUnauthorized, "invalid_token", err.Error())
		}
		return h.writeServiceError(c, err)
	}
	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	return c.JSON(http.StatusOK, dto.TokenResponseFromResult(result))
}

// Refresh takes the refresh token from the cookie and falls back to the
// JSON body.
func (h *AuthHandler) Refresh(c echo.Context) error {
	refreshToken := h.readRefreshCookie(c)
	if refreshToken == "" {
		var req dto.RefreshTokenRequest
		if err := h.bind(c, &req); err != nil {
			return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
		}
		refreshToken = req.RefreshToken
	}
	result, err := h.Service.Refresh(c.Request().Context(), refreshToken)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) {
			return writeError(c, http.StatusUnauthorized, "invalid_token", err.Error())
		}
		return h.writeServiceError(c, err)
	}
	h.setRefreshCookie(c, result.RefreshToken, result.RefreshExpiresIn)
	return c.JSON(http.StatusOK, dto.TokenResponseFromResult(result))
}

func (h *AuthHandler) Logout(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	if err := h.Service.Logout(c.Request().Context(), userID, optionalSessionID(c), c.RealIP()); err != nil {
		return h.writeServiceError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully"})
}

func (h *AuthHandler) RequestPasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	if err := h.Service.RequestPasswordReset(c.Request().Context(), req.Email, c.RealIP()); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: passwordResetRequestedMessage})
}

func (h *AuthHandler) ConfirmPasswordReset(c echo.Context) error {
	var req dto.PasswordResetConfirmRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	if err := h.Service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password has been reset successfully"})
}

func (h *AuthHandler) EnableMFA(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	url, err := h.Service.EnableMFA(c.Request().Context(), userID)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MFAEnableResponse{OTPAuthURL: url})
}

func (h *AuthHandler) VerifyMFA(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	var req dto.MFAVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	if err := h.Service.VerifyMFA(c.Request().Context(), userID, req.Code); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) DisableMFA(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	var req dto.MFAVerifyRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	if err := h.Service.DisableMFA(c.Request().Context(), userID, req.Code, c.RealIP()); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// bind decodes and validates a request body.
func (h *AuthHandler) bind(c echo.Context, target any) error {
	if err := decodeJSON(c, target); err != nil {
		return errMalformedBody
	}
	if err := h.validate(target); err != nil {
		return errors.New(validationMessage(err))
	}
	return nil
}

func (h *AuthHandler) validate(payload any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(payload)
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string, expiresIn int64) {
	if token == "" {
		return
	}
	maxAge := int(expiresIn)
	if maxAge < 0 {
		maxAge = 0
	}
	c.SetCookie(&http.Cookie{
		Name:     h.RefreshCookieName,
		Value:    token,
		Path:     "/auth",
		Domain:   h.CookieDomain,
		MaxAge:   maxAge,
		Expires:  time.Now().Add(time.Duration(expiresIn) * time.Second),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) clearRefreshCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     h.RefreshCookieName,
		Value:    "",
		Path:     "/auth",
		Domain:   h.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: h.SameSite,
	})
}

func (h *AuthHandler) readRefreshCookie(c echo.Context) string {
	cookie, err := c.Cookie(h.RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
