package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type SessionToucher interface {
	TouchSession(ctx context.Context, userID uint64, sessionID uuid.UUID) error
}

type AuthMiddleware struct {
	JWT      *utils.JWTManager
	Sessions SessionToucher
	Logger   logrus.FieldLogger
}

// RequireAuth accepts any valid access token. Session state is not consulted
// for authorization; a supplied X-Session-ID only has its activity bumped.
func (m AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if m.JWT == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		token := extractBearerToken(c.Request())
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		claims, err := m.JWT.ParseAccessToken(token)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}

		var sessionID *uuid.UUID
		if raw := strings.TrimSpace(c.Request().Header.Get(SessionHeader)); raw != "" {
			parsed, err := uuid.Parse(raw)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "invalid session id")
			}
			sessionID = &parsed
			m.touch(c.Request().Context(), claims.UserID, parsed)
		}

		SetAuthContext(c, claims.UserID, claims.Role, sessionID)
		return next(c)
	}
}

func (m AuthMiddleware) touch(ctx context.Context, userID uint64, sessionID uuid.UUID) {
	if m.Sessions == nil {
		return
	}
	if err := m.Sessions.TouchSession(ctx, userID, sessionID); err != nil && m.Logger != nil {
		m.Logger.WithError(err).WithField("session_id", sessionID).Warn("session touch failed")
	}
}

func extractBearerToken(r *http.Request) string {
	authorization := r.Header.Get("Authorization")
	if authorization == "" {
		return ""
	}
	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
