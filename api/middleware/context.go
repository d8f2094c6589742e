package middleware

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	contextUserIDKey  = "auth_user_id"
	contextRoleKey    = "auth_role"
	contextSessionKey = "auth_session_id"
)

// SessionHeader names the session a client is acting from. It is optional.
const SessionHeader = "X-Session-ID"

func SetAuthContext(c echo.Context, userID uint64, role string, sessionID *uuid.UUID) {
	c.Set(contextUserIDKey, userID)
	c.Set(contextRoleKey, role)
	if sessionID != nil {
		c.Set(contextSessionKey, *sessionID)
	}
}

func UserIDFromContext(c echo.Context) (uint64, bool) {
	value := c.Get(contextUserIDKey)
	userID, ok := value.(uint64)
	return userID, ok
}

func RoleFromContext(c echo.Context) (string, bool) {
	value := c.Get(contextRoleKey)
	role, ok := value.(string)
	return role, ok
}

func SessionIDFromContext(c echo.Context) (uuid.UUID, bool) {
	value := c.Get(contextSessionKey)
	sessionID, ok := value.(uuid.UUID)
	return sessionID, ok
}
