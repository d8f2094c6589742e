package handler

import (
	"net/http"

	"github.com/kimaninyutu/primeorgabicsbackend/api/middleware"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/dto"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (h *AuthHandler) Me(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	user, err := h.Service.UserByID(c.Request().Context(), userID)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	var req dto.UpdateProfileRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	user, err := h.Service.UpdateProfile(c.Request().Context(), userID, req.ToProfileUpdate())
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

func (h *AuthHandler) ChangePassword(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	var req dto.ChangePasswordRequest
	if err := h.bind(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, "invalid_input", err.Error())
	}
	err := h.Service.ChangePassword(c.Request().Context(), userID, req.CurrentPassword, req.NewPassword, c.RealIP())
	if err != nil {
		return h.writeServiceError(c, err)
	}
	h.clearRefreshCookie(c)
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Password changed successfully"})
}

func (h *AuthHandler) ListSessions(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	sessions, err := h.Service.ListSessions(c.Request().Context(), userID)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.SessionListFromEntities(sessions))
}

func (h *AuthHandler) RevokeSession(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		// A malformed id cannot name any session.
		return writeError(c, http.StatusNotFound, "not_found", "session not found")
	}
	if err := h.Service.RevokeSession(c.Request().Context(), userID, sessionID, c.RealIP()); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Session revoked successfully"})
}

// RevokeAllSessions keeps the caller's own session when X-Session-ID is sent.
func (h *AuthHandler) RevokeAllSessions(c echo.Context) error {
	userID, ok := middleware.UserIDFromContext(c)
	if !ok {
		return writeError(c, http.StatusUnauthorized, "unauthorized", "unauthorized")
	}
	if err := h.Service.RevokeAllSessions(c.Request().Context(), userID, optionalSessionID(c), c.RealIP()); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "All sessions revoked successfully"})
}
