package handler

import (
	"net/http"
	"strconv"

	"github.com/kimaninyutu/primeorgabicsbackend/internal/dto"

	"github.com/labstack/echo/v4"
)

func (h *AuthHandler) AdminListUsers(c echo.Context) error {
	limit, offset := parseLimitOffset(c)
	users, err := h.Service.ListUsers(c.Request().Context(), limit, offset)
	if err != nil {
		return h.writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, dto.UserResponsesFromEntities(users))
}

func (h *AuthHandler) AdminRevokeUserSessions(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		return writeError(c, http.StatusBadRequest, "invalid_input", "invalid user id")
	}
	if err := h.Service.RevokeUserSessions(c.Request().Context(), userID); err != nil {
		return h.writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
