package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/kimaninyutu/primeorgabicsbackend/api/middleware"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/dto"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

var errMalformedBody = errors.New("malformed request body")

// NewValidator reports field errors under their JSON names.
func NewValidator() *validator.Validate {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return validate
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeError(c echo.Context, status int, code string, message string) error {
	return c.JSON(status, dto.ErrorResponse{Code: code, Message: message})
}

func (h *AuthHandler) writeServiceError(c echo.Context, err error) error {
	status, code := http.StatusInternalServerError, "internal_error"
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		status, code = http.StatusBadRequest, "invalid_input"
	case errors.Is(err, service.ErrWeakPassword):
		status, code = http.StatusBadRequest, "weak_password"
	case errors.Is(err, service.ErrInvalidPhoneFormat):
		status, code = http.StatusBadRequest, "invalid_phone_format"
	case errors.Is(err, service.ErrInvalidToken):
		status, code = http.StatusBadRequest, "invalid_token"
	case errors.Is(err, service.ErrIncorrectPassword):
		status, code = http.StatusBadRequest, "incorrect_password"
	case errors.Is(err, service.ErrInvalidCredentials):
		status, code = http.StatusUnauthorized, "invalid_credentials"
	case errors.Is(err, service.ErrInvalidMFACode):
		status, code = http.StatusUnauthorized, "invalid_mfa_code"
	case errors.Is(err, service.ErrEmailNotVerified):
		status, code = http.StatusForbidden, "email_not_verified"
	case errors.Is(err, service.ErrSessionNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrUserNotFound):
		status, code = http.StatusNotFound, "user_not_found"
	case errors.Is(err, service.ErrDuplicateEmail):
		status, code = http.StatusConflict, "duplicate_email"
	case errors.Is(err, service.ErrMFARequired):
		status, code = http.StatusPreconditionRequired, "mfa_required"
	case errors.Is(err, service.ErrMFAAlreadyEnabled):
		status, code = http.StatusConflict, "mfa_already_enabled"
	case errors.Is(err, service.ErrMFANotConfigured):
		status, code = http.StatusFailedDependency, "mfa_not_configured"
	}

	if status == http.StatusInternalServerError {
		h.Logger.WithError(err).WithFields(logrus.Fields{
			"method": c.Request().Method,
			"path":   c.Path(),
		}).Error("unhandled service error")
		return writeError(c, status, code, "internal server error")
	}
	return writeError(c, status, code, err.Error())
}

// HTTPErrorHandler renders errors raised by echo and the middleware in the
// same shape the handlers use.
func HTTPErrorHandler(logger logrus.FieldLogger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status := http.StatusInternalServerError
		message := "internal server error"
		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			status = httpErr.Code
			if msg, ok := httpErr.Message.(string); ok {
				message = msg
			} else {
				message = strings.ToLower(http.StatusText(status))
			}
		} else if logger != nil {
			logger.WithError(err).Error("unhandled error")
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = writeError(c, status, codeForStatus(status), message)
	}
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_input"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusMethodNotAllowed:
		return "method_not_allowed"
	case http.StatusTooManyRequests:
		return "rate_limited"
	default:
		return "internal_error"
	}
}

func validationMessage(err error) string {
	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return "invalid request"
	}
	fe := fieldErrors[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("%s must use the format %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func parseLimitOffset(c echo.Context) (int, int) {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func optionalSessionID(c echo.Context) *uuid.UUID {
	sessionID, ok := middleware.SessionIDFromContext(c)
	if !ok {
		return nil
	}
	return &sessionID
}
