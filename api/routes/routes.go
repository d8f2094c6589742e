package routes

import (
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/api/handler"
	"github.com/kimaninyutu/primeorgabicsbackend/api/middleware"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/entity"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type Router struct {
	Echo           *echo.Echo
	Auth           *handler.AuthHandler
	AuthMiddleware middleware.AuthMiddleware
	AuthRate       *middleware.RateLimiter
	LoginRate      *middleware.RateLimiter
}

func NewRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware middleware.AuthMiddleware) *Router {
	return &Router{
		Echo:           e,
		Auth:           authHandler,
		AuthMiddleware: authMiddleware,
		AuthRate:       middleware.NewRateLimiter(rate.Limit(5), 10, 5*time.Minute),
		LoginRate:      middleware.NewRateLimiter(rate.Limit(2), 4, 10*time.Minute),
	}
}

func (r *Router) RegisterRoutes() {
	e := r.Echo
	requireAuth := r.AuthMiddleware.RequireAuth

	auth := e.Group("/auth")
	auth.POST("/register", r.Auth.Register, r.AuthRate.Middleware())
	auth.POST("/login", r.Auth.Login, r.LoginRate.Middleware())
	auth.POST("/login/mfa", r.Auth.LoginWithMFA, r.LoginRate.Middleware())
	auth.POST("/refresh-token", r.Auth.Refresh, r.AuthRate.Middleware())
	auth.POST("/logout", r.Auth.Logout, requireAuth)

	auth.POST("/verify-email", r.Auth.VerifyEmail, r.AuthRate.Middleware())
	auth.POST("/verify-email/resend", r.Auth.ResendVerification, requireAuth, r.AuthRate.Middleware())
	auth.POST("/password-reset/request", r.Auth.RequestPasswordReset, r.LoginRate.Middleware())
	auth.POST("/password-reset/confirm", r.Auth.ConfirmPasswordReset, r.AuthRate.Middleware())

	auth.GET("/me", r.Auth.Me, requireAuth)
	auth.PUT("/me", r.Auth.UpdateProfile, requireAuth)
	auth.POST("/me/change-password", r.Auth.ChangePassword, requireAuth, r.LoginRate.Middleware())

	auth.GET("/sessions", r.Auth.ListSessions, requireAuth)
	auth.DELETE("/sessions", r.Auth.RevokeAllSessions, requireAuth)
	auth.DELETE("/sessions/:id", r.Auth.RevokeSession, requireAuth)

	auth.POST("/mfa/enable", r.Auth.EnableMFA, requireAuth)
	auth.POST("/mfa/verify", r.Auth.VerifyMFA, requireAuth)
	auth.POST("/mfa/disable", r.Auth.DisableMFA, requireAuth)

	admin := e.Group("/admin", requireAuth, middleware.RequireRole(entity.UserRoleAdmin))
	admin.GET("/users", r.Auth.AdminListUsers)
	admin.POST("/users/:id/revoke-sessions", r.Auth.AdminRevokeUserSessions)
}
