package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kimaninyutu/primeorgabicsbackend/api/handler"
	apiMiddleware "github.com/kimaninyutu/primeorgabicsbackend/api/middleware"
	"github.com/kimaninyutu/primeorgabicsbackend/api/routes"
	"github.com/kimaninyutu/primeorgabicsbackend/config"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/events"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/logger"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/repository"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/service"
	"github.com/kimaninyutu/primeorgabicsbackend/internal/utils"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	log, logCloser := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer logCloser.Close()

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx := context.Background()
	db, err := config.ConnectionDb(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	if err := config.RunMigrations(ctx, db); err != nil {
		log.WithError(err).Fatal("database migration failed")
	}

	jwtManager := utils.JWTManager{
		Secret:          cfg.JWTSecret,
		Issuer:          cfg.JWTIssuer,
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
	}
	mfaIssuer := service.MFATokenIssuerJWT{
		Secret: cfg.MFASecret,
		Issuer: cfg.JWTIssuer,
		TTL:    cfg.MFATokenTTL,
	}

	emailQueue := service.NewAsyncEmailSender(
		service.NewResendEmailSender(cfg.ResendAPIKey, cfg.EmailFrom),
		cfg.EmailQueueSize,
		log,
	)
	notifier, err := service.NewNotifier(emailQueue, service.NotifierConfig{
		FrontendURL: cfg.FrontendURL,
		VerifyTTL:   cfg.VerificationTokenTTL,
		ResetTTL:    cfg.ResetTokenTTL,
		Templates:   service.DefaultEmailTemplates,
	})
	if err != nil {
		log.WithError(err).Fatal("email templates invalid")
	}

	publisher := events.NewPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)

	userRepo := repository.NewUserRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	verificationRepo := repository.NewVerificationTokenRepository(db)
	mfaRepo := repository.NewMFASecretRepository(db)
	securityRepo := repository.NewSecurityLogRepository(db)

	authService := service.NewAuthService(
		userRepo,
		sessionRepo,
		verificationRepo,
		mfaRepo,
		securityRepo,
		repository.NewTransactor(db),
		publisher,
		notifier,
		service.BcryptPasswordHasher{},
		jwtManager,
		mfaIssuer,
		service.NewTOTPProvider(""),
		log,
		service.RealClock{},
		service.AuthConfig{
			VerificationTokenTTL: cfg.VerificationTokenTTL,
			ResetTokenTTL:        cfg.ResetTokenTTL,
			RequireVerifiedEmail: cfg.RequireVerifiedEmail,
		},
	)

	authHandler := handler.NewAuthHandler(authService, handler.NewValidator(), log)
	authHandler.CookieDomain = cfg.CookieDomain
	authHandler.SecureCookies = cfg.CookieSecure

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.HTTPErrorHandler = handler.HTTPErrorHandler(log)
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := log.WithFields(logrus.Fields{
				"status":  v.Status,
				"method":  v.Method,
				"uri":     v.URI,
				"ip":      v.RemoteIP,
				"latency": v.Latency.String(),
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	authMiddleware := apiMiddleware.AuthMiddleware{JWT: &jwtManager, Sessions: authService, Logger: log}
	router := routes.NewRouter(app, authHandler, authMiddleware)
	router.RegisterRoutes()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", apiMiddleware.SessionHeader},
	})

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           corsHandler.Handler(app),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.HTTPAddr).Info("server started")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}

	authService.Wait()
	emailQueue.Close()
	if err := publisher.Close(); err != nil {
		log.WithError(err).Warn("event publisher close failed")
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
