package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr string

	DatabaseURL string
	DBMaxOpen   int
	DBMaxIdle   int

	JWTSecret       []byte
	JWTIssuer       string
	MFASecret       []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	MFATokenTTL     time.Duration

	VerificationTokenTTL time.Duration
	ResetTokenTTL        time.Duration
	RequireVerifiedEmail bool

	ResendAPIKey   string
	EmailFrom      string
	EmailQueueSize int
	FrontendURL    string

	KafkaBrokers []string
	KafkaTopic   string

	CORSAllowedOrigins []string
	CookieDomain       string
	CookieSecure       bool

	LogLevel string
	LogFile  string
}

// Load reads the process environment. A .env file in the working directory
// is applied first when present; real environment variables win.
func Load() Config {
	_ = godotenv.Load()

	jwtSecret := []byte(os.Getenv("JWT_SECRET"))
	mfaSecret := []byte(EnvDefault("MFA_JWT_SECRET", string(jwtSecret)))

	return Config{
		HTTPAddr: EnvDefault("HTTP_ADDR", ":8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxOpen:   EnvIntDefault("DB_MAX_OPEN_CONNS", 20),
		DBMaxIdle:   EnvIntDefault("DB_MAX_IDLE_CONNS", 10),

		JWTSecret:       jwtSecret,
		JWTIssuer:       EnvDefault("JWT_ISSUER", "primeorganics"),
		MFASecret:       mfaSecret,
		AccessTokenTTL:  EnvDuration("ACCESS_TOKEN_TTL", 60*time.Minute),
		RefreshTokenTTL: EnvDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
		MFATokenTTL:     EnvDuration("MFA_TOKEN_TTL", 5*time.Minute),

		VerificationTokenTTL: EnvDuration("EMAIL_VERIFICATION_TTL", 24*time.Hour),
		ResetTokenTTL:        EnvDuration("PASSWORD_RESET_TTL", time.Hour),
		RequireVerifiedEmail: EnvBool("REQUIRE_VERIFIED_EMAIL", false),

		ResendAPIKey:   os.Getenv("RESEND_API_KEY"),
		EmailFrom:      EnvDefault("EMAIL_FROM", "PrimeOrganics <no-reply@primeorganics.co.ke>"),
		EmailQueueSize: EnvIntDefault("EMAIL_QUEUE_SIZE", 100),
		FrontendURL:    EnvDefault("FRONTEND_URL", "http://localhost:3000"),

		KafkaBrokers: CSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   EnvDefault("KAFKA_SECURITY_TOPIC", "security-events"),

		CORSAllowedOrigins: CSV(EnvDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		CookieDomain:       os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:       EnvBool("COOKIE_SECURE", true),

		LogLevel: EnvDefault("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
	}
}

func (c Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if len(c.JWTSecret) == 0 {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		errs = append(errs, errors.New("token lifetimes must be positive"))
	}
	return errors.Join(errs...)
}

func CSV(v string) []string {
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func EnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func EnvIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// EnvDuration accepts Go duration syntax ("15m", "168h").
func EnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

func EnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
