package config

import (
	"os"
	"strconv"
	"time"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	BaseURL       string // public base for shareable links, e.g. https://vault.example.com
	DatabaseURL   string // empty selects the in-memory stores
	RedisAddr     string // empty selects the in-memory rate limiter
	JWTSigningKey string
	ShareRateRPM  int // public share-path requests per minute per client IP
}

// DefaultShareRateRPM bounds token guessing on the public path.
const DefaultShareRateRPM = 60

// ShutdownTimeout bounds graceful drain on SIGINT.
var ShutdownTimeout = 10 * time.Second

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("CAREVAULT_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	baseURL := os.Getenv("CAREVAULT_BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production.
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	rpm := DefaultShareRateRPM
	if raw := os.Getenv("SHARE_RATE_RPM"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			rpm = parsed
		}
	}

	return Server{
		Addr:          addr,
		BaseURL:       baseURL,
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		JWTSigningKey: jwtSigningKey,
		ShareRateRPM:  rpm,
	}
}
