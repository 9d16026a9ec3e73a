package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"carevault/internal/audit"
	"carevault/internal/consent"
	consenthandler "carevault/internal/consent/handler"
	consentservice "carevault/internal/consent/service"
	"carevault/internal/document"
	"carevault/internal/platform/auth"
	"carevault/internal/platform/config"
	"carevault/internal/platform/httpserver"
	"carevault/internal/platform/logger"
	"carevault/internal/platform/metrics"
	"carevault/internal/platform/qr"
	"carevault/internal/ratelimit"
	"carevault/internal/share"
	sharehandler "carevault/internal/share/handler"
)

const signedURLTTL = 15 * time.Minute

// main wires stores, services, and handlers, then owns the server lifecycle.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	m := metrics.New()

	var (
		consentStore  consent.Store
		auditStore    audit.Store
		documentStore document.Store
		txRunner      consentservice.TxRunner
	)
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			log.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		if err := db.Ping(); err != nil {
			log.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		consentStore = consent.NewPostgresStore(db)
		auditStore = audit.NewPostgresStore(db)
		documentStore = document.NewPostgresStore(db)
		txRunner = newPostgresTx(db)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		consentStore = consent.NewInMemoryStore()
		auditStore = audit.NewInMemoryStore()
		documentStore = document.NewInMemoryStore()
	}

	var limiterStore ratelimit.Store
	if cfg.RedisAddr != "" {
		limiterStore = ratelimit.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}))
	} else {
		limiterStore = ratelimit.NewInMemoryStore()
	}
	limiter := ratelimit.New(limiterStore, cfg.ShareRateRPM, time.Minute)

	consentSvc := consentservice.New(consentStore, auditStore, txRunner, m)
	fileIssuer := document.NewLocalURLIssuer(cfg.BaseURL, signedURLTTL)
	shareSvc := share.New(consentSvc, documentStore, fileIssuer, auditStore, m)
	jwtService := auth.NewJWTService(cfg.JWTSigningKey)

	router := chi.NewRouter()
	consenthandler.New(consentSvc, qr.NewEncoder(), cfg.BaseURL, log, jwtService).Register(router)
	sharehandler.New(shareSvc, ratelimit.Middleware(limiter, m, log), log).Register(router)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	srv := httpserver.New(cfg.Addr, router)

	log.Info("starting carevault", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
