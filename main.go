package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/kevin-vien/web-mobile-tranning/configs"
	"github.com/kevin-vien/web-mobile-tranning/internal/auth"
	"github.com/kevin-vien/web-mobile-tranning/internal/cache"
	"github.com/kevin-vien/web-mobile-tranning/internal/checkout"
	"github.com/kevin-vien/web-mobile-tranning/internal/db"
	"github.com/kevin-vien/web-mobile-tranning/internal/events"
	"github.com/kevin-vien/web-mobile-tranning/internal/handlers"
	"github.com/kevin-vien/web-mobile-tranning/internal/logging"
	"github.com/kevin-vien/web-mobile-tranning/internal/metrics"
	"github.com/kevin-vien/web-mobile-tranning/internal/notifier"
	"github.com/kevin-vien/web-mobile-tranning/internal/repository"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := db.Open(cfg.DB)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}
	defer store.Close()

	// The server starts immediately; writes answer 503 until this finishes.
	go store.Run(ctx, cfg.DB.RetryInterval)

	m := metrics.New()
	users := repository.NewUserRepository(store.DB)
	tokens := auth.NewTokens(cfg.App.JWTSecret, cfg.App.JWTTTL)

	// ── notifications ──
	dispatcher := notifier.NewDispatcher(cfg.App.NotifyTimeout).WithMetrics(m)
	switch {
	case cfg.SMTP.Enabled():
		dispatcher.WithMailer(notifier.NewSMTPMailer(cfg.SMTP))
	case cfg.SES.Enabled():
		ses, err := notifier.NewSESMailer(ctx, cfg.SES)
		if err != nil {
			logging.Err(logging.Fields{Step: "startup", Status: "ses_disabled"}, err)
		} else {
			dispatcher.WithMailer(ses)
		}
	default:
		logging.Log(logging.Fields{Step: "startup", Status: "mail_disabled", Message: "no SMTP or SES configuration"})
	}
	if cfg.SMS.Enabled() {
		dispatcher.WithSMS(notifier.NewAfricasTalkingSMS(cfg.SMS), users)
	}

	var publisher *events.Publisher
	if cfg.Kafka.Enabled() {
		publisher = events.NewPublisher(events.ParseBrokers(cfg.Kafka.Brokers), cfg.Kafka.Topic)
		dispatcher.WithEvents(publisher)
	}

	coordinator := checkout.NewCoordinator(store.DB, checkout.Options{
		MaxAttempts:   cfg.DB.MaxAttempts,
		LockTimeout:   cfg.DB.LockTimeout,
		ClampQuantity: cfg.DB.ClampQuantity,
	}).WithNotifier(dispatcher).WithMetrics(m)

	deps := handlers.Deps{
		DB:            store.DB,
		Readiness:     store,
		Coordinator:   coordinator,
		Tokens:        tokens,
		SessionSecret: cfg.App.SessionSecret,
		StaticDir:     cfg.App.StaticDir,
		Metrics:       m,
	}

	// ── optional integrations ──
	if cfg.Redis.Enabled() {
		rdb, err := cache.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			logging.Err(logging.Fields{Step: "startup", Status: "cache_disabled"}, err)
		} else {
			defer rdb.Close()
			pc := cache.NewProductCache(repository.NewProductRepository(store.DB), rdb, cfg.Redis.TTL)
			deps.ProductCache = pc
			coordinator.WithInvalidator(pc)
		}
	}
	if cfg.OIDC.Enabled() {
		oidc, err := auth.NewOIDC(ctx, cfg.OIDC, users, tokens)
		if err != nil {
			logging.Err(logging.Fields{Step: "startup", Status: "oidc_disabled"}, err)
		} else {
			deps.OIDC = oidc
		}
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handlers.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logging.Log(logging.Fields{Step: "startup", Status: "listening", Message: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	<-ctx.Done()
	logging.Log(logging.Fields{Step: "shutdown", Status: "draining"})

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Err(logging.Fields{Step: "shutdown", Status: "http"}, err)
	}
	if err := dispatcher.Wait(shutdownCtx); err != nil {
		logging.Err(logging.Fields{Step: "shutdown", Status: "notifications"}, err)
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logging.Err(logging.Fields{Step: "shutdown", Status: "kafka"}, err)
		}
	}
}
