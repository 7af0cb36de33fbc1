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

	"ayudame-ya/internal/api"
	"ayudame-ya/internal/config"
	"ayudame-ya/internal/database"
	"ayudame-ya/internal/logging"
	"ayudame-ya/internal/metrics"
	"ayudame-ya/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()
	gin.SetMode(cfg.GinMode)

	db, err := database.Open(cfg, logger)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var registry *api.Registry
	hub := ws.NewHub(logger.Named("ws"), func(sessionID string) { registry.Touch(sessionID) })
	registry = api.NewRegistry(api.RegistryOptions{
		Flags:           database.NewFlagRepository(db),
		Pages:           hub,
		Metrics:         m,
		RatingShowAfter: cfg.RatingShowAfter,
		RatingHideAfter: cfg.RatingHideAfter,
		Logger:          logger.Named("session"),
	})
	go hub.Run()

	router, err := api.NewRouter(api.RouterDeps{
		Registry:    registry,
		Hub:         hub,
		Metrics:     m,
		Gatherer:    reg,
		RateLimiter: api.NewRateLimiter(cfg.APIRateLimit, cfg.APIRateBurst),
		Logger:      logger.Named("http"),
	})
	if err != nil {
		logger.Fatal("failed to build router", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go registry.RunReaper(ctx, cfg.SessionIdleTimeout, time.Minute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to run server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	registry.CloseAll()
	hub.Stop()

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
