package main

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"agriportal-go/config"
	"agriportal-go/database"
	"agriportal-go/events"
	"agriportal-go/handlers"
	"agriportal-go/logger"
	"agriportal-go/middleware"
	"agriportal-go/router"
	"agriportal-go/services"
	"agriportal-go/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration:", err)
	}

	logg := logger.New(cfg.Environment)

	if err := config.ValidateConfig(cfg, logg); err != nil {
		log.Fatal("Invalid configuration:", err)
	}
	if err := utils.InitializeEncryption(cfg.EncryptionKey); err != nil {
		log.Fatal("Failed to initialize encryption:", err)
	}
	if err := utils.InitializeJWT(cfg.JWTSecret, cfg.TokenTTL); err != nil {
		log.Fatal("Failed to initialize JWT:", err)
	}

	gormLevel := gormlogger.Warn
	if cfg.IsDevelopment() {
		gormLevel = gormlogger.Info
	}
	db, err := database.Initialize(cfg.DatabaseDriver, cfg.DatabaseURL, gormLevel)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}

	publisher := events.New(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer release(logg, publisher, db)

	accounts := services.NewAccounts(db, logg, cfg.SeedAdminUsername, cfg.SeedAdminPassword)
	schemes := services.NewSchemes(db)
	applications := services.NewApplications(db, publisher, logg)
	h := handlers.NewHandlers(db, cfg, logg, accounts, schemes, applications)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx)

	var registry *prometheus.Registry
	if cfg.MetricsEnabled {
		registry = prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Deps{
			Handlers: h,
			Config:   cfg,
			Log:      logg,
			Limiter:  limiter,
			Registry: registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error("http server error", "err", err)
			stop()
		}
	}()
	logg.Info("server started",
		"addr", srv.Addr,
		"environment", cfg.Environment,
		"database_driver", cfg.DatabaseDriver,
		"events", len(cfg.KafkaBrokers) > 0,
	)

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error("graceful shutdown failed", "err", err)
	}
	logg.Info("graceful shutdown complete")
}

// release flushes the event publisher and then closes the database pool,
// logging any failure.
func release(log *slog.Logger, publisher io.Closer, db *gorm.DB) {
	if err := publisher.Close(); err != nil {
		log.Error("close event publisher", "err", err)
	}
	if err := database.Close(db); err != nil {
		log.Error("close database", "err", err)
	}
}
