package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/joho/godotenv"

	"geoguard-backend/config"
	"geoguard-backend/internal/api"
	"geoguard-backend/internal/apperror"
	"geoguard-backend/internal/dashboard"
	"geoguard-backend/internal/db"
	"geoguard-backend/internal/notification"
	"geoguard-backend/internal/resolver"
	"geoguard-backend/internal/sms"
	"geoguard-backend/internal/store"
	"geoguard-backend/internal/tracking"
)

func main() {
	logger := log.New(os.Stdout, "geoguard ", log.LstdFlags)

	// Secrets for local development; absent in production.
	if err := godotenv.Load(".env.local"); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Printf("could not read .env.local: %v", err)
	}

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	apperror.Init()

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Printf("database initialized (%s)", cfg.Database.Driver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)

	// Exit alerts are optional; without VAPID keys the tracker runs without them.
	var (
		notifier       tracking.ExitNotifier
		webpushOptions *webpush.Options
	)
	if cfg.Push.PublicKey != "" && cfg.Push.PrivateKey != "" {
		webpushOptions = &webpush.Options{
			VAPIDPublicKey:  cfg.Push.PublicKey,
			VAPIDPrivateKey: cfg.Push.PrivateKey,
			Subscriber:      cfg.Push.Subject,
			TTL:             cfg.Push.TTL,
		}
		pool := notification.NewWorkerPool(cfg.WorkerPool.Size, cfg.WorkerPool.QueueSize, gormDB, webpushOptions)
		pool.Start(ctx)
		notifier = pool
	} else {
		logger.Println("VAPID keys not configured; geofence exit alerts are disabled")
	}

	processor := tracking.NewProcessor(appStore, notifier)
	machine := sms.NewStateMachine(appStore, processor, resolver.NewUnwiredClient(cfg.Resolver), sms.NewSender(cfg.SMS), sms.Options{
		PublicURL:   cfg.Server.PublicURL,
		SessionTTL:  cfg.Sessions.TTL,
		Location:    cfg.Attendance.Location,
		CountryCode: cfg.SMS.DefaultCountryCode,
	})

	sweeper := sms.NewSweeper(
		appStore,
		time.Duration(cfg.Sessions.RetentionHours)*time.Hour,
		time.Duration(cfg.Sessions.SweepIntervalMinutes)*time.Minute,
		logger,
	)
	sweeper.Start(ctx)

	handler := api.NewHandler(api.Deps{
		Store:      appStore,
		Tracker:    processor,
		Attendance: machine,
		Dashboard:  dashboard.NewService(appStore),
		WebPush:    webpushOptions,
	})
	router := api.NewRouter(handler, cfg.Server)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Printf("HTTP server starting on port %d", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("HTTP server ListenAndServe: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Println("Shutdown signal received, stopping services...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatalf("HTTP server Shutdown: %v", err)
	}
	sweeper.Stop()
	cancel()

	logger.Println("Server gracefully stopped")
}
