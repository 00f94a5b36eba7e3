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

	"visitor-registry-backend/config"
	"visitor-registry-backend/internal/api"
	"visitor-registry-backend/internal/auth"
	"visitor-registry-backend/internal/checkin"
	"visitor-registry-backend/internal/db"
	"visitor-registry-backend/internal/notification"
	"visitor-registry-backend/internal/schedule"
	"visitor-registry-backend/internal/store"
	"visitor-registry-backend/internal/ws"
)

func main() {
	logger := log.New(os.Stdout, "visitord ", log.LstdFlags)

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "./config/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalf("failed to load configuration from %s: %v", configPath, err)
	}
	logger.Printf("configuration loaded successfully from %s", configPath)

	webpushOptions := webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}

	gormDB, err := db.Init(&cfg.Database)
	if err != nil {
		logger.Fatalf("failed to initialize database: %v", err)
	}
	logger.Println("database initialized successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	appStore := store.NewGormStore(gormDB)
	logger.Println("data store initialized")

	if err := auth.SeedInitialAdmin(ctx, gormDB, cfg.Auth.InitialAdminUsername, cfg.Auth.InitialAdminPassword); err != nil {
		logger.Fatalf("failed to seed initial admin: %v", err)
	}

	sessions := auth.NewSessionStore(gormDB, cfg.Auth.SessionTTL())
	if err := sessions.Cleanup(ctx); err != nil {
		logger.Printf("session cleanup failed: %v", err)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	workerPool := notification.NewWorkerPool(cfg.WorkerPool.Size, gormDB, &webpushOptions)
	workerPool.Start(ctx)

	checkinSvc := checkin.NewService(appStore, cfg.Checkout.CountryCode, hub, workerPool)

	scheduler, err := schedule.New(checkinSvc, appStore, cfg.Checkout.Timezone)
	if err != nil {
		logger.Fatalf("failed to create scheduler: %v", err)
	}
	go scheduler.Run(ctx)

	handler := api.NewHandler(appStore, checkinSvc, scheduler, sessions, hub, &webpushOptions)
	router := api.NewRouter(handler, api.RouterConfig{
		RateLimitPerSec: cfg.Server.RateLimitPerSec,
		RateLimitBurst:  cfg.Server.RateLimitBurst,
		CacheTTL:        time.Duration(cfg.Server.CacheTTLSeconds) * time.Second,
	})
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

	logger.Println("Server gracefully stopped")
}
