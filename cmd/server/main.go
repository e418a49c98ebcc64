package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"bus_tracker/internal/config"
	"bus_tracker/internal/logger"
	"bus_tracker/internal/middleware"
	"bus_tracker/internal/realtime"
	"bus_tracker/internal/routes"
	"bus_tracker/internal/services"
	"bus_tracker/internal/store"
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	// Initialize structured logging
	logs := logger.Setup(logger.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	defer logs.Close()

	// Connect to the database
	db, err := config.OpenDB(cfg.Database)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	if cfg.Database.AutoMigrate {
		if err := store.AutoMigrate(db); err != nil {
			logrus.WithError(err).Fatal("auto-migration failed")
		}
		logrus.Info("database migrated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := realtime.NewHub(cfg.Server.AllowedOrigins...)
	go hub.Run(ctx)

	routeStore := store.NewRouteStore(db)
	userStore := store.NewUserStore(db)
	jwt := middleware.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)

	routeSvc := services.NewRouteService(routeStore, hub, services.CacheOptions{
		Size: cfg.Cache.Size,
		TTL:  cfg.Cache.TTL,
	})
	adminSvc := services.NewAdminService(routeStore, userStore, routeSvc.InvalidateSearch)
	authSvc := services.NewAuthService(userStore, jwt, cfg.Auth.AllowAdminSignup)

	gin.SetMode(cfg.Server.GinMode)
	r := routes.SetupRouter(routes.Deps{
		Routes:         routeSvc,
		Admin:          adminSvc,
		Auth:           authSvc,
		Hub:            hub,
		JWT:            jwt,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Server.Addr).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("server failed")
		}
	}()

	<-ctx.Done()
	logrus.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("graceful shutdown failed")
	}
}
