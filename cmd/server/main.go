package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"coaster_catalog/internal/api"
	"coaster_catalog/internal/app/service"
	"coaster_catalog/internal/common/security"
	"coaster_catalog/internal/domain/repository"
	"coaster_catalog/internal/platform/config"
	"coaster_catalog/internal/platform/database"
	platformRedis "coaster_catalog/internal/platform/redis"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	logrus.SetFormatter(&logrus.JSONFormatter{})
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}
	log := logrus.WithField("component", "Server")

	ctx := context.Background()

	// 2. Initialize Database
	db := database.NewMongo(cfg.DBUrl, cfg.DBName)
	if err := db.Connect(ctx); err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close(ctx)
	if err := db.EnsureIndexes(ctx); err != nil {
		log.WithError(err).Fatal("could not ensure indexes")
	}
	log.Info("database connected")

	// 3. Initialize Redis (optional; login limiter is off without it)
	rdb, err := platformRedis.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.WithError(err).Fatal("could not connect to redis")
	}
	if rdb != nil {
		defer rdb.Close()
		log.Info("redis connected")
	}

	// 4. Initialize Repositories
	userRepo := repository.NewMongoUserRepository(db)
	coasterRepo := repository.NewMongoCoasterRepository(db)
	roleRepo := repository.NewMongoRoleRepository(db)
	editRepo := repository.NewMongoEditRepository(db)

	// 5. Initialize Services
	tokens := security.NewTokenService(cfg.JWTKey, cfg.JWTExp)
	audit := service.NewAuditService(editRepo)
	limiter := service.NewLoginLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginLockout)
	authService := service.NewAuthService(userRepo, roleRepo, audit, tokens, limiter)
	userService := service.NewUserService(userRepo, audit)
	coasterService := service.NewCoasterService(coasterRepo, audit)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(tokens, authService, userService, coasterService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.WithField("port", cfg.APIPort).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("could not listen")
		}
	}()

	<-stop

	log.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Fatal("server shutdown failed")
	}
	log.Info("server stopped gracefully")
}
