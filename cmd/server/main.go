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

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/FormaKit/Backend/internal/auth"
	"github.com/FormaKit/Backend/internal/config"
	"github.com/FormaKit/Backend/internal/db"
	"github.com/FormaKit/Backend/internal/logging"
	"github.com/FormaKit/Backend/internal/ratelimit"
	"github.com/FormaKit/Backend/internal/security"
	"github.com/FormaKit/Backend/internal/server"
	sessionrepo "github.com/FormaKit/Backend/internal/session/repository"
	userrepo "github.com/FormaKit/Backend/internal/user/repository"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Env)
	defer func() { _ = logger.Sync() }()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer database.Close()

	users := userrepo.NewPostgresRepository(database)
	sessions := sessionrepo.NewPostgresRepository(database)
	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenCodec([]byte(cfg.JWTSecret), cfg.JWTIssuer, cfg.SessionTTLDuration())
	authService := auth.NewService(users, sessions, hasher, tokens)

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer client.Close()
		limiter = ratelimit.New(client, logger)
	}

	router := server.NewRouter(server.Deps{
		Logger:      logger,
		Auth:        authService,
		Sessions:    sessions,
		Users:       users,
		Tokens:      tokens,
		Limiter:     limiter,
		DB:          database,
		Env:         cfg.Env,
		LoginLimit:  cfg.LoginRateLimit,
		LoginWindow: cfg.LoginRateWindowDuration(),
	})

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down HTTP server")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
	logger.Info("HTTP server stopped")
}
