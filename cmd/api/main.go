package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bkaratas/account-service/internal/api"
	"github.com/bkaratas/account-service/internal/auth"
	"github.com/bkaratas/account-service/internal/config"
	"github.com/bkaratas/account-service/internal/db"
	"github.com/bkaratas/account-service/internal/logger"
	"github.com/bkaratas/account-service/internal/metrics"
	"github.com/bkaratas/account-service/internal/repository"
	"github.com/bkaratas/account-service/internal/repository/memory"
	"github.com/bkaratas/account-service/internal/repository/postgres"
	"github.com/bkaratas/account-service/internal/services"
)

const (
	accessTTL  = 48 * time.Hour
	refreshTTL = 30 * 24 * time.Hour
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		users    repository.Users
		accounts repository.Accounts
	)
	if cfg.DatabaseURL == "" {
		log.Warn("no DATABASE_URL, using in-memory store")
		store := memory.NewStore()
		users, accounts = store.Users(), store.Accounts()
	} else {
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("db connect", "err", err)
			os.Exit(1)
		}
		defer pool.Close()

		if os.Getenv("APP_MIGRATE") == "true" {
			if err := db.RunMigrations(ctx, pool); err != nil {
				log.Error("migrations", "err", err)
				os.Exit(1)
			}
		}

		repos := postgres.NewRepositories(pool)
		users, accounts = repos.Users, repos.Accounts
	}

	tm := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, accessTTL, refreshTTL)
	userSvc := services.NewUserService(users, tm)
	accountSvc := services.NewAccountService(accounts, cfg)

	metrics.Init()
	r := api.NewRouter(cfg, tm, userSvc, accountSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
