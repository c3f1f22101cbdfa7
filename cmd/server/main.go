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

	"github.com/rashmithaRKL/mobile-nexus-backend/internal/auth"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cache"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/cart"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/catalog"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/config"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/db"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/httpapi"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/order"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/repair"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/review"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/upload"
	"github.com/rashmithaRKL/mobile-nexus-backend/internal/user"
)

func main() {
	cfg := config.Load()
	logger := log.New(os.Stdout, "", log.LstdFlags|log.Lmicroseconds)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// --- DB ---
	pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
	if err != nil {
		logger.Fatalf("db connect: %v", err)
	}
	defer pool.Close()

	if cfg.RunMigrations {
		if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
			logger.Fatalf("db migrate: %v", err)
		}
	}

	// --- Redis ---
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatalf("redis connect: %v", err)
	}

	// --- wiring ---
	users := user.NewPostgresRepository(pool)
	catalogSvc := catalog.NewService(catalog.NewPostgresRepository(pool), cache.NewRedisCache(redisClient), logger)
	carts := cart.NewPostgresRepository(pool)
	orders := order.NewPostgresRepository(pool, order.PricingConfig{
		TaxRate:               cfg.TaxRate,
		ShippingFee:           cfg.ShippingFee,
		FreeShippingThreshold: cfg.FreeShippingThreshold,
	}, cfg.AllowAnyStatusTransition)
	reviews := review.NewPostgresRepository(pool)
	repairs := repair.NewPostgresRepository(pool)

	uploads, err := upload.NewService(cfg.UploadDir)
	if err != nil {
		logger.Fatalf("upload dir: %v", err)
	}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	r := httpapi.NewRouter(httpapi.Deps{
		Logger:           logger,
		Users:            users,
		Catalog:          catalogSvc,
		Carts:            carts,
		Orders:           orders,
		Reviews:          reviews,
		Repairs:          repairs,
		Uploads:          uploads,
		Tokens:           tokens,
		MaxUploadBytes:   cfg.MaxUploadBytes,
		CORSAllowOrigins: cfg.CORSAllowOrigins,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Printf("http listening on %s", cfg.HTTPAddr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// --- graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Printf("shutdown signal: %s", sig)
	case err := <-errCh:
		logger.Printf("fatal error: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = httpServer.Shutdown(shutdownCtx)
	cancel()

	logger.Printf("shutdown complete")
}
