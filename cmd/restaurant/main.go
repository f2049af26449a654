package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	pkgdb "github.com/Skotchmaster/restaurant/pkg/db"
	"github.com/Skotchmaster/restaurant/pkg/logging"

	"github.com/Skotchmaster/restaurant/internal/bridge"
	"github.com/Skotchmaster/restaurant/internal/cart"
	"github.com/Skotchmaster/restaurant/internal/config"
	"github.com/Skotchmaster/restaurant/internal/directory"
	"github.com/Skotchmaster/restaurant/internal/events"
	"github.com/Skotchmaster/restaurant/internal/httpserver"
	"github.com/Skotchmaster/restaurant/internal/mykafka"
	"github.com/Skotchmaster/restaurant/internal/repo"
	"github.com/Skotchmaster/restaurant/internal/service"
)

func main() {
	cfg := config.Load()
	cfg.MustValidate()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.OpenDriver(initCtx, cfg.DBDriver, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	store := repo.New(db)

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	cache, rdb := directoryCache(runCtx, cfg, logger)
	dir := directory.New(store, cache, cfg.DirectoryTTL, logger.With("component", "directory"))
	go dir.Run(runCtx, cfg.DirectoryRefresh)

	svc := service.NewCoordinator(store, nil)
	svc.ChefCapacity = cfg.ChefCapacity

	// reads go through the coordinator so store outages are retried as
	// ErrBackendUnavailable
	br := bridge.New(svc, bridge.Config{
		Interval:    cfg.PollInterval,
		MaxAttempts: cfg.BridgeMaxAttempts,
		Backoff:     cfg.BridgeBackoff,
	}, logger.With("component", "bridge"))

	publishers := events.Multi{br, dir}
	var prod *mykafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod, err = mykafka.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka producer: %v", err)
		}
		publishers = append(publishers, &events.KafkaPublisher{
			Producer: prod,
			Topic:    cfg.OrderEventsTopic,
			Log:      logger.With("component", "events"),
		})
	}

	svc.Events = publishers

	e := echo.New()
	e.HideBanner = true
	e.Use(httpserver.Common(logger)...)

	httpserver.Register(e, &httpserver.Deps{
		CashierHandler: &httpserver.CashierHTTP{Svc: svc, Directory: dir, Carts: cart.NewSessions()},
		ChefHandler:    &httpserver.ChefHTTP{Svc: svc, Bridge: br},
		WaiterHandler:  &httpserver.WaiterHTTP{Svc: svc, Bridge: br},
		MenuHandler:    &httpserver.MenuHTTP{Directory: dir},
		JWTSecret:      cfg.JWTAccessSecret,
		Ready:          func(ctx context.Context) error { return ping(ctx, db) },
	})

	// no WriteTimeout: order streams stay open
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return runCtx },
	}

	go func() {
		log.Printf("restaurant listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	log.Println("shutting down...")

	// request contexts derive from runCtx, so this also ends open streams
	stopRun()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if prod != nil {
		if err := prod.Close(); err != nil {
			log.Printf("kafka close error: %v", err)
		}
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			log.Printf("redis close error: %v", err)
		}
	}
	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}

	log.Println("restaurant stopped")
}

// directoryCache shares menu and roster copies through redis when REDIS_ADDR
// is set, with an in-process tier in front of it.
func directoryCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (directory.Cache, *redis.Client) {
	mem := directory.NewMemoryCache()
	if cfg.RedisAddr == "" {
		return mem, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	far := directory.NewRedisCache(rdb, cfg.ServiceName+":")

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := far.Ping(pingCtx); err != nil {
		logger.Warn("redis_unavailable", "addr", cfg.RedisAddr, "error", err)
	}

	return &directory.Tiered{
		Near:    mem,
		Far:     far,
		NearTTL: cfg.DirectoryTTL / 2,
		Log:     logger.With("component", "directory"),
	}, rdb
}

func ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
