package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diagnosis/carshop-bookings/internal/http/router"
	"github.com/diagnosis/carshop-bookings/internal/repo"
	"github.com/diagnosis/carshop-bookings/internal/repo/memory"
	"github.com/diagnosis/carshop-bookings/internal/repo/mongodb"
	"github.com/diagnosis/carshop-bookings/internal/repo/postgres"
	redisrepo "github.com/diagnosis/carshop-bookings/internal/repo/redis"
	"github.com/diagnosis/carshop-bookings/pkg/auth"
	"github.com/diagnosis/carshop-bookings/pkg/config"
	"github.com/diagnosis/carshop-bookings/pkg/database"
	"github.com/diagnosis/carshop-bookings/pkg/events"
	"github.com/diagnosis/carshop-bookings/pkg/logger"
	mw "github.com/diagnosis/carshop-bookings/pkg/middleware"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)

	ctx := context.Background()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to open store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	// An unreachable store is not fatal; requests fail until it comes back.
	if err := store.Ping(ctx); err != nil {
		logger.Error("Store ping failed, continuing", "driver", cfg.Store.Driver, "error", err)
	} else {
		logger.Info("Connected to store", "driver", cfg.Store.Driver)
	}

	publisher := openPublisher(cfg)
	redisClient, idem := openIdempotency(ctx, cfg)

	handler := router.New(router.Options{
		Store:          store,
		Issuer:         auth.NewIssuer(cfg.Auth.TokenSecret, cfg.Auth.TokenTTL),
		Events:         publisher,
		Idempotency:    idem,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Production:     cfg.IsProduction(),
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down carshop API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		if err := store.Close(ctx); err != nil {
			logger.Error("Store close error", "error", err)
		}
		if err := publisher.Close(); err != nil {
			logger.Error("Event publisher close error", "error", err)
		}
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Error("Redis close error", "error", err)
			}
		}
	}()

	logger.Info("Starting carshop API", "port", cfg.Server.Port, "env", cfg.Env)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	<-done
}

func openStore(ctx context.Context, cfg *config.Config) (repo.Store, error) {
	switch cfg.Store.Driver {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; data is lost on restart")
		return memory.NewStore(), nil
	case config.StorePostgres:
		pool, err := database.Connect(ctx, cfg.Store.PostgresURL, database.PoolOptions{
			MinConns:       cfg.Store.MinConns,
			MaxConns:       cfg.Store.MaxConns,
			ConnectTimeout: cfg.Store.Timeout,
		})
		if err != nil {
			return nil, err
		}
		store := postgres.NewStore(pool, cfg.Store.Timeout)
		if err := store.EnsureSchema(ctx); err != nil {
			logger.Error("Failed to ensure postgres schema", "error", err)
		}
		return store, nil
	default:
		client, err := database.ConnectMongo(ctx, cfg.Store.MongoURI)
		if err != nil {
			return nil, err
		}
		return mongodb.NewStore(client, cfg.Store.MongoDB, cfg.Store.Timeout), nil
	}
}

func openPublisher(cfg *config.Config) events.Publisher {
	if cfg.NATS.URL == "" {
		return events.Nop{}
	}
	p, err := events.NewNATSPublisher(cfg.NATS.URL)
	if err != nil {
		logger.Error("Event publishing disabled", "error", err)
		return events.Nop{}
	}
	logger.Info("Publishing booking events", "nats", cfg.NATS.URL)
	return p
}

func openIdempotency(ctx context.Context, cfg *config.Config) (*redis.Client, mw.IdempotencyStore) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	client, err := database.NewRedisClient(cfg.Redis.URL)
	if err != nil {
		logger.Error("Idempotency keys disabled", "error", err)
		return nil, nil
	}
	if err := database.PingRedis(ctx, client); err != nil {
		logger.Error("Idempotency keys disabled", "error", err)
		_ = client.Close()
		return nil, nil
	}
	return client, redisrepo.NewIdempotencyRepo(client)
}
