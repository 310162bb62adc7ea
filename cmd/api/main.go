package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"

	"teakspice-storefront/internal/api"
	"teakspice-storefront/internal/auth"
	"teakspice-storefront/internal/cache"
	"teakspice-storefront/internal/config"
	"teakspice-storefront/internal/database"
	"teakspice-storefront/internal/events"
	"teakspice-storefront/internal/jobs"
	"teakspice-storefront/internal/logging"
	"teakspice-storefront/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx := context.Background()

	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		logger.Error("connect to mongo", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("connected to mongo", slog.String("database", cfg.Mongo.Database))

	if err := database.EnsureIndexes(ctx, db); err != nil {
		logger.Error("ensure indexes", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var productCache *cache.Cache
	if cfg.Redis.Addr != "" {
		productCache, err = cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		if err != nil {
			logger.Warn("redis unavailable, product cache disabled", slog.String("error", err.Error()))
		}
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.Kafka.Brokers) > 0 {
		k, err := events.NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn("kafka unavailable, order events disabled", slog.String("error", err.Error()))
		} else {
			publisher = k
		}
	}

	categories := store.NewCategories(db)
	products := store.NewProducts(db)
	users := store.NewUsers(db)
	wishlists := store.NewWishlists(db)
	orders, err := store.NewOrders(db)
	if err != nil {
		logger.Error("init orders store", slog.String("error", err.Error()))
		os.Exit(1)
	}

	scheduler := jobs.NewScheduler(orders, products, logger)
	if err := scheduler.Start(cfg.Jobs.SoldCounterSpec); err != nil {
		logger.Error("start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	server := api.NewServer(api.Options{
		Stores: api.Stores{
			Categories: categories,
			Products:   products,
			Orders:     orders,
			Users:      users,
			Wishlists:  wishlists,
		},
		Auth:   auth.NewService(users, tokens, cfg.Server.PublicURL, logger),
		Tokens: tokens,
		Cache:  productCache,
		Events: publisher,
		Logger: logger,
		Ping: func(ctx context.Context) error {
			return client.Ping(ctx, nil)
		},
	})

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server.Router(cfg.Server.AllowOrigins),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("server starting", slog.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.Server.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			// one operation so teardown runs in order: stop taking requests,
			// then release the backends they use
			"storefront": func(ctx context.Context) error {
				err := httpServer.Shutdown(ctx)
				scheduler.Stop()
				server.Drain()
				publisher.Close()
				if cerr := productCache.Close(); cerr != nil {
					logger.Warn("close redis", slog.String("error", cerr.Error()))
				}
				if derr := client.Disconnect(ctx); err == nil {
					err = derr
				}
				return err
			},
		},
	)

	exitCode := <-wait
	logger.Info("server exited", slog.Int("code", exitCode))
	os.Exit(exitCode)
}
