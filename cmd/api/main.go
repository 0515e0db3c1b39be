package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmcastellano/storefront-backend/api/routes"
	"github.com/jmcastellano/storefront-backend/internal/catalog"
	"github.com/jmcastellano/storefront-backend/internal/products"
	"github.com/jmcastellano/storefront-backend/internal/taxonomy"
	"github.com/jmcastellano/storefront-backend/pkg/config"
	"github.com/jmcastellano/storefront-backend/pkg/db"
	"github.com/jmcastellano/storefront-backend/pkg/logger"
	"github.com/jmcastellano/storefront-backend/pkg/metrics"
	"github.com/jmcastellano/storefront-backend/pkg/migrate"
	"github.com/jmcastellano/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	// Redis is optional: without it the search result cache is disabled and
	// every request hits the database.
	var (
		redisClient *redis.Client
		redisPinger redis.Pinger
		resultCache catalog.ResultCache
	)
	if cfg.Redis.URL != "" || cfg.Redis.Address != "" {
		redisClient, err = redis.New(context.Background(), cfg.Redis)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		redisPinger = redisClient
		if cfg.Cache.Enabled {
			resultCache = catalog.NewRedisResultCache(redisClient, cfg.Cache.ResultTTL, logg)
		}
	} else {
		logg.Warn(context.Background(), "redis not configured, search result cache disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	searchMetrics := metrics.NewSearchMetrics(registry)

	catalogService := catalog.NewService(catalog.NewRepository(dbClient.DB()), resultCache, searchMetrics, logg)

	taxonomyService, err := taxonomy.NewService(taxonomy.NewRepository(dbClient.DB()), catalogService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create taxonomy service", err)
		os.Exit(1)
	}

	productService, err := products.NewService(
		products.NewRepository(dbClient.DB()),
		dbClient,
		catalogService,
		catalogService,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisPinger,
			catalogService,
			productService,
			taxonomyService,
			promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
