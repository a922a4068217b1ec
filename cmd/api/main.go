package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/angelmondragon/vineinventory-viewer/api/controllers"
	"github.com/angelmondragon/vineinventory-viewer/api/middleware"
	"github.com/angelmondragon/vineinventory-viewer/api/responses"
	"github.com/angelmondragon/vineinventory-viewer/api/routes"
	"github.com/angelmondragon/vineinventory-viewer/internal/cron"
	"github.com/angelmondragon/vineinventory-viewer/internal/inventory"
	"github.com/angelmondragon/vineinventory-viewer/internal/pagecache"
	"github.com/angelmondragon/vineinventory-viewer/internal/viewer"
	"github.com/angelmondragon/vineinventory-viewer/pkg/auth"
	"github.com/angelmondragon/vineinventory-viewer/pkg/bot"
	"github.com/angelmondragon/vineinventory-viewer/pkg/config"
	"github.com/angelmondragon/vineinventory-viewer/pkg/db"
	"github.com/angelmondragon/vineinventory-viewer/pkg/instance"
	"github.com/angelmondragon/vineinventory-viewer/pkg/logger"
	"github.com/angelmondragon/vineinventory-viewer/pkg/metrics"
	"github.com/angelmondragon/vineinventory-viewer/pkg/migrate"
	"github.com/angelmondragon/vineinventory-viewer/pkg/processor"
	"github.com/angelmondragon/vineinventory-viewer/pkg/redis"
	"github.com/angelmondragon/vineinventory-viewer/pkg/retry"
)

const shutdownTimeout = 15 * time.Second

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
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	bootCtx := context.Background()
	responses.ExposeInternalErrors(cfg.App.ExposeInternalErrors)

	dbClient, err := db.New(bootCtx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, dbClient.Close())
	}()

	if err := migrate.MaybeRunDev(bootCtx, cfg, logg, dbClient); err != nil {
		return err
	}

	var redisClient *redis.Client
	var redisPinger controllers.Pinger
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(bootCtx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		redisPinger = redisClient
		defer func() {
			err = multierr.Append(err, redisClient.Close())
		}()
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	cacheMetrics := metrics.NewPageCacheMetrics(registry)

	cache, err := newPageCache(cfg, redisClient, cacheMetrics)
	if err != nil {
		return err
	}

	inventorySvc, err := inventory.NewService(inventory.ServiceParams{
		Repo:   inventory.NewRepository(dbClient.DB()),
		Logger: logg,
	})
	if err != nil {
		return err
	}

	source, err := newSnapshotSource(cfg, logg, inventorySvc)
	if err != nil {
		return err
	}

	renderer, err := viewer.NewRenderer(cfg.Viewer.TemplatePath)
	if err != nil {
		return err
	}

	var notifier viewer.Notifier
	if cfg.Services.BotURL != "" {
		botClient, err := bot.NewClient(cfg.Services.BotURL, bot.WithTimeout(cfg.Services.BotTimeout))
		if err != nil {
			return err
		}
		notifier = botClient
	}

	viewerSvc, err := viewer.NewService(viewer.ServiceParams{
		Source:        source,
		Cache:         cache,
		Renderer:      renderer,
		Notifier:      notifier,
		Logger:        logg,
		ViewerURL:     cfg.Services.ViewerURL,
		APIBase:       cfg.Viewer.APIBase,
		NotifyTimeout: cfg.Services.BotTimeout,
	})
	if err != nil {
		return err
	}
	defer viewerSvc.Wait()

	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst, logg)

	sweepJob, err := pagecache.NewSweepJob(cache, logg)
	if err != nil {
		return err
	}
	cronSvc, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(sweepJob, middleware.NewPruneJob(limiter)),
		Metrics:  metrics.NewCronJobMetrics(registry),
		Interval: cfg.Cache.SweepInterval,
	})
	if err != nil {
		return err
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Dependencies{
			Config:      cfg,
			Logger:      logg,
			DB:          dbClient,
			Redis:       redisPinger,
			Tokens:      auth.NewValidator(cfg.JWT),
			Inventory:   inventorySvc,
			Viewer:      viewerSvc,
			RateLimiter: limiter,
			HTTPMetrics: metrics.NewHTTPMetrics(registry),
			Gatherer:    registry,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":             cfg.App.Env,
		"addr":            addr,
		"instance":        instance.GetID(),
		"cache_backend":   cfg.Cache.Backend,
		"snapshot_source": cfg.Viewer.SnapshotSource,
	})

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logg.Info(groupCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		return cronSvc.Run(groupCtx)
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(groupCtx), shutdownTimeout)
		defer cancel()
		logg.Info(groupCtx, "api server shutting down gracefully")
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}

func newPageCache(cfg *config.Config, redisClient *redis.Client, m *metrics.PageCacheMetrics) (pagecache.Cache, error) {
	if strings.EqualFold(cfg.Cache.Backend, config.CacheBackendRedis) {
		return pagecache.NewRedis(redisClient, cfg.Cache.TTL, m)
	}
	return pagecache.NewMemory(pagecache.MemoryOptions{
		TTL:      cfg.Cache.TTL,
		Capacity: cfg.Cache.Capacity,
		Metrics:  m,
	}), nil
}

func newSnapshotSource(cfg *config.Config, logg *logger.Logger, inventorySvc inventory.Service) (viewer.SnapshotSource, error) {
	if !cfg.Viewer.UseProcessor() {
		return inventorySvc, nil
	}
	client, err := processor.NewClient(cfg.Services.ProcessorURL,
		processor.WithHTTPClient(&http.Client{Timeout: cfg.Services.ProcessorTimeout}),
		processor.WithRetryPolicy(retry.Policy{
			Attempts: cfg.Retry.Attempts,
			Delay:    cfg.Retry.Delay,
			MaxDelay: cfg.Retry.MaxDelay,
		}),
		processor.WithLogger(logg),
	)
	if err != nil {
		return nil, err
	}
	return viewer.NewProcessorSource(client), nil
}
