package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paytaksi/paytaksi-backend/api/routes"
	"github.com/paytaksi/paytaksi-backend/internal/dispatch"
	"github.com/paytaksi/paytaksi-backend/internal/drivers"
	"github.com/paytaksi/paytaksi-backend/internal/notifications"
	"github.com/paytaksi/paytaksi-backend/internal/rides"
	"github.com/paytaksi/paytaksi-backend/internal/wallet"
	"github.com/paytaksi/paytaksi-backend/pkg/config"
	"github.com/paytaksi/paytaksi-backend/pkg/db"
	"github.com/paytaksi/paytaksi-backend/pkg/logger"
	"github.com/paytaksi/paytaksi-backend/pkg/maps"
	"github.com/paytaksi/paytaksi-backend/pkg/metrics"
	"github.com/paytaksi/paytaksi-backend/pkg/migrate"
	"github.com/paytaksi/paytaksi-backend/pkg/outbox"
	"github.com/paytaksi/paytaksi-backend/pkg/pubsub"
	"github.com/paytaksi/paytaksi-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub client", err)
		}
	}()

	var geocoder maps.Geocoder
	if cfg.GoogleMaps.APIKey != "" {
		mapsClient, err := maps.NewClient(cfg.GoogleMaps)
		if err != nil {
			logg.Error(context.Background(), "failed to create maps client", err)
			os.Exit(1)
		}
		geocoder = mapsClient
	} else {
		logg.Warn(context.Background(), "google maps api key not set, falling back to great-circle distances")
	}

	dispatchMetrics := metrics.NewDispatchMetrics(prometheus.DefaultRegisterer)
	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)

	driversRepo := drivers.NewRepository(dbClient.DB())
	offersRepo := dispatch.NewRepository(dbClient.DB())
	ridesRepo := rides.NewRepository(dbClient.DB())
	walletRepo := wallet.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	driversService, err := drivers.NewService(driversRepo, dbClient, outboxService, redisClient, cfg.Dispatch, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create drivers service", err)
		os.Exit(1)
	}

	dispatcher, err := dispatch.NewService(offersRepo, driversRepo, outboxService, cfg.Dispatch, cfg.Wallet, dispatchMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

	walletService, err := wallet.NewService(walletRepo, driversRepo, dbClient, outboxService, dispatchMetrics, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create wallet service", err)
		os.Exit(1)
	}

	ridesService, err := rides.NewService(
		ridesRepo,
		offersRepo,
		driversRepo,
		dispatcher,
		walletService,
		dbClient,
		outboxService,
		geocoder,
		cfg.Pricing,
		cfg.Wallet,
		dispatchMetrics,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create rides service", err)
		os.Exit(1)
	}

	notificationsService, err := notifications.NewService(notificationsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
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
			redisClient,
			pubsubClient,
			prometheus.DefaultGatherer,
			driversService,
			ridesService,
			walletService,
			notificationsService,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
	}

	logg.Info(ctx, "api server shutting down gracefully")
}
