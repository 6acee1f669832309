package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/forecast-bot/internal/adapter/gsi"
	"github.com/couchcryptid/forecast-bot/internal/adapter/httpadapter"
	kafkaadapter "github.com/couchcryptid/forecast-bot/internal/adapter/kafka"
	"github.com/couchcryptid/forecast-bot/internal/adapter/line"
	"github.com/couchcryptid/forecast-bot/internal/adapter/muni"
	"github.com/couchcryptid/forecast-bot/internal/adapter/weather"
	"github.com/couchcryptid/forecast-bot/internal/config"
	"github.com/couchcryptid/forecast-bot/internal/observability"
	"github.com/couchcryptid/forecast-bot/internal/pipeline"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
)

func main() {
	envFile := sharedcfg.EnvOrDefault("ENV_FILE_PATH", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to load env file", "path", envFile, "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}
	defer observability.ShutdownTracing(shutdownTracing, logger)

	directory, err := muni.Load(cfg.MuniDirectoryPath)
	if err != nil {
		logger.Error("failed to load municipality directory", "error", err)
		os.Exit(1)
	}
	metrics.DirectoryRecords.Set(float64(directory.Len()))
	logger.Info("municipality directory loaded", "records", directory.Len())
	muni.WarnIfPartial(logger, cfg.MuniDirectoryPath, directory)

	gsiClient := gsi.NewClient(cfg.GSIReverseURL, cfg.GSISearchURL, cfg.UpstreamTimeout, directory, metrics, logger)
	geocoder := gsi.NewCachedReverseGeocoder(gsiClient, cfg.ReverseCacheSize, metrics)

	weatherClient := weather.NewClient(cfg.WeatherCatalogURL, cfg.WeatherForecastURL, cfg.UpstreamTimeout, metrics, logger)
	catalog := weather.NewCachedCatalog(weatherClient, cfg.CatalogTTL, clockwork.NewRealClock(), metrics, logger)

	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("outcome events enabled", "topic", cfg.KafkaOutcomeTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("outcome events disabled")
	}

	p := pipeline.New(gsiClient, geocoder, weather.NewAreaResolver(catalog, logger), weatherClient, publisher, logger, metrics)

	var webhook http.Handler
	if cfg.LineEnabled {
		replier := line.NewClient(cfg.LineAPIURL, cfg.LineChannelAccessToken, cfg.UpstreamTimeout, metrics, logger)
		webhook = line.NewHandler(cfg.LineChannelSecret, p, replier, logger)
		logger.Info("chat webhook enabled", "path", "/callback")
	} else {
		logger.Info("chat webhook disabled")
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, catalog, p, webhook, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Warm the area catalog; readiness follows the first successful load.
	go func() {
		if err := catalog.WarmUntilReady(ctx); err != nil {
			logger.Info("area catalog warm-up stopped", "reason", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
