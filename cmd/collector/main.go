package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	httpadapter "github.com/couchcryptid/turf-weather-collector/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/turf-weather-collector/internal/adapter/kafka"
	"github.com/couchcryptid/turf-weather-collector/internal/adapter/openmeteo"
	"github.com/couchcryptid/turf-weather-collector/internal/adapter/sqlite"
	"github.com/couchcryptid/turf-weather-collector/internal/collector"
	"github.com/couchcryptid/turf-weather-collector/internal/config"
	"github.com/couchcryptid/turf-weather-collector/internal/domain"
	"github.com/couchcryptid/turf-weather-collector/internal/observability"
	"github.com/couchcryptid/turf-weather-collector/internal/schedule"
)

func main() {
	os.Exit(run())
}

// run holds the process body so deferred cleanup executes before the exit
// code is handed to os.Exit.
func run() int {
	mode := flag.String("mode", "periodic", "collection mode: periodic (all venues) or races (schedule lookahead)")
	testMode := flag.Bool("test", false, "test mode: collect for a reduced venue subset")
	serve := flag.Bool("serve", false, "daemon mode: run periodic sweeps on a cadence with health/metrics endpoints")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return 1
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "path", cfg.DBPath, "error", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("database close error", "error", err)
		}
	}()
	logger.Info("database ready", "path", cfg.DBPath)

	provider := openmeteo.NewClient(cfg.OpenMeteoBaseURL, cfg.FetchTimeout, logger)

	// Snapshot publishing is feature-flagged via KAFKA_BROKERS.
	var publisher collector.SnapshotPublisher
	if cfg.KafkaEnabled() {
		kafkaPub := kafkaadapter.NewPublisher(cfg.KafkaBrokers, cfg.KafkaSnapshotTopic, logger)
		defer func() {
			if err := kafkaPub.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}()
		publisher = kafkaPub
		logger.Info("snapshot publishing enabled", "topic", cfg.KafkaSnapshotTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	c := collector.New(provider, store, publisher, logger, metrics, clockwork.NewRealClock())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *serve {
		runDaemon(ctx, cfg, c, store, logger, *testMode)
		return 0
	}
	return runOnce(ctx, cfg, c, store, logger, *mode, *testMode)
}

// runOnce executes a single collection run. Exit code 0 means every entry
// succeeded; 1 means at least one failed or the run could not start.
func runOnce(ctx context.Context, cfg *config.Config, c *collector.Collector, store *sqlite.Store, logger *slog.Logger, mode string, testMode bool) int {
	var summary collector.Summary

	switch mode {
	case "periodic":
		summary = c.RunPeriodic(ctx, selectVenues(logger, testMode))
		logStats(ctx, store, logger)
	case "races":
		races, err := loadSchedule(cfg.SchedulePath, logger)
		if err != nil {
			logger.Error("failed to load schedule", "path", cfg.SchedulePath, "error", err)
			return 1
		}
		summary = c.RunScheduled(ctx, races)
	default:
		logger.Error("unknown mode", "mode", mode)
		return 1
	}

	if !summary.AllSucceeded() {
		return 1
	}
	return 0
}

// runDaemon runs periodic sweeps on the configured cadence with the HTTP
// operational surface, until the context is cancelled.
func runDaemon(ctx context.Context, cfg *config.Config, c *collector.Collector, store *sqlite.Store, logger *slog.Logger, testMode bool) {
	srv := httpadapter.NewServer(cfg.HTTPAddr, c, store, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("daemon started", "interval", cfg.CollectInterval)
	ticker := time.NewTicker(cfg.CollectInterval)
	defer ticker.Stop()

	// First sweep immediately, then on the ticker.
	c.RunPeriodic(ctx, selectVenues(logger, testMode))
	logStats(ctx, store, logger)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
			logger.Info("shutdown complete")
			return
		case <-ticker.C:
			c.RunPeriodic(ctx, selectVenues(logger, testMode))
			logStats(ctx, store, logger)
		}
	}
}

// selectVenues returns the full catalog, or the fixed test subset in test mode.
func selectVenues(logger *slog.Logger, testMode bool) []domain.Venue {
	if !testMode {
		return domain.Venues()
	}

	logger.Info("test mode: collecting reduced venue subset", "venues", collector.TestVenueNames)
	venues := make([]domain.Venue, 0, len(collector.TestVenueNames))
	for _, name := range collector.TestVenueNames {
		if v, ok := domain.LookupVenue(name); ok {
			venues = append(venues, v)
		}
	}
	return venues
}

// loadSchedule reads the race schedule file, substituting the built-in demo
// schedule when the file is missing. Any other load error (unreadable file,
// corrupt JSON) is fatal for the run.
func loadSchedule(path string, logger *slog.Logger) ([]schedule.Race, error) {
	races, err := schedule.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("schedule not found, using demo schedule", "path", path)
			return schedule.Demo(time.Now()), nil
		}
		return nil, err
	}
	logger.Info("schedule loaded", "path", path, "races", len(races))
	return races, nil
}

// logStats reports database totals after a periodic sweep.
func logStats(ctx context.Context, store *sqlite.Store, logger *slog.Logger) {
	stats, err := store.Stats(ctx)
	if err != nil {
		logger.Warn("failed to read database stats", "error", err)
		return
	}
	logger.Info("database statistics",
		"total_records", stats.TotalRecords,
		"unique_venues", stats.UniqueVenues,
		"earliest_date", stats.EarliestDate,
		"latest_date", stats.LatestDate,
	)
}
