// Package collector drives one collection run: selecting venues and
// reference times, fetching hourly series, deriving features, and persisting
// snapshots. Entries are processed strictly one at a time; a failure on one
// entry never aborts the rest.
package collector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
	"github.com/couchcryptid/turf-weather-collector/internal/observability"
	"github.com/couchcryptid/turf-weather-collector/internal/schedule"
)

// TestVenueNames is the reduced catalog subset used by test mode.
var TestVenueNames = []string{"Newbury", "Cheltenham", "Churchill Downs"}

// SnapshotStore persists derived observations with keyed upsert semantics.
type SnapshotStore interface {
	UpsertPeriodic(ctx context.Context, obs domain.PeriodicObservation) error
	UpsertRaceLinked(ctx context.Context, obs domain.RaceObservation) error
}

// SnapshotPublisher optionally forwards persisted snapshots to a message
// sink. Publish failures are logged, never counted against the entry; the
// store is the system of record.
type SnapshotPublisher interface {
	Publish(ctx context.Context, rec domain.FeatureRecord) error
}

// Summary is the per-run tally.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
}

// RunStatus describes the most recently completed collection run, exposed on
// the daemon's status endpoint.
type RunStatus struct {
	Mode        string    `json:"mode"`
	CompletedAt time.Time `json:"completed_at"`
	Attempted   int       `json:"attempted"`
	Succeeded   int       `json:"succeeded"`
	Failed      int       `json:"failed"`
}

// AllSucceeded reports whether the run finished without a single failure.
// It drives the process exit code in one-shot mode.
func (s Summary) AllSucceeded() bool {
	return s.Failed == 0
}

// Collector orchestrates collection runs.
type Collector struct {
	provider  domain.SeriesProvider
	store     SnapshotStore
	publisher SnapshotPublisher // nil when publishing is disabled
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	lastRun   atomic.Pointer[RunStatus]
}

// New creates a Collector. Pass a nil publisher to disable snapshot
// publishing.
func New(provider domain.SeriesProvider, store SnapshotStore, publisher SnapshotPublisher,
	logger *slog.Logger, metrics *observability.Metrics, clk clockwork.Clock) *Collector {
	return &Collector{
		provider:  provider,
		store:     store,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		clock:     clk,
	}
}

// CheckReadiness returns nil once at least one collection run has completed.
func (c *Collector) CheckReadiness(_ context.Context) error {
	if c.lastRun.Load() == nil {
		return errors.New("no collection run has completed yet")
	}
	return nil
}

// LastRun returns the tally of the most recently completed run, if any.
func (c *Collector) LastRun() (RunStatus, bool) {
	if s := c.lastRun.Load(); s != nil {
		return *s, true
	}
	return RunStatus{}, false
}

// RunPeriodic collects a snapshot for every given venue, anchored at the
// current wall-clock hour, and upserts keyed by (venue, date, hour). Running
// twice within the same hour replaces the hour's rows rather than duplicating
// them.
func (c *Collector) RunPeriodic(ctx context.Context, venues []domain.Venue) Summary {
	runID := uuid.NewString()
	now := c.clock.Now()
	logger := c.logger.With("run_id", runID, "mode", "periodic")

	logger.Info("collection run started", "venues", len(venues))
	c.beginRun("periodic")
	start := time.Now()

	var summary Summary
	for _, venue := range venues {
		if ctx.Err() != nil {
			logger.Info("run interrupted", "reason", ctx.Err())
			break
		}
		summary.Attempted++

		obs := domain.PeriodicObservation{
			CollectionDate:      now.Format("2006-01-02"),
			CollectionHour:      now.Hour(),
			CollectionTimestamp: now.Format(time.RFC3339),
		}
		err := c.collectPeriodic(ctx, venue, now, obs)
		c.tally(logger, &summary, venue.Name, "", err)
	}

	c.endRun(logger, &summary, start, "periodic")
	return summary
}

// RunScheduled collects one snapshot per upcoming race entry, anchored at the
// race start time, and upserts keyed by (market ID, run timestamp). Entries
// for venues outside the catalog, or with an unparseable start time, are
// skipped with a warning and counted as failures.
func (c *Collector) RunScheduled(ctx context.Context, races []schedule.Race) Summary {
	runID := uuid.NewString()
	now := c.clock.Now()
	runTimestamp := now.Format(time.RFC3339)
	logger := c.logger.With("run_id", runID, "mode", "races")

	upcoming := schedule.FilterUpcoming(races, now)
	logger.Info("collection run started", "scheduled", len(races), "upcoming", len(upcoming))
	c.beginRun("races")
	start := time.Now()

	var summary Summary
	for _, race := range upcoming {
		if ctx.Err() != nil {
			logger.Info("run interrupted", "reason", ctx.Err())
			break
		}
		summary.Attempted++

		err := c.collectRace(ctx, race, runTimestamp)
		c.tally(logger, &summary, race.Venue, race.MarketID, err)
	}

	c.endRun(logger, &summary, start, "races")
	return summary
}

// collectPeriodic fetches, derives, and persists one periodic snapshot.
func (c *Collector) collectPeriodic(ctx context.Context, venue domain.Venue, reference time.Time, obs domain.PeriodicObservation) error {
	rec, err := c.deriveSnapshot(ctx, venue, reference)
	if err != nil {
		return err
	}

	obs.Record = rec
	if err := c.persist(ctx, func() error { return c.store.UpsertPeriodic(ctx, obs) }); err != nil {
		return err
	}

	c.logger.Info("venue collected",
		"venue", venue.Name,
		"temperature", floatOrNA(rec.Temperature), "unit", rec.TemperatureUnit,
		"rainfall_24h", fmt.Sprintf("%.1f", rec.Rainfall24H),
		"soil_moisture", floatOrNA(rec.SoilMoisture0To1Cm),
		"going", rec.PredictedGoing,
	)
	c.publish(ctx, rec)
	return nil
}

// collectRace fetches, derives, and persists one race-linked snapshot.
func (c *Collector) collectRace(ctx context.Context, race schedule.Race, runTimestamp string) error {
	venue, ok := domain.LookupVenue(race.Venue)
	if !ok {
		return fmt.Errorf("%w: %q", domain.ErrVenueUnknown, race.Venue)
	}

	start, err := race.StartTime()
	if err != nil {
		return err
	}

	rec, err := c.deriveSnapshot(ctx, venue, start)
	if err != nil {
		return err
	}

	obs := domain.RaceObservation{
		Record:              rec,
		MarketID:            race.MarketID,
		RaceDate:            race.RaceDate,
		RaceTime:            race.RaceTime,
		CollectionTimestamp: runTimestamp,
	}
	if err := c.persist(ctx, func() error { return c.store.UpsertRaceLinked(ctx, obs) }); err != nil {
		return err
	}

	c.logger.Info("race weather collected",
		"market_id", race.MarketID,
		"venue", race.Venue,
		"race_start", race.RaceDate+"T"+race.RaceTime,
		"going", rec.PredictedGoing,
	)
	c.publish(ctx, rec)
	return nil
}

// deriveSnapshot performs the fetch-and-derive half of an entry. Fetch errors
// are wrapped as ErrFetchFailure; a missing reference hour surfaces as
// ErrTimestampNotFound from the feature engine.
func (c *Collector) deriveSnapshot(ctx context.Context, venue domain.Venue, reference time.Time) (domain.FeatureRecord, error) {
	fetchStart := time.Now()
	series, err := c.provider.FetchHourly(ctx, venue, reference)
	c.metrics.FetchDuration.Observe(time.Since(fetchStart).Seconds())
	if err != nil {
		return domain.FeatureRecord{}, fmt.Errorf("%w: %v", domain.ErrFetchFailure, err)
	}

	return domain.ComputeFeatures(series, venue, reference)
}

// persist runs one upsert, wrapping any error as ErrPersistenceFailure.
func (c *Collector) persist(ctx context.Context, upsert func() error) error {
	persistStart := time.Now()
	err := upsert()
	c.metrics.PersistDuration.Observe(time.Since(persistStart).Seconds())
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrPersistenceFailure, err)
	}
	return nil
}

// publish forwards a persisted snapshot to the optional sink. Best effort.
func (c *Collector) publish(ctx context.Context, rec domain.FeatureRecord) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, rec); err != nil {
		c.logger.Warn("snapshot publish failed", "venue", rec.Venue, "error", err)
	}
}

// tally records one entry outcome in the summary, logs, and metrics.
func (c *Collector) tally(logger *slog.Logger, summary *Summary, venue, marketID string, err error) {
	c.metrics.EntriesAttempted.Inc()
	if err == nil {
		summary.Succeeded++
		c.metrics.EntriesSucceeded.Inc()
		return
	}

	summary.Failed++
	c.metrics.EntriesFailed.WithLabelValues(domain.FailureReason(err)).Inc()
	attrs := []any{"venue", venue, "reason", domain.FailureReason(err), "error", err}
	if marketID != "" {
		attrs = append(attrs, "market_id", marketID)
	}
	logger.Warn("entry skipped", attrs...)
}

func (c *Collector) beginRun(mode string) {
	c.metrics.RunsTotal.WithLabelValues(mode).Inc()
	c.metrics.CollectorRunning.Set(1)
}

func (c *Collector) endRun(logger *slog.Logger, summary *Summary, start time.Time, mode string) {
	c.metrics.CollectorRunning.Set(0)
	c.metrics.RunDuration.Observe(time.Since(start).Seconds())
	c.metrics.LastRunUnixtime.Set(float64(c.clock.Now().Unix()))
	c.lastRun.Store(&RunStatus{
		Mode:        mode,
		CompletedAt: c.clock.Now(),
		Attempted:   summary.Attempted,
		Succeeded:   summary.Succeeded,
		Failed:      summary.Failed,
	})

	logger.Info("collection run finished",
		"attempted", summary.Attempted,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
	)
}

func floatOrNA(p *float64) string {
	if p == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f", *p)
}
