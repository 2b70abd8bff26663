// Package sqlite persists derived weather snapshots with keyed upsert
// semantics. Two schemas share one database file: periodic venue snapshots
// keyed by (venue, collection_date, collection_hour) and race-linked
// snapshots keyed by (market_id, collection_timestamp).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
	_ "modernc.org/sqlite"
)

// Schema for both snapshot tables. Applied on Open.
const Schema = `
CREATE TABLE IF NOT EXISTS venue_daily_weather (
	id INTEGER PRIMARY KEY AUTOINCREMENT,

	venue TEXT NOT NULL,
	country TEXT NOT NULL,
	collection_date TEXT NOT NULL,
	collection_hour INTEGER NOT NULL,
	collection_timestamp TEXT NOT NULL,

	temperature REAL,
	apparent_temperature REAL,
	precipitation_current REAL,
	rain_current REAL,
	wind_speed REAL,
	wind_direction REAL,
	wind_gusts REAL,
	humidity REAL,
	dew_point REAL,
	pressure REAL,
	cloud_cover REAL,
	visibility REAL,
	weather_code INTEGER,
	precipitation_probability REAL,

	soil_moisture_0_1cm REAL,
	soil_moisture_1_3cm REAL,
	soil_moisture_3_9cm REAL,
	soil_temperature_0cm REAL,
	soil_temperature_6cm REAL,
	evapotranspiration REAL,

	rainfall_1h REAL,
	rainfall_3h REAL,
	rainfall_6h REAL,
	rainfall_24h REAL,
	rainfall_7d REAL,

	ground_saturation_index REAL,
	net_moisture_24h REAL,
	hours_since_rain INTEGER,
	predicted_going TEXT,
	track_drying INTEGER,
	track_wetting INTEGER,

	weather_data_quality TEXT,
	weather_fetched_at TEXT NOT NULL,
	temperature_unit TEXT,
	wind_speed_unit TEXT,

	UNIQUE(venue, collection_date, collection_hour)
);
CREATE INDEX IF NOT EXISTS idx_venue_daily_weather_venue_date
	ON venue_daily_weather(venue, collection_date);
CREATE INDEX IF NOT EXISTS idx_venue_daily_weather_date
	ON venue_daily_weather(collection_date);
CREATE INDEX IF NOT EXISTS idx_venue_daily_weather_timestamp
	ON venue_daily_weather(collection_timestamp);

CREATE TABLE IF NOT EXISTS weather_updates (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	market_id TEXT NOT NULL,
	venue TEXT NOT NULL,
	race_date TEXT NOT NULL,
	race_time TEXT NOT NULL,

	temperature REAL,
	apparent_temperature REAL,
	precipitation_current REAL,
	rain_current REAL,
	wind_speed REAL,
	wind_direction REAL,
	wind_gusts REAL,
	humidity REAL,
	dew_point REAL,
	pressure REAL,
	cloud_cover REAL,
	visibility REAL,
	weather_code INTEGER,
	precipitation_probability REAL,

	soil_moisture_0_1cm REAL,
	soil_moisture_1_3cm REAL,
	soil_moisture_3_9cm REAL,
	soil_temperature_0cm REAL,
	soil_temperature_6cm REAL,
	evapotranspiration REAL,

	rainfall_1h REAL,
	rainfall_3h REAL,
	rainfall_6h REAL,
	rainfall_24h REAL,
	rainfall_7d REAL,

	ground_saturation_index REAL,
	net_moisture_24h REAL,
	hours_since_rain INTEGER,
	predicted_going TEXT,
	track_drying INTEGER,
	track_wetting INTEGER,

	weather_data_quality TEXT,
	weather_fetched_at TEXT NOT NULL,
	temperature_unit TEXT,
	wind_speed_unit TEXT,
	collection_timestamp TEXT NOT NULL,

	UNIQUE(market_id, collection_timestamp)
);
CREATE INDEX IF NOT EXISTS idx_weather_market_time
	ON weather_updates(market_id, collection_timestamp);
`

// measurementColumns are the per-snapshot columns shared by both tables, in
// schema order.
var measurementColumns = []string{
	"temperature", "apparent_temperature", "precipitation_current", "rain_current",
	"wind_speed", "wind_direction", "wind_gusts", "humidity", "dew_point",
	"pressure", "cloud_cover", "visibility", "weather_code", "precipitation_probability",
	"soil_moisture_0_1cm", "soil_moisture_1_3cm", "soil_moisture_3_9cm",
	"soil_temperature_0cm", "soil_temperature_6cm", "evapotranspiration",
	"rainfall_1h", "rainfall_3h", "rainfall_6h", "rainfall_24h", "rainfall_7d",
	"ground_saturation_index", "net_moisture_24h", "hours_since_rain",
	"predicted_going", "track_drying", "track_wetting",
	"weather_data_quality", "weather_fetched_at", "temperature_unit", "wind_speed_unit",
}

// Stats summarizes the periodic table, reported after each sweep.
type Stats struct {
	TotalRecords int
	UniqueVenues int
	EarliestDate string
	LatestDate   string
}

// Store is a keyed upsert store backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

// Open creates the database file (and its parent directory) if needed and
// applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertPeriodic inserts or fully replaces the row keyed by
// (venue, collection_date, collection_hour). Replacement rewrites every
// column; no field from a prior row survives.
func (s *Store) UpsertPeriodic(ctx context.Context, snap domain.PeriodicObservation) error {
	keyCols := []string{"venue", "country", "collection_date", "collection_hour", "collection_timestamp"}
	query := upsertSQL("venue_daily_weather",
		append(keyCols, measurementColumns...),
		[]string{"venue", "collection_date", "collection_hour"},
	)

	args := append([]any{
		snap.Record.Venue,
		snap.Record.Country,
		snap.CollectionDate,
		snap.CollectionHour,
		snap.CollectionTimestamp,
	}, measurementArgs(snap.Record)...)

	return s.write(ctx, query, args)
}

// UpsertRaceLinked inserts or fully replaces the row keyed by
// (market_id, collection_timestamp).
func (s *Store) UpsertRaceLinked(ctx context.Context, snap domain.RaceObservation) error {
	keyCols := []string{"market_id", "venue", "race_date", "race_time"}
	cols := append(keyCols, measurementColumns...)
	cols = append(cols, "collection_timestamp")
	query := upsertSQL("weather_updates", cols,
		[]string{"market_id", "collection_timestamp"},
	)

	args := append([]any{
		snap.MarketID,
		snap.Record.Venue,
		snap.RaceDate,
		snap.RaceTime,
	}, measurementArgs(snap.Record)...)
	args = append(args, snap.CollectionTimestamp)

	return s.write(ctx, query, args)
}

// write runs one upsert as its own scoped unit of work. A failure rolls back
// that single write and leaves previously committed rows untouched.
func (s *Store) write(ctx context.Context, query string, args []any) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		tx.Rollback()
		return fmt.Errorf("upsert: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Stats reports row counts and the covered date range of the periodic table.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	row := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT venue),
			COALESCE(MIN(collection_date), ''), COALESCE(MAX(collection_date), '')
		FROM venue_daily_weather`)
	if err := row.Scan(&st.TotalRecords, &st.UniqueVenues, &st.EarliestDate, &st.LatestDate); err != nil {
		return Stats{}, fmt.Errorf("query stats: %w", err)
	}
	return st, nil
}

// upsertSQL builds an INSERT ... ON CONFLICT(key) DO UPDATE SET statement
// that replaces every non-key column from the excluded row.
func upsertSQL(table string, cols, key []string) string {
	keySet := make(map[string]bool, len(key))
	for _, k := range key {
		keySet[k] = true
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	updates := make([]string, 0, len(cols))
	for _, c := range cols {
		if keySet[c] {
			continue
		}
		updates = append(updates, c+" = excluded."+c)
	}

	return fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT(%s) DO UPDATE SET %s",
		table,
		strings.Join(cols, ", "),
		placeholders,
		strings.Join(key, ", "),
		strings.Join(updates, ", "),
	)
}

// measurementArgs binds a FeatureRecord to measurementColumns order. Nil
// pointers become SQL NULL.
func measurementArgs(rec domain.FeatureRecord) []any {
	return []any{
		rec.Temperature, rec.ApparentTemperature, rec.PrecipitationCurrent, rec.RainCurrent,
		rec.WindSpeed, rec.WindDirection, rec.WindGusts, rec.Humidity, rec.DewPoint,
		rec.Pressure, rec.CloudCover, rec.Visibility, weatherCodeArg(rec.WeatherCode), rec.PrecipitationProbability,
		rec.SoilMoisture0To1Cm, rec.SoilMoisture1To3Cm, rec.SoilMoisture3To9Cm,
		rec.SoilTemperature0Cm, rec.SoilTemperature6Cm, rec.Evapotranspiration,
		rec.Rainfall1H, rec.Rainfall3H, rec.Rainfall6H, rec.Rainfall24H, rec.Rainfall7D,
		rec.GroundSaturationIndex, rec.NetMoisture24H, rec.HoursSinceRain,
		string(rec.PredictedGoing), boolArg(rec.TrackDrying), boolArg(rec.TrackWetting),
		rec.DataQuality, rec.FetchedAt.Format(time.RFC3339),
		rec.TemperatureUnit, rec.WindSpeedUnit,
	}
}

// weatherCodeArg narrows the nullable float weather code to the INTEGER
// column type.
func weatherCodeArg(code *float64) any {
	if code == nil {
		return nil
	}
	return int64(*code)
}

func boolArg(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
