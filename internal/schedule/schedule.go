// Package schedule loads the externally supplied race schedule and selects
// the entries due for a weather update.
package schedule

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// upcomingWindow is how far ahead of now a race may start and still receive
// weather updates on this run.
const upcomingWindow = 48 * time.Hour

// Race is one schedule entry. Venue is a foreign key into the venue catalog;
// unknown venues are skipped by the collector, not here.
type Race struct {
	MarketID string `json:"market_id"`
	Venue    string `json:"venue"`
	RaceDate string `json:"race_date"` // YYYY-MM-DD
	RaceTime string `json:"race_time"` // HH:MM local
}

// StartTime parses the race's local start time.
func (r Race) StartTime() (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04", r.RaceDate+"T"+r.RaceTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse race start %q %q: %w", r.RaceDate, r.RaceTime, err)
	}
	return t, nil
}

// Load reads a JSON schedule file: a flat array of race entries.
func Load(path string) ([]Race, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule: %w", err)
	}
	var races []Race
	if err := json.Unmarshal(data, &races); err != nil {
		return nil, fmt.Errorf("parse schedule: %w", err)
	}
	return races, nil
}

// Demo returns a minimal built-in schedule for smoke-testing when no schedule
// file is available.
func Demo(now time.Time) []Race {
	tomorrow := now.AddDate(0, 0, 1).Format("2006-01-02")
	return []Race{
		{MarketID: "demo.001", Venue: "Newbury", RaceDate: tomorrow, RaceTime: "14:30"},
		{MarketID: "demo.002", Venue: "Kempton Park", RaceDate: tomorrow, RaceTime: "15:00"},
	}
}

// FilterUpcoming keeps races starting within [now, now+48h], both bounds
// inclusive. Entries whose start time cannot be parsed are kept: the window
// check cannot classify them, and the collector reports them as failed
// entries rather than losing them silently.
func FilterUpcoming(races []Race, now time.Time) []Race {
	cutoff := now.Add(upcomingWindow)
	upcoming := make([]Race, 0, len(races))
	for _, r := range races {
		start, err := r.StartTime()
		if err != nil {
			upcoming = append(upcoming, r)
			continue
		}
		if !start.Before(now) && !start.After(cutoff) {
			upcoming = append(upcoming, r)
		}
	}
	return upcoming
}
