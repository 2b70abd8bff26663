package domain

// PeriodicObservation is a snapshot addressed by its natural periodic key
// (venue, collection date, collection hour). Upserting an existing key fully
// replaces the stored row.
type PeriodicObservation struct {
	Record              FeatureRecord
	CollectionDate      string // YYYY-MM-DD
	CollectionHour      int    // 0-23
	CollectionTimestamp string // RFC 3339 run timestamp
}

// RaceObservation is a snapshot addressed by (market ID, run collection
// timestamp), so repeated runs before the same race stack up as separate
// rows while a re-run of the same collection replaces its own row.
type RaceObservation struct {
	Record              FeatureRecord
	MarketID            string
	RaceDate            string // YYYY-MM-DD
	RaceTime            string // HH:MM local
	CollectionTimestamp string // RFC 3339 run timestamp
}
