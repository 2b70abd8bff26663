package domain

import "errors"

// Per-entry failure kinds. Each is scoped to a single venue or race entry and
// is reported in the run summary; none aborts the remaining entries.
var (
	// ErrVenueUnknown marks a schedule entry whose venue is not in the catalog.
	ErrVenueUnknown = errors.New("venue not in catalog")

	// ErrFetchFailure marks a provider error, timeout, or non-success status.
	ErrFetchFailure = errors.New("hourly series fetch failed")

	// ErrTimestampNotFound marks a reference hour absent from the fetched series.
	ErrTimestampNotFound = errors.New("reference hour not in series")

	// ErrPersistenceFailure marks a failed upsert; prior committed rows are unaffected.
	ErrPersistenceFailure = errors.New("snapshot persistence failed")
)

// FailureReason maps an entry error onto its summary/metric label.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrVenueUnknown):
		return "venue_unknown"
	case errors.Is(err, ErrFetchFailure):
		return "fetch"
	case errors.Is(err, ErrTimestampNotFound):
		return "timestamp_not_found"
	case errors.Is(err, ErrPersistenceFailure):
		return "persistence"
	default:
		return "other"
	}
}
