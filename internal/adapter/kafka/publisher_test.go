package kafka

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/turf-weather-collector/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	precip := 2.6
	rec := domain.FeatureRecord{
		Venue:                "Newbury",
		Country:              "UK",
		ReferenceTime:        time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
		PrecipitationCurrent: &precip,
		Rainfall24H:          4.2,
		PredictedGoing:       domain.GoingSoft,
		FetchedAt:            time.Date(2026, 3, 10, 14, 5, 0, 0, time.UTC),
	}

	msg, err := serializeToMessage(rec)
	require.NoError(t, err)

	assert.Equal(t, []byte("Newbury"), msg.Key)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "Newbury", decoded["venue"])
	assert.Equal(t, "Soft", decoded["predicted_going"])
	assert.Equal(t, 4.2, decoded["rainfall_24h"])
	assert.Equal(t, 2.6, decoded["precipitation_current"])

	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "predicted_going", msg.Headers[0].Key)
	assert.Equal(t, []byte("Soft"), msg.Headers[0].Value)
	assert.Equal(t, "fetched_at", msg.Headers[1].Key)
	assert.Equal(t, []byte("2026-03-10T14:05:00Z"), msg.Headers[1].Value)
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher([]string{"kafka-1:9092", "kafka-2:9092"}, "derived-weather-snapshots", nil)
	defer p.Close()

	assert.Equal(t, "derived-weather-snapshots", p.writer.Topic)
	assert.Equal(t, "kafka-1:9092,kafka-2:9092", p.writer.Addr.String())
}
