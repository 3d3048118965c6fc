package scenario

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// eventRecord is the on-disk shape of one authored scenario event: the same
// per-kind JSON payload a live Source would parse, plus the time offset
// that places it on the scenario's logical clock.
type eventRecord struct {
	TimeOffsetS float64          `json:"time_offset_s"`
	Kind        observation.Kind `json:"kind"`
	Payload     json.RawMessage  `json:"payload"`
}

// LoadEvents reads an authored scenario file (a JSON array of eventRecord)
// into a time-ordered Event list, reusing the same per-kind parsers a live
// Source uses so a scenario file and a recorded live feed share one format.
func LoadEvents(path string) ([]Event, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: read events %s: %w", path, err)
	}

	var records []eventRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("scenario: parse events %s: %w", path, err)
	}

	events := make([]Event, 0, len(records))
	for i, rec := range records {
		obs, err := parsePayload(rec.Kind, rec.Payload)
		if err != nil {
			return nil, fmt.Errorf("scenario: event %d: %w", i, err)
		}
		events = append(events, Event{TimeOffsetS: rec.TimeOffsetS, InsertIndex: i, Observation: obs})
	}
	return events, nil
}

func parsePayload(kind observation.Kind, raw json.RawMessage) (observation.Observation, error) {
	now := time.Now()
	switch kind {
	case observation.KindGauge:
		return observation.ParseGaugeJSON(raw, now)
	case observation.KindWeather:
		return observation.ParseWeatherJSON(raw, now)
	case observation.KindRaster:
		return observation.ParseRasterJSON(raw, now)
	case observation.KindCrowd:
		return observation.ParseCrowdJSON(raw, now)
	default:
		return observation.Observation{}, fmt.Errorf("unknown observation kind %q", kind)
	}
}
