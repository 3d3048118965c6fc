package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// WeatherCell is one grid cell's rainfall telemetry endpoint.
type WeatherCell struct {
	Location string
	Coord    observation.Coord
	URL      string
}

// WeatherSource polls a fixed list of rainfall grid-cell endpoints.
type WeatherSource struct {
	cells   []WeatherCell
	client  *http.Client
	policy  RetryPolicy
	enabled bool
}

func NewWeatherSource(cells []WeatherCell, timeout time.Duration, policy RetryPolicy) *WeatherSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WeatherSource{cells: cells, client: &http.Client{Timeout: timeout}, policy: policy, enabled: true}
}

func (s *WeatherSource) Name() string      { return "weather" }
func (s *WeatherSource) Enabled() bool     { return s.enabled }
func (s *WeatherSource) SetEnabled(v bool) { s.enabled = v }

func (s *WeatherSource) Collect(ctx context.Context) ([]observation.Observation, Stats, error) {
	if !s.enabled {
		return nil, Stats{Name: s.Name()}, nil
	}
	return retryCollect(ctx, s.Name(), s.policy, s.collectOnce)
}

func (s *WeatherSource) collectOnce(ctx context.Context) ([]observation.Observation, error) {
	var out []observation.Observation
	var firstErr error
	for _, cell := range s.cells {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, cell.URL, nil)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		resp, err := s.client.Do(req)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if resp.StatusCode != http.StatusOK {
			if firstErr == nil {
				firstErr = fmt.Errorf("weather %s: unexpected status %d", cell.Location, resp.StatusCode)
			}
			continue
		}
		obs, err := observation.ParseWeatherJSON(body, time.Now())
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, obs)
	}
	return out, firstErr
}
