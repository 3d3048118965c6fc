package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/example/floodroute/backend/observation"
)

// GaugeStation describes one monitored station's endpoint configuration.
type GaugeStation struct {
	StationID   string
	Location    string
	Coord       observation.Coord
	JSONURL     string // preferred, if the station exposes telemetry as JSON
	HTMLURL     string // scraped fallback when JSONURL is empty
}

// GaugeSource collects readings from a fixed list of gauge stations, using
// each station's JSON endpoint when configured and falling back to scraping
// its public HTML telemetry page with colly otherwise.
type GaugeSource struct {
	stations []GaugeStation
	client   *http.Client
	policy   RetryPolicy
	enabled  bool
}

// NewGaugeSource builds a gauge Source over the given stations.
func NewGaugeSource(stations []GaugeStation, timeout time.Duration, policy RetryPolicy) *GaugeSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GaugeSource{
		stations: stations,
		client:   &http.Client{Timeout: timeout},
		policy:   policy,
		enabled:  true,
	}
}

func (s *GaugeSource) Name() string   { return "gauge" }
func (s *GaugeSource) Enabled() bool  { return s.enabled }
func (s *GaugeSource) SetEnabled(v bool) { s.enabled = v }

func (s *GaugeSource) Collect(ctx context.Context) ([]observation.Observation, Stats, error) {
	if !s.enabled {
		return nil, Stats{Name: s.Name()}, nil
	}
	return retryCollect(ctx, s.Name(), s.policy, s.collectOnce)
}

func (s *GaugeSource) collectOnce(ctx context.Context) ([]observation.Observation, error) {
	var out []observation.Observation
	var firstErr error

	for _, station := range s.stations {
		var obs observation.Observation
		var err error
		switch {
		case station.JSONURL != "":
			obs, err = s.fetchJSON(ctx, station)
		case station.HTMLURL != "":
			obs, err = s.fetchHTML(ctx, station)
		default:
			err = fmt.Errorf("station %s has no configured endpoint", station.StationID)
		}
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

func (s *GaugeSource) fetchJSON(ctx context.Context, station GaugeStation) (observation.Observation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, station.JSONURL, nil)
	if err != nil {
		return observation.Observation{}, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return observation.Observation{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return observation.Observation{}, fmt.Errorf("gauge %s: unexpected status %d", station.StationID, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return observation.Observation{}, err
	}
	return observation.ParseGaugeJSON(body, time.Now())
}

// fetchHTML scrapes the station's public telemetry page with a
// single-page colly collector, then hands the body to the pure HTML
// parser in observation/parse.go.
func (s *GaugeSource) fetchHTML(ctx context.Context, station GaugeStation) (observation.Observation, error) {
	c := colly.NewCollector()
	c.SetRequestTimeout(s.client.Timeout)

	var body []byte
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = err
	})

	if err := c.Visit(station.HTMLURL); err != nil {
		return observation.Observation{}, err
	}
	if fetchErr != nil {
		return observation.Observation{}, fetchErr
	}
	if ctx.Err() != nil {
		return observation.Observation{}, ctx.Err()
	}

	return observation.ParseGaugeHTML(station.StationID, station.Location, station.Coord, body, time.Now())
}
