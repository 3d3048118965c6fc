package sources

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// RasterTile is one sampled point of the pre-computed inundation raster.
type RasterTile struct {
	Location string
	Coord    observation.Coord
	URL      string
}

// RasterSource polls the raster tile store for a fixed set of sample points.
type RasterSource struct {
	tiles   []RasterTile
	client  *http.Client
	policy  RetryPolicy
	enabled bool
}

func NewRasterSource(tiles []RasterTile, timeout time.Duration, policy RetryPolicy) *RasterSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &RasterSource{tiles: tiles, client: &http.Client{Timeout: timeout}, policy: policy, enabled: true}
}

func (s *RasterSource) Name() string      { return "raster" }
func (s *RasterSource) Enabled() bool     { return s.enabled }
func (s *RasterSource) SetEnabled(v bool) { s.enabled = v }

func (s *RasterSource) Collect(ctx context.Context) ([]observation.Observation, Stats, error) {
	if !s.enabled {
		return nil, Stats{Name: s.Name()}, nil
	}
	return retryCollect(ctx, s.Name(), s.policy, s.collectOnce)
}

func (s *RasterSource) collectOnce(ctx context.Context) ([]observation.Observation, error) {
	var out []observation.Observation
	var firstErr error
	for _, tile := range s.tiles {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, tile.URL, nil)
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
				firstErr = fmt.Errorf("raster %s: unexpected status %d", tile.Location, resp.StatusCode)
			}
			continue
		}
		obs, err := observation.ParseRasterJSON(body, time.Now())
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
