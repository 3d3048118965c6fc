package sources

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/example/floodroute/backend/observation"
)

// FeedsConfig is the on-disk description of every upstream endpoint the
// Scheduler fans out to: the Source contract itself is transport-agnostic,
// but a deployment still needs to say which stations, cells, and tiles
// exist. Loaded once at startup, same as the topology artifact.
type FeedsConfig struct {
	Gauges []struct {
		StationID string  `json:"station_id"`
		Location  string  `json:"location"`
		Lon       float64 `json:"lon"`
		Lat       float64 `json:"lat"`
		JSONURL   string  `json:"json_url"`
		HTMLURL   string  `json:"html_url"`
	} `json:"gauges"`
	WeatherCells []struct {
		Location string  `json:"location"`
		Lon      float64 `json:"lon"`
		Lat      float64 `json:"lat"`
		URL      string  `json:"url"`
	} `json:"weather_cells"`
	RasterTiles []struct {
		Location string  `json:"location"`
		Lon      float64 `json:"lon"`
		Lat      float64 `json:"lat"`
		URL      string  `json:"url"`
	} `json:"raster_tiles"`
	Crowd *struct {
		Brokers []string `json:"brokers"`
		Topic   string   `json:"topic"`
	} `json:"crowd"`
}

// LoadFeedsConfig reads a FeedsConfig from a JSON file.
func LoadFeedsConfig(path string) (FeedsConfig, error) {
	var cfg FeedsConfig
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("sources: read feeds config %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("sources: parse feeds config %s: %w", path, err)
	}
	return cfg, nil
}

// Build constructs the enabled Source list described by the config. The
// crowd Kafka source is only started when a brokers list is configured;
// dialing failure there is returned as an error since it means the process
// was asked for a feed it cannot actually reach.
func (c FeedsConfig) Build(timeout time.Duration, policy RetryPolicy) ([]Source, error) {
	var out []Source

	if len(c.Gauges) > 0 {
		stations := make([]GaugeStation, 0, len(c.Gauges))
		for _, g := range c.Gauges {
			stations = append(stations, GaugeStation{
				StationID: g.StationID,
				Location:  g.Location,
				Coord:     observation.Coord{Lon: g.Lon, Lat: g.Lat},
				JSONURL:   g.JSONURL,
				HTMLURL:   g.HTMLURL,
			})
		}
		out = append(out, NewGaugeSource(stations, timeout, policy))
	}

	if len(c.WeatherCells) > 0 {
		cells := make([]WeatherCell, 0, len(c.WeatherCells))
		for _, w := range c.WeatherCells {
			cells = append(cells, WeatherCell{Location: w.Location, Coord: observation.Coord{Lon: w.Lon, Lat: w.Lat}, URL: w.URL})
		}
		out = append(out, NewWeatherSource(cells, timeout, policy))
	}

	if len(c.RasterTiles) > 0 {
		tiles := make([]RasterTile, 0, len(c.RasterTiles))
		for _, t := range c.RasterTiles {
			tiles = append(tiles, RasterTile{Location: t.Location, Coord: observation.Coord{Lon: t.Lon, Lat: t.Lat}, URL: t.URL})
		}
		out = append(out, NewRasterSource(tiles, timeout, policy))
	}

	if c.Crowd != nil && len(c.Crowd.Brokers) > 0 {
		crowd, err := NewCrowdSource(CrowdSourceConfig{Brokers: c.Crowd.Brokers, Topic: c.Crowd.Topic})
		if err != nil {
			return nil, err
		}
		out = append(out, crowd)
	}

	return out, nil
}
