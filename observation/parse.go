package observation

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// GaugeJSONPayload is the shape a gauge station's JSON telemetry endpoint
// returns (when one exists; see ParseGaugeHTML for the scraped fallback).
type GaugeJSONPayload struct {
	StationID string  `json:"station_id"`
	Location  string  `json:"location"`
	Level     float64 `json:"water_level_m"`
	Alert     float64 `json:"alert_m"`
	Alarm     float64 `json:"alarm_m"`
	Critical  float64 `json:"critical_m"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
}

// ParseGaugeJSON converts a gauge station's JSON payload into an Observation.
func ParseGaugeJSON(raw []byte, ts time.Time) (Observation, error) {
	var p GaugeJSONPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Observation{}, &ParseError{Source: "gauge", Reason: err.Error()}
	}
	if p.StationID == "" {
		return Observation{}, &ParseError{Source: "gauge", Reason: "missing station_id"}
	}
	return Observation{
		Kind: KindGauge,
		TS:   ts,
		Gauge: &GaugeReading{
			StationID:   p.StationID,
			Location:    p.Location,
			WaterLevelM: p.Level,
			AlertM:      p.Alert,
			AlarmM:      p.Alarm,
			CriticalM:   p.Critical,
			Coord:       Coord{Lon: p.Lon, Lat: p.Lat},
		},
	}, nil
}

// ParseGaugeHTML scrapes a station's public HTML telemetry page (a table of
// label/value rows) using goquery, for stations with no JSON endpoint.
// Grounded on the teacher's colly+goquery fetcher: the HTTP fetch itself
// lives in sources/gauge.go, this function is the pure HTML-to-Observation
// parse step.
func ParseGaugeHTML(stationID, location string, coord Coord, html []byte, ts time.Time) (Observation, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return Observation{}, &ParseError{Source: "gauge-html", Reason: err.Error()}
	}

	values := map[string]float64{}
	doc.Find("table.telemetry tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.ToLower(strings.TrimSpace(row.Find("td.label").Text()))
		valueText := strings.TrimSpace(row.Find("td.value").Text())
		if label == "" || valueText == "" {
			return
		}
		if v, err := strconv.ParseFloat(strings.TrimSuffix(valueText, "m"), 64); err == nil {
			values[label] = v
		}
	})

	level, ok := values["water level"]
	if !ok {
		return Observation{}, &ParseError{Source: "gauge-html", Reason: "no water level row found"}
	}

	return Observation{
		Kind: KindGauge,
		TS:   ts,
		Gauge: &GaugeReading{
			StationID:   stationID,
			Location:    location,
			WaterLevelM: level,
			AlertM:      values["alert"],
			AlarmM:      values["alarm"],
			CriticalM:   values["critical"],
			Coord:       coord,
		},
	}, nil
}

// WeatherPayload is the shape a weather upstream returns for one grid cell.
type WeatherPayload struct {
	Location  string  `json:"location"`
	Lon       float64 `json:"lon"`
	Lat       float64 `json:"lat"`
	Rain1hMM  float64 `json:"rain_1h_mm"`
	Rain24hMM float64 `json:"rain_24h_mm"`
}

// ParseWeatherJSON converts a weather upstream payload into an Observation.
func ParseWeatherJSON(raw []byte, ts time.Time) (Observation, error) {
	var p WeatherPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Observation{}, &ParseError{Source: "weather", Reason: err.Error()}
	}
	if p.Location == "" {
		return Observation{}, &ParseError{Source: "weather", Reason: "missing location"}
	}
	return Observation{
		Kind: KindWeather,
		TS:   ts,
		Weather: &WeatherReading{
			Location:  p.Location,
			Coord:     Coord{Lon: p.Lon, Lat: p.Lat},
			Rain1hMM:  p.Rain1hMM,
			Rain24hMM: p.Rain24hMM,
		},
	}, nil
}

// RasterPayload is the shape the raster tile store's pixel-to-depth
// rendering (an external collaborator) returns for a sampled point.
type RasterPayload struct {
	Location string  `json:"location"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	DepthM   float64 `json:"depth_m"`
}

// ParseRasterJSON converts a raster sample payload into an Observation.
func ParseRasterJSON(raw []byte, ts time.Time) (Observation, error) {
	var p RasterPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Observation{}, &ParseError{Source: "raster", Reason: err.Error()}
	}
	if p.Location == "" {
		return Observation{}, &ParseError{Source: "raster", Reason: "missing location"}
	}
	return Observation{
		Kind: KindRaster,
		TS:   ts,
		Raster: &RasterDepth{
			Location: p.Location,
			Coord:    Coord{Lon: p.Lon, Lat: p.Lat},
			DepthM:   p.DepthM,
		},
	}, nil
}

// CrowdPayload is the shape a crowd-report upstream (social scraping,
// SMS gateway, or the Kafka feed in sources/crowd.go) emits.
type CrowdPayload struct {
	Location string  `json:"location"`
	Lon      float64 `json:"lon"`
	Lat      float64 `json:"lat"`
	Text     string  `json:"text"`
	Severity float64 `json:"severity"`
}

// ParseCrowdJSON converts a crowd-report payload into an Observation. The
// text-similarity judgment for "two reports agree" (spec's Open Question)
// is treated as already resolved by the upstream classifier that assigned
// Severity; this parser does no NLP.
func ParseCrowdJSON(raw []byte, ts time.Time) (Observation, error) {
	var p CrowdPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Observation{}, &ParseError{Source: "crowd", Reason: err.Error()}
	}
	if p.Location == "" {
		return Observation{}, &ParseError{Source: "crowd", Reason: "missing location"}
	}
	if p.Severity < 0 || p.Severity > 1 {
		return Observation{}, &ParseError{Source: "crowd", Reason: fmt.Sprintf("severity %.2f out of range", p.Severity)}
	}
	return Observation{
		Kind: KindCrowd,
		TS:   ts,
		Crowd: &CrowdReport{
			Location: p.Location,
			Coord:    Coord{Lon: p.Lon, Lat: p.Lat},
			Text:     p.Text,
			Severity: p.Severity,
		},
	}, nil
}
