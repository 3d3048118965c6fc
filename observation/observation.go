// Package observation defines the tagged-variant schema shared by every
// Source and the Fusion Engine, plus pure parsers from raw source payloads
// into the variant. Parsing failures are structured errors the Scheduler
// counts but does not raise, per the fault-tolerance contract in §4.2.
package observation

import "time"

// Kind tags which variant an Observation carries.
type Kind string

const (
	KindGauge   Kind = "gauge"
	KindWeather Kind = "weather"
	KindRaster  Kind = "raster"
	KindCrowd   Kind = "crowd"
)

// Coord is a geographic point.
type Coord struct {
	Lon float64
	Lat float64
}

// GaugeReading is a river/tide gauge telemetry sample.
type GaugeReading struct {
	StationID   string
	WaterLevelM float64
	AlertM      float64
	AlarmM      float64
	CriticalM   float64
	Location    string
	Coord       Coord
}

// WeatherReading is a rainfall sample for a named grid cell.
type WeatherReading struct {
	Location  string
	Coord     Coord
	Rain1hMM  float64
	Rain24hMM float64
}

// RasterDepth is a point or region sample from a pre-computed inundation
// raster (the raster tile store itself is an external collaborator; this
// is its parsed output).
type RasterDepth struct {
	Location string
	Coord    Coord
	DepthM   float64
}

// CrowdReport is a free-text flood report with a parser-assigned severity.
type CrowdReport struct {
	Location string
	Coord    Coord
	Text     string
	Severity float64 // [0,1], assigned by the parser/classifier upstream
}

// Observation is the tagged variant every downstream component pattern
// matches on by Kind; exactly one of the payload fields is non-nil.
type Observation struct {
	Kind Kind
	TS   time.Time // wall-clock timestamp actually seen by readers

	Gauge   *GaugeReading
	Weather *WeatherReading
	Raster  *RasterDepth
	Crowd   *CrowdReport
}

// Location returns the named location this observation contributes to,
// used by the Fusion Engine to group observations before scoring.
func (o Observation) Location() string {
	switch o.Kind {
	case KindGauge:
		if o.Gauge != nil {
			if o.Gauge.Location != "" {
				return o.Gauge.Location
			}
			return o.Gauge.StationID
		}
	case KindWeather:
		if o.Weather != nil {
			return o.Weather.Location
		}
	case KindRaster:
		if o.Raster != nil {
			return o.Raster.Location
		}
	case KindCrowd:
		if o.Crowd != nil {
			return o.Crowd.Location
		}
	}
	return ""
}

// Coordinate returns the coordinate of the observation, used for the crowd
// "two independent reports within 500m" agreement rule.
func (o Observation) Coordinate() Coord {
	switch o.Kind {
	case KindGauge:
		if o.Gauge != nil {
			return o.Gauge.Coord
		}
	case KindWeather:
		if o.Weather != nil {
			return o.Weather.Coord
		}
	case KindRaster:
		if o.Raster != nil {
			return o.Raster.Coord
		}
	case KindCrowd:
		if o.Crowd != nil {
			return o.Crowd.Coord
		}
	}
	return Coord{}
}

// ParseError is a structured error carrying the source and reason for a
// failed parse; the Scheduler counts these without aborting the cycle.
type ParseError struct {
	Source string
	Reason string
}

func (e *ParseError) Error() string {
	return "observation parse failed for " + e.Source + ": " + e.Reason
}
