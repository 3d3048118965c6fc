// Package fusion converts a batch of Observations into a per-location risk
// value and propagates that value onto road-graph edges. It is the only
// writer of Graph risk cells; the live Scheduler and the Scenario Driver
// both call Apply under the same contract so the two paths stay
// semantically identical.
package fusion

import (
	"math"
	"sync"
	"time"

	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/observation"
)

// crowdDampen is the blend weight crowd reports get against the
// gauge/weather/raster maximum, per §4.3.
const crowdDampen = 0.25

// influenceTau is the exponential-decay distance constant (meters) used to
// weight a location's contribution to a nearby edge.
const influenceTau = 300.0

// LocationRisk is the fused value for one named location.
type LocationRisk struct {
	Key          string
	Risk         float64
	Contributors []observation.Kind
	TS           time.Time
}

// ApplyResult summarizes one fusion pass, per §4.3's `apply` contract.
type ApplyResult struct {
	LocationsChanged  int
	EdgesChanged      int
	Locations         map[string]LocationRisk
	CriticalCrossings []CriticalCrossing
}

// CriticalCrossing flags a location or gauge crossing a danger threshold
// during this Apply call; the Scheduler is responsible for de-duplicating
// and publishing these as critical_alert events.
type CriticalCrossing struct {
	Location   string
	Reason     string // "gauge_critical" or "location_risk"
	WaterLevel float64
	Risk       float64
}

type locationState struct {
	risk             float64
	contributors     map[observation.Kind]struct{}
	lastTS           time.Time
	wasAboveCritical bool // gauge: level >= critical last cycle
	wasAbove08       bool // r_loc >= 0.8 last cycle
}

// Engine owns the LocationRisk map; Graph ownership stays with the graph
// package, Engine only calls UpdateRisk/DecayRisk on it.
type Engine struct {
	mu        sync.Mutex
	locations map[string]*locationState
}

// NewEngine constructs an empty Fusion Engine.
func NewEngine() *Engine {
	return &Engine{locations: make(map[string]*locationState)}
}

// Reset discards all fused state, used by the scenario driver's reset
// transition.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locations = make(map[string]*locationState)
}

// Snapshot returns a copy of the current LocationRisk map, for
// flood_update broadcast payloads and tests.
func (e *Engine) Snapshot() map[string]LocationRisk {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]LocationRisk, len(e.locations))
	for k, st := range e.locations {
		out[k] = toLocationRisk(k, st)
	}
	return out
}

func toLocationRisk(key string, st *locationState) LocationRisk {
	contributors := make([]observation.Kind, 0, len(st.contributors))
	for k := range st.contributors {
		contributors = append(contributors, k)
	}
	return LocationRisk{Key: key, Risk: st.risk, Contributors: contributors, TS: st.lastTS}
}

// Apply fuses a batch of observations into the LocationRisk map, decays
// locations with no fresh evidence this cycle, then propagates the result
// onto every influenced edge of g. It is idempotent: applying the same
// batch twice in a row (with decay disabled by immediate re-application)
// yields the same risk vector up to 1e-9, because the combine formula is a
// pure function of the per-kind inputs.
func (e *Engine) Apply(g *graph.Graph, batch []observation.Observation, now time.Time) ApplyResult {
	e.mu.Lock()

	byLocation := groupByLocation(batch)
	touched := make(map[string]bool, len(byLocation))
	result := ApplyResult{Locations: make(map[string]LocationRisk)}

	for loc, obs := range byLocation {
		st := e.locations[loc]
		if st == nil {
			st = &locationState{contributors: make(map[observation.Kind]struct{})}
			e.locations[loc] = st
		}
		newRisk, contributors, crossing := combineLocation(loc, obs, st)
		if newRisk != st.risk {
			result.LocationsChanged++
		}
		st.risk = newRisk
		st.contributors = contributors
		st.lastTS = now
		touched[loc] = true
		if crossing != nil {
			result.CriticalCrossings = append(result.CriticalCrossings, *crossing)
		}
		result.Locations[loc] = toLocationRisk(loc, st)
	}

	// Decay every location not touched this cycle.
	for loc, st := range e.locations {
		if touched[loc] {
			continue
		}
		prev := st.risk
		delta := math.Min(0.05, st.risk)
		st.risk = clamp01(st.risk - delta)
		if st.risk != prev {
			result.LocationsChanged++
		}
		result.Locations[loc] = toLocationRisk(loc, st)
	}

	locationsSnapshot := make(map[string]float64, len(e.locations))
	for loc, st := range e.locations {
		locationsSnapshot[loc] = st.risk
	}
	e.mu.Unlock()

	result.EdgesChanged = propagateToEdges(g, locationsSnapshot)

	return result
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func groupByLocation(batch []observation.Observation) map[string][]observation.Observation {
	out := make(map[string][]observation.Observation)
	for _, o := range batch {
		loc := o.Location()
		if loc == "" {
			continue
		}
		out[loc] = append(out[loc], o)
	}
	return out
}

// combineLocation applies the per-kind scoring rules from §4.3 and the
// combine formula, returning the new risk, the set of contributing kinds,
// and a CriticalCrossing if this batch pushed the location over a danger
// threshold it was previously under.
func combineLocation(loc string, obs []observation.Observation, prior *locationState) (float64, map[observation.Kind]struct{}, *CriticalCrossing) {
	var rGauge, rWeather, rRaster, rCrowd float64
	contributors := make(map[observation.Kind]struct{})
	var crossing *CriticalCrossing

	var crowdReports []observation.Observation

	for _, o := range obs {
		switch o.Kind {
		case observation.KindGauge:
			g := o.Gauge
			r := gaugeRisk(*g)
			if r > rGauge {
				rGauge = r
			}
			contributors[observation.KindGauge] = struct{}{}

			wasAbove := prior.wasAboveCritical
			nowAbove := g.CriticalM > 0 && g.WaterLevelM >= g.CriticalM
			if nowAbove && !wasAbove {
				crossing = &CriticalCrossing{Location: loc, Reason: "gauge_critical", WaterLevel: g.WaterLevelM}
			}
			prior.wasAboveCritical = nowAbove

		case observation.KindWeather:
			w := o.Weather
			r := math.Max(rainBand(w.Rain1hMM), rainBand(w.Rain24hMM/10))
			if r > rWeather {
				rWeather = r
			}
			contributors[observation.KindWeather] = struct{}{}

		case observation.KindRaster:
			r := clamp01(o.Raster.DepthM / 0.5)
			if r > rRaster {
				rRaster = r
			}
			contributors[observation.KindRaster] = struct{}{}

		case observation.KindCrowd:
			crowdReports = append(crowdReports, o)
			contributors[observation.KindCrowd] = struct{}{}
		}
	}

	if len(crowdReports) > 0 {
		rCrowd = crowdRisk(crowdReports)
	}

	envelope := math.Max(rGauge, math.Max(rWeather, rRaster))
	combined := envelope*(1-crowdDampen) + rCrowd*crowdDampen
	combined = round3(clamp01(combined))

	nowAbove08 := combined >= 0.8
	if nowAbove08 && !prior.wasAbove08 && crossing == nil {
		crossing = &CriticalCrossing{Location: loc, Reason: "location_risk", Risk: combined}
	}
	prior.wasAbove08 = nowAbove08

	return combined, contributors, crossing
}

// gaugeRisk implements the piecewise gauge rule from §4.3.
func gaugeRisk(g observation.GaugeReading) float64 {
	if g.CriticalM <= g.AlertM {
		if g.WaterLevelM >= g.AlertM {
			return 1
		}
		return 0
	}
	if g.WaterLevelM <= g.AlertM {
		return 0
	}
	if g.WaterLevelM >= g.CriticalM {
		return 1
	}
	return clamp01((g.WaterLevelM - g.AlertM) / (g.CriticalM - g.AlertM))
}

// rainBand maps a rainfall rate (mm) through the piecewise-linear bands
// from §4.3.
func rainBand(x float64) float64 {
	switch {
	case x < 2.5:
		return 0
	case x < 7.5:
		return lerp(x, 2.5, 7.5, 0, 0.3)
	case x < 15:
		return lerp(x, 7.5, 15, 0.3, 0.6)
	case x < 30:
		return lerp(x, 15, 30, 0.6, 0.9)
	default:
		return 1.0
	}
}

func lerp(x, x0, x1, y0, y1 float64) float64 {
	return y0 + (x-x0)*(y1-y0)/(x1-x0)
}

// crowdAgreementWindow is the maximum gap between two reports' own
// timestamps for them to count as agreeing, per §4.3.
const crowdAgreementWindow = 30 * time.Minute

// crowdRisk applies the severity cap / agreement-unlock rule from §4.3:
// capped at 0.8 unless two independent reports within 500m and 30 minutes
// of each other agree, in which case the maximum severity among agreeing
// reports may reach 1.0. The 30-minute check compares the reports' own
// timestamps, not the batch's arrival time: CrowdSource drains whatever
// has buffered since the previous cycle, which can span well over 30
// minutes in one batch.
func crowdRisk(reports []observation.Observation) float64 {
	maxSeverity := 0.0
	for _, o := range reports {
		if o.Crowd.Severity > maxSeverity {
			maxSeverity = o.Crowd.Severity
		}
	}

	agree := false
	for i := 0; i < len(reports) && !agree; i++ {
		for j := i + 1; j < len(reports); j++ {
			a, b := reports[i], reports[j]
			d := graph.GreatCircleDistanceM(a.Crowd.Coord.Lat, a.Crowd.Coord.Lon, b.Crowd.Coord.Lat, b.Crowd.Coord.Lon)
			dt := a.TS.Sub(b.TS)
			if dt < 0 {
				dt = -dt
			}
			if d <= 500 && dt <= crowdAgreementWindow {
				agree = true
				break
			}
		}
	}

	if agree {
		return clamp01(maxSeverity)
	}
	return math.Min(0.8, maxSeverity)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
