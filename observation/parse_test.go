package observation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseGaugeJSON(t *testing.T) {
	raw := []byte(`{"station_id":"sta-1","location":"Sto Nino","water_level_m":17.1,"alert_m":14,"alarm_m":16,"critical_m":18,"lon":121.0,"lat":14.6}`)
	obs, err := ParseGaugeJSON(raw, time.Unix(1000, 0))
	require.NoError(t, err)
	require.Equal(t, KindGauge, obs.Kind)
	require.Equal(t, "sta-1", obs.Gauge.StationID)
	require.Equal(t, "Sto Nino", obs.Location())
}

func TestParseGaugeJSONMissingStationIsParseError(t *testing.T) {
	_, err := ParseGaugeJSON([]byte(`{"water_level_m":1}`), time.Now())
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	require.Equal(t, "gauge", pe.Source)
}

func TestParseGaugeHTML(t *testing.T) {
	html := []byte(`
<table class="telemetry">
  <tr><td class="label">Water Level</td><td class="value">15.2m</td></tr>
  <tr><td class="label">Alert</td><td class="value">14m</td></tr>
  <tr><td class="label">Alarm</td><td class="value">16m</td></tr>
  <tr><td class="label">Critical</td><td class="value">18m</td></tr>
</table>`)
	obs, err := ParseGaugeHTML("sta-2", "Marikina", Coord{Lon: 121.1, Lat: 14.65}, html, time.Now())
	require.NoError(t, err)
	require.Equal(t, 15.2, obs.Gauge.WaterLevelM)
	require.Equal(t, 18.0, obs.Gauge.CriticalM)
}

func TestParseCrowdJSONRejectsOutOfRangeSeverity(t *testing.T) {
	_, err := ParseCrowdJSON([]byte(`{"location":"X","severity":1.4}`), time.Now())
	require.Error(t, err)
}

func TestParseWeatherAndRasterJSON(t *testing.T) {
	w, err := ParseWeatherJSON([]byte(`{"location":"Grid-12","rain_1h_mm":10}`), time.Now())
	require.NoError(t, err)
	require.Equal(t, 10.0, w.Weather.Rain1hMM)

	r, err := ParseRasterJSON([]byte(`{"location":"Tile-3","depth_m":0.4}`), time.Now())
	require.NoError(t, err)
	require.Equal(t, 0.4, r.Raster.DepthM)
}
