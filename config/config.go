// Package config loads and hot-reloads the service's non-structural
// settings, grounded on the teacher's viper.New()/SetConfigFile() loading
// pattern (reinforcement/learning.go's FromYaml), extended with an
// fsnotify watch so the operationally-tunable values (scheduler period,
// broadcast queue size, router expansion bound, speed table) can change
// without a restart. Structural settings (graph_source_uri) are read once
// at startup and never hot-reloaded.
package config

import (
	"fmt"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/example/floodroute/backend/graph"
)

// Config mirrors the `Configuration (recognized options)` table.
type Config struct {
	GraphSourceURI       string             `mapstructure:"graph_source_uri"`
	SchedulerPeriodS     int                `mapstructure:"scheduler_period_s"`
	SchedulerGuardS      int                `mapstructure:"scheduler_guard_s"`
	SourceTimeoutMS      int                `mapstructure:"source_timeout_ms"`
	BroadcastQueueSize   int                `mapstructure:"broadcast_queue_size"`
	MaxSubscribers       int                `mapstructure:"max_subscribers"`
	RouterMaxExpansions  int                `mapstructure:"router_max_expansions"`
	SimTickS             float64            `mapstructure:"sim_tick_s"`
	SpeedTable           map[string]float64 `mapstructure:"speed_table"`
	CriticalDedupWindowS int                `mapstructure:"critical_dedup_window_s"`
	RedisAddr            string             `mapstructure:"redis_addr"`
}

// Defaults mirrors the spec's documented default values.
func Defaults() Config {
	return Config{
		SchedulerPeriodS:     300,
		SchedulerGuardS:      15,
		SourceTimeoutMS:      10000,
		BroadcastQueueSize:   64,
		MaxSubscribers:       1024,
		RouterMaxExpansions:  2_000_000,
		SimTickS:             1,
		CriticalDedupWindowS: 600,
		SpeedTable: map[string]float64{
			"motorway":    60,
			"primary":     40,
			"secondary":   30,
			"residential": 20,
			"service":     10,
		},
	}
}

// SpeedTableMetersPerSecond converts the loaded km/h map into a map keyed
// by graph.RoadClass in m/s, ready to convert to a routing.SpeedTable.
func (c Config) SpeedTableMetersPerSecond() map[graph.RoadClass]float64 {
	out := make(map[graph.RoadClass]float64, len(c.SpeedTable))
	for k, v := range c.SpeedTable {
		out[graph.RoadClass(k)] = v / 3.6
	}
	return out
}

// Loader owns a viper instance and the current Config, with an optional
// fsnotify watch for hot-reloadable fields.
type Loader struct {
	mu  sync.RWMutex
	vp  *viper.Viper
	cur Config
}

// Load reads a YAML config file into a fresh Loader, applying Defaults
// first so an omitted field keeps its documented default.
func Load(path string) (*Loader, error) {
	vp := viper.New()
	vp.SetConfigFile(path)
	vp.SetConfigType("yaml")

	defaults := Defaults()
	vp.SetDefault("scheduler_period_s", defaults.SchedulerPeriodS)
	vp.SetDefault("scheduler_guard_s", defaults.SchedulerGuardS)
	vp.SetDefault("source_timeout_ms", defaults.SourceTimeoutMS)
	vp.SetDefault("broadcast_queue_size", defaults.BroadcastQueueSize)
	vp.SetDefault("max_subscribers", defaults.MaxSubscribers)
	vp.SetDefault("router_max_expansions", defaults.RouterMaxExpansions)
	vp.SetDefault("sim_tick_s", defaults.SimTickS)
	vp.SetDefault("critical_dedup_window_s", defaults.CriticalDedupWindowS)
	vp.SetDefault("speed_table", defaults.SpeedTable)

	if err := vp.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	l := &Loader{vp: vp}
	if err := l.reload(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Loader) reload() error {
	var cfg Config
	if err := l.vp.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("config: unmarshal: %w", err)
	}
	l.mu.Lock()
	l.cur = cfg
	l.mu.Unlock()
	return nil
}

// Current returns the most recently loaded Config.
func (l *Loader) Current() Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cur
}

// WatchForChanges starts an fsnotify watch on the config file and
// re-unmarshals on every write, invoking onChange with the new Config.
// Only non-structural fields should be trusted from a hot reload; the
// caller decides which fields it actually re-reads.
func (l *Loader) WatchForChanges(onChange func(Config)) {
	l.vp.OnConfigChange(func(e fsnotify.Event) {
		if err := l.reload(); err != nil {
			return
		}
		if onChange != nil {
			onChange(l.Current())
		}
	})
	l.vp.WatchConfig()
}
