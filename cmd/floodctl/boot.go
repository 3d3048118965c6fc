package main

import (
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/example/floodroute/backend/broadcast"
	"github.com/example/floodroute/backend/config"
	"github.com/example/floodroute/backend/fusion"
	"github.com/example/floodroute/backend/graph"
	"github.com/example/floodroute/backend/logging"
	"github.com/example/floodroute/backend/routing"
	"github.com/example/floodroute/backend/scheduler"
	"github.com/example/floodroute/backend/sources"
)

// runtime bundles everything a subcommand needs once configuration and the
// topology artifact have loaded; serve and trigger both build one of these
// the same way so their wiring never drifts apart.
type runtime struct {
	cfg       config.Config
	log       *logging.Logger
	graph     *graph.Graph
	fusion    *fusion.Engine
	router    *routing.Router
	hub       *broadcast.Hub
	scheduler *scheduler.Scheduler
}

func boot(configPath string, feedsPath string, verbose bool) (*runtime, error) {
	level := logging.LevelInfo
	if verbose {
		level = logging.LevelDebug
	}
	log := logging.New(logging.Config{Level: level, Format: logging.FormatJSON})

	loader, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg := loader.Current()

	if cfg.GraphSourceURI == "" {
		return nil, fmt.Errorf("config: graph_source_uri is required")
	}
	g, err := graph.LoadTopology(cfg.GraphSourceURI)
	if err != nil {
		return nil, fmt.Errorf("load topology: %w", err)
	}
	log.Info("topology loaded", "total_edges", g.TotalEdges())

	eng := fusion.NewEngine()
	router := routing.New(routing.SpeedTable(cfg.SpeedTableMetersPerSecond()), cfg.RouterMaxExpansions)
	hub := broadcast.New(cfg.BroadcastQueueSize, cfg.MaxSubscribers)

	var srcs []sources.Source
	if feedsPath != "" {
		feedsCfg, err := sources.LoadFeedsConfig(feedsPath)
		if err != nil {
			return nil, fmt.Errorf("load feeds config: %w", err)
		}
		srcs, err = feedsCfg.Build(time.Duration(cfg.SourceTimeoutMS)*time.Millisecond, sources.DefaultRetryPolicy)
		if err != nil {
			return nil, fmt.Errorf("build sources: %w", err)
		}
	}

	sched := scheduler.New(g, eng, srcs, broadcast.SchedulerPublisher{Hub: hub},
		time.Duration(cfg.SchedulerGuardS)*time.Second,
		time.Duration(cfg.CriticalDedupWindowS)*time.Second)

	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sched.UseRedisDedup(client, time.Duration(cfg.CriticalDedupWindowS)*time.Second)
		log.Info("wired redis-backed critical-alert dedup", "addr", cfg.RedisAddr)
	}

	return &runtime{cfg: cfg, log: log, graph: g, fusion: eng, router: router, hub: hub, scheduler: sched}, nil
}
