package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yomariano/futurezxyback/config"
	"github.com/yomariano/futurezxyback/internal/aggregator"
	"github.com/yomariano/futurezxyback/internal/bus"
	"github.com/yomariano/futurezxyback/internal/feed"
	"github.com/yomariano/futurezxyback/internal/gateway"
	"github.com/yomariano/futurezxyback/internal/indicator"
	"github.com/yomariano/futurezxyback/internal/logger"
	"github.com/yomariano/futurezxyback/internal/metrics"
	"github.com/yomariano/futurezxyback/internal/mirror"
	"github.com/yomariano/futurezxyback/internal/model"
	"github.com/yomariano/futurezxyback/internal/seed"
	"github.com/yomariano/futurezxyback/internal/store"
)

const (
	tickBufSize     = 10000
	envelopeBufSize = 1024
	fanoutBufSize   = 1024
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("[engine] %v", err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger.Init("indicator-engine", cfg.LogLevel)

	symbols := cfg.ParseSymbols()
	tfs := cfg.ParseTimeframes()
	if len(symbols) == 0 || len(tfs) == 0 {
		return fmt.Errorf("config: need at least one symbol and one timeframe")
	}
	tfNames := make([]string, len(tfs))
	for i, tf := range tfs {
		tfNames[i] = string(tf)
	}
	slog.Info("starting", "symbols", symbols, "timeframes", tfNames, "feed", cfg.FeedSource)

	m := metrics.New()
	health := metrics.NewHealth(symbols, tfNames)
	latency := metrics.NewLatencyTracker(1024)

	keys := make([]model.SeriesKey, 0, len(symbols)*len(tfs))
	for _, sym := range symbols {
		for _, tf := range tfs {
			keys = append(keys, model.SeriesKey{Symbol: sym, Timeframe: tf})
		}
	}
	st := store.New(keys)
	engine := indicator.NewEngine()

	// Aggregator output feeds the fan-out; fan-out feeds the hub and the
	// optional redis mirror.
	envCh := make(chan model.Envelope, envelopeBufSize)
	fanout := bus.New(fanoutBufSize)
	fanout.OnDrop = func(i int) {
		m.BroadcastDrops.WithLabelValues(fmt.Sprintf("consumer_%d", i)).Inc()
	}
	hubCh := fanout.Subscribe()

	var mir *mirror.Mirror
	var mirCh <-chan model.Envelope
	if cfg.RedisAddr != "" {
		mir, err = mirror.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisPrefix)
		if err != nil {
			return err
		}
		defer mir.Close()
		mirCh = fanout.Subscribe()
	}

	hub := gateway.NewHub()
	hub.OnSubscriberCount = func(n int) {
		m.Subscribers.Set(float64(n))
		health.SetSubscribers(n)
	}
	hub.OnSendFailure = func(string) { m.SubscriberSendFailures.Inc() }
	server := gateway.NewServer(cfg.ListenAddr, hub, health, cfg.WriteTimeout, cfg.PingInterval, cfg.PongTimeout)
	metricsSrv := metrics.NewServer(cfg.MetricsAddr)

	agg := aggregator.New(st, engine, envCh, tfs, cfg.PricePrecision, cfg.OscPrecision)
	agg.OnDroppedTick = func() { m.DroppedTicks.Inc() }
	agg.OnInsufficient = func(model.SeriesKey) { m.InsufficientHistory.Inc() }
	agg.OnSnapshot = func(key model.SeriesKey, fresh bool, dur time.Duration) {
		m.SnapshotsTotal.Inc()
		m.SnapshotComputeDur.Observe(dur.Seconds())
		if fresh {
			m.BarsOpened.WithLabelValues(string(key.Timeframe)).Inc()
		} else {
			m.BarsMerged.WithLabelValues(string(key.Timeframe)).Inc()
		}
	}
	agg.OnLatency = func(tickMs int64) {
		m.TicksTotal.Inc()
		health.MarkTick()
		d := time.Since(time.UnixMilli(tickMs))
		if d > 0 {
			m.E2ELatency.Observe(d.Seconds())
			latency.Observe(d)
		}
	}

	seeder, closeSeeder, err := buildSeeder(cfg)
	if err != nil {
		return err
	}
	if closeSeeder != nil {
		defer closeSeeder()
	}

	src, err := buildSource(cfg, symbols, m)
	if err != nil {
		return err
	}
	runner := feed.NewRunner(src, cfg.ReconnectDelay, cfg.ReconnectMax)
	runner.OnReconnect = func() { m.FeedReconnects.Inc() }
	runner.OnConnected = health.SetFeedConnected

	driver := aggregator.NewDriver(agg, tfs, cfg.MaxRecomputeCadence)
	ticks := make(chan model.Tick, tickBufSize)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { fanout.Run(gctx, envCh); return nil })
	g.Go(func() error { hub.Run(gctx, hubCh); return nil })
	if mir != nil {
		ch := mirCh
		g.Go(func() error { mir.Run(gctx, ch); return nil })
	}
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error { return metricsSrv.Run(gctx) })
	g.Go(func() error {
		// Seed before live consumption so the first published snapshots
		// already carry deep history, then emit the baseline.
		seed.SeedAll(gctx, seeder, st, symbols, tfs)
		agg.RecomputeAll(gctx)
		agg.Run(gctx, ticks)
		return nil
	})
	g.Go(func() error { runner.Run(gctx, ticks); return nil })
	g.Go(func() error { driver.Run(gctx); return nil })
	g.Go(func() error {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				log.Printf("[engine] p50=%s p99=%s subscribers=%d",
					latency.Percentile(50), latency.Percentile(99), hub.Count())
			}
		}
	})

	err = g.Wait()
	slog.Info("stopped", "err", err)
	return err
}

func buildSeeder(cfg *config.Config) (seed.Seeder, func() error, error) {
	switch cfg.SeedSource {
	case "rest":
		return seed.NewREST(cfg.SeedBaseURL, cfg.SeedTimeout), nil, nil
	case "sqlite":
		s, err := seed.NewSQLite(cfg.SeedSQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("config: unknown seed source %q", cfg.SeedSource)
	}
}

func buildSource(cfg *config.Config, symbols []string, m *metrics.Metrics) (feed.Source, error) {
	switch cfg.FeedSource {
	case "mexc":
		src := feed.NewMEXC(cfg.FeedURL, symbols, cfg.FeedPingInterval)
		src.OnMalformed = func() { m.MalformedTicks.Inc() }
		src.OnTickDrop = func() { m.DroppedTicks.Inc() }
		return src, nil
	case "binance":
		src := feed.NewBinance(symbols)
		src.OnMalformed = func() { m.MalformedTicks.Inc() }
		src.OnTickDrop = func() { m.DroppedTicks.Inc() }
		return src, nil
	default:
		return nil, fmt.Errorf("config: unknown feed source %q", cfg.FeedSource)
	}
}
