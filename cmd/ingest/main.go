package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"tradelab/internal/domain"
	"tradelab/internal/marketdata"
	"tradelab/internal/momentum"
	"tradelab/internal/observability"
	"tradelab/internal/storage"
	chstore "tradelab/internal/storage/clickhouse"
	"tradelab/internal/storage/migrations"
)

const flushInterval = 5 * time.Second

func main() {
	endpoint := flag.String("ws-endpoint", "wss://stream.binance.com:9443", "Exchange WebSocket endpoint")
	symbols := flag.String("symbols", "", "Comma-separated symbols, e.g. btcusdt,ethusdt (required)")
	interval := flag.String("interval", "1m", "Kline interval")
	withTicks := flag.Bool("ticks", true, "Ingest aggTrade ticks")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string (required)")
	metricsAddr := flag.String("metrics-addr", ":9090", "Prometheus metrics listen address")

	// Spike detection over the live tick flow
	detectSpikes := flag.Bool("detect-spikes", false, "Log momentum spikes on the tick flow")
	minDeltaRatio := flag.Float64("min-delta-ratio", 2.0, "Spike threshold ratio")
	detectionWindowMs := flag.Int64("detection-window-ms", 10_000, "Spike detection window (ms)")

	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if *symbols == "" {
		log.Fatal("--symbols is required")
	}
	if *clickhouseDSN == "" {
		log.Fatal("--clickhouse-dsn is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.WithField("signal", sig).Info("shutting down")
		cancel()
	}()

	conn, err := migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
	if err != nil {
		log.WithError(err).Fatal("clickhouse setup failed")
	}
	defer conn.Close()

	candleStore := chstore.NewCandleStore(conn)
	tickStore := chstore.NewTickStore(conn)

	var streams []string
	symList := strings.Split(*symbols, ",")
	for _, sym := range symList {
		sym = strings.TrimSpace(strings.ToLower(sym))
		streams = append(streams, sym+"@kline_"+*interval)
		if *withTicks {
			streams = append(streams, sym+"@aggTrade")
		}
	}

	buf := newBuffer(candleStore, tickStore, log)

	var analyzers map[string]*momentum.TickDeltaAnalyzer
	if *detectSpikes {
		analyzers = make(map[string]*momentum.TickDeltaAnalyzer)
		cfg := momentum.Config{
			MinDeltaRatio:     *minDeltaRatio,
			DetectionWindowMs: *detectionWindowMs,
			MinEventCount:     10,
			MinVolumeNotional: 0,
			MaxConfidence:     1.0,
		}
		for _, sym := range symList {
			sym = strings.TrimSpace(strings.ToUpper(sym))
			a, err := momentum.NewTickDeltaAnalyzer(cfg)
			if err != nil {
				log.WithError(err).Fatal("bad spike detection config")
			}
			analyzers[sym] = a
		}
	}

	handlers := marketdata.Handlers{
		OnCandle: func(upd marketdata.CandleUpdate) {
			if !upd.Closed {
				return
			}
			buf.addCandle(upd.Symbol, upd.Candle)
			observability.RecordCandleIngested()
		},
		OnTick: func(symbol string, tick domain.Tick) {
			buf.addTick(symbol, tick)
			observability.RecordTickIngested()

			a := analyzers[symbol]
			if a == nil {
				return
			}
			a.AddTick(tick)
			if spike := a.DetectSpike(); spike != nil {
				observability.RecordSpike(string(spike.Direction))
				log.WithFields(logrus.Fields{
					"symbol":     symbol,
					"direction":  spike.Direction,
					"ratio":      spike.Ratio,
					"confidence": spike.Confidence,
				}).Info("momentum spike")
			}
		},
	}

	client, err := marketdata.NewClient(ctx, *endpoint, streams, handlers, nil, log)
	if err != nil {
		log.WithError(err).Fatal("feed connect failed")
	}
	defer client.Close()

	go func() {
		http.Handle("/metrics", observability.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			log.WithError(err).Error("metrics server stopped")
		}
	}()

	log.WithFields(logrus.Fields{
		"streams": len(streams),
		"metrics": *metricsAddr,
	}).Info("ingesting")

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			// Final flush on its own context; the signal context is gone.
			flushCtx, flushCancel := context.WithTimeout(context.Background(), 10*time.Second)
			buf.flush(flushCtx)
			flushCancel()
			return
		case <-ticker.C:
			buf.flush(ctx)
		}
	}
}

// buffer batches events per symbol between flushes so the database sees
// bulk inserts, not per-event writes.
type buffer struct {
	mu      sync.Mutex
	candles map[string][]domain.Candle
	ticks   map[string][]domain.Tick

	candleStore storage.CandleStore
	tickStore   storage.TickStore
	log         *logrus.Logger
}

func newBuffer(cs storage.CandleStore, ts storage.TickStore, log *logrus.Logger) *buffer {
	return &buffer{
		candles:     make(map[string][]domain.Candle),
		ticks:       make(map[string][]domain.Tick),
		candleStore: cs,
		tickStore:   ts,
		log:         log,
	}
}

func (b *buffer) addCandle(symbol string, c domain.Candle) {
	b.mu.Lock()
	b.candles[symbol] = append(b.candles[symbol], c)
	b.mu.Unlock()
}

func (b *buffer) addTick(symbol string, t domain.Tick) {
	b.mu.Lock()
	b.ticks[symbol] = append(b.ticks[symbol], t)
	b.mu.Unlock()
}

// flush drains the buffers and writes them out. Failed batches are
// re-queued for the next flush; duplicates are dropped for good, the
// store already holds them.
func (b *buffer) flush(ctx context.Context) {
	b.mu.Lock()
	candles := b.candles
	ticks := b.ticks
	b.candles = make(map[string][]domain.Candle)
	b.ticks = make(map[string][]domain.Tick)
	b.mu.Unlock()

	for symbol, batch := range candles {
		started := time.Now()
		err := b.candleStore.InsertBulk(ctx, symbol, batch)
		observability.RecordDBQuery("clickhouse", "insert_candles", time.Since(started).Seconds(), err)
		switch {
		case err == nil:
		case errors.Is(err, storage.ErrDuplicateKey):
			b.log.WithField("symbol", symbol).Warn("dropped duplicate candle batch")
		default:
			b.log.WithError(err).WithField("symbol", symbol).Error("candle flush failed, re-queueing")
			b.mu.Lock()
			b.candles[symbol] = append(batch, b.candles[symbol]...)
			b.mu.Unlock()
		}
	}

	for symbol, batch := range ticks {
		started := time.Now()
		err := b.tickStore.InsertBulk(ctx, symbol, batch)
		observability.RecordDBQuery("clickhouse", "insert_ticks", time.Since(started).Seconds(), err)
		if err != nil {
			b.log.WithError(err).WithField("symbol", symbol).Error("tick flush failed, re-queueing")
			b.mu.Lock()
			b.ticks[symbol] = append(batch, b.ticks[symbol]...)
			b.mu.Unlock()
		}
	}
}
