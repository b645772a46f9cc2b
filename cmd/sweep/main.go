package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradelab/internal/backtest"
	"tradelab/internal/config"
	"tradelab/internal/reporting"
	"tradelab/internal/storage"
	"tradelab/internal/storage/csvfile"
	"tradelab/internal/storage/memory"
	"tradelab/internal/storage/migrations"
	pgstore "tradelab/internal/storage/postgres"
	"tradelab/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML sweep config (required)")
	from := flag.Int64("from", 0, "Window start (epoch ms, 0 = full history)")
	to := flag.Int64("to", 0, "Window end (epoch ms, 0 = full history)")

	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	candlesCSV := flag.String("candles-csv", "", "CSV candle file for --use-memory")
	migrate := flag.Bool("migrate", false, "Apply migrations before running")
	persist := flag.Bool("persist", false, "Persist ledgers and summaries to storage")
	reportDir := flag.String("report-dir", "", "Write report.md and runs.csv into this directory")

	flag.Parse()

	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[sweep] ", log.LstdFlags)

	if *configPath == "" {
		logger.Fatal("--config is required")
	}

	conf, err := config.LoadSweep(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	cfgs, err := conf.Expand()
	if err != nil {
		logger.Fatalf("expand sweep: %v", err)
	}

	stratConf := conf.Base.StrategyConfig()
	// Fail fast on a bad strategy section before any run starts.
	if _, err := strategy.FromConfig(stratConf); err != nil {
		logger.Fatalf("build strategy: %v", err)
	}
	newStrategy := func() backtest.Strategy {
		s, err := strategy.FromConfig(stratConf)
		if err != nil {
			// Already validated above
			panic(err)
		}
		return s
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()
	}()

	var (
		candleStore storage.CandleStore
		tradeStore  storage.TradeStore
		resultStore storage.ResultStore
	)

	switch {
	case *useMemory:
		mem := memory.NewCandleStore()
		if *candlesCSV != "" {
			candles, err := csvfile.ReadCandlesFile(*candlesCSV)
			if err != nil {
				logger.Fatalf("load candles: %v", err)
			}
			if err := mem.InsertBulk(ctx, conf.Base.Symbol, candles); err != nil {
				logger.Fatalf("seed candles: %v", err)
			}
		}
		candleStore = mem
		tradeStore = memory.NewTradeStore()
		resultStore = memory.NewResultStore()

	case *postgresDSN != "":
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatalf("connect to postgres: %v", err)
		}
		defer pool.Close()
		if *migrate {
			if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
				logger.Fatalf("apply postgres migrations: %v", err)
			}
		}
		candleStore = pgstore.NewCandleStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
		resultStore = pgstore.NewResultStore(pool)

	default:
		logger.Fatal("no storage selected: pass --use-memory or --postgres-dsn")
	}

	opts := backtest.RunnerOptions{CandleStore: candleStore}
	if *persist {
		opts.TradeStore = tradeStore
		opts.ResultStore = resultStore
	}
	runner := backtest.NewRunner(opts)

	logger.Printf("Sweeping %d configurations", len(cfgs))
	started := time.Now()

	results, err := runner.RunSweep(ctx, cfgs, newStrategy, *from, *to)
	if err != nil {
		logger.Printf("sweep stopped after %d/%d runs: %v", len(results), len(cfgs), err)
	}
	logger.Printf("Completed %d runs in %v", len(results), time.Since(started))

	printTable(results)

	if *reportDir != "" {
		if err := writeReport(*reportDir, results); err != nil {
			logger.Fatalf("write report: %v", err)
		}
		logger.Printf("Report written to %s", *reportDir)
	}
}

// writeReport renders the sweep as report.md plus runs.csv.
func writeReport(dir string, results []*backtest.Result) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	report := reporting.NewGenerator().Build(results)
	if err := os.WriteFile(filepath.Join(dir, "report.md"), []byte(reporting.RenderMarkdown(report)), 0o644); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "runs.csv"), []byte(reporting.RenderCSV(report.Rows)), 0o644)
}

// printTable outputs one line per run, best net PnL last.
func printTable(results []*backtest.Result) {
	fmt.Println()
	fmt.Printf("%-40s %7s %8s %10s %8s %8s\n",
		"RUN", "TRADES", "WIN%", "NET_PNL", "PF", "SHARPE")
	for _, r := range results {
		fmt.Printf("%-40s %7d %7.1f%% %10.2f %8.2f %8.2f\n",
			r.RunID, r.TotalTrades, r.WinRate*100, r.NetPnL, r.ProfitFactor, r.SharpeRatio)
	}
}
