package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tradelab/internal/backtest"
	"tradelab/internal/config"
	"tradelab/internal/storage"
	chstore "tradelab/internal/storage/clickhouse"
	"tradelab/internal/storage/csvfile"
	"tradelab/internal/storage/memory"
	"tradelab/internal/storage/migrations"
	pgstore "tradelab/internal/storage/postgres"
	"tradelab/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML backtest config (required)")
	from := flag.Int64("from", 0, "Window start (epoch ms, 0 = full history)")
	to := flag.Int64("to", 0, "Window end (epoch ms, 0 = full history)")

	// Storage
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage")
	candlesCSV := flag.String("candles-csv", "", "CSV candle file for --use-memory")
	migrate := flag.Bool("migrate", false, "Apply migrations before running")

	// Output
	outputJSON := flag.Bool("json", false, "Output as JSON")
	persist := flag.Bool("persist", false, "Persist ledger and summary to storage")

	flag.Parse()

	// .env is optional; flags and real env win
	_ = godotenv.Load()

	logger := log.New(os.Stderr, "[backtest] ", log.LstdFlags)

	if *configPath == "" {
		logger.Fatal("--config is required")
	}

	conf, err := config.LoadBacktest(*configPath)
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	strat, err := strategy.FromConfig(conf.StrategyConfig())
	if err != nil {
		logger.Fatalf("build strategy: %v", err)
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
			if err := mem.InsertBulk(ctx, conf.Symbol, candles); err != nil {
				logger.Fatalf("seed candles: %v", err)
			}
			logger.Printf("Loaded %d candles from %s", len(candles), *candlesCSV)
		}
		candleStore = mem
		tradeStore = memory.NewTradeStore()
		resultStore = memory.NewResultStore()

	case *clickhouseDSN != "":
		var conn *chstore.Conn
		if *migrate {
			conn, err = migrations.RunClickhouseMigrations(ctx, *clickhouseDSN)
		} else {
			conn, err = chstore.NewConn(ctx, *clickhouseDSN)
		}
		if err != nil {
			logger.Fatalf("connect to clickhouse: %v", err)
		}
		defer conn.Close()
		candleStore = chstore.NewCandleStore(conn)

		// Ledger and summaries stay relational
		if *postgresDSN == "" {
			logger.Fatal("--postgres-dsn is required alongside --clickhouse-dsn (ledger and summaries)")
		}
		pool := mustPostgres(ctx, logger, *postgresDSN, *migrate)
		defer pool.Close()
		tradeStore = pgstore.NewTradeStore(pool)
		resultStore = pgstore.NewResultStore(pool)

	case *postgresDSN != "":
		pool := mustPostgres(ctx, logger, *postgresDSN, *migrate)
		defer pool.Close()
		candleStore = pgstore.NewCandleStore(pool)
		tradeStore = pgstore.NewTradeStore(pool)
		resultStore = pgstore.NewResultStore(pool)

	default:
		logger.Fatal("no storage selected: pass --use-memory, --postgres-dsn, or --clickhouse-dsn")
	}

	opts := backtest.RunnerOptions{CandleStore: candleStore}
	if *persist {
		opts.TradeStore = tradeStore
		opts.ResultStore = resultStore
	}
	runner := backtest.NewRunner(opts)

	cfg := conf.EngineConfig()
	logger.Printf("Running backtest: symbol=%s strategy=%s run=%s", cfg.Symbol, strat.Name(), cfg.ID())

	started := time.Now()
	res, err := runner.Run(ctx, cfg, strat, *from, *to)
	if err != nil {
		logger.Fatalf("backtest failed: %v", err)
	}
	logger.Printf("Finished in %v", time.Since(started))

	if *outputJSON {
		output, _ := json.MarshalIndent(res.Summary(), "", "  ")
		fmt.Println(string(output))
	} else {
		printResult(res)
	}
}

// mustPostgres connects, optionally migrating first, or exits.
func mustPostgres(ctx context.Context, logger *log.Logger, dsn string, migrate bool) *pgstore.Pool {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		logger.Fatalf("connect to postgres: %v", err)
	}
	if migrate {
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			logger.Fatalf("apply postgres migrations: %v", err)
		}
	}
	return pool
}

// printResult outputs a human-readable run summary.
func printResult(r *backtest.Result) {
	fmt.Println()
	fmt.Println("=== Backtest Result ===")
	fmt.Printf("Run ID:             %s\n", r.RunID)
	fmt.Printf("Symbol:             %s\n", r.Symbol)
	fmt.Printf("Strategy:           %s\n", r.Strategy)
	fmt.Println()

	fmt.Println("Balance:")
	fmt.Printf("  Initial:          %.2f\n", r.InitialBalance)
	fmt.Printf("  Final:            %.2f\n", r.FinalBalance)
	fmt.Printf("  Net PnL:          %.2f\n", r.NetPnL)
	fmt.Printf("  Max Drawdown:     %.2f\n", r.MaxDrawdown)
	fmt.Println()

	fmt.Println("Trades:")
	fmt.Printf("  Total:            %d\n", r.TotalTrades)
	fmt.Printf("  Win Rate:         %.1f%%\n", r.WinRate*100)
	fmt.Printf("  Profit Factor:    %.2f\n", r.ProfitFactor)
	fmt.Printf("  Win/Loss Ratio:   %.2f\n", r.WinLossRatio)
	fmt.Printf("  Sharpe (ann.):    %.2f\n", r.SharpeRatio)
	fmt.Printf("  Avg Hold:         %v\n", time.Duration(r.AvgHoldingTimeMs)*time.Millisecond)
}
