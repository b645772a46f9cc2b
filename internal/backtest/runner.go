package backtest

import (
	"context"
	"fmt"
	"time"

	"tradelab/internal/domain"
	"tradelab/internal/observability"
	"tradelab/internal/storage"
)

// Runner loads history, executes runs, and persists their output. The
// engine itself performs no I/O; the runner is the boundary between the
// stores and the replay core.
type Runner struct {
	candleStore storage.CandleStore
	tradeStore  storage.TradeStore
	resultStore storage.ResultStore
}

// RunnerOptions contains configuration for creating a Runner. The trade
// and result stores are optional; a nil store skips persistence.
type RunnerOptions struct {
	CandleStore storage.CandleStore
	TradeStore  storage.TradeStore
	ResultStore storage.ResultStore
}

// NewRunner creates a backtest runner.
func NewRunner(opts RunnerOptions) *Runner {
	return &Runner{
		candleStore: opts.CandleStore,
		tradeStore:  opts.TradeStore,
		resultStore: opts.ResultStore,
	}
}

// Run executes one backtest over [from, to] (inclusive). A zero to
// means the full stored history for the symbol. Steps:
//  1. Load candles for the window
//  2. Build and run the engine
//  3. Persist the trade ledger
//  4. Persist the run summary
func (r *Runner) Run(ctx context.Context, cfg Config, strategy Strategy, from, to int64) (*Result, error) {
	var (
		candles []domain.Candle
		err     error
	)
	if to == 0 {
		candles, err = r.candleStore.GetBySymbol(ctx, cfg.Symbol)
	} else {
		candles, err = r.candleStore.GetByTimeRange(ctx, cfg.Symbol, from, to)
	}
	if err != nil {
		return nil, fmt.Errorf("load candles for %s: %w", cfg.Symbol, err)
	}

	engine, err := NewEngine(cfg, strategy)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res, err := engine.Run(candles)
	if err != nil {
		observability.RecordRun("error", time.Since(started).Seconds())
		return nil, err
	}
	observability.RecordRun("ok", time.Since(started).Seconds())
	observability.RecordReplayVolume(len(candles), res.TotalTrades)

	if r.tradeStore != nil && len(res.Trades) > 0 {
		if err := r.tradeStore.InsertBulk(ctx, res.Trades); err != nil {
			return nil, fmt.Errorf("persist trade ledger: %w", err)
		}
	}
	if r.resultStore != nil {
		if err := r.resultStore.Insert(ctx, res.Summary()); err != nil {
			return nil, fmt.Errorf("persist run summary: %w", err)
		}
	}

	return res, nil
}

// RunSweep executes one backtest per config against the same window.
// Each run gets a fresh strategy from the factory so indicator state
// never leaks across runs. Runs are sequential; cancellation is checked
// between runs, never mid-run, so every returned result is complete.
func (r *Runner) RunSweep(ctx context.Context, cfgs []Config, newStrategy func() Strategy, from, to int64) ([]*Result, error) {
	results := make([]*Result, 0, len(cfgs))
	for _, cfg := range cfgs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := r.Run(ctx, cfg, newStrategy(), from, to)
		if err != nil {
			return results, fmt.Errorf("run %s: %w", cfg.ID(), err)
		}
		results = append(results, res)
	}
	return results, nil
}
