package backtest

import (
	"fmt"
	"sort"

	"tradelab/internal/domain"
	"tradelab/internal/gate"
	"tradelab/internal/observability"
	"tradelab/internal/pnl"
)

// Engine replays a historical candle sequence through a deterministic
// position state machine: NONE -> OPEN -> (PARTIALLY_CLOSED)* -> CLOSED.
// It is single-threaded and synchronous by design; the same input always
// yields the same trade ledger, which is what makes parameter-sweep
// results comparable.
type Engine struct {
	cfg      Config
	gate     *gate.Gate
	strategy Strategy

	position       *domain.Position
	balance        float64
	peak           float64
	maxDrawdown    float64
	lastSignalTime int64
	lastSnapshot   int64

	trades []domain.ClosedTrade
	equity []domain.EquityPoint
}

// NewEngine creates an engine. Configuration is validated here, never at
// run time.
func NewEngine(cfg Config, strategy Strategy) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if strategy == nil {
		return nil, fmt.Errorf("%w: strategy is required", ErrInvalidConfig)
	}
	gateCfg := cfg.Gate
	if gateCfg.EMAPeriod == 0 && cfg.IndicatorPeriods.EMA > 0 {
		gateCfg.EMAPeriod = cfg.IndicatorPeriods.EMA
	}
	g, err := gate.New(gateCfg)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		gate:     g,
		strategy: strategy,
		balance:  cfg.InitialBalance,
		peak:     cfg.InitialBalance,
	}, nil
}

// Run replays the candle sequence and returns the aggregate result. Any
// position still open when the window ends is force-closed at the final
// close price under END_OF_BACKTEST; open risk is never dropped from
// statistics.
func (e *Engine) Run(candles []domain.Candle) (*Result, error) {
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	for i, c := range candles {
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("candle %d: %w", i, err)
		}
		if i > 0 && c.Timestamp < candles[i-1].Timestamp {
			return nil, ErrUnorderedCandles
		}
	}

	e.lastSnapshot = candles[0].Timestamp
	e.snapshot(candles[0].Timestamp)

	for i, c := range candles {
		if e.position != nil {
			if err := e.manageExits(c); err != nil {
				return nil, err
			}
		}
		if e.position == nil {
			if err := e.tryEnter(candles[:i+1], c); err != nil {
				return nil, err
			}
		}
		e.maybeSnapshot(c.Timestamp)
	}

	if e.position != nil {
		last := candles[len(candles)-1]
		if err := e.closeSlice(last.Timestamp, last.Close, e.position.Size, e.cfg.TakerFee, domain.ExitReasonEndOfBacktest); err != nil {
			return nil, err
		}
	}
	e.snapshotFinal(candles[len(candles)-1].Timestamp)

	res := computeResult(e.cfg, e.trades, e.equity, e.balance, e.maxDrawdown)
	res.Strategy = e.strategy.Name()
	return res, nil
}

// tryEnter asks the strategy for a candidate and runs it through the
// blocking gate. A strategy/indicator error skips the bar; it must not
// abort a multi-year replay.
func (e *Engine) tryEnter(history []domain.Candle, c domain.Candle) error {
	candidate, err := e.strategy.OnBar(history)
	if err != nil || candidate == nil {
		return nil
	}

	decision := e.gate.Check(gate.Context{
		Candles:         history,
		Direction:       candidate.Direction,
		Price:           c.Close,
		Now:             c.Timestamp,
		HasOpenPosition: e.position != nil,
		LastSignalTime:  e.lastSignalTime,
		Strategy:        e.cfg.Strategy.Kind,
	})
	if decision.Blocked {
		observability.RecordBlocked(decision.BlockID)
		return nil
	}

	e.openPosition(candidate.Direction, c)
	e.lastSignalTime = c.Timestamp
	return nil
}

func (e *Engine) openPosition(direction domain.Direction, c domain.Candle) {
	entry := c.Close
	size := e.cfg.PositionSizeNotional * e.cfg.Leverage / entry

	stop := entry * (1 - e.cfg.Strategy.StopLossPercent/100)
	if direction == domain.DirectionShort {
		stop = entry * (1 + e.cfg.Strategy.StopLossPercent/100)
	}

	levels := make([]domain.TakeProfitLevel, 0, len(e.cfg.Strategy.TakeProfits))
	for _, tp := range e.cfg.Strategy.TakeProfits {
		price := entry * (1 + tp.Percent/100)
		if direction == domain.DirectionShort {
			price = entry * (1 - tp.Percent/100)
		}
		levels = append(levels, domain.TakeProfitLevel{Price: price, ClosePercent: tp.ClosePercent})
	}
	// Levels fill in order of proximity to entry.
	sort.Slice(levels, func(i, j int) bool {
		return distance(levels[i].Price, entry) < distance(levels[j].Price, entry)
	})

	e.position = &domain.Position{
		EntryTime:    c.Timestamp,
		EntryPrice:   entry,
		Direction:    direction,
		Size:         size,
		OriginalSize: size,
		StopLoss:     stop,
		TakeProfits:  levels,
		State:        domain.PositionOpen,
	}
}

// manageExits resolves one bar against the open position. Policy, fixed
// for calibration comparability: the stop-loss is evaluated first at the
// intrabar worst-case price, then take-profit levels in proximity order
// at the intrabar best-case price.
func (e *Engine) manageExits(c domain.Candle) error {
	pos := e.position

	if stopHit(pos, c) {
		return e.closeSlice(c.Timestamp, pos.StopLoss, pos.Size, e.cfg.TakerFee, domain.ExitReasonStopLoss)
	}

	for len(pos.TakeProfits) > 0 {
		level := pos.TakeProfits[0]
		if !takeProfitHit(pos, level, c) {
			break
		}
		pos.TakeProfits = pos.TakeProfits[1:]

		qty := pos.OriginalSize * level.ClosePercent / 100
		if qty > pos.Size || len(pos.TakeProfits) == 0 {
			qty = pos.Size
		}
		if err := e.closeSlice(c.Timestamp, level.Price, qty, e.cfg.MakerFee, domain.ExitReasonTakeProfit); err != nil {
			return err
		}
		if e.position == nil {
			return nil // fully closed
		}
		if e.cfg.Strategy.MoveStopToBreakeven {
			be, err := pnl.CalculateBreakeven(pos.Direction, pos.EntryPrice, e.cfg.TakerFee)
			if err != nil {
				return err
			}
			pos.StopLoss = be
		}
	}
	return nil
}

// closeSlice closes qty of the open position at price and appends a
// ledger entry. PnL errors are fatal and propagate unmodified.
func (e *Engine) closeSlice(ts int64, price, qty, feeRate float64, reason string) error {
	pos := e.position
	r, err := pnl.Calculate(pos.Direction, pos.EntryPrice, price, qty, feeRate)
	if err != nil {
		return err
	}

	e.trades = append(e.trades, domain.ClosedTrade{
		RunID:      e.cfg.ID(),
		Symbol:     e.cfg.Symbol,
		EntryTime:  pos.EntryTime,
		EntryPrice: pos.EntryPrice,
		ExitTime:   ts,
		ExitPrice:  price,
		Direction:  pos.Direction,
		Size:       qty,
		PnLGross:   r.PnLGross,
		Fees:       r.Fees,
		PnLNet:     r.PnLNet,
		ExitReason: reason,
	})

	e.balance += r.PnLNet
	if e.balance > e.peak {
		e.peak = e.balance
	}
	if dd := e.peak - e.balance; dd > e.maxDrawdown {
		e.maxDrawdown = dd
	}

	pos.Size -= qty
	if pos.Size <= sizeEpsilon {
		pos.State = domain.PositionClosed
		e.position = nil
		return nil
	}
	pos.State = domain.PositionPartiallyClosed
	return nil
}

// sizeEpsilon absorbs float residue when partial close percents sum to
// exactly 100.
const sizeEpsilon = 1e-9

func (e *Engine) maybeSnapshot(ts int64) {
	if ts-e.lastSnapshot >= e.cfg.snapshotInterval() {
		e.snapshot(ts)
	}
}

func (e *Engine) snapshot(ts int64) {
	e.lastSnapshot = ts
	e.equity = append(e.equity, domain.EquityPoint{Timestamp: ts, Balance: e.balance})
}

// snapshotFinal closes the equity curve. When the interval snapshot
// already emitted a point at ts, that point is overwritten instead of
// duplicated; the force-close may have moved the balance after it.
func (e *Engine) snapshotFinal(ts int64) {
	if n := len(e.equity); n > 0 && e.equity[n-1].Timestamp == ts {
		e.equity[n-1].Balance = e.balance
		return
	}
	e.snapshot(ts)
}

// stopHit evaluates the stop against the intrabar worst case: the low
// for LONG, the high for SHORT. A bar that straddles both stop and
// target therefore always resolves to the stop.
func stopHit(pos *domain.Position, c domain.Candle) bool {
	if pos.Direction == domain.DirectionLong {
		return c.Low <= pos.StopLoss
	}
	return c.High >= pos.StopLoss
}

// takeProfitHit evaluates a target against the intrabar best case: the
// high for LONG, the low for SHORT.
func takeProfitHit(pos *domain.Position, level domain.TakeProfitLevel, c domain.Candle) bool {
	if pos.Direction == domain.DirectionLong {
		return c.High >= level.Price
	}
	return c.Low <= level.Price
}

func distance(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
