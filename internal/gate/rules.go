package gate

import (
	"fmt"
	"math"

	"tradelab/internal/domain"
	"tradelab/internal/indicator"
)

// orderedRules returns the chain in fixed priority order. The order is a
// contract: analytics rely on the highest-priority violated rule being
// the one reported.
func orderedRules() []rule {
	return []rule{
		{id: BlockInsufficientHistory, check: (*Gate).checkHistory},
		{id: BlockEMADistance, check: (*Gate).checkEMADistance},
		{id: BlockPositionOpen, check: (*Gate).checkPositionOpen},
		{id: BlockCooldown, check: (*Gate).checkCooldown},
		{
			id:      BlockVolumeFloor,
			enabled: func(c Config) bool { return c.EnableVolumeChecks },
			check:   (*Gate).checkVolumeFloor,
		},
		{
			id:      BlockRejectionWick,
			enabled: func(c Config) bool { return c.EnableWickChecks },
			check:   (*Gate).checkRejectionWick,
		},
		{
			id:      BlockNearRecentHigh,
			enabled: func(c Config) bool { return c.EnableAthProtection },
			check:   (*Gate).checkNearRecentHigh,
		},
	}
}

func (g *Gate) checkHistory(ctx *Context) (bool, string) {
	if len(ctx.Candles) < g.cfg.MinCandles {
		return true, fmt.Sprintf("history too short: %d candles, need %d", len(ctx.Candles), g.cfg.MinCandles)
	}
	return false, ""
}

// checkEMADistance guards against entering an already-extended move.
func (g *Gate) checkEMADistance(ctx *Context) (bool, string) {
	ema, err := indicator.NewEMA(g.cfg.EMAPeriod)
	if err != nil {
		return true, fmt.Sprintf("ema unavailable: %v", err)
	}
	v, err := ema.Calculate(closes(ctx.Candles))
	if err != nil || v <= 0 {
		// Fail safe: an unavailable reference average blocks the entry.
		return true, fmt.Sprintf("ema unavailable: %v", err)
	}
	dist := math.Abs(ctx.Price-v) / v * 100
	if dist > g.cfg.MaxDistanceToEmaPercent {
		return true, fmt.Sprintf("price %.2f%% from EMA(%d), limit %.2f%%", dist, g.cfg.EMAPeriod, g.cfg.MaxDistanceToEmaPercent)
	}
	return false, ""
}

// checkPositionOpen enforces single-position-at-a-time discipline.
func (g *Gate) checkPositionOpen(ctx *Context) (bool, string) {
	if ctx.HasOpenPosition {
		return true, "a position is already open"
	}
	return false, ""
}

func (g *Gate) checkCooldown(ctx *Context) (bool, string) {
	if ctx.LastSignalTime == 0 {
		return false, ""
	}
	elapsed := ctx.Now - ctx.LastSignalTime
	if elapsed < g.cfg.CooldownPeriodMs {
		return true, fmt.Sprintf("cooldown: %dms since last signal, need %dms", elapsed, g.cfg.CooldownPeriodMs)
	}
	return false, ""
}

func (g *Gate) checkVolumeFloor(ctx *Context) (bool, string) {
	multiplier := g.cfg.VolumeMinMultiplierTrend
	if ctx.Strategy == StrategyLevel {
		multiplier = g.cfg.VolumeMinMultiplierLevel
	}

	vr, err := indicator.NewVolumeRatio(indicator.VolumeCalculatorConfig{RollingPeriod: g.cfg.VolumeRollingPeriod})
	if err != nil {
		return true, fmt.Sprintf("volume ratio unavailable: %v", err)
	}
	ratio, err := vr.Calculate(volumes(ctx.Candles))
	if err != nil {
		return true, fmt.Sprintf("volume ratio unavailable: %v", err)
	}
	if ratio < multiplier {
		return true, fmt.Sprintf("volume ratio %.2f below %s floor %.2f", ratio, ctx.Strategy, multiplier)
	}
	return false, ""
}

// checkRejectionWick vetoes entries against recent rejection candles:
// long entries under prominent upper wicks, short entries over prominent
// lower wicks.
func (g *Gate) checkRejectionWick(ctx *Context) (bool, string) {
	recent := ctx.Candles
	if len(recent) > g.cfg.WickLookback {
		recent = recent[len(recent)-g.cfg.WickLookback:]
	}
	for _, c := range recent {
		var wick float64
		if ctx.Direction == domain.DirectionLong {
			wick = c.UpperWick()
		} else {
			wick = c.LowerWick()
		}
		if wick > g.cfg.MaxWickBodyRatio*c.Body() && wick > 0 {
			return true, fmt.Sprintf("rejection wick at %d: wick %.6f exceeds %.1fx body %.6f", c.Timestamp, wick, g.cfg.MaxWickBodyRatio, c.Body())
		}
	}
	return false, ""
}

// checkNearRecentHigh vetoes LONG entries priced too close to the
// highest high of a bounded lookback, not full history.
func (g *Gate) checkNearRecentHigh(ctx *Context) (bool, string) {
	if ctx.Direction != domain.DirectionLong {
		return false, ""
	}
	recent := ctx.Candles
	if len(recent) > g.cfg.RecentHighLookback {
		recent = recent[len(recent)-g.cfg.RecentHighLookback:]
	}
	high := 0.0
	for _, c := range recent {
		if c.High > high {
			high = c.High
		}
	}
	if high <= 0 {
		return false, ""
	}
	drop := (high - ctx.Price) / high * 100
	if drop < g.cfg.MinDropFromRecentHighForLong {
		return true, fmt.Sprintf("price %.2f%% below recent high, need %.2f%%", drop, g.cfg.MinDropFromRecentHighForLong)
	}
	return false, ""
}

func closes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func volumes(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Volume
	}
	return out
}
