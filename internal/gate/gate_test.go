package gate

import (
	"errors"
	"testing"

	"tradelab/internal/domain"
)

func testConfig() Config {
	return Config{
		MaxDistanceToEmaPercent:      2.0,
		CooldownPeriodMs:             60_000,
		MinCandles:                   10,
		VolumeMinMultiplierTrend:     0.5,
		VolumeMinMultiplierLevel:     1.5,
		MinDropFromRecentHighForLong: 1.0,
		EnableAthProtection:          true,
		EnableVolumeChecks:           true,
		EnableWickChecks:             true,
		EMAPeriod:                    5,
		VolumeRollingPeriod:          3,
		RecentHighLookback:           10,
		WickLookback:                 3,
		MaxWickBodyRatio:             1.5,
	}
}

// flatCandles builds n identical candles at the given price and volume.
// Flat history keeps every reference indicator at its neutral value.
func flatCandles(n int, price, volume float64) []domain.Candle {
	out := make([]domain.Candle, n)
	for i := range out {
		out[i] = domain.Candle{
			Timestamp: int64(i+1) * 60_000,
			Open:      price,
			High:      price,
			Low:       price,
			Close:     price,
			Volume:    volume,
		}
	}
	return out
}

// passingContext clears every rule: enough history, price 1.5% under the
// flat EMA and 1.5% under the recent high, no open position, no cooldown.
func passingContext() Context {
	return Context{
		Candles:   flatCandles(12, 100, 100),
		Direction: domain.DirectionLong,
		Price:     98.5,
		Now:       100 * 60_000,
		Strategy:  StrategyTrend,
	}
}

func mustGate(t *testing.T, cfg Config) *Gate {
	t.Helper()
	g, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestGate_CleanCandidatePasses(t *testing.T) {
	g := mustGate(t, testConfig())

	d := g.Check(passingContext())
	if d.Blocked {
		t.Fatalf("expected pass, blocked by %s: %s", d.BlockID, d.Reason)
	}
	if d.BlockID != "" || d.Reason != "" {
		t.Errorf("pass decision should be zero, got %+v", d)
	}
}

func TestGate_InsufficientHistory(t *testing.T) {
	g := mustGate(t, testConfig())

	ctx := passingContext()
	ctx.Candles = ctx.Candles[:9]

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockInsufficientHistory {
		t.Errorf("decision = %+v, want block %s", d, BlockInsufficientHistory)
	}
}

func TestGate_EMADistance(t *testing.T) {
	g := mustGate(t, testConfig())

	// Flat history holds the EMA at 100; price 103 is 3% away, limit 2%.
	ctx := passingContext()
	ctx.Price = 103

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockEMADistance {
		t.Errorf("decision = %+v, want block %s", d, BlockEMADistance)
	}
}

func TestGate_EMADistanceAtLimitPasses(t *testing.T) {
	g := mustGate(t, testConfig())

	// Exactly 2% from the EMA sits on the limit, not past it.
	ctx := passingContext()
	ctx.Price = 98

	d := g.Check(ctx)
	if d.Blocked {
		t.Errorf("expected pass at the limit, blocked by %s: %s", d.BlockID, d.Reason)
	}
}

func TestGate_PositionOpen(t *testing.T) {
	g := mustGate(t, testConfig())

	ctx := passingContext()
	ctx.HasOpenPosition = true

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockPositionOpen {
		t.Errorf("decision = %+v, want block %s", d, BlockPositionOpen)
	}
}

func TestGate_Cooldown(t *testing.T) {
	g := mustGate(t, testConfig())

	ctx := passingContext()
	ctx.LastSignalTime = ctx.Now - 30_000

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockCooldown {
		t.Errorf("decision = %+v, want block %s", d, BlockCooldown)
	}

	// A full cooldown period elapsed passes; zero means no prior signal.
	ctx.LastSignalTime = ctx.Now - 60_000
	if d := g.Check(ctx); d.Blocked {
		t.Errorf("expected pass after cooldown, blocked by %s", d.BlockID)
	}
	ctx.LastSignalTime = 0
	if d := g.Check(ctx); d.Blocked {
		t.Errorf("expected pass with no prior signal, blocked by %s", d.BlockID)
	}
}

func TestGate_VolumeFloor(t *testing.T) {
	g := mustGate(t, testConfig())

	// Last candle trades a tenth of the rolling average: ratio 0.1.
	ctx := passingContext()
	ctx.Candles[len(ctx.Candles)-1].Volume = 10

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockVolumeFloor {
		t.Errorf("decision = %+v, want block %s", d, BlockVolumeFloor)
	}
}

func TestGate_VolumeFloorPerStrategyKind(t *testing.T) {
	g := mustGate(t, testConfig())

	// Flat volume holds the ratio at 1.0: above the TREND floor 0.5,
	// below the LEVEL floor 1.5.
	ctx := passingContext()
	if d := g.Check(ctx); d.Blocked {
		t.Fatalf("TREND candidate blocked by %s: %s", d.BlockID, d.Reason)
	}

	ctx.Strategy = StrategyLevel
	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockVolumeFloor {
		t.Errorf("LEVEL decision = %+v, want block %s", d, BlockVolumeFloor)
	}
}

func TestGate_RejectionWick(t *testing.T) {
	g := mustGate(t, testConfig())

	// Upper wick 1.7 against body 0.2 on the latest candle.
	ctx := passingContext()
	last := len(ctx.Candles) - 1
	ctx.Candles[last] = domain.Candle{
		Timestamp: ctx.Candles[last].Timestamp,
		Open:      98,
		High:      99.9,
		Low:       98,
		Close:     98.2,
		Volume:    100,
	}

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockRejectionWick {
		t.Errorf("LONG decision = %+v, want block %s", d, BlockRejectionWick)
	}

	// The upper wick does not veto shorts; the lower wick is zero here.
	ctx.Direction = domain.DirectionShort
	if d := g.Check(ctx); d.Blocked {
		t.Errorf("SHORT candidate blocked by %s: %s", d.BlockID, d.Reason)
	}
}

func TestGate_NearRecentHigh(t *testing.T) {
	g := mustGate(t, testConfig())

	// Price 0.5% below the recent high of 100, floor is 1%.
	ctx := passingContext()
	ctx.Price = 99.5

	d := g.Check(ctx)
	if !d.Blocked || d.BlockID != BlockNearRecentHigh {
		t.Errorf("LONG decision = %+v, want block %s", d, BlockNearRecentHigh)
	}

	// The rule guards long entries only.
	ctx.Direction = domain.DirectionShort
	if d := g.Check(ctx); d.Blocked {
		t.Errorf("SHORT candidate blocked by %s: %s", d.BlockID, d.Reason)
	}
}

func TestGate_DisabledRulesSkipped(t *testing.T) {
	cfg := testConfig()
	cfg.EnableVolumeChecks = false
	cfg.EnableWickChecks = false
	cfg.EnableAthProtection = false
	g := mustGate(t, cfg)

	// Violates all three optional rules at once.
	ctx := passingContext()
	ctx.Candles[len(ctx.Candles)-1] = domain.Candle{
		Timestamp: ctx.Candles[len(ctx.Candles)-1].Timestamp,
		Open:      98,
		High:      100,
		Low:       98,
		Close:     98.2,
		Volume:    10,
	}
	ctx.Price = 99.5

	if d := g.Check(ctx); d.Blocked {
		t.Errorf("expected pass with rules disabled, blocked by %s: %s", d.BlockID, d.Reason)
	}
}

// TestGate_PriorityOrder pins the contract that the highest-priority
// violated rule is the one reported.
func TestGate_PriorityOrder(t *testing.T) {
	g := mustGate(t, testConfig())

	t.Run("HistoryBeforePosition", func(t *testing.T) {
		ctx := passingContext()
		ctx.Candles = ctx.Candles[:5]
		ctx.HasOpenPosition = true
		if d := g.Check(ctx); d.BlockID != BlockInsufficientHistory {
			t.Errorf("block id = %q, want %s", d.BlockID, BlockInsufficientHistory)
		}
	})

	t.Run("EMABeforeNearHigh", func(t *testing.T) {
		// Price above the recent high violates both the distance limit
		// and the near-high floor.
		ctx := passingContext()
		ctx.Price = 103
		if d := g.Check(ctx); d.BlockID != BlockEMADistance {
			t.Errorf("block id = %q, want %s", d.BlockID, BlockEMADistance)
		}
	})

	t.Run("PositionBeforeCooldown", func(t *testing.T) {
		ctx := passingContext()
		ctx.HasOpenPosition = true
		ctx.LastSignalTime = ctx.Now - 1_000
		if d := g.Check(ctx); d.BlockID != BlockPositionOpen {
			t.Errorf("block id = %q, want %s", d.BlockID, BlockPositionOpen)
		}
	})

	t.Run("CooldownBeforeVolume", func(t *testing.T) {
		ctx := passingContext()
		ctx.LastSignalTime = ctx.Now - 1_000
		ctx.Candles[len(ctx.Candles)-1].Volume = 10
		if d := g.Check(ctx); d.BlockID != BlockCooldown {
			t.Errorf("block id = %q, want %s", d.BlockID, BlockCooldown)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ZeroEMADistance", func(c *Config) { c.MaxDistanceToEmaPercent = 0 }},
		{"NegativeCooldown", func(c *Config) { c.CooldownPeriodMs = -1 }},
		{"MinCandlesBelowEMAPeriod", func(c *Config) { c.MinCandles = 4 }},
		{"MinCandlesBelowVolumeWindow", func(c *Config) { c.VolumeRollingPeriod = 15 }},
		{"ZeroTrendMultiplier", func(c *Config) { c.VolumeMinMultiplierTrend = 0 }},
		{"NegativeDropFloor", func(c *Config) { c.MinDropFromRecentHighForLong = -1 }},
		{"NegativeWickRatio", func(c *Config) { c.MaxWickBodyRatio = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("err = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestConfig_DefaultsApply(t *testing.T) {
	// Zero indicator settings take the documented defaults; MinCandles
	// must then cover EMA(50) and the 20-candle volume window.
	cfg := Config{
		MaxDistanceToEmaPercent: 5.0,
		MinCandles:              50,
	}
	if _, err := New(cfg); err != nil {
		t.Fatalf("New with defaults: %v", err)
	}

	cfg.MinCandles = 20
	if _, err := New(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("err = %v, want ErrInvalidConfig for MinCandles below default EMA period", err)
	}
}
