// Package gate implements the blocking-rules veto chain that filters
// trade candidates. Rules are evaluated in fixed priority order and the
// first rule that blocks wins; they are a strict veto chain, never a
// weighted score. The policy is deliberate: miss a trade, never take a
// bad one.
package gate

import (
	"errors"
	"fmt"

	"tradelab/internal/domain"
)

// ErrInvalidConfig is returned at construction for out-of-range rule
// settings.
var ErrInvalidConfig = errors.New("invalid blocking rules configuration")

// Stable block identifiers, used for analytics. Reasons are free text;
// ids are not.
const (
	BlockInsufficientHistory = "insufficient_history"
	BlockEMADistance         = "ema_distance"
	BlockPositionOpen        = "position_open"
	BlockCooldown            = "cooldown"
	BlockVolumeFloor         = "volume_floor"
	BlockRejectionWick       = "rejection_wick"
	BlockNearRecentHigh      = "near_recent_high"
)

// StrategyKind scopes the volume-floor multiplier.
type StrategyKind string

// Strategy kinds.
const (
	StrategyTrend StrategyKind = "TREND"
	StrategyLevel StrategyKind = "LEVEL"
)

// Config holds the blocking-rules settings. Each rule is independently
// toggleable.
type Config struct {
	MaxDistanceToEmaPercent      float64
	CooldownPeriodMs             int64
	MinCandles                   int
	VolumeMinMultiplierTrend     float64
	VolumeMinMultiplierLevel     float64
	MinDropFromRecentHighForLong float64
	EnableAthProtection          bool
	EnableVolumeChecks           bool
	EnableWickChecks             bool

	// Reference-indicator settings. Zero values take the defaults below.
	EMAPeriod           int
	VolumeRollingPeriod int
	RecentHighLookback  int
	WickLookback        int
	MaxWickBodyRatio    float64
}

// Defaults for reference-indicator settings.
const (
	DefaultEMAPeriod           = 50
	DefaultVolumeRollingPeriod = 20
	DefaultRecentHighLookback  = 50
	DefaultWickLookback        = 3
	DefaultMaxWickBodyRatio    = 1.5
)

func (c Config) withDefaults() Config {
	if c.EMAPeriod == 0 {
		c.EMAPeriod = DefaultEMAPeriod
	}
	if c.VolumeRollingPeriod == 0 {
		c.VolumeRollingPeriod = DefaultVolumeRollingPeriod
	}
	if c.RecentHighLookback == 0 {
		c.RecentHighLookback = DefaultRecentHighLookback
	}
	if c.WickLookback == 0 {
		c.WickLookback = DefaultWickLookback
	}
	if c.MaxWickBodyRatio == 0 {
		c.MaxWickBodyRatio = DefaultMaxWickBodyRatio
	}
	return c
}

// Validate rejects out-of-range settings at construction time, never at
// check time.
func (c Config) Validate() error {
	if c.MaxDistanceToEmaPercent <= 0 {
		return fmt.Errorf("%w: MaxDistanceToEmaPercent must be positive", ErrInvalidConfig)
	}
	if c.CooldownPeriodMs < 0 {
		return fmt.Errorf("%w: CooldownPeriodMs must not be negative", ErrInvalidConfig)
	}
	if c.EMAPeriod < 1 || c.VolumeRollingPeriod < 1 {
		return fmt.Errorf("%w: indicator periods must be positive", ErrInvalidConfig)
	}
	// The history floor must cover every reference indicator so that
	// rules past the first can never see InsufficientData.
	if c.MinCandles < c.EMAPeriod || c.MinCandles < c.VolumeRollingPeriod+1 {
		return fmt.Errorf("%w: MinCandles must cover indicator windows", ErrInvalidConfig)
	}
	if c.EnableVolumeChecks && (c.VolumeMinMultiplierTrend <= 0 || c.VolumeMinMultiplierLevel <= 0) {
		return fmt.Errorf("%w: volume multipliers must be positive", ErrInvalidConfig)
	}
	if c.EnableAthProtection && c.MinDropFromRecentHighForLong < 0 {
		return fmt.Errorf("%w: MinDropFromRecentHighForLong must not be negative", ErrInvalidConfig)
	}
	if c.WickLookback < 1 || c.RecentHighLookback < 1 || c.MaxWickBodyRatio <= 0 {
		return fmt.Errorf("%w: lookbacks and wick ratio must be positive", ErrInvalidConfig)
	}
	return nil
}

// Context is everything a check needs about one trade candidate.
type Context struct {
	Candles         []domain.Candle // time-ordered history, newest last
	Direction       domain.Direction
	Price           float64 // proposed entry price
	Now             int64   // epoch ms of the candidate
	HasOpenPosition bool
	LastSignalTime  int64 // epoch ms of last accepted signal, 0 = never
	Strategy        StrategyKind
}

// Decision is the gate verdict for one candidate.
type Decision struct {
	Blocked bool
	BlockID string
	Reason  string
}

// Gate evaluates the ordered rule chain.
type Gate struct {
	cfg   Config
	rules []rule
}

// rule is one independent predicate in the chain. check returns a
// human-readable reason when it blocks.
type rule struct {
	id      string
	enabled func(cfg Config) bool
	check   func(g *Gate, ctx *Context) (bool, string)
}

// New creates a gate with the fixed-priority rule chain.
func New(cfg Config) (*Gate, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Gate{cfg: cfg}
	g.rules = orderedRules()
	return g, nil
}

// Check runs the chain. The first rule that blocks wins and evaluation
// stops; a zero Decision means the candidate passed.
func (g *Gate) Check(ctx Context) Decision {
	for _, r := range g.rules {
		if r.enabled != nil && !r.enabled(g.cfg) {
			continue
		}
		if blocked, reason := r.check(g, &ctx); blocked {
			return Decision{Blocked: true, BlockID: r.id, Reason: reason}
		}
	}
	return Decision{}
}
