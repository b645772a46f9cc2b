// Package config loads backtest and sweep configuration from YAML
// files and maps it onto the typed configs of the engine, gate, and
// strategy packages.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"tradelab/internal/backtest"
	"tradelab/internal/gate"
	"tradelab/internal/strategy"
)

// ErrEmptySweep is returned when a sweep file expands to zero runs.
var ErrEmptySweep = errors.New("sweep config expands to no runs")

// TakeProfit is one exit target in a config file.
type TakeProfit struct {
	Percent      float64 `yaml:"percent"`
	ClosePercent float64 `yaml:"close_percent"`
}

// GateConf holds the blocking-rules section.
type GateConf struct {
	MaxDistanceToEmaPercent      float64 `yaml:"max_distance_to_ema_percent"`
	CooldownPeriodMs             int64   `yaml:"cooldown_period_ms"`
	MinCandles                   int     `yaml:"min_candles"`
	VolumeMinMultiplierTrend     float64 `yaml:"volume_min_multiplier_trend"`
	VolumeMinMultiplierLevel     float64 `yaml:"volume_min_multiplier_level"`
	MinDropFromRecentHighForLong float64 `yaml:"min_drop_from_recent_high_for_long"`
	EnableAthProtection          bool    `yaml:"enable_ath_protection"`
	EnableVolumeChecks           bool    `yaml:"enable_volume_checks"`
	EnableWickChecks             bool    `yaml:"enable_wick_checks"`
	EMAPeriod                    int     `yaml:"ema_period"`
	VolumeRollingPeriod          int     `yaml:"volume_rolling_period"`
	RecentHighLookback           int     `yaml:"recent_high_lookback"`
	WickLookback                 int     `yaml:"wick_lookback"`
	MaxWickBodyRatio             float64 `yaml:"max_wick_body_ratio"`
}

// IndicatorsConf holds the shared indicator periods. The gate and
// strategy sections override these where they set their own period.
type IndicatorsConf struct {
	EMA int `yaml:"ema"`
	RSI int `yaml:"rsi"`
	ATR int `yaml:"atr"`
}

// StrategyConf selects and parameterizes the signal strategy.
type StrategyConf struct {
	Type            string  `yaml:"type"`
	RSIPeriod       int     `yaml:"rsi_period"`
	Oversold        float64 `yaml:"oversold"`
	Overbought      float64 `yaml:"overbought"`
	BollingerPeriod int     `yaml:"bollinger_period"`
	ATRPeriod       int     `yaml:"atr_period"`
}

// BacktestConf is the top-level structure of one backtest run file.
type BacktestConf struct {
	RunID                string         `yaml:"run_id"`
	Symbol               string         `yaml:"symbol"`
	InitialBalance       float64        `yaml:"initial_balance"`
	PositionSizeNotional float64        `yaml:"position_size_notional"`
	Leverage             float64        `yaml:"leverage"`
	TakerFee             float64        `yaml:"taker_fee"`
	MakerFee             float64        `yaml:"maker_fee"`
	StopLossPercent      float64        `yaml:"stop_loss_percent"`
	TakeProfits          []TakeProfit   `yaml:"take_profits"`
	MoveStopToBreakeven  bool           `yaml:"move_stop_to_breakeven"`
	Kind                 string         `yaml:"kind"` // TREND | LEVEL
	IndicatorPeriods     IndicatorsConf `yaml:"indicator_periods"`
	Gate                 GateConf       `yaml:"gate"`
	Strategy             StrategyConf   `yaml:"strategy"`
}

// SweepConf is the top-level structure of a sweep file: one base run
// plus axes that expand into the cross product of their values.
type SweepConf struct {
	Base             BacktestConf `yaml:"base"`
	StopLossPercents []float64    `yaml:"stop_loss_percents"`
	Leverages        []float64    `yaml:"leverages"`
}

// LoadBacktest reads a YAML backtest file.
func LoadBacktest(path string) (*BacktestConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var cfg BacktestConf
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse YAML: %w", err)
	}
	return &cfg, nil
}

// LoadSweep reads a YAML sweep file.
func LoadSweep(path string) (*SweepConf, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file: %w", err)
	}

	var cfg SweepConf
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("cannot parse YAML: %w", err)
	}
	return &cfg, nil
}

// EngineConfig maps the file structure onto the engine's typed config.
func (c *BacktestConf) EngineConfig() backtest.Config {
	tps := make([]backtest.TakeProfitTarget, 0, len(c.TakeProfits))
	for _, tp := range c.TakeProfits {
		tps = append(tps, backtest.TakeProfitTarget{
			Percent:      tp.Percent,
			ClosePercent: tp.ClosePercent,
		})
	}

	kind := gate.StrategyTrend
	if c.Kind == string(gate.StrategyLevel) {
		kind = gate.StrategyLevel
	}

	return backtest.Config{
		RunID:                c.RunID,
		Symbol:               c.Symbol,
		InitialBalance:       c.InitialBalance,
		PositionSizeNotional: c.PositionSizeNotional,
		Leverage:             c.Leverage,
		TakerFee:             c.TakerFee,
		MakerFee:             c.MakerFee,
		IndicatorPeriods: backtest.IndicatorPeriods{
			EMA: c.IndicatorPeriods.EMA,
			RSI: c.IndicatorPeriods.RSI,
			ATR: c.IndicatorPeriods.ATR,
		},
		Strategy: backtest.StrategyParams{
			StopLossPercent:     c.StopLossPercent,
			TakeProfits:         tps,
			MoveStopToBreakeven: c.MoveStopToBreakeven,
			Kind:                kind,
		},
		Gate: gate.Config{
			MaxDistanceToEmaPercent:      c.Gate.MaxDistanceToEmaPercent,
			CooldownPeriodMs:             c.Gate.CooldownPeriodMs,
			MinCandles:                   c.Gate.MinCandles,
			VolumeMinMultiplierTrend:     c.Gate.VolumeMinMultiplierTrend,
			VolumeMinMultiplierLevel:     c.Gate.VolumeMinMultiplierLevel,
			MinDropFromRecentHighForLong: c.Gate.MinDropFromRecentHighForLong,
			EnableAthProtection:          c.Gate.EnableAthProtection,
			EnableVolumeChecks:           c.Gate.EnableVolumeChecks,
			EnableWickChecks:             c.Gate.EnableWickChecks,
			EMAPeriod:                    c.Gate.EMAPeriod,
			VolumeRollingPeriod:          c.Gate.VolumeRollingPeriod,
			RecentHighLookback:           c.Gate.RecentHighLookback,
			WickLookback:                 c.Gate.WickLookback,
			MaxWickBodyRatio:             c.Gate.MaxWickBodyRatio,
		},
	}
}

// StrategyConfig maps the strategy section onto the factory config.
// Periods left unset fall back to the shared indicator_periods section,
// then to the factory defaults.
func (c *BacktestConf) StrategyConfig() strategy.Config {
	rsi := c.Strategy.RSIPeriod
	if rsi == 0 {
		rsi = c.IndicatorPeriods.RSI
	}
	atr := c.Strategy.ATRPeriod
	if atr == 0 {
		atr = c.IndicatorPeriods.ATR
	}
	return strategy.Config{
		Type:            c.Strategy.Type,
		RSIPeriod:       rsi,
		Oversold:        c.Strategy.Oversold,
		Overbought:      c.Strategy.Overbought,
		BollingerPeriod: c.Strategy.BollingerPeriod,
		ATRPeriod:       atr,
	}
}

// Expand produces one engine config per point of the sweep grid. An
// empty axis means "keep the base value" and contributes one point.
func (c *SweepConf) Expand() ([]backtest.Config, error) {
	base := c.Base.EngineConfig()

	stops := c.StopLossPercents
	if len(stops) == 0 {
		stops = []float64{base.Strategy.StopLossPercent}
	}
	levs := c.Leverages
	if len(levs) == 0 {
		levs = []float64{base.Leverage}
	}

	var out []backtest.Config
	for _, sl := range stops {
		for _, lev := range levs {
			cfg := base
			cfg.RunID = "" // derive per-point run ids
			cfg.Strategy.StopLossPercent = sl
			cfg.Leverage = lev
			out = append(out, cfg)
		}
	}
	if len(out) == 0 {
		return nil, ErrEmptySweep
	}
	return out, nil
}
