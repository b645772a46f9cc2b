package backtest

import (
	"math"
	"testing"

	"tradelab/internal/domain"
)

func ledgerTrade(entryTime, exitTime int64, net float64) domain.ClosedTrade {
	return domain.ClosedTrade{
		RunID:      "r",
		Symbol:     "TESTUSDT",
		EntryTime:  entryTime,
		ExitTime:   exitTime,
		EntryPrice: 100,
		ExitPrice:  100,
		Direction:  domain.DirectionLong,
		Size:       1,
		PnLNet:     net,
	}
}

func TestComputeResult_Statistics(t *testing.T) {
	trades := []domain.ClosedTrade{
		ledgerTrade(0, 60_000, 10),
		ledgerTrade(60_000, 180_000, -10),
		ledgerTrade(180_000, 270_000, 20),
	}

	res := computeResult(engineConfig(), trades, nil, 1_020, 10)

	if res.TotalTrades != 3 {
		t.Errorf("total trades = %d, want 3", res.TotalTrades)
	}
	if math.Abs(res.WinRate-2.0/3.0) > 1e-9 {
		t.Errorf("win rate = %v, want 2/3", res.WinRate)
	}
	if res.GrossProfit != 30 || res.GrossLoss != 10 {
		t.Errorf("gross = +%v/-%v, want +30/-10", res.GrossProfit, res.GrossLoss)
	}
	if res.NetPnL != 20 {
		t.Errorf("net = %v, want 20", res.NetPnL)
	}
	if math.Abs(res.ProfitFactor-3) > 1e-9 {
		t.Errorf("profit factor = %v, want 3", res.ProfitFactor)
	}
	// Average win 15 over average loss 10.
	if math.Abs(res.WinLossRatio-1.5) > 1e-9 {
		t.Errorf("win/loss ratio = %v, want 1.5", res.WinLossRatio)
	}
	// Holding times: 60s, 120s, 90s -> mean 90s.
	if res.AvgHoldingTimeMs != 90_000 {
		t.Errorf("avg holding = %d, want 90000", res.AvgHoldingTimeMs)
	}
	if res.MaxDrawdown != 10 {
		t.Errorf("max drawdown = %v, want 10", res.MaxDrawdown)
	}
}

func TestComputeResult_EmptyLedger(t *testing.T) {
	res := computeResult(engineConfig(), nil, nil, 1_000, 0)
	if res.TotalTrades != 0 || res.NetPnL != 0 || res.SharpeRatio != 0 {
		t.Errorf("empty ledger result = %+v, want zero statistics", res)
	}
}

func TestSharpe(t *testing.T) {
	if s := sharpe([]float64{1.0}); s != 0 {
		t.Errorf("single-sample sharpe = %v, want 0", s)
	}
	// Identical returns have zero dispersion; the ratio is defined as 0,
	// not infinity.
	if s := sharpe([]float64{2, 2, 2}); s != 0 {
		t.Errorf("zero-dispersion sharpe = %v, want 0", s)
	}

	// mean 1, sample sd 1: sharpe = sqrt(365).
	got := sharpe([]float64{0, 1, 2})
	want := math.Sqrt(AnnualizationFactor)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("sharpe = %v, want %v", got, want)
	}
}

func TestBoundedStatRatio(t *testing.T) {
	if r := boundedStatRatio(5, 0); r != maxStatRatio {
		t.Errorf("profit with no losses = %v, want cap %v", r, maxStatRatio)
	}
	if r := boundedStatRatio(0, 0); r != 0 {
		t.Errorf("no trades either side = %v, want 0", r)
	}
	if r := boundedStatRatio(5_000, 1); r != maxStatRatio {
		t.Errorf("oversized ratio = %v, want cap %v", r, maxStatRatio)
	}
	if r := boundedStatRatio(30, 10); r != 3 {
		t.Errorf("ratio = %v, want 3", r)
	}
}

func TestResult_Summary(t *testing.T) {
	res := &Result{
		RunID:          "r1",
		Symbol:         "TESTUSDT",
		Strategy:       "stub",
		InitialBalance: 1_000,
		FinalBalance:   1_050,
		TotalTrades:    4,
		WinRate:        0.75,
		NetPnL:         50,
		EquityCurve: []domain.EquityPoint{
			{Timestamp: 60_000, Balance: 1_000},
			{Timestamp: 240_000, Balance: 1_050},
		},
	}

	s := res.Summary()
	if s.RunID != "r1" || s.Symbol != "TESTUSDT" || s.Strategy != "stub" {
		t.Errorf("identity fields = %+v", s)
	}
	if s.StartTime != 60_000 || s.EndTime != 240_000 {
		t.Errorf("window = [%d, %d], want [60000, 240000]", s.StartTime, s.EndTime)
	}
	if s.FinalBalance != 1_050 || s.NetPnL != 50 || s.TotalTrades != 4 {
		t.Errorf("stats not carried: %+v", s)
	}
}
