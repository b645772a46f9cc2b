// Package pnl provides pure, exchange-accurate trade accounting. All
// functions are stateless and side-effect free; invalid inputs are fatal
// errors that must propagate unmodified, because proceeding silently
// would corrupt the trade ledger.
package pnl

import (
	"errors"

	"tradelab/internal/domain"
)

// Accounting errors.
var (
	ErrInvalidPrice     = errors.New("pnl: price must be positive")
	ErrInvalidQuantity  = errors.New("pnl: quantity must be positive")
	ErrInvalidFeeRate   = errors.New("pnl: fee rate out of range")
	ErrInvalidDirection = errors.New("pnl: unknown direction")
	ErrNoCloses         = errors.New("pnl: no partial closes supplied")
)

// maxFeeRate bounds sane exchange fee rates (10%); anything beyond is a
// caller bug, not a market condition.
const maxFeeRate = 0.1

// Result is the accounting outcome of one close (or one aggregate of
// partial closes). All monetary values are quote-currency units;
// PnLPercent is relative to the entry notional.
type Result struct {
	PnLGross   float64
	Fees       float64
	PnLNet     float64
	PnLPercent float64
}

// Calculate computes the PnL of closing `quantity` at exitPrice.
// Fees apply to both entry and exit notional.
func Calculate(direction domain.Direction, entryPrice, exitPrice, quantity, feeRate float64) (Result, error) {
	if err := validate(direction, entryPrice, feeRate); err != nil {
		return Result{}, err
	}
	if exitPrice <= 0 {
		return Result{}, ErrInvalidPrice
	}
	if quantity <= 0 {
		return Result{}, ErrInvalidQuantity
	}

	sign := 1.0
	if direction == domain.DirectionShort {
		sign = -1.0
	}

	gross := (exitPrice - entryPrice) * quantity * sign
	fees := (entryPrice + exitPrice) * quantity * feeRate
	net := gross - fees

	entryNotional := entryPrice * quantity
	return Result{
		PnLGross:   gross,
		Fees:       fees,
		PnLNet:     net,
		PnLPercent: net / entryNotional * 100,
	}, nil
}

// PartialClose is one partial exit: a quantity closed at a price.
type PartialClose struct {
	Price    float64
	Quantity float64
}

// CalculatePartialCloses aggregates PnL over a sequence of partial
// closes, each weighted by its own quantity and exit price. It must not
// degrade to (finalExit-entry)*totalQuantity: that shortcut is a known
// source of large discrepancies against real settlement.
func CalculatePartialCloses(direction domain.Direction, entryPrice float64, closes []PartialClose, feeRate float64) (Result, error) {
	if len(closes) == 0 {
		return Result{}, ErrNoCloses
	}

	var agg Result
	var totalQty float64
	for _, c := range closes {
		r, err := Calculate(direction, entryPrice, c.Price, c.Quantity, feeRate)
		if err != nil {
			return Result{}, err
		}
		agg.PnLGross += r.PnLGross
		agg.Fees += r.Fees
		agg.PnLNet += r.PnLNet
		totalQty += c.Quantity
	}
	agg.PnLPercent = agg.PnLNet / (entryPrice * totalQty) * 100
	return agg, nil
}

// CalculateBreakeven returns the exit price at which net PnL is exactly
// zero, accounting for fees on both entry and exit notional. With a zero
// fee rate it returns the entry price exactly.
func CalculateBreakeven(direction domain.Direction, entryPrice, feeRate float64) (float64, error) {
	if err := validate(direction, entryPrice, feeRate); err != nil {
		return 0, err
	}
	// LONG:  (x-e)q - (e+x)q f = 0  =>  x = e(1+f)/(1-f)
	// SHORT: (e-x)q - (e+x)q f = 0  =>  x = e(1-f)/(1+f)
	if direction == domain.DirectionLong {
		return entryPrice * (1 + feeRate) / (1 - feeRate), nil
	}
	return entryPrice * (1 - feeRate) / (1 + feeRate), nil
}

func validate(direction domain.Direction, entryPrice, feeRate float64) error {
	if direction != domain.DirectionLong && direction != domain.DirectionShort {
		return ErrInvalidDirection
	}
	if entryPrice <= 0 {
		return ErrInvalidPrice
	}
	if feeRate < 0 || feeRate >= maxFeeRate {
		return ErrInvalidFeeRate
	}
	return nil
}
