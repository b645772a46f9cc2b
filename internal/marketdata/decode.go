package marketdata

import (
	"encoding/json"
	"fmt"

	"tradelab/internal/domain"
)

// CandleUpdate is one decoded kline event. Closed reports whether the
// bar is final; open bars repeat with the same timestamp until closed.
type CandleUpdate struct {
	Symbol string
	Candle domain.Candle
	Closed bool
}

func decodeKline(data []byte) (*CandleUpdate, error) {
	var ev klineEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode kline: %w", err)
	}

	var (
		upd CandleUpdate
		err error
	)
	upd.Symbol = ev.Symbol
	upd.Closed = ev.Kline.Closed
	upd.Candle.Timestamp = ev.Kline.OpenTime

	if upd.Candle.Open, err = parseDecimal("open", ev.Kline.Open); err != nil {
		return nil, err
	}
	if upd.Candle.High, err = parseDecimal("high", ev.Kline.High); err != nil {
		return nil, err
	}
	if upd.Candle.Low, err = parseDecimal("low", ev.Kline.Low); err != nil {
		return nil, err
	}
	if upd.Candle.Close, err = parseDecimal("close", ev.Kline.Close); err != nil {
		return nil, err
	}
	if upd.Candle.Volume, err = parseDecimal("volume", ev.Kline.Volume); err != nil {
		return nil, err
	}

	if err := upd.Candle.Validate(); err != nil {
		return nil, fmt.Errorf("kline %s@%d: %w", upd.Symbol, upd.Candle.Timestamp, err)
	}
	return &upd, nil
}

// decodeAggTrade maps buyer-is-maker onto the aggressor side: a resting
// buyer means the aggressor sold.
func decodeAggTrade(data []byte) (string, domain.Tick, error) {
	var ev aggTradeEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return "", domain.Tick{}, fmt.Errorf("decode aggTrade: %w", err)
	}

	tick := domain.Tick{
		Timestamp: ev.TradeTime,
		Side:      domain.SideBuy,
	}
	if ev.IsBuyerMaker {
		tick.Side = domain.SideSell
	}

	var err error
	if tick.Price, err = parseDecimal("price", ev.Price); err != nil {
		return "", domain.Tick{}, err
	}
	if tick.Size, err = parseDecimal("quantity", ev.Quantity); err != nil {
		return "", domain.Tick{}, err
	}
	return ev.Symbol, tick, nil
}

// decodeBookTicker builds a one-level snapshot. The stream carries no
// event time, so the caller supplies the receive timestamp.
func decodeBookTicker(data []byte, receivedAt int64) (domain.OrderBookSnapshot, error) {
	var ev bookTickerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return domain.OrderBookSnapshot{}, fmt.Errorf("decode bookTicker: %w", err)
	}

	var bid, ask domain.PriceLevel
	var err error
	if bid.Price, err = parseDecimal("bid price", ev.BidPrice); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if bid.Size, err = parseDecimal("bid qty", ev.BidQty); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if ask.Price, err = parseDecimal("ask price", ev.AskPrice); err != nil {
		return domain.OrderBookSnapshot{}, err
	}
	if ask.Size, err = parseDecimal("ask qty", ev.AskQty); err != nil {
		return domain.OrderBookSnapshot{}, err
	}

	return domain.OrderBookSnapshot{
		Symbol:    ev.Symbol,
		Bids:      []domain.PriceLevel{bid},
		Asks:      []domain.PriceLevel{ask},
		Timestamp: receivedAt,
		UpdateID:  ev.UpdateID,
	}, nil
}
