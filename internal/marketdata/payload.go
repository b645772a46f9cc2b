package marketdata

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Stream name suffixes used for dispatch. Combined-stream messages name
// their source stream, e.g. "btcusdt@kline_1m" or "btcusdt@aggTrade".
const (
	streamKline      = "@kline"
	streamAggTrade   = "@aggTrade"
	streamBookTicker = "@bookTicker"
)

// combinedEnvelope is the outer frame of a combined-stream message.
type combinedEnvelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// klineEvent carries one candle update. Prices and volume arrive as
// strings on the wire.
type klineEvent struct {
	Symbol string       `json:"s"`
	Kline  klinePayload `json:"k"`
}

type klinePayload struct {
	OpenTime int64 `json:"t"`
	// CloseTime must carry an explicit tag: without it the wire key "T"
	// case-insensitively matches OpenTime's "t" and overwrites it.
	CloseTime int64  `json:"T"`
	Open      string `json:"o"`
	High      string `json:"h"`
	Low       string `json:"l"`
	Close     string `json:"c"`
	Volume    string `json:"v"`
	Closed    bool   `json:"x"`
}

// aggTradeEvent carries one aggregated trade. IsBuyerMaker true means
// the aggressor was a seller.
type aggTradeEvent struct {
	Symbol       string `json:"s"`
	Price        string `json:"p"`
	Quantity     string `json:"q"`
	TradeTime    int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
}

// bookTickerEvent carries the best bid/ask of the book.
type bookTickerEvent struct {
	UpdateID int64  `json:"u"`
	Symbol   string `json:"s"`
	BidPrice string `json:"b"`
	BidQty   string `json:"B"`
	AskPrice string `json:"a"`
	AskQty   string `json:"A"`
}

// streamKind extracts the dispatch suffix from a stream name.
func streamKind(stream string) string {
	i := strings.Index(stream, "@")
	if i < 0 {
		return ""
	}
	suffix := stream[i:]
	// Kline streams carry an interval: "@kline_1m".
	if strings.HasPrefix(suffix, streamKline) {
		return streamKline
	}
	return suffix
}

func parseDecimal(field, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return v, nil
}
