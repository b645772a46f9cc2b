package marketdata

import (
	"io"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"

	"tradelab/internal/observability"
)

func testClient() *Client {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &Client{
		handlers: Handlers{
			OnCandle: func(CandleUpdate) { panic("handler must not see a dropped event") },
		},
		log: logger.WithField("component", "test"),
		now: func() int64 { return 0 },
	}
}

func TestClient_UndecodableEventCounted(t *testing.T) {
	stream := "solusdt@kline_1m"
	counter := observability.DefaultMetrics.FeedEventsDropped.WithLabelValues(stream)
	before := testutil.ToFloat64(counter)

	// An empty kline payload fails OHLC validation during decode.
	testClient().handleMessage([]byte(`{"stream":"` + stream + `","data":{"k":{}}}`))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("dropped count delta = %v, want 1", got)
	}
}

func TestClient_MalformedFrameCounted(t *testing.T) {
	counter := observability.DefaultMetrics.FeedEventsDropped.WithLabelValues("unknown")
	before := testutil.ToFloat64(counter)

	testClient().handleMessage([]byte(`{not json`))

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Errorf("dropped count delta = %v, want 1", got)
	}
}
