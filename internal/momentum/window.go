package momentum

import "tradelab/internal/domain"

// flowEvent is one signed-volume observation inside the detection window.
type flowEvent struct {
	timestamp int64
	size      float64
	notional  float64
	side      domain.Side
}

// flowWindow is the bounded, time-pruned event history shared by both
// analyzers. "Now" is the timestamp of the latest ingested event, never
// the wall clock, so replays stay deterministic.
type flowWindow struct {
	cfg         Config
	events      []flowEvent
	latest      int64
	lastCleanup int64
}

func newFlowWindow(cfg Config) flowWindow {
	return flowWindow{cfg: cfg}
}

// add ingests one event and opportunistically prunes stale history.
func (w *flowWindow) add(e flowEvent) {
	w.events = append(w.events, e)
	if e.timestamp > w.latest {
		w.latest = e.timestamp
	}
	w.maybeCleanup()
}

// maybeCleanup prunes entries older than twice the detection window, at
// most once per cleanup interval. Deferring pruning by a bounded
// interval loses no correctness: sums below re-filter by window anyway.
func (w *flowWindow) maybeCleanup() {
	if w.latest-w.lastCleanup < w.cfg.cleanupInterval() {
		return
	}
	w.lastCleanup = w.latest

	cutoff := w.latest - 2*w.cfg.DetectionWindowMs
	kept := w.events[:0]
	for _, e := range w.events {
		if e.timestamp >= cutoff {
			kept = append(kept, e)
		}
	}
	w.events = kept
}

// sums aggregates buy volume, sell volume, notional and event count over
// [latest-window, latest].
func (w *flowWindow) sums() (buyVol, sellVol, notional float64, count int) {
	cutoff := w.latest - w.cfg.DetectionWindowMs
	for _, e := range w.events {
		if e.timestamp < cutoff {
			continue
		}
		if e.side == domain.SideBuy {
			buyVol += e.size
		} else {
			sellVol += e.size
		}
		notional += e.notional
		count++
	}
	return buyVol, sellVol, notional, count
}

// ratio returns buy/sell volume over the window. Both sides zero reads
// as neutral 1.0; a one-sided window is capped, never unbounded.
func (w *flowWindow) ratio() float64 {
	buy, sell, _, _ := w.sums()
	return boundedRatio(buy, sell)
}

func boundedRatio(buy, sell float64) float64 {
	switch {
	case buy == 0 && sell == 0:
		return 1.0
	case sell == 0:
		return RatioCap
	case buy == 0:
		return 1.0 / RatioCap
	}
	r := buy / sell
	if r > RatioCap {
		return RatioCap
	}
	if r < 1.0/RatioCap {
		return 1.0 / RatioCap
	}
	return r
}

// detectSpike applies the event-count and notional floors, then the
// ratio threshold. Thin windows return nil, not a low-confidence guess.
func (w *flowWindow) detectSpike() *Spike {
	buy, sell, notional, count := w.sums()
	if count < w.cfg.MinEventCount || notional < w.cfg.MinVolumeNotional {
		return nil
	}

	r := boundedRatio(buy, sell)

	var direction domain.Direction
	var excess float64
	switch {
	case r >= w.cfg.MinDeltaRatio:
		direction = domain.DirectionLong
		excess = r/w.cfg.MinDeltaRatio - 1
	case r <= 1.0/w.cfg.MinDeltaRatio:
		direction = domain.DirectionShort
		excess = (1.0/r)/w.cfg.MinDeltaRatio - 1
	default:
		return nil
	}

	confidence := baseConfidence + excess*confidenceSlope
	if confidence > w.cfg.MaxConfidence {
		confidence = w.cfg.MaxConfidence
	}

	return &Spike{
		Direction:  direction,
		Ratio:      r,
		Confidence: confidence,
		Timestamp:  w.latest,
		EventCount: count,
		Notional:   notional,
	}
}
