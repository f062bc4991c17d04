package interval

import "time"

// Ticker is the periodic trigger driving Tick. Stop and Reset follow
// time.Ticker semantics: after either returns no stale tick is delivered.
type Ticker interface {
	C() <-chan time.Time
	Reset(d time.Duration)
	Stop()
}

type timeTicker struct {
	ticker *time.Ticker
}

func (t timeTicker) C() <-chan time.Time   { return t.ticker.C }
func (t timeTicker) Reset(d time.Duration) { t.ticker.Reset(d) }
func (t timeTicker) Stop()                 { t.ticker.Stop() }

// NewTimeTicker returns a stopped Ticker backed by time.Ticker.
func NewTimeTicker(d time.Duration) Ticker {
	t := time.NewTicker(d)
	t.Stop()
	return timeTicker{t}
}
