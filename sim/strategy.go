package sim

import (
	"fmt"
	"time"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
)

// Strategy is the callback protocol the clock drives. Implementations are
// supplied by the caller; the engine only holds this capability and never
// inspects the strategy beyond it.
//
// PreOpen runs before the day's opening auction, PreClose after the open and
// before the close. fills carries the fills executed since the previous
// callback; the full history stays available through the session. Any error
// returned aborts the run immediately, leaving everything recorded so far
// queryable.
type Strategy interface {
	PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error
	PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error
}

// CallbackError reports a strategy callback failure: which callback, on what
// simulated date, and the underlying error.
type CallbackError struct {
	Callback string
	Date     time.Time
	Err      error
}

func (e *CallbackError) Error() string {
	return fmt.Sprintf("strategy %s on %s: %v", e.Callback, e.Date.Format("2006-01-02"), e.Err)
}

func (e *CallbackError) Unwrap() error { return e.Err }
