package strategies

import (
	"time"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
	"github.com/rustyeddy/daywalker/sim"
)

// Noop does nothing.
type Noop struct{}

func (Noop) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	return nil
}

func (Noop) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	return nil
}

func init() {
	Register("noop", func(map[string]any) (sim.Strategy, error) {
		return Noop{}, nil
	})
}
