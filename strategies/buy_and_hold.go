package strategies

import (
	"time"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
	"github.com/rustyeddy/daywalker/sim"
)

// BuyAndHold buys a fixed number of shares at the first opening auction
// where the limit allows, then sits on the position. A zero Limit means
// take whatever the open prints, implemented as a very high limit.
type BuyAndHold struct {
	Symbol string
	Size   float64
	Limit  float64

	bought bool
}

func (s *BuyAndHold) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if s.bought {
		return nil
	}
	limit := s.Limit
	if limit == 0 {
		limit = 1e12
	}
	if _, err := b.LimitOnOpen(s.Symbol, limit, s.Size, true, nil); err != nil {
		return err
	}
	return nil
}

func (s *BuyAndHold) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if !s.bought && len(fills) > 0 {
		s.bought = true
		b.Log("entry", map[string]any{
			"price": fills[0].Price,
			"size":  fills[0].Size,
		})
	}
	b.Log("values", map[string]any{
		"cash":     b.Cash(),
		"position": len(b.Positions()),
	})
	return nil
}

func init() {
	Register("buy_and_hold", func(params map[string]any) (sim.Strategy, error) {
		symbol, err := stringParam(params, "symbol")
		if err != nil {
			return nil, err
		}
		size, err := floatParam(params, "size")
		if err != nil {
			return nil, err
		}
		limit, _ := floatParam(params, "limit")
		return &BuyAndHold{Symbol: symbol, Size: size, Limit: limit}, nil
	})
}
