package broker

import (
	"fmt"
	"time"

	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
	"github.com/rustyeddy/daywalker/pkg/id"
)

// LogFunc receives strategy diagnostics; the simulation clock wires it to
// its log store.
type LogFunc func(name string, date time.Time, fields map[string]any)

// Session is the broker surface handed to strategy callbacks. It pins every
// query to the clock's current date and phase, accepts orders for the next
// auction, and buffers fills for the trades-since-last-callback argument.
//
// Orders are accepted here but execute only when the auction runs; the
// returned handle reports the outcome afterwards.
type Session struct {
	sim  *Sim
	logf LogFunc

	date       time.Time
	phase      market.Phase
	pending    []*Order
	unreported []ledger.Fill
}

// NewSession wraps a broker for one run. logf may be nil.
func NewSession(sim *Sim, logf LogFunc) *Session {
	if logf == nil {
		logf = func(string, time.Time, map[string]any) {}
	}
	return &Session{sim: sim, logf: logf}
}

// SetClock moves the session to a new instant. Driven by the simulation
// clock, once per phase.
func (s *Session) SetClock(date time.Time, phase market.Phase) {
	s.date = date
	s.phase = phase
}

// Date returns the current simulated date.
func (s *Session) Date() time.Time { return s.date }

// Phase returns the current censorship phase.
func (s *Session) Phase() market.Phase { return s.phase }

// LimitOnOpen submits a buy or sell limit order for today's opening auction.
// Only valid during the pre-open callback; the open has already printed by
// pre-close.
func (s *Session) LimitOnOpen(symbol string, price, size float64, buy bool, meta map[string]any) (*Order, error) {
	if s.phase != market.PhasePreOpen {
		return nil, fmt.Errorf("%w: the open has passed, submit a limit-on-close order", ErrInvalidOrder)
	}
	return s.submit(symbol, price, size, buy, market.AuctionOpen, meta)
}

// LimitOnClose submits a buy or sell limit order for today's closing
// auction. Only valid during the pre-close callback.
func (s *Session) LimitOnClose(symbol string, price, size float64, buy bool, meta map[string]any) (*Order, error) {
	if s.phase != market.PhaseOpen {
		return nil, fmt.Errorf("%w: limit-on-close orders open up after the opening auction", ErrInvalidOrder)
	}
	return s.submit(symbol, price, size, buy, market.AuctionClose, meta)
}

func (s *Session) submit(symbol string, price, size float64, buy bool, auction market.Auction, meta map[string]any) (*Order, error) {
	if price <= 0 {
		return nil, fmt.Errorf("%w: limit price must be positive, got %v", ErrInvalidOrder, price)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: size must be positive, got %v", ErrInvalidOrder, size)
	}
	if _, err := s.sim.Asset(symbol); err != nil {
		return nil, err
	}
	o := &Order{
		ID:         id.New(),
		Symbol:     symbol,
		Buy:        buy,
		LimitPrice: price,
		Size:       size,
		Auction:    auction,
		Date:       s.date,
		Meta:       meta,
		Status:     Pending,
	}
	s.pending = append(s.pending, o)
	return o, nil
}

// TakePending hands the buffered orders to the auction and clears the
// buffer. Driven by the simulation clock.
func (s *Session) TakePending() []*Order {
	out := s.pending
	s.pending = nil
	return out
}

// Report buffers executed fills for the next callback's
// trades-since-last-call argument. Driven by the simulation clock.
func (s *Session) Report(fills []ledger.Fill) {
	s.unreported = append(s.unreported, fills...)
}

// TakeUnreported returns the fills executed since the previous callback.
func (s *Session) TakeUnreported() []ledger.Fill {
	out := s.unreported
	s.unreported = nil
	return out
}

// Log appends a record to the run's named strategy log.
func (s *Session) Log(name string, fields map[string]any) {
	s.logf(name, s.date, fields)
}

// Cash returns the broker's current cash balance.
func (s *Session) Cash() float64 { return s.sim.Cash() }

// Positions enumerates currently open lots, not netted.
func (s *Session) Positions() []ledger.Lot { return s.sim.Positions() }

// CapitalGains returns all realized gain records to date.
func (s *Session) CapitalGains() []ledger.CapitalGain { return s.sim.CapitalGains() }

// Trades returns every fill to date.
func (s *Session) Trades() []ledger.Fill { return s.sim.Trades() }

// Dividends returns every dividend applied to date.
func (s *Session) Dividends() []Dividend { return s.sim.Dividends() }

// StrategyValues returns the per-day value series recorded so far.
func (s *Session) StrategyValues() []DailyValue { return s.sim.StrategyValues() }

// HistoricalPrices returns the censored history of a symbol at the session's
// current instant: full prior bars, plus today's open once it has printed.
func (s *Session) HistoricalPrices(symbol string) ([]market.Bar, *float64, error) {
	return s.sim.HistoricalPrices(symbol, s.date, s.phase)
}
