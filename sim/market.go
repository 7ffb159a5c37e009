// Package sim drives the day-by-day backtest clock: corporate actions,
// the pre-open callback, the opening auction, the pre-close callback, the
// closing auction, then the end-of-day value snapshot.
package sim

import (
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/journal"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
	"github.com/rustyeddy/daywalker/pkg/id"
)

// Market owns one backtest run: the broker, the strategy, any side data,
// the strategy log store and an optional journal.
type Market struct {
	start, end time.Time

	broker   *broker.Sim
	strategy Strategy
	other    *market.CensoredData
	logs     *LogStore
	journal  journal.Journal
	logger   *zap.Logger

	gainsJournaled int
}

// Result summarizes a completed run.
type Result struct {
	RunID string
	Start time.Time
	End   time.Time
	Days  int

	Fills []ledger.Fill
	Gains []ledger.CapitalGain

	Cash          float64
	LongEquities  float64
	ShortEquities float64
}

// NewMarket creates a clock over [start, end] driving the given broker.
func NewMarket(start, end time.Time, b *broker.Sim) *Market {
	return &Market{
		start:  start,
		end:    end,
		broker: b,
		other:  market.NewCensoredData(),
		logs:   NewLogStore(),
		logger: zap.NewNop(),
	}
}

// SetStrategy installs the strategy to drive. Required before Run.
func (m *Market) SetStrategy(s Strategy) { m.strategy = s }

// SetJournal installs an optional persistence sink.
func (m *Market) SetJournal(j journal.Journal) { m.journal = j }

// SetLogger installs a logger for run progress. Defaults to a no-op.
func (m *Market) SetLogger(l *zap.Logger) {
	if l != nil {
		m.logger = l
	}
}

// AddAsset registers a tradeable asset with the broker. Its trading days
// join the run calendar.
func (m *Market) AddAsset(a *market.Asset) error {
	return m.broker.AddAsset(a)
}

// AddData registers a named non-price data set, censored per day by its
// availability index.
func (m *Market) AddData(name string, sd *market.SideData) {
	m.other.Add(name, sd)
}

// StrategyLog reconstructs a named strategy log stream as a frame.
func (m *Market) StrategyLog(name string) *market.Frame {
	return m.logs.Table(name)
}

// StrategyLogNames returns the log stream names in first-logged order.
func (m *Market) StrategyLogNames() []string {
	return m.logs.Names()
}

// Broker exposes the underlying broker for post-run queries.
func (m *Market) Broker() *broker.Sim { return m.broker }

// calendar is the union of every registered asset's trading days, clipped
// to the configured window. Days where only some assets trade still run;
// orders for the absent assets expire at the auction.
func (m *Market) calendar() []time.Time {
	seen := make(map[string]time.Time)
	for _, sym := range m.broker.Symbols() {
		a, err := m.broker.Asset(sym)
		if err != nil {
			continue
		}
		for _, d := range a.TradingDays() {
			if d.Before(m.start) || d.After(m.end) {
				continue
			}
			seen[d.Format("2006-01-02")] = d
		}
	}
	days := make([]time.Time, 0, len(seen))
	for _, d := range seen {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	return days
}

// Run executes the backtest. A strategy callback error aborts the run at
// that day, wrapped in a CallbackError; everything recorded up to the
// abort stays queryable on the broker.
func (m *Market) Run() (Result, error) {
	if m.strategy == nil {
		return Result{}, errors.New("no strategy installed")
	}

	runID := id.New()
	days := m.calendar()
	session := broker.NewSession(m.broker, m.logs.Log)

	m.logger.Info("run starting",
		zap.String("run", runID),
		zap.Int("days", len(days)),
		zap.Float64("cash", m.broker.Cash()))

	result := func() Result {
		return Result{
			RunID: runID,
			Start: m.start,
			End:   m.end,
			Days:  len(days),
			Fills: m.broker.Trades(),
			Gains: m.broker.CapitalGains(),
			Cash:  m.broker.Cash(),

			LongEquities:  lastLong(m.broker.StrategyValues()),
			ShortEquities: lastShort(m.broker.StrategyValues()),
		}
	}

	for _, day := range days {
		if err := m.broker.BeginDay(day); err != nil {
			return result(), err
		}
		m.other.SetDate(day)

		session.SetClock(day, market.PhasePreOpen)
		if err := m.strategy.PreOpen(day, session, session.TakeUnreported(), m.other); err != nil {
			return result(), &CallbackError{Callback: "pre_open", Date: day, Err: err}
		}
		if err := m.runAuction(day, market.AuctionOpen, session); err != nil {
			return result(), err
		}

		session.SetClock(day, market.PhaseOpen)
		if err := m.strategy.PreClose(day, session, session.TakeUnreported(), m.other); err != nil {
			return result(), &CallbackError{Callback: "pre_close", Date: day, Err: err}
		}
		if err := m.runAuction(day, market.AuctionClose, session); err != nil {
			return result(), err
		}

		m.broker.EndDay(day)
		if m.journal != nil {
			values := m.broker.StrategyValues()
			if err := m.journal.RecordValue(values[len(values)-1]); err != nil {
				return result(), err
			}
		}
	}

	m.logger.Info("run complete",
		zap.String("run", runID),
		zap.Float64("cash", m.broker.Cash()),
		zap.Int("fills", len(m.broker.Trades())))

	return result(), nil
}

func (m *Market) runAuction(day time.Time, auction market.Auction, session *broker.Session) error {
	fills, err := m.broker.RunAuction(day, auction, session.TakePending())
	if err != nil {
		return err
	}
	session.Report(fills)
	if m.journal == nil {
		return nil
	}
	for _, f := range fills {
		if err := m.journal.RecordFill(f); err != nil {
			return err
		}
	}
	gains := m.broker.CapitalGains()
	for ; m.gainsJournaled < len(gains); m.gainsJournaled++ {
		if err := m.journal.RecordGain(gains[m.gainsJournaled]); err != nil {
			return err
		}
	}
	return nil
}

func lastLong(values []broker.DailyValue) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1].LongEquities
}

func lastShort(values []broker.DailyValue) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1].ShortEquities
}
