// Package broker implements the simulated brokerage: cash, order matching
// against daily auctions, FIFO tax-lot accounting, dividends and splits, and
// the query surface strategies consume.
package broker

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rustyeddy/daywalker/commission"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
)

// Params configures a simulated broker.
type Params struct {
	Cash       float64
	Margin     float64 // how far below zero cash may go before orders drop
	AllowShort bool
	Schedule   commission.Schedule
	Logger     *zap.Logger
}

// Sim is the simulated broker façade. It owns the cash balance, the tax-lot
// ledger, the commission schedule, and every record the run produces. One
// Sim serves exactly one run; it is not safe for concurrent use.
type Sim struct {
	logger   *zap.Logger
	schedule commission.Schedule

	cash       float64
	margin     float64
	allowShort bool

	assets map[string]*market.Asset
	books  *ledger.Ledger

	fills     []ledger.Fill
	dividends []Dividend
	values    []DailyValue
	lastPrice map[string]float64

	nextTradeID int64
}

// NewSim creates a broker with the given starting cash and policies. A nil
// Schedule means commission-free; a nil Logger is replaced with a no-op.
func NewSim(p Params) *Sim {
	if p.Schedule == nil {
		p.Schedule = commission.Free{}
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return &Sim{
		logger:     p.Logger,
		schedule:   p.Schedule,
		cash:       p.Cash,
		margin:     p.Margin,
		allowShort: p.AllowShort,
		assets:     make(map[string]*market.Asset),
		books:      ledger.New(),
		lastPrice:  make(map[string]float64),
	}
}

// AddAsset registers a tradeable asset. Registering the same symbol twice is
// a configuration mistake and fails.
func (b *Sim) AddAsset(a *market.Asset) error {
	if _, ok := b.assets[a.Symbol]; ok {
		return fmt.Errorf("asset %q already registered", a.Symbol)
	}
	b.assets[a.Symbol] = a
	return nil
}

// Asset returns a registered asset.
func (b *Sim) Asset(symbol string) (*market.Asset, error) {
	a, ok := b.assets[symbol]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAsset, symbol)
	}
	return a, nil
}

// Symbols returns the registered symbols (map order).
func (b *Sim) Symbols() []string {
	out := make([]string, 0, len(b.assets))
	for s := range b.assets {
		out = append(out, s)
	}
	return out
}

// Cash returns the current cash balance.
func (b *Sim) Cash() float64 { return b.cash }

// Positions enumerates the currently open lots, not netted, across all
// symbols.
func (b *Sim) Positions() []ledger.Lot { return b.books.Lots() }

// Position returns the net signed quantity held in one symbol.
func (b *Sim) Position(symbol string) float64 { return b.books.Position(symbol) }

// CapitalGains returns every realized gain record to date.
func (b *Sim) CapitalGains() []ledger.CapitalGain { return b.books.Gains() }

// Trades returns every fill to date, in execution order.
func (b *Sim) Trades() []ledger.Fill {
	return append([]ledger.Fill(nil), b.fills...)
}

// Dividends returns every dividend applied to date.
func (b *Sim) Dividends() []Dividend {
	return append([]Dividend(nil), b.dividends...)
}

// StrategyValues returns the per-day cash and inventory value series.
func (b *Sim) StrategyValues() []DailyValue {
	return append([]DailyValue(nil), b.values...)
}

// HistoricalPrices returns the censored bar history of a symbol at the given
// instant, plus the day's open price once it has printed.
func (b *Sim) HistoricalPrices(symbol string, asOf time.Time, phase market.Phase) ([]market.Bar, *float64, error) {
	a, err := b.Asset(symbol)
	if err != nil {
		return nil, nil, err
	}
	bars, open := a.Censored(asOf, phase)
	return bars, open, nil
}

// BeginDay applies the day's corporate actions before any callback runs:
// splits rescale open lots, then dividends move cash on the ex-date (long
// lots receive, short lots pay).
func (b *Sim) BeginDay(day time.Time) error {
	for _, sym := range b.books.Symbols() {
		asset, ok := b.assets[sym]
		if !ok {
			continue
		}
		bar, ok := asset.BarOn(day)
		if !ok {
			continue
		}
		book := b.books.Book(sym)
		if bar.SplitFactor != 1 {
			if err := book.ApplySplit(bar.SplitFactor); err != nil {
				return err
			}
			b.logger.Debug("split applied",
				zap.String("symbol", sym),
				zap.Float64("factor", bar.SplitFactor))
		}
		if bar.DivCash != 0 {
			for _, lot := range book.Lots() {
				amt := bar.DivCash * lot.SignedSize()
				b.cash += amt
				b.dividends = append(b.dividends, Dividend{
					Symbol:   sym,
					ExDate:   day,
					Acquired: lot.OpenDate,
					Shares:   lot.SignedSize(),
					PerShare: bar.DivCash,
					Amount:   amt,
					Meta:     lot.Meta,
				})
			}
		}
	}
	return nil
}

// EndDay snapshots the strategy-value series after the closing auction,
// marking inventory at the most recent known close.
func (b *Sim) EndDay(day time.Time) {
	for sym, asset := range b.assets {
		if bar, ok := asset.BarOn(day); ok {
			b.lastPrice[sym] = bar.Close
		}
	}
	var long, short float64
	for _, lot := range b.books.Lots() {
		price, ok := b.lastPrice[lot.Symbol]
		if !ok {
			continue
		}
		if lot.Direction == ledger.Short {
			short += lot.Size * price
		} else {
			long += lot.Size * price
		}
	}
	b.values = append(b.values, DailyValue{
		Date:          day,
		Cash:          b.cash,
		LongEquities:  long,
		ShortEquities: short,
	})
}

// RunAuction matches the submitted orders against the day's auction print.
// A buy fills iff price ≤ limit, a sell iff price ≥ limit; the fill price is
// the print, never the limit. Orders whose condition fails expire; fills
// that would breach the short or margin policy are rejected and dropped.
func (b *Sim) RunAuction(day time.Time, auction market.Auction, orders []*Order) ([]ledger.Fill, error) {
	var fills []ledger.Fill
	for _, o := range orders {
		if o.Auction != auction {
			o.Status = Expired
			continue
		}
		asset := b.assets[o.Symbol] // validated at submission
		price, ok := asset.AuctionPrice(day, auction)
		if !ok {
			// No bar for this symbol today; nothing to match against.
			o.Status = Expired
			continue
		}

		matched := (o.Buy && price <= o.LimitPrice) || (!o.Buy && price >= o.LimitPrice)
		if !matched {
			o.Status = Expired
			continue
		}

		signed := o.Size
		if !o.Buy {
			signed = -o.Size
		}

		if !b.allowShort && b.books.Position(o.Symbol)+signed < 0 {
			b.logger.Warn("order rejected: would open a short position",
				zap.String("order", o.ID), zap.String("symbol", o.Symbol))
			o.Status = Rejected
			continue
		}

		comm := b.schedule.Commission(price, o.Size)
		if o.Buy && b.cash-price*o.Size-comm < -b.margin {
			b.logger.Warn("order rejected: insufficient cash",
				zap.String("order", o.ID),
				zap.String("symbol", o.Symbol),
				zap.Float64("cash", b.cash),
				zap.Float64("cost", price*o.Size+comm))
			o.Status = Rejected
			continue
		}

		b.nextTradeID++
		fill := ledger.Fill{
			TradeID:    b.nextTradeID,
			Symbol:     o.Symbol,
			Date:       asset.Stamp(day, auction),
			Size:       signed,
			Price:      price,
			Commission: comm,
			Meta:       o.Meta,
		}
		if _, err := b.books.Book(o.Symbol).ApplyFill(fill); err != nil {
			return nil, err
		}
		b.cash -= fill.CashCost()
		b.fills = append(b.fills, fill)

		o.Status = Filled
		o.FillTradeID = fill.TradeID
		fills = append(fills, fill)

		b.logger.Debug("fill",
			zap.Int64("trade_id", fill.TradeID),
			zap.String("symbol", fill.Symbol),
			zap.Float64("size", fill.Size),
			zap.Float64("price", fill.Price),
			zap.Float64("commission", fill.Commission))
	}
	return fills, nil
}

// PositionsTable, CapitalGainsTable, TradesTable, DividendsTable and
// StrategyValuesTable render the query surface as frames, with metadata
// columns unioned across records and missing cells marked explicitly.

func (b *Sim) PositionsTable() *market.Frame { return rowsToFrame(b.Positions()) }

func (b *Sim) CapitalGainsTable() *market.Frame { return rowsToFrame(b.CapitalGains()) }

func (b *Sim) TradesTable() *market.Frame { return rowsToFrame(b.Trades()) }

func (b *Sim) DividendsTable() *market.Frame { return rowsToFrame(b.Dividends()) }

func (b *Sim) StrategyValuesTable() *market.Frame { return rowsToFrame(b.StrategyValues()) }

type rower interface{ Row() map[string]any }

func rowsToFrame[T rower](records []T) *market.Frame {
	rows := make([]map[string]any, len(records))
	for i, r := range records {
		rows[i] = r.Row()
	}
	return market.FrameFromMaps(rows)
}
