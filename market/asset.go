package market

import (
	"errors"
	"fmt"
	"time"
)

// ErrDataIntegrity marks a dataset rejected at registration time:
// non-monotonic or duplicate dates, or malformed bar fields.
var ErrDataIntegrity = errors.New("data integrity")

// AuctionTimes gives the time of day, in the exchange's zone, at which the
// opening and closing auctions print. Fills are stamped with these times.
type AuctionTimes struct {
	Open  time.Duration // offset from midnight
	Close time.Duration
	Loc   *time.Location
}

// NewYorkAuctionTimes returns the NYSE schedule: 09:30 open, 16:00 close,
// America/New_York.
func NewYorkAuctionTimes() AuctionTimes {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// No tzdata on this host; timestamps degrade to UTC wall times.
		loc = time.UTC
	}
	return AuctionTimes{
		Open:  9*time.Hour + 30*time.Minute,
		Close: 16 * time.Hour,
		Loc:   loc,
	}
}

// Asset is the immutable daily price history for one symbol. All views of it
// are censored to a point in time; nothing here mutates after construction.
type Asset struct {
	Symbol string
	Times  AuctionTimes

	bars  []Bar
	byDay map[string]int
}

// NewAsset validates and indexes a bar sequence. Dates must be strictly
// increasing and split factors positive, otherwise ErrDataIntegrity.
func NewAsset(symbol string, bars []Bar) (*Asset, error) {
	return NewAssetWithTimes(symbol, bars, NewYorkAuctionTimes())
}

// NewAssetWithTimes is NewAsset with explicit auction times.
func NewAssetWithTimes(symbol string, bars []Bar, times AuctionTimes) (*Asset, error) {
	if symbol == "" {
		return nil, fmt.Errorf("%w: empty symbol", ErrDataIntegrity)
	}
	a := &Asset{
		Symbol: symbol,
		Times:  times,
		bars:   append([]Bar(nil), bars...),
		byDay:  make(map[string]int, len(bars)),
	}
	prev := ""
	for i, b := range a.bars {
		day := b.Day()
		if day <= prev {
			return nil, fmt.Errorf("%w: %s: bar dates must be strictly increasing (%s after %s)",
				ErrDataIntegrity, symbol, day, prev)
		}
		if b.SplitFactor <= 0 {
			return nil, fmt.Errorf("%w: %s: split factor must be positive on %s",
				ErrDataIntegrity, symbol, day)
		}
		a.byDay[day] = i
		prev = day
	}
	return a, nil
}

// TradingDays returns the dates the asset has bars for, in order.
func (a *Asset) TradingDays() []time.Time {
	days := make([]time.Time, len(a.bars))
	for i, b := range a.bars {
		days[i] = b.Date
	}
	return days
}

// BarOn returns the bar for the given day, if there is one.
func (a *Asset) BarOn(day time.Time) (Bar, bool) {
	i, ok := a.byDay[day.Format("2006-01-02")]
	if !ok {
		return Bar{}, false
	}
	return a.bars[i], true
}

// Censored returns the bars knowable at the given instant, plus the current
// day's open price once it has printed (nil before then).
//
//   - PhasePreOpen: full bars strictly before the day; no open.
//   - PhaseOpen: full bars strictly before the day; the day's open only.
//   - PhaseClose: full bars through the day inclusive.
//
// This is the no-look-ahead guarantee; the returned slice never contains a
// field that had not printed at the as-of instant.
func (a *Asset) Censored(asOf time.Time, phase Phase) ([]Bar, *float64) {
	day := asOf.Format("2006-01-02")
	n := 0
	for n < len(a.bars) && a.bars[n].Day() < day {
		n++
	}
	today := -1
	if i, ok := a.byDay[day]; ok {
		today = i
	}

	var open *float64
	hist := a.bars[:n:n]
	switch phase {
	case PhasePreOpen:
		// nothing of today
	case PhaseOpen:
		if today >= 0 {
			o := a.bars[today].Open
			open = &o
		}
	case PhaseClose:
		if today >= 0 {
			hist = a.bars[: today+1 : today+1]
			o := a.bars[today].Open
			open = &o
		}
	}
	a.assertNoLookahead(hist, day, phase)
	return hist, open
}

// assertNoLookahead is an internal sanity check on every censored view. A
// failure is a programming defect, not a recoverable condition.
func (a *Asset) assertNoLookahead(hist []Bar, day string, phase Phase) {
	if len(hist) == 0 {
		return
	}
	last := hist[len(hist)-1].Day()
	if last > day || (phase != PhaseClose && last >= day) {
		panic(fmt.Sprintf("lookahead violation: %s view of %s at %s exposes bar %s",
			phase, a.Symbol, day, last))
	}
}

// AuctionPrice returns the print of the given auction on the given day.
func (a *Asset) AuctionPrice(day time.Time, auction Auction) (float64, bool) {
	b, ok := a.BarOn(day)
	if !ok {
		return 0, false
	}
	if auction == AuctionClose {
		return b.Close, true
	}
	return b.Open, true
}

// Stamp converts a civil date into the exact timestamp of one of its
// auctions, in the exchange time zone.
func (a *Asset) Stamp(day time.Time, auction Auction) time.Time {
	y, m, d := day.Date()
	off := a.Times.Open
	if auction == AuctionClose {
		off = a.Times.Close
	}
	return time.Date(y, m, d, 0, 0, 0, 0, a.Times.Loc).Add(off)
}
