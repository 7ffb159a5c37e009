package market

import "time"

// Bar is one daily record for an asset: the open/close auction prints, the
// intraday range, volume, the cash dividend paid on the date and the split
// factor taking effect on the date.
type Bar struct {
	Date        time.Time
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	DivCash     float64
	SplitFactor float64
}

// Day returns the bar's civil date formatted as YYYY-MM-DD in the bar's own
// time zone. Bars are daily; everything that compares dates goes through this.
func (b Bar) Day() string {
	return b.Date.Format("2006-01-02")
}

// Phase identifies how much of a trading day has printed.
type Phase int

const (
	// PhasePreOpen is the instant before the opening auction. Nothing of the
	// day's bar is knowable yet.
	PhasePreOpen Phase = iota
	// PhaseOpen is after the opening auction: the day's open price has
	// printed, but high/low/close/volume have not.
	PhaseOpen
	// PhaseClose is after the closing auction: the full bar is public.
	PhaseClose
)

func (p Phase) String() string {
	switch p {
	case PhasePreOpen:
		return "pre-open"
	case PhaseOpen:
		return "open"
	case PhaseClose:
		return "close"
	}
	return "unknown"
}

// Auction selects one of the two daily auctions an order can target.
type Auction int

const (
	AuctionOpen Auction = iota
	AuctionClose
)

func (a Auction) String() string {
	if a == AuctionClose {
		return "close"
	}
	return "open"
}
