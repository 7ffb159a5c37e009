package ledger

import "time"

// Term is the US-style holding-period classification of a realized gain.
type Term int

const (
	TermShort Term = iota
	TermLong
)

func (t Term) String() string {
	if t == TermLong {
		return "long"
	}
	return "short"
}

// LongTermDays is the minimum holding period, in calendar days, for a gain
// to classify as long-term.
const LongTermDays = 365

// classifyTerm compares civil dates only; the intraday auction times of the
// opening and closing fills do not shift the holding period.
func classifyTerm(open, close time.Time) Term {
	oy, om, od := open.Date()
	cy, cm, cd := close.Date()
	o := time.Date(oy, om, od, 0, 0, 0, 0, time.UTC)
	c := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	if int(c.Sub(o).Hours()/24) >= LongTermDays {
		return TermLong
	}
	return TermShort
}

// CapitalGain is one realized gain or loss: the match of a closing fill
// against one open lot. Size is the matched quantity, always positive;
// Direction is the side of the lot that was closed.
type CapitalGain struct {
	Symbol    string
	Direction Direction
	Size      float64
	Term      Term

	OpenTradeID            int64
	OpenDate               time.Time
	OpenPrice              float64
	OpenCommissionPerShare float64
	OpenMeta               map[string]any

	CloseTradeID            int64
	CloseDate               time.Time
	ClosePrice              float64
	CloseCommissionPerShare float64
	CloseMeta               map[string]any
}

// Gain is the realized profit or loss net of apportioned commissions.
func (g CapitalGain) Gain() float64 {
	per := g.ClosePrice - g.OpenPrice
	if g.Direction == Short {
		per = -per
	}
	return (per - g.OpenCommissionPerShare - g.CloseCommissionPerShare) * g.Size
}

// Row flattens the record for tabular output. Metadata keys are prefixed
// open_/close_; a key present on only one leg still emits both columns, the
// absent side holding the explicit missing marker.
func (g CapitalGain) Row() map[string]any {
	m := map[string]any{
		"symbol":                     g.Symbol,
		"direction":                  g.Direction.String(),
		"size":                       g.Size,
		"term":                       g.Term.String(),
		"open_trade_id":              g.OpenTradeID,
		"open_date":                  g.OpenDate,
		"open_price":                 g.OpenPrice,
		"open_commission_per_share":  g.OpenCommissionPerShare,
		"close_trade_id":             g.CloseTradeID,
		"close_date":                 g.CloseDate,
		"close_price":                g.ClosePrice,
		"close_commission_per_share": g.CloseCommissionPerShare,
	}
	for k := range g.OpenMeta {
		m["open_"+k] = g.OpenMeta[k]
		if v, ok := g.CloseMeta[k]; ok {
			m["close_"+k] = v
		} else {
			m["close_"+k] = nil
		}
	}
	for k := range g.CloseMeta {
		if _, ok := g.OpenMeta[k]; !ok {
			m["open_"+k] = nil
			m["close_"+k] = g.CloseMeta[k]
		}
	}
	return m
}
