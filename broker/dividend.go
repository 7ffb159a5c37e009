package broker

import "time"

// Dividend is one cash dividend applied to one open lot on its ex-date.
// Long lots receive cash, short lots pay it, so Shares and Amount are signed.
type Dividend struct {
	Symbol   string
	ExDate   time.Time
	Acquired time.Time
	Shares   float64
	PerShare float64
	Amount   float64
	Meta     map[string]any
}

// Row flattens the record for tabular output.
func (d Dividend) Row() map[string]any {
	m := map[string]any{
		"symbol":                 d.Symbol,
		"ex_date":                d.ExDate,
		"stock_acquisition_date": d.Acquired,
		"shares":                 d.Shares,
		"div_per_share":          d.PerShare,
		"amount":                 d.Amount,
	}
	for k, v := range d.Meta {
		m[k] = v
	}
	return m
}

// DailyValue is one row of the strategy-value series: end-of-day cash plus
// the mark-to-market value of the long and short inventories, each at the
// most recent known price. ShortEquities is the positive liability magnitude,
// so equity = cash + long − short.
type DailyValue struct {
	Date          time.Time
	Cash          float64
	LongEquities  float64
	ShortEquities float64
}

// Row flattens the record for tabular output.
func (v DailyValue) Row() map[string]any {
	return map[string]any{
		"date":           v.Date,
		"cash":           v.Cash,
		"long_equities":  v.LongEquities,
		"short_equities": v.ShortEquities,
	}
}
