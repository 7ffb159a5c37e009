package ledger

import "time"

// Fill is one executed trade. Size is signed: positive is a buy, negative a
// sell. Fills are immutable once recorded; trade IDs are assigned
// monotonically by the broker.
type Fill struct {
	TradeID    int64
	Symbol     string
	Date       time.Time
	Size       float64
	Price      float64
	Commission float64
	Meta       map[string]any
}

// CashCost is the cash debited by the fill: negative for sales.
func (f Fill) CashCost() float64 {
	return f.Price*f.Size + f.Commission
}

// Row flattens the fill for tabular output, merging metadata keys alongside
// the fixed columns.
func (f Fill) Row() map[string]any {
	m := map[string]any{
		"trade_id":   f.TradeID,
		"symbol":     f.Symbol,
		"date":       f.Date,
		"size":       f.Size,
		"price":      f.Price,
		"commission": f.Commission,
	}
	for k, v := range f.Meta {
		m[k] = v
	}
	return m
}

func copyMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
