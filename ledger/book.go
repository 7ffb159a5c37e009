package ledger

import (
	"fmt"
	"math"
)

// sizeEpsilon absorbs float residue when a lot is consumed by a matched
// quantity computed with math.Min.
const sizeEpsilon = 1e-9

// Book holds the FIFO tax-lot accounting for a single symbol: one queue of
// open long lots, one of open short lots, and the realized gains to date.
//
// A single fill may close lots on the opposite side and open a new lot on
// its own side in one pass, which is how selling through flat opens a short.
type Book struct {
	Symbol string

	long  queue
	short queue
	gains []CapitalGain
}

// NewBook creates an empty book.
func NewBook(symbol string) *Book {
	return &Book{Symbol: symbol}
}

// Position is the net signed quantity: long minus short remaining sizes.
func (b *Book) Position() float64 {
	return b.long.total() - b.short.total()
}

// Lots enumerates the open lots, long queue first, without netting. Short
// lots come back with Direction set; use SignedSize for the net view.
func (b *Book) Lots() []Lot {
	return append(b.long.all(), b.short.all()...)
}

// Gains returns all realized capital gain records to date.
func (b *Book) Gains() []CapitalGain {
	return append([]CapitalGain(nil), b.gains...)
}

// ApplyFill matches the fill FIFO against the opposite queue, emitting one
// CapitalGain per consumed lot slice, then opens a lot on the fill's own
// side with whatever quantity remains.
//
// Commission apportionment: per-share = commission / |size|. The opening
// remainder stores that per-share rate on its new lot; each gain record
// carries the closing fill's per-share rate on its close leg and the matched
// lot's stored rate on its open leg, so the fill's total commission is
// conserved exactly across all legs.
func (b *Book) ApplyFill(f Fill) ([]CapitalGain, error) {
	if f.Symbol != b.Symbol {
		return nil, fmt.Errorf("ledger: fill for %q applied to book %q", f.Symbol, b.Symbol)
	}
	if f.Size == 0 {
		return nil, fmt.Errorf("ledger: fill %d has zero size", f.TradeID)
	}

	remaining := math.Abs(f.Size)
	perShare := math.Abs(f.Commission) / remaining
	meta := copyMeta(f.Meta)

	closing, opening := &b.long, &b.short
	closedDir, openDir := Long, Short
	if f.Size > 0 {
		closing, opening = &b.short, &b.long
		closedDir, openDir = Short, Long
	}

	var made []CapitalGain
	for remaining > sizeEpsilon && closing.len() > 0 {
		lot := closing.front()
		matched := math.Min(lot.Size, remaining)

		g := CapitalGain{
			Symbol:    b.Symbol,
			Direction: closedDir,
			Size:      matched,
			Term:      classifyTerm(lot.OpenDate, f.Date),

			OpenTradeID:            lot.OpenTradeID,
			OpenDate:               lot.OpenDate,
			OpenPrice:              lot.Price,
			OpenCommissionPerShare: lot.CommissionPerShare,
			OpenMeta:               lot.Meta,

			CloseTradeID:            f.TradeID,
			CloseDate:               f.Date,
			ClosePrice:              f.Price,
			CloseCommissionPerShare: perShare,
			CloseMeta:               meta,
		}
		b.gains = append(b.gains, g)
		made = append(made, g)

		lot.Size -= matched
		remaining -= matched
		if lot.Size <= sizeEpsilon {
			closing.pop()
		}
	}

	if remaining > sizeEpsilon {
		opening.push(Lot{
			Symbol:             b.Symbol,
			Direction:          openDir,
			OpenTradeID:        f.TradeID,
			OpenDate:           f.Date,
			Price:              f.Price,
			Size:               remaining,
			CommissionPerShare: perShare,
			Meta:               meta,
		})
	}
	return made, nil
}

// ApplySplit rescales every open lot by the split factor: sizes multiply,
// per-share prices and commissions divide, position value is unchanged.
func (b *Book) ApplySplit(factor float64) error {
	if factor <= 0 {
		return fmt.Errorf("ledger: split factor must be positive, got %v", factor)
	}
	for _, q := range []*queue{&b.long, &b.short} {
		for i := q.head; i < len(q.lots); i++ {
			q.lots[i].Size *= factor
			q.lots[i].Price /= factor
			q.lots[i].CommissionPerShare /= factor
		}
	}
	return nil
}
