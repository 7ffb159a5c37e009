// Package ledger implements FIFO tax-lot accounting: per-symbol queues of
// open lots, realized capital gains with holding-period classification, and
// exact commission apportionment across split fills.
package ledger

// Ledger groups the per-symbol books of one simulation run. It is owned and
// mutated by a single broker; nothing here is safe for concurrent use.
type Ledger struct {
	books   map[string]*Book
	symbols []string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{books: make(map[string]*Book)}
}

// Book returns the book for a symbol, creating it on first use.
func (l *Ledger) Book(symbol string) *Book {
	b, ok := l.books[symbol]
	if !ok {
		b = NewBook(symbol)
		l.books[symbol] = b
		l.symbols = append(l.symbols, symbol)
	}
	return b
}

// Symbols returns the symbols with books, in first-trade order.
func (l *Ledger) Symbols() []string {
	return append([]string(nil), l.symbols...)
}

// Position is the net signed quantity held in a symbol.
func (l *Ledger) Position(symbol string) float64 {
	if b, ok := l.books[symbol]; ok {
		return b.Position()
	}
	return 0
}

// Lots enumerates open lots across all symbols, per-symbol FIFO order.
func (l *Ledger) Lots() []Lot {
	var out []Lot
	for _, s := range l.symbols {
		out = append(out, l.books[s].Lots()...)
	}
	return out
}

// Gains returns all realized capital gains across all symbols.
func (l *Ledger) Gains() []CapitalGain {
	var out []CapitalGain
	for _, s := range l.symbols {
		out = append(out, l.books[s].gains...)
	}
	return out
}
