package ledger

import "time"

// Direction distinguishes the two lot queues.
type Direction int

const (
	Long Direction = iota
	Short
)

func (d Direction) String() string {
	if d == Short {
		return "short"
	}
	return "long"
}

// Lot is one still-open tranche of a position, tracked individually for
// cost-basis purposes. Size is the remaining quantity and stays positive;
// the owning queue gives the direction.
type Lot struct {
	Symbol             string
	Direction          Direction
	OpenTradeID        int64
	OpenDate           time.Time
	Price              float64
	Size               float64
	CommissionPerShare float64
	Meta               map[string]any
}

// SignedSize is the lot's contribution to the net position: negative for
// short lots.
func (l Lot) SignedSize() float64 {
	if l.Direction == Short {
		return -l.Size
	}
	return l.Size
}

// Row flattens the lot for the positions table.
func (l Lot) Row() map[string]any {
	m := map[string]any{
		"symbol":               l.Symbol,
		"trade_id":             l.OpenTradeID,
		"date":                 l.OpenDate,
		"price":                l.Price,
		"size":                 l.SignedSize(),
		"commission_per_share": l.CommissionPerShare,
	}
	for k, v := range l.Meta {
		m[k] = v
	}
	return m
}

// queue is a FIFO lot arena: O(1) append, O(1) front eviction, stable
// ownership of its lots.
type queue struct {
	lots []Lot
	head int
}

func (q *queue) push(l Lot)  { q.lots = append(q.lots, l) }
func (q *queue) len() int    { return len(q.lots) - q.head }
func (q *queue) front() *Lot { return &q.lots[q.head] }

func (q *queue) pop() {
	q.lots[q.head] = Lot{}
	q.head++
	if q.head == len(q.lots) {
		q.lots = q.lots[:0]
		q.head = 0
	}
}

func (q *queue) total() float64 {
	var sum float64
	for i := q.head; i < len(q.lots); i++ {
		sum += q.lots[i].Size
	}
	return sum
}

func (q *queue) all() []Lot {
	return append([]Lot(nil), q.lots[q.head:]...)
}
