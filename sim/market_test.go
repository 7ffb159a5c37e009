package sim

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/commission"
	"github.com/rustyeddy/daywalker/ledger"
	"github.com/rustyeddy/daywalker/market"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func accBars() []market.Bar {
	return []market.Bar{
		{Date: day("2004-08-12"), Open: 17.50, High: 17.58, Low: 17.50, Close: 17.50, Volume: 2545100, SplitFactor: 1},
		{Date: day("2004-08-13"), Open: 17.50, High: 17.51, Low: 17.50, Close: 17.51, Volume: 593000, SplitFactor: 1},
		{Date: day("2004-08-16"), Open: 17.54, High: 17.54, Low: 17.50, Close: 17.50, Volume: 684700, SplitFactor: 1},
		{Date: day("2004-08-17"), Open: 17.35, High: 17.40, Low: 17.15, Close: 17.34, Volume: 295900, DivCash: 0.10, SplitFactor: 1},
		{Date: day("2004-08-18"), Open: 17.25, High: 17.29, Low: 17.00, Close: 17.11, Volume: 121300, SplitFactor: 1},
	}
}

func newAccMarket(t *testing.T, p broker.Params) *Market {
	t.Helper()
	b := broker.NewSim(p)
	a, err := market.NewAsset("acc", accBars())
	require.NoError(t, err)
	m := NewMarket(day("2004-08-12"), day("2004-08-18"), b)
	require.NoError(t, m.AddAsset(a))
	return m
}

// ladder buys a growing clip at every open and trims most of it back at the
// close, walking the FIFO queue through partial closes, multi-lot closes
// and a dividend ex-date along the way.
type ladder struct {
	size float64
}

func (l *ladder) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	_, err := b.LimitOnOpen("acc", 100, l.size, true, nil)
	return err
}

func (l *ladder) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if l.size <= 4 && l.size > 1 {
		if _, err := b.LimitOnClose("acc", 10, l.size-1, false, nil); err != nil {
			return err
		}
	}
	l.size++
	return nil
}

func TestRunLadderScenario(t *testing.T) {
	t.Parallel()

	m := newAccMarket(t, broker.Params{
		Cash:     10000,
		Schedule: commission.InteractiveBrokersPro(),
	})
	m.SetStrategy(&ladder{size: 1})

	result, err := m.Run()
	require.NoError(t, err)
	assert.Equal(t, 5, result.Days)

	b := m.Broker()

	// Eight fills: five growing buys at the open, three trims at the close.
	fills := b.Trades()
	require.Len(t, fills, 8)
	wantFills := []struct {
		price, size, commission float64
	}{
		{17.50, 1, 0.1750},
		{17.50, 2, 0.3500},
		{17.51, -1, 0.1751},
		{17.54, 3, 0.5262},
		{17.50, -2, 0.3500},
		{17.35, 4, 0.6940},
		{17.34, -3, 0.5202},
		{17.25, 5, 0.8625},
	}
	for i, w := range wantFills {
		assert.InDelta(t, w.price, fills[i].Price, 1e-9, "fill %d price", i)
		assert.InDelta(t, w.size, fills[i].Size, 1e-9, "fill %d size", i)
		assert.InDelta(t, w.commission, fills[i].Commission, 1e-9, "fill %d commission", i)
		assert.Equal(t, int64(i+1), fills[i].TradeID)
	}

	// FIFO leaves the two youngest cost bases open.
	lots := b.Positions()
	require.Len(t, lots, 2)
	assert.InDelta(t, 17.35, lots[0].Price, 1e-9)
	assert.InDelta(t, 4.0, lots[0].Size, 1e-9)
	assert.InDelta(t, 17.25, lots[1].Price, 1e-9)
	assert.InDelta(t, 5.0, lots[1].Size, 1e-9)
	assert.InDelta(t, 9.0, b.Position("acc"), 1e-9)

	gains := b.CapitalGains()
	require.Len(t, gains, 3)
	wantGains := []struct {
		openPrice, closePrice, size float64
		openID, closeID             int64
	}{
		{17.50, 17.51, 1, 1, 3},
		{17.50, 17.50, 2, 2, 5},
		{17.54, 17.34, 3, 4, 7},
	}
	for i, w := range wantGains {
		assert.InDelta(t, w.openPrice, gains[i].OpenPrice, 1e-9, "gain %d open", i)
		assert.InDelta(t, w.closePrice, gains[i].ClosePrice, 1e-9, "gain %d close", i)
		assert.InDelta(t, w.size, gains[i].Size, 1e-9, "gain %d size", i)
		assert.Equal(t, w.openID, gains[i].OpenTradeID, "gain %d open id", i)
		assert.Equal(t, w.closeID, gains[i].CloseTradeID, "gain %d close id", i)
		assert.Equal(t, ledger.TermShort, gains[i].Term)
	}

	// Three shares held over the ex-date collect the dividend.
	divs := b.Dividends()
	require.Len(t, divs, 1)
	assert.InDelta(t, 3.0, divs[0].Shares, 1e-9)
	assert.InDelta(t, 0.30, divs[0].Amount, 1e-9)
	assert.Equal(t, day("2004-08-17"), divs[0].ExDate)

	assert.InDelta(t, 9840.407, b.Cash(), 1e-6)

	values := b.StrategyValues()
	require.Len(t, values, 5)
	wantValues := []struct {
		cash, long float64
	}{
		{9982.3250, 17.50},
		{9964.3099, 35.02},
		{9945.8137, 52.50},
		{9927.5195, 69.36},
		{9840.4070, 153.99},
	}
	for i, w := range wantValues {
		assert.InDelta(t, w.cash, values[i].Cash, 1e-6, "day %d cash", i)
		assert.InDelta(t, w.long, values[i].LongEquities, 1e-6, "day %d long", i)
		assert.Zero(t, values[i].ShortEquities, "day %d short", i)
	}

	// Accounting identity: initial cash comes back once trades, commissions
	// and dividends are unwound.
	var traded, commissions float64
	for _, f := range fills {
		traded += f.Price * f.Size
		commissions += f.Commission
	}
	assert.InDelta(t, 10000.0, b.Cash()+traded+commissions-divs[0].Amount, 1e-6)
}

func TestRunSplitKeepsValueFlat(t *testing.T) {
	t.Parallel()

	bars := []market.Bar{
		{Date: day("2004-08-12"), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1000, SplitFactor: 1},
		{Date: day("2004-08-13"), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1000, SplitFactor: 1},
		{Date: day("2004-08-16"), Open: 10, High: 10, Low: 10, Close: 10, Volume: 1000, SplitFactor: 1},
		{Date: day("2004-08-17"), Open: 5, High: 5, Low: 5, Close: 5, Volume: 2000, SplitFactor: 2},
		{Date: day("2004-08-18"), Open: 5, High: 5, Low: 5, Close: 5, Volume: 2000, SplitFactor: 1},
	}
	b := broker.NewSim(broker.Params{Cash: 10000, Schedule: commission.InteractiveBrokersPro()})
	a, err := market.NewAsset("acc", bars)
	require.NoError(t, err)
	m := NewMarket(day("2004-08-12"), day("2004-08-18"), b)
	require.NoError(t, m.AddAsset(a))

	m.SetStrategy(&buyOnce{symbol: "acc", size: 10})
	_, err = m.Run()
	require.NoError(t, err)

	// 10 shares at 10 plus the $1 minimum commission, then nothing.
	assert.InDelta(t, 9899.0, b.Cash(), 1e-9)

	// The split doubles the share count at half the price; value is flat.
	assert.InDelta(t, 20.0, b.Position("acc"), 1e-9)
	lots := b.Positions()
	require.Len(t, lots, 1)
	assert.InDelta(t, 5.0, lots[0].Price, 1e-9)
	assert.InDelta(t, 0.05, lots[0].CommissionPerShare, 1e-9)

	for i, v := range b.StrategyValues() {
		assert.InDelta(t, 100.0, v.LongEquities, 1e-9, "day %d", i)
		assert.InDelta(t, 9899.0, v.Cash, 1e-9, "day %d", i)
	}
}

type buyOnce struct {
	symbol string
	size   float64
	done   bool
}

func (s *buyOnce) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if s.done {
		return nil
	}
	s.done = true
	_, err := b.LimitOnOpen(s.symbol, 1e9, s.size, true, nil)
	return err
}

func (s *buyOnce) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	return nil
}

// recorder notes what each callback was handed.
type recorder struct {
	preOpenFills  []int
	preCloseFills []int
	opens         []*float64
	histLens      []int
}

func (r *recorder) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	r.preOpenFills = append(r.preOpenFills, len(fills))
	hist, open, err := b.HistoricalPrices("acc")
	if err != nil {
		return err
	}
	r.histLens = append(r.histLens, len(hist))
	if open != nil {
		return errors.New("open price visible before the opening auction")
	}
	if date.Format("2006-01-02") == "2004-08-12" {
		_, err = b.LimitOnOpen("acc", 100, 1, true, nil)
	}
	return err
}

func (r *recorder) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	r.preCloseFills = append(r.preCloseFills, len(fills))
	_, open, err := b.HistoricalPrices("acc")
	if err != nil {
		return err
	}
	r.opens = append(r.opens, open)
	return nil
}

func TestRunCallbackVisibility(t *testing.T) {
	t.Parallel()

	m := newAccMarket(t, broker.Params{Cash: 10000})
	r := &recorder{}
	m.SetStrategy(r)

	_, err := m.Run()
	require.NoError(t, err)

	// The day-1 open fill is delivered to the day-1 pre-close callback and
	// never again.
	assert.Equal(t, []int{0, 0, 0, 0, 0}, r.preOpenFills)
	assert.Equal(t, []int{1, 0, 0, 0, 0}, r.preCloseFills)

	// Pre-open sees only strictly prior bars.
	assert.Equal(t, []int{0, 1, 2, 3, 4}, r.histLens)

	// Pre-close sees the day's open and nothing more.
	require.Len(t, r.opens, 5)
	wantOpens := []float64{17.50, 17.50, 17.54, 17.35, 17.25}
	for i, w := range wantOpens {
		require.NotNil(t, r.opens[i], "day %d", i)
		assert.InDelta(t, w, *r.opens[i], 1e-12, "day %d", i)
	}
}

type failing struct {
	when string
}

func (f *failing) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if f.when == "pre_open" {
		return errors.New("boom")
	}
	return nil
}

func (f *failing) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	if f.when == "pre_close" {
		return errors.New("boom")
	}
	return nil
}

func TestRunAbortsOnCallbackError(t *testing.T) {
	t.Parallel()

	for _, when := range []string{"pre_open", "pre_close"} {
		t.Run(when, func(t *testing.T) {
			t.Parallel()

			m := newAccMarket(t, broker.Params{Cash: 10000})
			m.SetStrategy(&failing{when: when})

			_, err := m.Run()
			require.Error(t, err)

			var cbErr *CallbackError
			require.ErrorAs(t, err, &cbErr)
			assert.Equal(t, when, cbErr.Callback)
			assert.Equal(t, day("2004-08-12"), cbErr.Date)
		})
	}
}

func TestRunRequiresStrategy(t *testing.T) {
	t.Parallel()

	m := newAccMarket(t, broker.Params{Cash: 10000})
	_, err := m.Run()
	assert.Error(t, err)
}

type sideDataStrategy struct {
	seen []int
}

func (s *sideDataStrategy) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	f, err := data.Get("earnings")
	if err != nil {
		return err
	}
	s.seen = append(s.seen, f.Len())
	return nil
}

func (s *sideDataStrategy) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	return nil
}

func TestRunCensorsSideData(t *testing.T) {
	t.Parallel()

	m := newAccMarket(t, broker.Params{Cash: 10000})

	f := market.NewFrame("eps")
	require.NoError(t, f.Append(1.10))
	require.NoError(t, f.Append(1.25))
	sd, err := market.NewSideData(f, []time.Time{day("2004-08-13"), day("2004-08-17")})
	require.NoError(t, err)
	m.AddData("earnings", sd)

	strat := &sideDataStrategy{}
	m.SetStrategy(strat)
	_, err = m.Run()
	require.NoError(t, err)

	assert.Equal(t, []int{0, 1, 1, 2, 2}, strat.seen)
}

func TestLogStoreRoundTrip(t *testing.T) {
	t.Parallel()

	s := NewLogStore()
	s.Log("values", day("2004-08-12"), map[string]any{"cash": 100.0})
	s.Log("values", day("2004-08-13"), map[string]any{"cash": 90.0, "note": "drawdown"})
	s.Log("entries", day("2004-08-12"), map[string]any{"price": 17.5})

	assert.Equal(t, []string{"values", "entries"}, s.Names())

	f := s.Table("values")
	require.Equal(t, 2, f.Len())
	assert.Equal(t, []string{"date", "cash", "note"}, f.Columns())

	v, ok := f.Cell(0, "note")
	require.True(t, ok)
	assert.Nil(t, v)
	v, ok = f.Cell(1, "note")
	require.True(t, ok)
	assert.Equal(t, "drawdown", v)

	assert.Equal(t, 0, s.Table("unknown").Len())
}

type loggingStrategy struct{}

func (loggingStrategy) PreOpen(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	return nil
}

func (loggingStrategy) PreClose(date time.Time, b *broker.Session, fills []ledger.Fill, data *market.CensoredData) error {
	b.Log("marks", map[string]any{"cash": b.Cash()})
	return nil
}

func TestRunCollectsStrategyLogs(t *testing.T) {
	t.Parallel()

	m := newAccMarket(t, broker.Params{Cash: 10000})
	m.SetStrategy(loggingStrategy{})
	_, err := m.Run()
	require.NoError(t, err)

	f := m.StrategyLog("marks")
	require.Equal(t, 5, f.Len())
	d, ok := f.Cell(0, "date")
	require.True(t, ok)
	assert.Equal(t, day("2004-08-12"), d)
	c, ok := f.Cell(4, "cash")
	require.True(t, ok)
	assert.InDelta(t, 10000.0, c.(float64), 1e-9)
	assert.Equal(t, []string{"marks"}, m.StrategyLogNames())
}
