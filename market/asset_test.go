package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func testBars() []Bar {
	return []Bar{
		{Date: day("2004-08-12"), Open: 17.50, High: 17.58, Low: 17.50, Close: 17.50, Volume: 2545100, SplitFactor: 1},
		{Date: day("2004-08-13"), Open: 17.50, High: 17.51, Low: 17.50, Close: 17.51, Volume: 593000, SplitFactor: 1},
		{Date: day("2004-08-16"), Open: 17.54, High: 17.54, Low: 17.50, Close: 17.50, Volume: 684700, SplitFactor: 1},
		{Date: day("2004-08-17"), Open: 17.35, High: 17.40, Low: 17.15, Close: 17.34, Volume: 295900, DivCash: 0.10, SplitFactor: 1},
		{Date: day("2004-08-18"), Open: 17.25, High: 17.29, Low: 17.00, Close: 17.11, Volume: 121300, SplitFactor: 1},
	}
}

func testAsset(t *testing.T) *Asset {
	t.Helper()
	a, err := NewAsset("acc", testBars())
	require.NoError(t, err)
	return a
}

func TestNewAssetValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bars []Bar
	}{
		{"duplicate date", []Bar{
			{Date: day("2004-08-12"), SplitFactor: 1},
			{Date: day("2004-08-12"), SplitFactor: 1},
		}},
		{"decreasing date", []Bar{
			{Date: day("2004-08-13"), SplitFactor: 1},
			{Date: day("2004-08-12"), SplitFactor: 1},
		}},
		{"zero split factor", []Bar{
			{Date: day("2004-08-12"), SplitFactor: 0},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewAsset("acc", tt.bars)
			assert.ErrorIs(t, err, ErrDataIntegrity)
		})
	}

	_, err := NewAsset("", testBars())
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestCensoredPreOpenHidesToday(t *testing.T) {
	t.Parallel()

	a := testAsset(t)
	hist, open := a.Censored(day("2004-08-16"), PhasePreOpen)
	require.Len(t, hist, 2)
	assert.Equal(t, "2004-08-13", hist[1].Day())
	assert.Nil(t, open)
}

func TestCensoredOpenShowsOnlyTheOpen(t *testing.T) {
	t.Parallel()

	a := testAsset(t)
	hist, open := a.Censored(day("2004-08-16"), PhaseOpen)
	require.Len(t, hist, 2)
	assert.Equal(t, "2004-08-13", hist[1].Day())
	require.NotNil(t, open)
	assert.InDelta(t, 17.54, *open, 1e-12)
}

func TestCensoredCloseShowsFullBar(t *testing.T) {
	t.Parallel()

	a := testAsset(t)
	hist, open := a.Censored(day("2004-08-16"), PhaseClose)
	require.Len(t, hist, 3)
	assert.Equal(t, "2004-08-16", hist[2].Day())
	assert.InDelta(t, 17.50, hist[2].Close, 1e-12)
	require.NotNil(t, open)
	assert.InDelta(t, 17.54, *open, 1e-12)
}

func TestCensoredOutsideHistory(t *testing.T) {
	t.Parallel()

	a := testAsset(t)

	hist, open := a.Censored(day("2004-08-11"), PhaseOpen)
	assert.Empty(t, hist)
	assert.Nil(t, open) // no bar that day, so no open either

	hist, open = a.Censored(day("2004-08-20"), PhaseClose)
	assert.Len(t, hist, 5)
	assert.Nil(t, open)
}

func TestCensoredViewIsStable(t *testing.T) {
	t.Parallel()

	// The capped slice means an append to a censored view cannot scribble
	// over the asset's own backing array.
	a := testAsset(t)
	hist, _ := a.Censored(day("2004-08-13"), PhasePreOpen)
	require.Len(t, hist, 1)
	hist = append(hist, Bar{Date: day("2004-08-19"), SplitFactor: 1})

	again, _ := a.Censored(day("2004-08-16"), PhasePreOpen)
	require.Len(t, again, 2)
	assert.Equal(t, "2004-08-13", again[1].Day())
	_ = hist
}

func TestTradingDaysAndBarOn(t *testing.T) {
	t.Parallel()

	a := testAsset(t)
	days := a.TradingDays()
	require.Len(t, days, 5)
	assert.Equal(t, day("2004-08-12"), days[0])

	b, ok := a.BarOn(day("2004-08-17"))
	require.True(t, ok)
	assert.InDelta(t, 0.10, b.DivCash, 1e-12)

	_, ok = a.BarOn(day("2004-08-14"))
	assert.False(t, ok)
}

func TestAuctionPrice(t *testing.T) {
	t.Parallel()

	a := testAsset(t)
	p, ok := a.AuctionPrice(day("2004-08-16"), AuctionOpen)
	require.True(t, ok)
	assert.InDelta(t, 17.54, p, 1e-12)

	p, ok = a.AuctionPrice(day("2004-08-16"), AuctionClose)
	require.True(t, ok)
	assert.InDelta(t, 17.50, p, 1e-12)

	_, ok = a.AuctionPrice(day("2004-08-14"), AuctionOpen)
	assert.False(t, ok)
}

func TestStampUsesAuctionTimes(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("EDT", -4*60*60)
	a, err := NewAssetWithTimes("acc", testBars(), AuctionTimes{
		Open:  9*time.Hour + 30*time.Minute,
		Close: 16 * time.Hour,
		Loc:   loc,
	})
	require.NoError(t, err)

	open := a.Stamp(day("2004-08-16"), AuctionOpen)
	assert.Equal(t, time.Date(2004, 8, 16, 9, 30, 0, 0, loc), open)

	close := a.Stamp(day("2004-08-16"), AuctionClose)
	assert.Equal(t, time.Date(2004, 8, 16, 16, 0, 0, 0, loc), close)
}
