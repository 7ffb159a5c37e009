// journal/csv.go
package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
)

// CSVJournal writes fills, capital gains and daily values to three CSV
// files. Rows are flushed as they arrive so a crashed run still leaves
// readable output.
type CSVJournal struct {
	fills      *csv.Writer
	gains      *csv.Writer
	values     *csv.Writer
	ff, gf, vf *os.File
}

func NewCSV(fillsPath, gainsPath, valuesPath string) (*CSVJournal, error) {
	ff, err := os.Create(fillsPath)
	if err != nil {
		return nil, err
	}
	gf, err := os.Create(gainsPath)
	if err != nil {
		ff.Close()
		return nil, err
	}
	vf, err := os.Create(valuesPath)
	if err != nil {
		ff.Close()
		gf.Close()
		return nil, err
	}

	fw := csv.NewWriter(ff)
	gw := csv.NewWriter(gf)
	vw := csv.NewWriter(vf)

	if err := fw.Write([]string{"trade_id", "symbol", "date", "size", "price", "commission"}); err != nil {
		return nil, err
	}
	if err := gw.Write([]string{"symbol", "direction", "size", "term", "open_trade_id", "open_date", "open_price", "close_trade_id", "close_date", "close_price", "gain"}); err != nil {
		return nil, err
	}
	if err := vw.Write([]string{"date", "cash", "long_equities", "short_equities"}); err != nil {
		return nil, err
	}

	fw.Flush()
	gw.Flush()
	vw.Flush()
	for _, w := range []*csv.Writer{fw, gw, vw} {
		if err := w.Error(); err != nil {
			return nil, err
		}
	}

	return &CSVJournal{fw, gw, vw, ff, gf, vf}, nil
}

func (j *CSVJournal) RecordFill(fl ledger.Fill) error {
	err := j.fills.Write([]string{
		strconv.FormatInt(fl.TradeID, 10),
		fl.Symbol,
		fl.Date.Format(time.RFC3339),
		f(fl.Size),
		f(fl.Price),
		f(fl.Commission),
	})
	if err != nil {
		return err
	}

	j.fills.Flush()
	return j.fills.Error()
}

func (j *CSVJournal) RecordGain(g ledger.CapitalGain) error {
	err := j.gains.Write([]string{
		g.Symbol,
		g.Direction.String(),
		f(g.Size),
		g.Term.String(),
		strconv.FormatInt(g.OpenTradeID, 10),
		g.OpenDate.Format(time.RFC3339),
		f(g.OpenPrice),
		strconv.FormatInt(g.CloseTradeID, 10),
		g.CloseDate.Format(time.RFC3339),
		f(g.ClosePrice),
		f(g.Gain()),
	})
	if err != nil {
		return err
	}

	j.gains.Flush()
	return j.gains.Error()
}

func (j *CSVJournal) RecordValue(v broker.DailyValue) error {
	err := j.values.Write([]string{
		v.Date.Format(time.RFC3339),
		f(v.Cash),
		f(v.LongEquities),
		f(v.ShortEquities),
	})
	if err != nil {
		return err
	}

	j.values.Flush()
	return j.values.Error()
}

func (j *CSVJournal) Close() error {
	j.fills.Flush()
	j.gains.Flush()
	j.values.Flush()

	var first error
	for _, c := range []*os.File{j.ff, j.gf, j.vf} {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func f(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
