// Package journal persists backtest output — fills, realized capital gains
// and the daily value series — to SQLite or CSV. Journals are optional
// sinks; the engine keeps every record in memory regardless, so a run
// without a journal loses nothing but durability.
package journal

import (
	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
)

// Journal receives records as the run produces them. Implementations must
// tolerate Close being called once after the last record.
type Journal interface {
	RecordFill(f ledger.Fill) error
	RecordGain(g ledger.CapitalGain) error
	RecordValue(v broker.DailyValue) error
	Close() error
}

// Multi fans records out to several journals, stopping at the first error.
type Multi []Journal

func (m Multi) RecordFill(f ledger.Fill) error {
	for _, j := range m {
		if err := j.RecordFill(f); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordGain(g ledger.CapitalGain) error {
	for _, j := range m {
		if err := j.RecordGain(g); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) RecordValue(v broker.DailyValue) error {
	for _, j := range m {
		if err := j.RecordValue(v); err != nil {
			return err
		}
	}
	return nil
}

func (m Multi) Close() error {
	var first error
	for _, j := range m {
		if err := j.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
