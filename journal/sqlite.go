package journal

import (
	"database/sql"
	"encoding/json"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/daywalker/broker"
	"github.com/rustyeddy/daywalker/ledger"
)

// SQLiteJournal writes run output to a SQLite database. Fill metadata is
// stored as a JSON text column.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordFill(f ledger.Fill) error {
	meta, err := json.Marshal(f.Meta)
	if err != nil {
		return err
	}
	_, err = j.db.Exec(`
		INSERT INTO fills
		(trade_id, symbol, date, size, price, commission, meta)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.TradeID, f.Symbol, f.Date, f.Size, f.Price, f.Commission, string(meta),
	)
	return err
}

func (j *SQLiteJournal) RecordGain(g ledger.CapitalGain) error {
	_, err := j.db.Exec(`
		INSERT INTO capital_gains
		(symbol, direction, size, term,
		 open_trade_id, open_date, open_price, open_commission_per_share,
		 close_trade_id, close_date, close_price, close_commission_per_share,
		 gain)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.Symbol, g.Direction.String(), g.Size, g.Term.String(),
		g.OpenTradeID, g.OpenDate, g.OpenPrice, g.OpenCommissionPerShare,
		g.CloseTradeID, g.CloseDate, g.ClosePrice, g.CloseCommissionPerShare,
		g.Gain(),
	)
	return err
}

func (j *SQLiteJournal) RecordValue(v broker.DailyValue) error {
	_, err := j.db.Exec(`
		INSERT INTO strategy_values
		(date, cash, long_equities, short_equities)
		VALUES (?, ?, ?, ?)`,
		v.Date, v.Cash, v.LongEquities, v.ShortEquities,
	)
	return err
}

// FillCount reports how many fills the journal holds. Handy for sanity
// checks after a run.
func (j *SQLiteJournal) FillCount() (int, error) {
	var n int
	err := j.db.QueryRow(`SELECT COUNT(*) FROM fills`).Scan(&n)
	return n, err
}

// Values reads back the recorded daily value series in date order.
func (j *SQLiteJournal) Values() ([]broker.DailyValue, error) {
	rows, err := j.db.Query(`
		SELECT date, cash, long_equities, short_equities
		FROM strategy_values ORDER BY date`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []broker.DailyValue
	for rows.Next() {
		var v broker.DailyValue
		if err := rows.Scan(&v.Date, &v.Cash, &v.LongEquities, &v.ShortEquities); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
