// journal/schema.go
package journal

const Schema = `
CREATE TABLE IF NOT EXISTS fills (
	trade_id INTEGER PRIMARY KEY,
	symbol TEXT NOT NULL,
	date DATETIME NOT NULL,
	size REAL NOT NULL,
	price REAL NOT NULL,
	commission REAL NOT NULL,
	meta TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS capital_gains (
	symbol TEXT NOT NULL,
	direction TEXT NOT NULL,
	size REAL NOT NULL,
	term TEXT NOT NULL,
	open_trade_id INTEGER NOT NULL,
	open_date DATETIME NOT NULL,
	open_price REAL NOT NULL,
	open_commission_per_share REAL NOT NULL,
	close_trade_id INTEGER NOT NULL,
	close_date DATETIME NOT NULL,
	close_price REAL NOT NULL,
	close_commission_per_share REAL NOT NULL,
	gain REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS strategy_values (
	date DATETIME NOT NULL,
	cash REAL NOT NULL,
	long_equities REAL NOT NULL,
	short_equities REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_fills_symbol ON fills(symbol);
CREATE INDEX IF NOT EXISTS idx_gains_symbol ON capital_gains(symbol);
CREATE INDEX IF NOT EXISTS idx_values_date ON strategy_values(date);
`
