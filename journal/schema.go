package journal

const schema = `
CREATE TABLE IF NOT EXISTS closes (
	position_id TEXT PRIMARY KEY,
	account TEXT NOT NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	units REAL NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	realized_pl REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
	time DATETIME NOT NULL,
	account TEXT NOT NULL,
	available REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_closes_close_time ON closes(close_time);
CREATE INDEX IF NOT EXISTS idx_balances_account_time ON balances(account, time);
`
