package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite journals into a local SQLite database, queryable after the run.
type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordClose(r PositionRecord) error {
	_, err := j.db.Exec(`
		INSERT INTO closes
		(position_id, account, symbol, side, units, entry_price, exit_price, open_time, close_time, realized_pl)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.PositionID, r.Account, r.Symbol, r.Side, r.Units,
		r.EntryPrice, r.ExitPrice, r.OpenTime, r.CloseTime, r.RealizedPL,
	)
	return err
}

func (j *SQLite) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balances (time, account, available)
		VALUES (?, ?, ?)`,
		b.Time, b.Account, b.Available,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
