package journal

import (
	"database/sql"
	"fmt"
	"time"
)

// GetClose returns a single closed-position record by position ID.
func (j *SQLite) GetClose(positionID string) (PositionRecord, error) {
	var rec PositionRecord

	row := j.db.QueryRow(`
		SELECT position_id, account, symbol, side, units, entry_price, exit_price, open_time, close_time, realized_pl
		FROM closes
		WHERE position_id = ?`, positionID)

	err := row.Scan(
		&rec.PositionID,
		&rec.Account,
		&rec.Symbol,
		&rec.Side,
		&rec.Units,
		&rec.EntryPrice,
		&rec.ExitPrice,
		&rec.OpenTime,
		&rec.CloseTime,
		&rec.RealizedPL,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return PositionRecord{}, fmt.Errorf("close %q not found", positionID)
		}
		return PositionRecord{}, err
	}
	return rec, nil
}

// ListClosesBetween returns closes whose close_time falls in [start, end),
// ascending.
func (j *SQLite) ListClosesBetween(start, end time.Time) ([]PositionRecord, error) {
	rows, err := j.db.Query(`
		SELECT position_id, account, symbol, side, units, entry_price, exit_price, open_time, close_time, realized_pl
		FROM closes
		WHERE close_time >= ? AND close_time < ?
		ORDER BY close_time ASC`, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		var rec PositionRecord
		if err := rows.Scan(
			&rec.PositionID,
			&rec.Account,
			&rec.Symbol,
			&rec.Side,
			&rec.Units,
			&rec.EntryPrice,
			&rec.ExitPrice,
			&rec.OpenTime,
			&rec.CloseTime,
			&rec.RealizedPL,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ListBalances returns an account's balance snapshots in time order.
func (j *SQLite) ListBalances(account string) ([]BalanceSnapshot, error) {
	rows, err := j.db.Query(`
		SELECT time, account, available
		FROM balances
		WHERE account = ?
		ORDER BY time ASC`, account)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BalanceSnapshot
	for rows.Next() {
		var b BalanceSnapshot
		if err := rows.Scan(&b.Time, &b.Account, &b.Available); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
