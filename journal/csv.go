package journal

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"
)

// CSV appends records to two flat files: one for closed positions, one for
// balance snapshots. Rows are flushed per record so a crashed run keeps
// what it logged.
type CSV struct {
	closes   *csv.Writer
	balances *csv.Writer
	cf, bf   *os.File
}

func NewCSV(closesPath, balancesPath string) (*CSV, error) {
	cf, err := os.Create(closesPath)
	if err != nil {
		return nil, err
	}
	bf, err := os.Create(balancesPath)
	if err != nil {
		cf.Close()
		return nil, err
	}

	cw := csv.NewWriter(cf)
	bw := csv.NewWriter(bf)

	if err := cw.Write([]string{"position_id", "account", "symbol", "side", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl"}); err != nil {
		return nil, err
	}
	if err := bw.Write([]string{"time", "account", "available"}); err != nil {
		return nil, err
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	bw.Flush()
	if err := bw.Error(); err != nil {
		return nil, err
	}

	return &CSV{closes: cw, balances: bw, cf: cf, bf: bf}, nil
}

func (j *CSV) RecordClose(r PositionRecord) error {
	err := j.closes.Write([]string{
		r.PositionID,
		r.Account,
		r.Symbol,
		r.Side,
		f(r.Units),
		f(r.EntryPrice),
		f(r.ExitPrice),
		r.OpenTime.Format(time.RFC3339),
		r.CloseTime.Format(time.RFC3339),
		f(r.RealizedPL),
	})
	if err != nil {
		return err
	}
	j.closes.Flush()
	return j.closes.Error()
}

func (j *CSV) RecordBalance(b BalanceSnapshot) error {
	err := j.balances.Write([]string{
		b.Time.Format(time.RFC3339),
		b.Account,
		f(b.Available),
	})
	if err != nil {
		return err
	}
	j.balances.Flush()
	return j.balances.Error()
}

func (j *CSV) Close() error {
	j.closes.Flush()
	if err := j.closes.Error(); err != nil {
		return err
	}
	j.balances.Flush()
	if err := j.balances.Error(); err != nil {
		return err
	}
	if err := j.cf.Close(); err != nil {
		return err
	}
	return j.bf.Close()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
