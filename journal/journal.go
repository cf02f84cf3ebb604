package journal

import "time"

// PositionRecord is one closed position as written to the journal.
type PositionRecord struct {
	PositionID string
	Account    string
	Symbol     string
	Side       string
	Units      float64
	EntryPrice float64
	ExitPrice  float64
	OpenTime   time.Time
	CloseTime  time.Time
	RealizedPL float64
}

// BalanceSnapshot is an account's cash balance after a booking event.
type BalanceSnapshot struct {
	Time      time.Time
	Account   string
	Available float64
}

type Journal interface {
	RecordClose(PositionRecord) error
	RecordBalance(BalanceSnapshot) error
	Close() error
}

// Nop discards everything. It is the default when no journal is configured.
type Nop struct{}

func (Nop) RecordClose(PositionRecord) error    { return nil }
func (Nop) RecordBalance(BalanceSnapshot) error { return nil }
func (Nop) Close() error                        { return nil }
