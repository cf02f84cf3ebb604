package sim

import (
	"math"
	"time"
)

// Side is the direction of a position: buy (long) or sell (short).
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

func (s Side) Valid() bool {
	return s == Buy || s == Sell
}

// Position is a single open trade. StopLoss and TakeProfit are carried for
// the caller's benefit; nothing in the engine acts on them.
type Position struct {
	ID         string
	Symbol     string
	Side       Side
	Units      float64
	EntryPrice float64
	EntryTime  time.Time
	StopLoss   *float64
	TakeProfit *float64
}

// Invested is the cash deducted when the position was opened.
func (p Position) Invested() float64 {
	return p.Units * p.EntryPrice
}

// Profit is the signed P/L of the position marked at price.
func (p Position) Profit(price float64) float64 {
	if p.Side == Sell {
		return p.Units * (p.EntryPrice - price)
	}
	return p.Units * (price - p.EntryPrice)
}

// Valuation is the cash the position would settle for at price: the
// invested value plus the signed profit. For a long this reduces to
// units*price.
func (p Position) Valuation(price float64) float64 {
	return p.Invested() + p.Profit(price)
}

// ClosedPosition is a position that has settled. The exit fields are
// written exactly once, when the account moves it into history.
type ClosedPosition struct {
	Position
	ExitPrice float64
	ExitTime  time.Time
}

// Proceeds is the cash credited back to the account at close.
func (c ClosedPosition) Proceeds() float64 {
	return c.Valuation(c.ExitPrice)
}

// RealizedPL is the signed profit locked in at close.
func (c ClosedPosition) RealizedPL() float64 {
	return c.Profit(c.ExitPrice)
}

// ValidAmount reports whether v can serve as a deposit or order value.
func ValidAmount(v float64) bool {
	return v > 0 && !math.IsNaN(v) && !math.IsInf(v, 1)
}
