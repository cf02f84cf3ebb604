package sim

import "errors"

var (
	// ErrNoData means a loaded day produced an empty joint timeline, e.g. a
	// weekend, a holiday, or a date the data provider has nothing for.
	ErrNoData = errors.New("no bar data for day")

	// ErrNotStarted means the current barset was requested before the first
	// advance of the clock.
	ErrNotStarted = errors.New("clock not started")

	// ErrPositionNotOpen means the referenced position is not in the
	// account's open set: wrong ID, already closed, or no match for the
	// requested symbol.
	ErrPositionNotOpen = errors.New("position not open")

	ErrInvalidAmount     = errors.New("amount must be a positive number")
	ErrInvalidSide       = errors.New("side must be buy or sell")
	ErrInsufficientFunds = errors.New("not enough cash available in account")
)
