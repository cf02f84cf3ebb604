// Package feed supplies minute bars to the broker. Implementations are the
// external-collaborator side of the system: an HTTP data provider, a local
// CSV archive, or an in-memory series for tests.
package feed

import (
	"context"
	"time"

	"github.com/rmarchant/daysim/market"
)

// BarSource returns one symbol's minute bars within [start, end), ascending
// by time. An empty result means the market was closed or no data exists
// for that window; the caller turns an empty joint timeline into a data
// error at load. Gaps and unequal lengths across symbols are fine; the
// alignment step drops unmatched minutes.
type BarSource interface {
	Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error)
}
