package feed

import (
	"context"
	"time"

	"github.com/rmarchant/daysim/market"
)

// Static serves bars from memory. It is the source of choice for tests and
// hand-built scripted days.
type Static struct {
	Series map[string][]market.Bar
}

func (s *Static) Bars(_ context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	var out []market.Bar
	for _, b := range s.Series[symbol] {
		if b.Time.Before(start) || !b.Time.Before(end) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
