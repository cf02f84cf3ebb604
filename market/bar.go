package market

import "time"

// Bar is one minute's OHLCV summary for a single instrument.
type Bar struct {
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	Time   time.Time
}

// Barset is a synchronized cross-instrument observation: one bar per
// symbol, all sharing the same timestamp.
type Barset struct {
	Time time.Time
	Bars map[string]Bar
}

// Bar returns the bar for symbol, if the barset carries one.
func (bs Barset) Bar(symbol string) (Bar, bool) {
	b, ok := bs.Bars[symbol]
	return b, ok
}

// Symbols returns the symbols present in the barset, in no particular order.
func (bs Barset) Symbols() []string {
	out := make([]string, 0, len(bs.Bars))
	for sym := range bs.Bars {
		out = append(out, sym)
	}
	return out
}
