package market

import "sort"

// Align merges per-symbol bar series into a joint timeline of barsets,
// ascending by timestamp. A minute makes the timeline only if every symbol
// has a bar for it; minutes missing from any series are dropped. Duplicate
// timestamps within one series follow a keep-first policy.
func Align(series map[string][]Bar) []Barset {
	if len(series) == 0 {
		return nil
	}

	symbols := make([]string, 0, len(series))
	for sym := range series {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	joint := make(map[int64]map[string]Bar)
	for _, sym := range symbols {
		for _, b := range series[sym] {
			key := b.Time.Unix()
			bars, ok := joint[key]
			if !ok {
				bars = make(map[string]Bar, len(symbols))
				joint[key] = bars
			}
			if _, dup := bars[sym]; dup {
				continue
			}
			bars[sym] = b
		}
	}

	keys := make([]int64, 0, len(joint))
	for key, bars := range joint {
		if len(bars) == len(symbols) {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]Barset, 0, len(keys))
	for _, key := range keys {
		bars := joint[key]
		// All bars at a key share the instant; take the timestamp from the
		// first symbol so the barset time is deterministic.
		out = append(out, Barset{Time: bars[symbols[0]].Time, Bars: bars})
	}
	return out
}
