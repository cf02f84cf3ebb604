package sim

import "github.com/rmarchant/daysim/market"

// Clock owns one trading day's aligned barset timeline and the playback
// cursor over it. The cursor only ever moves forward; Load is the single
// rewind point and installs a fresh day.
type Clock struct {
	timeline []market.Barset
	cursor   int
}

func NewClock() *Clock {
	return &Clock{cursor: -1}
}

// Load installs a day's timeline and rewinds the cursor to before the
// first bar. The timeline must come pre-aligned and ascending (market.Align
// guarantees both). An empty timeline is ErrNoData.
func (c *Clock) Load(timeline []market.Barset) error {
	if len(timeline) == 0 {
		return ErrNoData
	}
	c.timeline = timeline
	c.cursor = -1
	return nil
}

// Next advances the cursor by exactly one minute and returns the new
// current barset. Once the timeline is consumed it keeps returning
// ok=false without moving; exhaustion is a sentinel, not an error.
func (c *Clock) Next() (market.Barset, bool) {
	if c.cursor >= len(c.timeline)-1 {
		return market.Barset{}, false
	}
	c.cursor++
	return c.timeline[c.cursor], true
}

// Current returns the barset at the cursor, or ErrNotStarted if Next has
// not been called since the last Load.
func (c *Clock) Current() (market.Barset, error) {
	if c.cursor < 0 {
		return market.Barset{}, ErrNotStarted
	}
	return c.timeline[c.cursor], nil
}

// Len is the number of barsets in the loaded timeline.
func (c *Clock) Len() int {
	return len(c.timeline)
}

// Remaining is the number of barsets the cursor has not yet reached.
func (c *Clock) Remaining() int {
	return len(c.timeline) - 1 - c.cursor
}
