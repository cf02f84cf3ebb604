package market

// Asset describes a tradeable instrument: the symbol it trades under and
// the spread, in price points, a broker charges around the mid price.
// Assets are immutable once handed to a broker.
type Asset struct {
	Symbol string
	Spread float64
}
