package broker

import "github.com/rmarchant/daysim/sim"

// The spread is charged symmetrically around the bar close (the mid):
// buys fill above it, sells below. Closing reverses the side, so a
// round trip with spread s always costs s per unit.

func entryPrice(mid, spread float64, side sim.Side) float64 {
	if side == sim.Sell {
		return mid - spread/2
	}
	return mid + spread/2
}

func exitPrice(mid, spread float64, side sim.Side) float64 {
	if side == sim.Sell {
		return mid + spread/2
	}
	return mid - spread/2
}
