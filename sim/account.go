package sim

import (
	"fmt"
	"time"
)

// Account is a named cash ledger: available cash, the set of open
// positions, and an append-only history of closed ones. An account is not
// safe for concurrent use on its own; the broker serializes all access.
type Account struct {
	Name      string
	Available float64

	open    []*Position
	history []ClosedPosition
}

func NewAccount(name string, deposit float64) (*Account, error) {
	if !ValidAmount(deposit) {
		return nil, fmt.Errorf("account %q: deposit %v: %w", name, deposit, ErrInvalidAmount)
	}
	return &Account{Name: name, Available: deposit}, nil
}

// Deposit adds cash to the account.
func (a *Account) Deposit(amount float64) error {
	if !ValidAmount(amount) {
		return fmt.Errorf("deposit %v into %q: %w", amount, a.Name, ErrInvalidAmount)
	}
	a.Available += amount
	return nil
}

// Book deducts the invested value and adds p to the open set. On error the
// account is untouched.
func (a *Account) Book(p Position, value float64) error {
	if value > a.Available {
		return fmt.Errorf("open %s %s for %.2f with %.2f available: %w",
			p.Side, p.Symbol, value, a.Available, ErrInsufficientFunds)
	}
	cp := p
	a.open = append(a.open, &cp)
	a.Available -= value
	return nil
}

// Settle closes the open position with the given ID: credits the proceeds,
// removes the position from the open set and appends it to history. A
// position settles at most once; a second attempt is ErrPositionNotOpen.
func (a *Account) Settle(id string, price float64, at time.Time) (ClosedPosition, error) {
	for i, p := range a.open {
		if p.ID != id {
			continue
		}
		closed := ClosedPosition{Position: *p, ExitPrice: price, ExitTime: at}
		a.open = append(a.open[:i], a.open[i+1:]...)
		a.history = append(a.history, closed)
		a.Available += closed.Proceeds()
		return closed, nil
	}
	return ClosedPosition{}, fmt.Errorf("settle %s in %q: %w", id, a.Name, ErrPositionNotOpen)
}

// Find returns a copy of the open position with the given ID.
func (a *Account) Find(id string) (Position, bool) {
	for _, p := range a.open {
		if p.ID == id {
			return *p, true
		}
	}
	return Position{}, false
}

// OpenIDs returns the IDs of open positions for symbol, in open order.
func (a *Account) OpenIDs(symbol string) []string {
	var ids []string
	for _, p := range a.open {
		if p.Symbol == symbol {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Positions returns copies of the open positions, in open order.
func (a *Account) Positions() []Position {
	out := make([]Position, len(a.open))
	for i, p := range a.open {
		out[i] = *p
	}
	return out
}

// History returns the closed positions, in close order.
func (a *Account) History() []ClosedPosition {
	return append([]ClosedPosition(nil), a.history...)
}
