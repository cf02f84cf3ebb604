// Package broker is the single entry point for one simulated trading day.
// A Broker owns the instrument universe, the playback clock and every
// account, and is the only component that applies spreads to fills.
package broker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmarchant/daysim/feed"
	"github.com/rmarchant/daysim/internal/id"
	"github.com/rmarchant/daysim/journal"
	"github.com/rmarchant/daysim/market"
	"github.com/rmarchant/daysim/sim"
)

type Broker struct {
	mu sync.Mutex

	source   feed.BarSource
	session  market.Session
	assets   []market.Asset
	spreads  map[string]float64
	clock    *sim.Clock
	accounts map[string]*sim.Account
	journal  journal.Journal
	log      logrus.FieldLogger
	day      time.Time
}

type Option func(*Broker)

// WithDay selects the trading day to load. Zero means "today" in the
// session's timezone, which legitimately yields ErrNoData outside market
// hours or on non-trading days.
func WithDay(day time.Time) Option {
	return func(b *Broker) { b.day = day }
}

func WithSession(s market.Session) Option {
	return func(b *Broker) { b.session = s }
}

func WithJournal(j journal.Journal) Option {
	return func(b *Broker) { b.journal = j }
}

func WithLogger(l logrus.FieldLogger) Option {
	return func(b *Broker) { b.log = l }
}

// New builds the instrument universe, fetches one session of bars per asset
// from the source and loads the aligned joint timeline into a fresh clock.
// Symbols must be unique and spreads non-negative.
func New(ctx context.Context, source feed.BarSource, assets []market.Asset, opts ...Option) (*Broker, error) {
	b := &Broker{
		source:   source,
		assets:   append([]market.Asset(nil), assets...),
		spreads:  make(map[string]float64, len(assets)),
		clock:    sim.NewClock(),
		accounts: make(map[string]*sim.Account),
		journal:  journal.Nop{},
		log:      logrus.StandardLogger(),
		session:  market.DefaultSession(),
	}
	for _, o := range opts {
		o(b)
	}

	for _, a := range b.assets {
		if a.Symbol == "" {
			return nil, fmt.Errorf("configure: empty symbol")
		}
		if a.Spread < 0 {
			return nil, fmt.Errorf("configure %s: spread %v: %w", a.Symbol, a.Spread, sim.ErrInvalidAmount)
		}
		if _, dup := b.spreads[a.Symbol]; dup {
			return nil, fmt.Errorf("configure %s: %w", a.Symbol, ErrDuplicateSymbol)
		}
		b.spreads[a.Symbol] = a.Spread
	}

	if b.day.IsZero() {
		b.day = b.session.Today()
	}
	if err := b.load(ctx, b.day); err != nil {
		return nil, err
	}
	return b, nil
}

// Reset refetches and reloads the bar timeline for the given day (zero
// reuses the loaded day, rewinding to the session open). Accounts keep
// their balances, open positions and history untouched.
func (b *Broker) Reset(ctx context.Context, day time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if day.IsZero() {
		day = b.day
	}
	return b.load(ctx, day)
}

// load fetches every asset's bars for one session and swaps the clock's
// timeline. On any failure the previous timeline stays live.
func (b *Broker) load(ctx context.Context, day time.Time) error {
	start, end := b.session.Window(day)

	series := make(map[string][]market.Bar, len(b.assets))
	for _, a := range b.assets {
		bars, err := b.source.Bars(ctx, a.Symbol, start, end)
		if err != nil {
			return fmt.Errorf("fetch %s bars for %s: %w", a.Symbol, day.Format("2006-01-02"), err)
		}
		series[a.Symbol] = bars
	}

	timeline := market.Align(series)
	if err := b.clock.Load(timeline); err != nil {
		return fmt.Errorf("load %s: %w", day.Format("2006-01-02"), err)
	}
	b.day = b.session.Floor(day)

	b.log.WithFields(logrus.Fields{
		"day":     b.day.Format("2006-01-02"),
		"symbols": len(series),
		"bars":    len(timeline),
	}).Info("trading day loaded")
	return nil
}

// OpenAccount creates a named account funded with the initial deposit.
func (b *Broker) OpenAccount(name string, deposit float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.accounts[name]; ok {
		return fmt.Errorf("open account %q: %w", name, ErrDuplicateAccount)
	}
	acct, err := sim.NewAccount(name, deposit)
	if err != nil {
		return err
	}
	b.accounts[name] = acct

	b.log.WithFields(logrus.Fields{"account": name, "deposit": deposit}).Info("account opened")
	return nil
}

// Deposit adds cash to an existing account.
func (b *Broker) Deposit(name string, amount float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(name)
	if err != nil {
		return err
	}
	return acct.Deposit(amount)
}

// OrderRequest describes a market fill to open: invest Value of cash into
// Symbol on the given Side at the current bar. StopLoss and TakeProfit are
// stored on the position but never executed by the clock.
type OrderRequest struct {
	Account    string
	Symbol     string
	Side       sim.Side
	Value      float64
	StopLoss   *float64
	TakeProfit *float64
}

// OpenPosition fills the request at the current bar's close, spread-
// adjusted against the caller: buys pay close + spread/2, sells receive
// close − spread/2. Units are Value divided by the fill price; fractional
// units are fine. A failed open leaves every account untouched.
func (b *Broker) OpenPosition(req OrderRequest) (sim.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(req.Account)
	if err != nil {
		return sim.Position{}, err
	}
	spread, ok := b.spreads[req.Symbol]
	if !ok {
		return sim.Position{}, fmt.Errorf("open %s: %w", req.Symbol, ErrUnknownSymbol)
	}
	if !req.Side.Valid() {
		return sim.Position{}, fmt.Errorf("open %s as %q: %w", req.Symbol, req.Side, sim.ErrInvalidSide)
	}
	if !sim.ValidAmount(req.Value) {
		return sim.Position{}, fmt.Errorf("open %s for %v: %w", req.Symbol, req.Value, sim.ErrInvalidAmount)
	}

	bs, err := b.clock.Current()
	if err != nil {
		return sim.Position{}, fmt.Errorf("open %s: %w", req.Symbol, err)
	}

	// Alignment guarantees every configured symbol has a bar here.
	entry := entryPrice(bs.Bars[req.Symbol].Close, spread, req.Side)
	pos := sim.Position{
		ID:         id.New(),
		Symbol:     req.Symbol,
		Side:       req.Side,
		Units:      req.Value / entry,
		EntryPrice: entry,
		EntryTime:  bs.Time,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
	}
	if err := acct.Book(pos, req.Value); err != nil {
		return sim.Position{}, err
	}

	b.recordBalance(acct, bs.Time)
	b.log.WithFields(logrus.Fields{
		"account":  acct.Name,
		"position": pos.ID,
		"symbol":   pos.Symbol,
		"side":     pos.Side,
		"units":    pos.Units,
		"entry":    pos.EntryPrice,
	}).Debug("position opened")
	return pos, nil
}

// ClosePosition closes one open position at the current bar, spread-
// adjusted in reverse of opening: longs sell at close − spread/2, shorts
// buy back at close + spread/2.
func (b *Broker) ClosePosition(account, positionID string) (sim.ClosedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeByID(account, positionID, 0, false)
}

// ClosePositionAt closes one open position at exactly the given price,
// with no spread adjustment.
func (b *Broker) ClosePositionAt(account, positionID string, price float64) (sim.ClosedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeByID(account, positionID, price, true)
}

// ClosePositions closes every open position for symbol in one account, in
// open order, at the current spread-adjusted bar close. It fails with
// sim.ErrPositionNotOpen when nothing matches.
func (b *Broker) ClosePositions(account, symbol string) ([]sim.ClosedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeSymbol(account, symbol, 0, false)
}

// ClosePositionsAt is ClosePositions with an explicit fill price.
func (b *Broker) ClosePositionsAt(account, symbol string, price float64) ([]sim.ClosedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closeSymbol(account, symbol, price, true)
}

func (b *Broker) closeByID(account, positionID string, price float64, explicit bool) (sim.ClosedPosition, error) {
	acct, err := b.account(account)
	if err != nil {
		return sim.ClosedPosition{}, err
	}
	pos, ok := acct.Find(positionID)
	if !ok {
		return sim.ClosedPosition{}, fmt.Errorf("close %s in %q: %w", positionID, account, sim.ErrPositionNotOpen)
	}

	// The close timestamp always comes from the current bar, even with an
	// explicit price.
	bs, err := b.clock.Current()
	if err != nil {
		return sim.ClosedPosition{}, fmt.Errorf("close %s: %w", positionID, err)
	}

	fill := price
	if !explicit {
		fill = exitPrice(bs.Bars[pos.Symbol].Close, b.spreads[pos.Symbol], pos.Side)
	}

	closed, err := acct.Settle(positionID, fill, bs.Time)
	if err != nil {
		return sim.ClosedPosition{}, err
	}

	b.recordClose(acct, closed)
	b.log.WithFields(logrus.Fields{
		"account":  acct.Name,
		"position": closed.ID,
		"symbol":   closed.Symbol,
		"exit":     closed.ExitPrice,
		"pl":       closed.RealizedPL(),
	}).Debug("position closed")
	return closed, nil
}

func (b *Broker) closeSymbol(account, symbol string, price float64, explicit bool) ([]sim.ClosedPosition, error) {
	acct, err := b.account(account)
	if err != nil {
		return nil, err
	}
	if _, ok := b.spreads[symbol]; !ok {
		return nil, fmt.Errorf("close %s: %w", symbol, ErrUnknownSymbol)
	}

	ids := acct.OpenIDs(symbol)
	if len(ids) == 0 {
		return nil, fmt.Errorf("close %s in %q: %w", symbol, account, sim.ErrPositionNotOpen)
	}

	out := make([]sim.ClosedPosition, 0, len(ids))
	for _, pid := range ids {
		closed, err := b.closeByID(account, pid, price, explicit)
		if err != nil {
			return out, err
		}
		out = append(out, closed)
	}
	return out, nil
}

// Positions returns copies of the account's open positions, in open order.
func (b *Broker) Positions(account string) ([]sim.Position, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(account)
	if err != nil {
		return nil, err
	}
	return acct.Positions(), nil
}

// History returns the account's closed positions, in close order.
func (b *Broker) History(account string) ([]sim.ClosedPosition, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(account)
	if err != nil {
		return nil, err
	}
	return acct.History(), nil
}

// Balance returns the account's available cash. Open positions are not
// marked to market here; see Equity.
func (b *Broker) Balance(account string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(account)
	if err != nil {
		return 0, err
	}
	return acct.Available, nil
}

// Equity returns available cash plus the liquidation value of the open
// positions, marked at the spread-adjusted exit side of the current close.
func (b *Broker) Equity(account string) (float64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	acct, err := b.account(account)
	if err != nil {
		return 0, err
	}

	positions := acct.Positions()
	total := acct.Available
	if len(positions) == 0 {
		return total, nil
	}

	bs, err := b.clock.Current()
	if err != nil {
		return 0, fmt.Errorf("equity %q: %w", account, err)
	}
	for _, p := range positions {
		mark := exitPrice(bs.Bars[p.Symbol].Close, b.spreads[p.Symbol], p.Side)
		total += p.Valuation(mark)
	}
	return total, nil
}

// NextTimestep advances simulation time by one minute and returns the new
// current barset. ok=false signals the day is exhausted; repeated calls
// keep returning false. No account is touched on advance.
func (b *Broker) NextTimestep() (market.Barset, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock.Next()
}

// CurrBarset returns the barset at the playback cursor.
func (b *Broker) CurrBarset() (market.Barset, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.clock.Current()
}

// Day returns local midnight of the loaded trading day.
func (b *Broker) Day() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.day
}

// Assets returns the configured instrument universe.
func (b *Broker) Assets() []market.Asset {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]market.Asset(nil), b.assets...)
}

func (b *Broker) account(name string) (*sim.Account, error) {
	acct, ok := b.accounts[name]
	if !ok {
		return nil, fmt.Errorf("account %q: %w", name, ErrAccountNotFound)
	}
	return acct, nil
}

// Journal failures must not poison a completed fill, so they are logged
// and dropped.
func (b *Broker) recordClose(acct *sim.Account, c sim.ClosedPosition) {
	err := b.journal.RecordClose(journal.PositionRecord{
		PositionID: c.ID,
		Account:    acct.Name,
		Symbol:     c.Symbol,
		Side:       string(c.Side),
		Units:      c.Units,
		EntryPrice: c.EntryPrice,
		ExitPrice:  c.ExitPrice,
		OpenTime:   c.EntryTime,
		CloseTime:  c.ExitTime,
		RealizedPL: c.RealizedPL(),
	})
	if err != nil {
		b.log.WithError(err).Warn("journal: record close failed")
	}
	b.recordBalance(acct, c.ExitTime)
}

func (b *Broker) recordBalance(acct *sim.Account, at time.Time) {
	err := b.journal.RecordBalance(journal.BalanceSnapshot{
		Time:      at,
		Account:   acct.Name,
		Available: acct.Available,
	})
	if err != nil {
		b.log.WithError(err).Warn("journal: record balance failed")
	}
}
