// Package replay drives a broker through a scripted trading day: the clock
// advances minute by minute and scripted orders fire as their timestamps
// come due.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/rmarchant/daysim/sim"
)

// Action is the kind of scripted order.
type Action string

const (
	// Open buys or sells a cash value of one symbol.
	Open Action = "OPEN"
	// Close closes every open position for one symbol in one account.
	Close Action = "CLOSE"
	// CloseAll flattens one account across every symbol.
	CloseAll Action = "CLOSE_ALL"
)

// Event is one scripted order, due when simulation time reaches Time.
type Event struct {
	Time       time.Time
	Action     Action
	Account    string
	Symbol     string
	Side       sim.Side
	Value      float64
	StopLoss   *float64
	TakeProfit *float64
}

// ParseScript reads a CSV event script.
//
// Columns:
//
//	time,event,account,symbol,side,value,stop_loss,take_profit
//
// Events (case-insensitive):
//
//	OPEN:      account, symbol, side (buy|sell), value, optional stop_loss
//	           and take_profit
//	CLOSE:     account, symbol
//	CLOSE_ALL: account
//
// A header row is detected by the first cell reading "time". Rows must be
// in ascending time order.
func ParseScript(r io.Reader) ([]Event, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var events []Event
	line := 0
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", line+1, err)
		}
		line++

		if line == 1 && len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}
		if len(row) == 0 {
			continue
		}

		ev, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("script line %d: %w", line, err)
		}
		if n := len(events); n > 0 && ev.Time.Before(events[n-1].Time) {
			return nil, fmt.Errorf("script line %d: rows must be in ascending time order", line)
		}
		events = append(events, ev)
	}
}

func parseRow(row []string) (Event, error) {
	if len(row) < 3 {
		return Event{}, fmt.Errorf("need at least time,event,account: %v", row)
	}
	for i := range row {
		row[i] = strings.TrimSpace(row[i])
	}

	t, err := time.Parse(time.RFC3339, row[0])
	if err != nil {
		return Event{}, fmt.Errorf("bad time %q: %w", row[0], err)
	}

	ev := Event{
		Time:    t,
		Action:  Action(strings.ToUpper(row[1])),
		Account: row[2],
	}
	if ev.Account == "" {
		return Event{}, fmt.Errorf("account is empty")
	}

	switch ev.Action {
	case Open:
		if len(row) < 6 {
			return Event{}, fmt.Errorf("OPEN: need account,symbol,side,value")
		}
		ev.Symbol = row[3]
		ev.Side = sim.Side(strings.ToLower(row[4]))
		if ev.Symbol == "" {
			return Event{}, fmt.Errorf("OPEN: symbol is empty")
		}
		if !ev.Side.Valid() {
			return Event{}, fmt.Errorf("OPEN: bad side %q", row[4])
		}
		ev.Value, err = strconv.ParseFloat(row[5], 64)
		if err != nil {
			return Event{}, fmt.Errorf("OPEN: bad value %q: %w", row[5], err)
		}
		if ev.StopLoss, err = optionalPrice(row, 6, "stop_loss"); err != nil {
			return Event{}, err
		}
		if ev.TakeProfit, err = optionalPrice(row, 7, "take_profit"); err != nil {
			return Event{}, err
		}

	case Close:
		if len(row) < 4 || row[3] == "" {
			return Event{}, fmt.Errorf("CLOSE: need account,symbol")
		}
		ev.Symbol = row[3]

	case CloseAll:

	default:
		return Event{}, fmt.Errorf("unknown event %q", row[1])
	}
	return ev, nil
}

func optionalPrice(row []string, idx int, name string) (*float64, error) {
	if len(row) <= idx || row[idx] == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(row[idx], 64)
	if err != nil {
		return nil, fmt.Errorf("OPEN: bad %s %q: %w", name, row[idx], err)
	}
	return &v, nil
}
