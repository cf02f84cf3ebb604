package replay

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/rmarchant/daysim/broker"
	"github.com/rmarchant/daysim/sim"
)

// Result summarizes one scripted run.
type Result struct {
	Steps   int // minutes stepped through
	Opened  int // positions opened
	Closed  int // positions closed
	Skipped int // events rejected by the broker
}

// Run steps the broker's clock through the loaded day and fires each event
// once simulation time reaches its timestamp. Order rejections (unknown
// symbol, insufficient funds, nothing open to close) are logged and counted
// in Skipped; they never abort the run. Events timestamped past the end of
// the day are skipped when the clock exhausts.
func Run(ctx context.Context, b *broker.Broker, events []Event, log logrus.FieldLogger) (Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	var res Result
	next := 0
	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		bs, ok := b.NextTimestep()
		if !ok {
			break
		}
		res.Steps++

		for next < len(events) && !events[next].Time.After(bs.Time) {
			apply(b, events[next], &res, log)
			next++
		}
	}

	if next < len(events) {
		log.WithField("events", len(events)-next).Warn("script events left after day end")
		res.Skipped += len(events) - next
	}
	return res, nil
}

// CSVFile parses a script file and runs it.
func CSVFile(ctx context.Context, b *broker.Broker, path string, log logrus.FieldLogger) (Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	events, err := ParseScript(f)
	if err != nil {
		return Result{}, err
	}
	return Run(ctx, b, events, log)
}

func apply(b *broker.Broker, ev Event, res *Result, log logrus.FieldLogger) {
	l := log.WithFields(logrus.Fields{
		"time":    ev.Time.Format("15:04"),
		"event":   string(ev.Action),
		"account": ev.Account,
		"symbol":  ev.Symbol,
	})

	switch ev.Action {
	case Open:
		_, err := b.OpenPosition(broker.OrderRequest{
			Account:    ev.Account,
			Symbol:     ev.Symbol,
			Side:       ev.Side,
			Value:      ev.Value,
			StopLoss:   ev.StopLoss,
			TakeProfit: ev.TakeProfit,
		})
		if err != nil {
			res.Skipped++
			l.WithError(err).Warn("open rejected")
			return
		}
		res.Opened++

	case Close:
		closed, err := b.ClosePositions(ev.Account, ev.Symbol)
		res.Closed += len(closed)
		if err != nil {
			res.Skipped++
			l.WithError(err).Warn("close rejected")
		}

	case CloseAll:
		for _, a := range b.Assets() {
			closed, err := b.ClosePositions(ev.Account, a.Symbol)
			res.Closed += len(closed)
			if err != nil && !errors.Is(err, sim.ErrPositionNotOpen) {
				res.Skipped++
				l.WithError(err).WithField("symbol", a.Symbol).Warn("close rejected")
			}
		}
	}
}
