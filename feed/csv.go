package feed

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz"

	"github.com/rmarchant/daysim/market"
)

// CSVDir reads bars from a local archive laid out as
// <dir>/<SYMBOL>/<YYYY-MM-DD>.csv, optionally gzip- or xz-compressed
// (.csv.gz / .csv.xz). Row format, header included:
//
//	time,open,high,low,close,volume
//
// with RFC3339 timestamps. A missing file means the market was closed or
// the day was never downloaded; that is an empty series, not an error.
type CSVDir struct {
	Dir string
	Log logrus.FieldLogger
}

func (s *CSVDir) Bars(_ context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	base := filepath.Join(s.Dir, symbol, start.Format("2006-01-02")+".csv")

	for _, path := range []string{base, base + ".gz", base + ".xz"} {
		f, err := os.Open(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		defer f.Close()

		r, err := decompress(path, f)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return s.parse(r, path, start, end)
	}
	return nil, nil
}

func decompress(path string, f io.Reader) (io.Reader, error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		return gzip.NewReader(f)
	case strings.HasSuffix(path, ".xz"):
		return xz.NewReader(f)
	default:
		return f, nil
	}
}

func (s *CSVDir) parse(r io.Reader, path string, start, end time.Time) ([]market.Bar, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var out []market.Bar
	badLines := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "time") {
			continue
		}
		bar, err := parseBarRow(row)
		if err != nil {
			badLines++
			continue
		}
		if bar.Time.Before(start) || !bar.Time.Before(end) {
			continue
		}
		out = append(out, bar)
	}

	if badLines > 0 {
		s.logger().WithFields(logrus.Fields{"file": path, "bad_lines": badLines}).
			Warn("skipped unparseable bar rows")
	}
	return out, nil
}

func parseBarRow(row []string) (market.Bar, error) {
	if len(row) < 6 {
		return market.Bar{}, fmt.Errorf("need 6 columns, got %d", len(row))
	}
	ts, err := time.Parse(time.RFC3339, strings.TrimSpace(row[0]))
	if err != nil {
		return market.Bar{}, err
	}
	vals := make([]float64, 5)
	for i := 1; i < 6; i++ {
		vals[i-1], err = strconv.ParseFloat(strings.TrimSpace(row[i]), 64)
		if err != nil {
			return market.Bar{}, err
		}
	}
	return market.Bar{
		Time:   ts,
		Open:   vals[0],
		High:   vals[1],
		Low:    vals[2],
		Close:  vals[3],
		Volume: vals[4],
	}, nil
}

// WriteCSV writes bars to w in the CSVDir row format.
func WriteCSV(w io.Writer, bars []market.Bar) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"time", "open", "high", "low", "close", "volume"}); err != nil {
		return err
	}
	for _, b := range bars {
		row := []string{
			b.Time.Format(time.RFC3339),
			formatPrice(b.Open),
			formatPrice(b.High),
			formatPrice(b.Low),
			formatPrice(b.Close),
			strconv.FormatFloat(b.Volume, 'f', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *CSVDir) logger() logrus.FieldLogger {
	if s.Log != nil {
		return s.Log
	}
	return logrus.StandardLogger()
}
