package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	j, err := NewSQLite(filepath.Join(t.TempDir(), "journal.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestSQLiteRecordAndGetClose(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	open := time.Date(2021, 3, 15, 9, 31, 0, 0, time.UTC)
	rec := PositionRecord{
		PositionID: "01F0TEST",
		Account:    "main",
		Symbol:     "AAPL",
		Side:       "sell",
		Units:      2.5,
		EntryPrice: 117.145,
		ExitPrice:  116.9,
		OpenTime:   open,
		CloseTime:  open.Add(10 * time.Minute),
		RealizedPL: 0.6125,
	}
	require.NoError(t, j.RecordClose(rec))

	got, err := j.GetClose("01F0TEST")
	require.NoError(t, err)
	assert.Equal(t, rec.Account, got.Account)
	assert.Equal(t, rec.Side, got.Side)
	assert.InDelta(t, rec.RealizedPL, got.RealizedPL, 1e-9)
	assert.True(t, got.CloseTime.Equal(rec.CloseTime))

	_, err = j.GetClose("missing")
	assert.Error(t, err)
}

func TestSQLiteListClosesBetween(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	base := time.Date(2021, 3, 15, 9, 31, 0, 0, time.UTC)
	for i, id := range []string{"A", "B", "C"} {
		require.NoError(t, j.RecordClose(PositionRecord{
			PositionID: id,
			Account:    "main",
			Symbol:     "AAPL",
			Side:       "buy",
			OpenTime:   base,
			CloseTime:  base.Add(time.Duration(i) * time.Minute),
		}))
	}

	recs, err := j.ListClosesBetween(base, base.Add(2*time.Minute))
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "A", recs[0].PositionID)
	assert.Equal(t, "B", recs[1].PositionID)
}

func TestSQLiteListBalances(t *testing.T) {
	t.Parallel()

	j := newTestSQLite(t)

	base := time.Date(2021, 3, 15, 9, 31, 0, 0, time.UTC)
	require.NoError(t, j.RecordBalance(BalanceSnapshot{Time: base, Account: "main", Available: 1000}))
	require.NoError(t, j.RecordBalance(BalanceSnapshot{Time: base.Add(time.Minute), Account: "main", Available: 500}))
	require.NoError(t, j.RecordBalance(BalanceSnapshot{Time: base, Account: "other", Available: 42}))

	snaps, err := j.ListBalances("main")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, 1000.0, snaps[0].Available)
	assert.Equal(t, 500.0, snaps[1].Available)
}
