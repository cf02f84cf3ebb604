package journal

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVHeaders(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	closesPath := filepath.Join(dir, "closes.csv")
	balancesPath := filepath.Join(dir, "balances.csv")

	j, err := NewCSV(closesPath, balancesPath)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	closesData, err := os.ReadFile(closesPath)
	require.NoError(t, err)
	balancesData, err := os.ReadFile(balancesPath)
	require.NoError(t, err)

	closesHeader, err := csv.NewReader(strings.NewReader(string(closesData))).Read()
	require.NoError(t, err)
	balancesHeader, err := csv.NewReader(strings.NewReader(string(balancesData))).Read()
	require.NoError(t, err)

	wantCloses := []string{"position_id", "account", "symbol", "side", "units", "entry_price", "exit_price", "open_time", "close_time", "realized_pl"}
	assert.Equal(t, wantCloses, closesHeader)
	assert.Equal(t, []string{"time", "account", "available"}, balancesHeader)
}

func TestCSVRecordClose(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "closes.csv"), filepath.Join(dir, "balances.csv"))
	require.NoError(t, err)

	open := time.Date(2021, 3, 15, 9, 31, 0, 0, time.UTC)
	closeT := open.Add(5 * time.Minute)

	err = j.RecordClose(PositionRecord{
		PositionID: "01F0TEST",
		Account:    "main",
		Symbol:     "AAPL",
		Side:       "buy",
		Units:      4.2606,
		EntryPrice: 117.355,
		ExitPrice:  117.145,
		OpenTime:   open,
		CloseTime:  closeT,
		RealizedPL: -0.8947,
	})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "closes.csv"))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "01F0TEST", rows[1][0])
	assert.Equal(t, "main", rows[1][1])
	assert.Equal(t, "buy", rows[1][3])
	assert.Equal(t, open.Format(time.RFC3339), rows[1][7])
}

func TestCSVRecordBalance(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	j, err := NewCSV(filepath.Join(dir, "closes.csv"), filepath.Join(dir, "balances.csv"))
	require.NoError(t, err)

	at := time.Date(2021, 3, 15, 9, 31, 0, 0, time.UTC)
	require.NoError(t, j.RecordBalance(BalanceSnapshot{Time: at, Account: "main", Available: 999.1051}))
	require.NoError(t, j.Close())

	data, err := os.ReadFile(filepath.Join(dir, "balances.csv"))
	require.NoError(t, err)

	rows, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "main", rows[1][1])
	assert.Equal(t, "999.105100", rows[1][2])
}
