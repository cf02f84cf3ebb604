package market

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionWindow(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	s := USEquities(loc)

	// Any instant during the day maps to the same session window.
	noonUTC := time.Date(2021, 3, 15, 17, 0, 0, 0, time.UTC)
	open, close := s.Window(noonUTC)

	assert.Equal(t, time.Date(2021, 3, 15, 9, 30, 0, 0, loc), open)
	assert.Equal(t, time.Date(2021, 3, 15, 16, 0, 0, 0, loc), close)
	assert.Equal(t, 390, int(close.Sub(open).Minutes()))
}

func TestSessionFloor(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	s := USEquities(loc)

	// 2021-03-16 01:00 UTC is still 2021-03-15 in New York.
	late := time.Date(2021, 3, 16, 1, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, loc), s.Floor(late))
}

func TestDefaultSession(t *testing.T) {
	t.Parallel()

	s := DefaultSession()
	require.NotNil(t, s.Loc)
	assert.Equal(t, 9*time.Hour+30*time.Minute, s.Open)
	assert.Equal(t, 16*time.Hour, s.Close)
}
