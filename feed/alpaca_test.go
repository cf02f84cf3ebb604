package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func alpacaBarJSON(ts time.Time, close float64) map[string]any {
	return map[string]any{
		"t": ts.UTC().Format(time.RFC3339),
		"o": close - 0.1,
		"h": close + 0.1,
		"l": close - 0.2,
		"c": close,
		"v": 1000,
	}
}

func TestAlpacaBarsPagination(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, 3, 15, 13, 30, 0, 0, time.UTC)
	end := start.Add(10 * time.Minute)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/stocks/AAPL/bars", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))
		assert.Equal(t, "1Min", r.URL.Query().Get("timeframe"))

		resp := map[string]any{"symbol": "AAPL"}
		if r.URL.Query().Get("page_token") == "" {
			resp["bars"] = []any{alpacaBarJSON(start, 117.0), alpacaBarJSON(start.Add(time.Minute), 117.1)}
			resp["next_page_token"] = "page2"
		} else {
			assert.Equal(t, "page2", r.URL.Query().Get("page_token"))
			resp["bars"] = []any{alpacaBarJSON(start.Add(2*time.Minute), 117.2)}
			resp["next_page_token"] = nil
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := &Alpaca{BaseURL: srv.URL, KeyID: "key", Secret: "secret", HTTP: srv.Client()}
	bars, err := c.Bars(context.Background(), "AAPL", start, end)
	require.NoError(t, err)

	require.Len(t, bars, 3)
	assert.Equal(t, 117.0, bars[0].Close)
	assert.Equal(t, 117.2, bars[2].Close)
	assert.True(t, bars[1].Time.Equal(start.Add(time.Minute)))
}

func TestAlpacaBarsRetriesRateLimit(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, 3, 15, 13, 30, 0, 0, time.UTC)
	calls := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"message":"rate limit"}`)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"symbol": "AAPL",
			"bars":   []any{alpacaBarJSON(start, 117.0)},
		})
	}))
	defer srv.Close()

	c := &Alpaca{BaseURL: srv.URL, KeyID: "key", Secret: "secret", HTTP: srv.Client()}
	bars, err := c.Bars(context.Background(), "AAPL", start, start.Add(time.Minute))
	require.NoError(t, err)
	assert.Len(t, bars, 1)
	assert.Equal(t, 2, calls)
}

func TestAlpacaBarsClientErrorNotRetried(t *testing.T) {
	t.Parallel()

	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message":"forbidden"}`)
	}))
	defer srv.Close()

	start := time.Date(2021, 3, 15, 13, 30, 0, 0, time.UTC)
	c := &Alpaca{BaseURL: srv.URL, KeyID: "key", Secret: "secret", HTTP: srv.Client()}
	_, err := c.Bars(context.Background(), "AAPL", start, start.Add(time.Minute))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
	assert.Equal(t, 1, calls)
}

func TestAlpacaBarsMissingCredentials(t *testing.T) {
	t.Parallel()

	start := time.Date(2021, 3, 15, 13, 30, 0, 0, time.UTC)
	c := &Alpaca{}
	_, err := c.Bars(context.Background(), "AAPL", start, start.Add(time.Minute))
	assert.Error(t, err)
}
