package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rmarchant/daysim/market"
)

const (
	defaultDataURL = "https://data.alpaca.markets"

	// Transient failures (rate limit, provider hiccups) get a small bounded
	// retry; everything else surfaces immediately.
	retryCount = 3
	retryDelay = time.Second

	// Maximum allowed limit parameter for the v2 bars endpoint.
	pageLimit = 10000
)

// Alpaca fetches minute bars from the Alpaca Data API v2.
type Alpaca struct {
	BaseURL string
	KeyID   string
	Secret  string
	HTTP    *http.Client
	Log     logrus.FieldLogger
}

// AlpacaFromEnv builds a client from the standard APCA_* environment
// variables.
func AlpacaFromEnv() *Alpaca {
	base := os.Getenv("APCA_API_DATA_URL")
	if base == "" {
		base = defaultDataURL
	}
	return &Alpaca{
		BaseURL: base,
		KeyID:   os.Getenv("APCA_API_KEY_ID"),
		Secret:  os.Getenv("APCA_API_SECRET_KEY"),
	}
}

type alpacaBarsResp struct {
	Bars []struct {
		T time.Time `json:"t"`
		O float64   `json:"o"`
		H float64   `json:"h"`
		L float64   `json:"l"`
		C float64   `json:"c"`
		V float64   `json:"v"`
	} `json:"bars"`
	Symbol        string  `json:"symbol"`
	NextPageToken *string `json:"next_page_token"`
}

func (c *Alpaca) Bars(ctx context.Context, symbol string, start, end time.Time) ([]market.Bar, error) {
	if c.KeyID == "" || c.Secret == "" {
		return nil, fmt.Errorf("alpaca: missing credentials (APCA_API_KEY_ID / APCA_API_SECRET_KEY)")
	}
	if symbol == "" {
		return nil, fmt.Errorf("alpaca: missing symbol")
	}

	var out []market.Bar
	token := ""
	for {
		page, err := c.page(ctx, symbol, start, end, token)
		if err != nil {
			return nil, err
		}
		for _, b := range page.Bars {
			out = append(out, market.Bar{
				Time:   b.T.In(start.Location()),
				Open:   b.O,
				High:   b.H,
				Low:    b.L,
				Close:  b.C,
				Volume: b.V,
			})
		}
		if page.NextPageToken == nil || *page.NextPageToken == "" {
			return out, nil
		}
		token = *page.NextPageToken
	}
}

func (c *Alpaca) page(ctx context.Context, symbol string, start, end time.Time, token string) (*alpacaBarsResp, error) {
	base := c.BaseURL
	if base == "" {
		base = defaultDataURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	u.Path = fmt.Sprintf("/v2/stocks/%s/bars", symbol)

	q := u.Query()
	q.Set("timeframe", "1Min")
	q.Set("start", start.UTC().Format(time.RFC3339))
	q.Set("end", end.UTC().Format(time.RFC3339))
	q.Set("limit", fmt.Sprintf("%d", pageLimit))
	if token != "" {
		q.Set("page_token", token)
	}
	u.RawQuery = q.Encode()

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("APCA-API-KEY-ID", c.KeyID)
		req.Header.Set("APCA-API-SECRET-KEY", c.Secret)

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode == http.StatusOK {
			var page alpacaBarsResp
			err := json.NewDecoder(resp.Body).Decode(&page)
			resp.Body.Close()
			if err != nil {
				return nil, fmt.Errorf("alpaca bars: decode: %w", err)
			}
			return &page, nil
		}

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		resp.Body.Close()

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		if !retryable || attempt >= retryCount {
			return nil, fmt.Errorf("alpaca bars %s: http %d: %s",
				symbol, resp.StatusCode, strings.TrimSpace(string(body)))
		}

		c.logger().WithFields(logrus.Fields{
			"symbol":  symbol,
			"status":  resp.StatusCode,
			"attempt": attempt + 1,
		}).Warn("alpaca bars request retrying")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
}

func (c *Alpaca) logger() logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}
