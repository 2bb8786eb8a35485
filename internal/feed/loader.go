package feed

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"PriceSentinel/internal/model"
)

const defaultDataURL = "https://data.alpaca.markets"

// HistoryLoader fetches historical bars over the Alpaca data REST API,
// used to warm pipelines up before the live stream takes over.
type HistoryLoader struct {
	BaseURL   string
	APIKey    string
	APISecret string
	Client    *http.Client
}

// NewHistoryLoader creates a loader with a sane timeout.
func NewHistoryLoader(apiKey, apiSecret string) *HistoryLoader {
	return &HistoryLoader{
		APIKey:    apiKey,
		APISecret: apiSecret,
		Client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// barsResponse is the chart payload; only consumed fields declared.
type barsResponse struct {
	Bars []struct {
		Timestamp  string  `json:"t"`
		Open       float64 `json:"o"`
		High       float64 `json:"h"`
		Low        float64 `json:"l"`
		Close      float64 `json:"c"`
		Volume     float64 `json:"v"`
		VWAP       float64 `json:"vw"`
		TradeCount int64   `json:"n"`
	} `json:"bars"`
	NextPageToken *string `json:"next_page_token"`
}

// LoadBars returns up to limit recent bars for the symbol at the given
// timeframe ("1Min", "5Min", "1Day"), oldest first.
func (l *HistoryLoader) LoadBars(symbol, timeframe string, limit int) ([]model.Bar, error) {
	base := l.BaseURL
	if base == "" {
		base = defaultDataURL
	}
	u := fmt.Sprintf("%s/v2/stocks/%s/bars?timeframe=%s&limit=%d",
		base, url.PathEscape(symbol), url.QueryEscape(timeframe), limit)

	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("APCA-API-KEY-ID", l.APIKey)
	req.Header.Set("APCA-API-SECRET-KEY", l.APISecret)

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("history fetch: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("history read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("history: status %d, body: %s", resp.StatusCode, string(body))
	}

	var payload barsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("history decode: %w", err)
	}

	bars := make([]model.Bar, 0, len(payload.Bars))
	for _, b := range payload.Bars {
		ts, err := time.Parse(time.RFC3339, b.Timestamp)
		if err != nil {
			continue // skip malformed bars
		}
		bars = append(bars, model.Bar{
			Symbol:     symbol,
			Timestamp:  ts,
			Open:       b.Open,
			High:       b.High,
			Low:        b.Low,
			Close:      b.Close,
			Volume:     b.Volume,
			VWAP:       b.VWAP,
			TradeCount: b.TradeCount,
		})
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Timestamp.Before(bars[j].Timestamp) })
	return bars, nil
}
