package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"PriceSentinel/internal/model"
)

const (
	defaultStreamURL = "wss://stream.data.alpaca.markets/v2/iex"
	reconnectMin     = time.Second
	reconnectMax     = time.Minute
)

// AlpacaFeed streams minute bars over the Alpaca market-data websocket.
// It reconnects with exponential backoff until the context is canceled.
type AlpacaFeed struct {
	URL       string
	APIKey    string
	APISecret string
	Symbols   []string
}

func (f *AlpacaFeed) Name() string { return "alpaca" }

// streamMsg covers the union of message types on the bar stream; only
// the fields we consume are declared.
type streamMsg struct {
	Type       string  `json:"T"`
	Msg        string  `json:"msg,omitempty"`
	Code       int     `json:"code,omitempty"`
	Symbol     string  `json:"S,omitempty"`
	Open       float64 `json:"o,omitempty"`
	High       float64 `json:"h,omitempty"`
	Low        float64 `json:"l,omitempty"`
	Close      float64 `json:"c,omitempty"`
	Volume     float64 `json:"v,omitempty"`
	VWAP       float64 `json:"vw,omitempty"`
	TradeCount int64   `json:"n,omitempty"`
	Timestamp  string  `json:"t,omitempty"`
}

// Run connects, authenticates, subscribes, and pumps bars into out.
func (f *AlpacaFeed) Run(ctx context.Context, out chan<- model.Bar) error {
	backoff := reconnectMin
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := f.stream(ctx, out)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[WARN] alpaca 连接中断: %v, %s 后重连", err, backoff)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > reconnectMax {
			backoff = reconnectMax
		}
	}
}

func (f *AlpacaFeed) stream(ctx context.Context, out chan<- model.Bar) error {
	url := f.URL
	if url == "" {
		url = defaultStreamURL
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("alpaca dial: %w", err)
	}
	defer conn.Close()

	// Close the socket when the context ends so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	auth := map[string]string{"action": "auth", "key": f.APIKey, "secret": f.APISecret}
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("alpaca auth: %w", err)
	}
	sub := map[string]any{"action": "subscribe", "bars": f.Symbols}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("alpaca subscribe: %w", err)
	}
	log.Printf("[INFO] alpaca 已连接, 订阅 %v", f.Symbols)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("alpaca read: %w", err)
		}

		var msgs []streamMsg
		if err := json.Unmarshal(raw, &msgs); err != nil {
			log.Printf("[WARN] alpaca 消息解析失败: %v", err)
			continue
		}

		for _, m := range msgs {
			switch m.Type {
			case "b":
				bar, err := m.toBar()
				if err != nil {
					log.Printf("[WARN] alpaca K线解析失败: %v", err)
					continue
				}
				select {
				case out <- bar:
				case <-ctx.Done():
					return ctx.Err()
				}
			case "error":
				return fmt.Errorf("alpaca error %d: %s", m.Code, m.Msg)
			}
		}
	}
}

func (m streamMsg) toBar() (model.Bar, error) {
	ts, err := time.Parse(time.RFC3339, m.Timestamp)
	if err != nil {
		return model.Bar{}, fmt.Errorf("parse timestamp %q: %w", m.Timestamp, err)
	}
	return model.Bar{
		Symbol:     m.Symbol,
		Timestamp:  ts,
		Open:       m.Open,
		High:       m.High,
		Low:        m.Low,
		Close:      m.Close,
		Volume:     m.Volume,
		VWAP:       m.VWAP,
		TradeCount: m.TradeCount,
	}, nil
}
