package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/pipeline"
)

// commissionRate is the per-fill cost charged on the traded fraction.
const commissionRate = 0.0005

// Result summarizes one backtest run.
type Result struct {
	Symbol   string
	Bars     int
	Signals  int
	Rejected int
	Orders   []execution.Order
	// Wins and Losses count realized lot exits.
	Wins   int
	Losses int
	// Return is the realized plus mark-to-market return on committed
	// equity, net of commission, as a fraction.
	Return float64
}

// WinRate returns the fraction of realized exits that were profitable,
// or 0 before any lot has been closed.
func (r Result) WinRate() float64 {
	total := r.Wins + r.Losses
	if total == 0 {
		return 0
	}
	return float64(r.Wins) / float64(total)
}

// Run replays the bars through a fresh pipeline and trader. Bars must be
// oldest first.
func Run(symbol string, bars []model.Bar, opts pipeline.Options, xp execution.Params) Result {
	p := pipeline.New(symbol, opts)
	trader := execution.NewTrader(xp)

	res := Result{Symbol: symbol}
	var lots []execution.Order

	for _, bar := range bars {
		res.Bars++
		decision := p.ProcessBar(bar)
		if decision == nil {
			continue
		}
		if decision.Signal == nil {
			res.Rejected++
			continue
		}
		res.Signals++

		order := trader.HandleSignal(decision.Signal, p.RecentBars(50))
		if order == nil {
			continue
		}
		res.Orders = append(res.Orders, *order)
		res.Return -= commissionRate * order.Fraction

		switch order.Side {
		case model.SignalBuy:
			lots = append(lots, *order)
		case model.SignalSell:
			for _, lot := range lots {
				if lot.Price > 0 {
					res.Return += lot.Fraction * (order.Price/lot.Price - 1)
					if order.Price > lot.Price {
						res.Wins++
					} else {
						res.Losses++
					}
				}
			}
			lots = nil
		}
	}

	// Mark open lots to the final close.
	if len(lots) > 0 && len(bars) > 0 {
		last := bars[len(bars)-1].Close
		for _, lot := range lots {
			if lot.Price > 0 {
				res.Return += lot.Fraction * (last/lot.Price - 1)
			}
		}
	}

	return res
}

// LoadCSV reads bars from a CSV file with a header row of
// timestamp,open,high,low,close,volume. Timestamps are RFC3339 or unix
// seconds.
func LoadCSV(path, symbol string) ([]model.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 6

	// Header
	if _, err := r.Read(); err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	var bars []model.Bar
	line := 1
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}

		bar, err := parseRow(rec, symbol)
		if err != nil {
			log.Printf("[WARN] 跳过CSV第 %d 行: %v", line, err)
			continue
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseRow(rec []string, symbol string) (model.Bar, error) {
	ts, err := parseTimestamp(rec[0])
	if err != nil {
		return model.Bar{}, err
	}

	vals := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := strconv.ParseFloat(rec[i+1], 64)
		if err != nil {
			return model.Bar{}, fmt.Errorf("parse field %d %q: %w", i+1, rec[i+1], err)
		}
		vals[i] = v
	}

	return model.Bar{
		Symbol:    symbol,
		Timestamp: ts,
		Open:      vals[0],
		High:      vals[1],
		Low:       vals[2],
		Close:     vals[3],
		Volume:    vals[4],
	}, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return ts, nil
}
