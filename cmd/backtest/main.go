package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"PriceSentinel/internal/backtest"
	"PriceSentinel/internal/config"
	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/pipeline"
	"PriceSentinel/internal/risk"
)

func main() {
	log.SetFlags(log.LstdFlags)

	csvPath := flag.String("csv", "", "bar CSV file (timestamp,open,high,low,close,volume)")
	symbol := flag.String("symbol", "SPY", "symbol label for the bars")
	cfgPath := flag.String("config", "configs/config.yaml", "config file")
	flag.Parse()

	if *csvPath == "" {
		log.Fatal("[FATAL] -csv is required")
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	bars, err := backtest.LoadCSV(*csvPath, *symbol)
	if err != nil {
		log.Fatalf("[FATAL] load bars: %v", err)
	}
	log.Printf("[INFO] 已加载 %d 根K线", len(bars))

	opts := pipeline.Options{
		Analysis: cfg.AnalysisParams(),
		Filter: risk.FilterParams{
			VolatilityLimit: cfg.Risk.VolatilityLimit,
			VolumeDiscount:  cfg.Risk.VolumeDiscount,
			Cooldown:        time.Duration(cfg.Risk.CooldownSeconds) * time.Second,
		},
	}
	xp := execution.DefaultParams()
	xp.RiskFraction = cfg.Execution.RiskFraction
	xp.MinConfidence = cfg.Execution.MinConfidence

	res := backtest.Run(*symbol, bars, opts, xp)

	fmt.Printf("回测结果 %s\n", res.Symbol)
	fmt.Printf("  K线数:   %d\n", res.Bars)
	fmt.Printf("  信号数:  %d\n", res.Signals)
	fmt.Printf("  拦截数:  %d\n", res.Rejected)
	fmt.Printf("  订单数:  %d\n", len(res.Orders))
	if res.Wins+res.Losses > 0 {
		fmt.Printf("  胜率:    %.0f%% (%d胜/%d负)\n", res.WinRate()*100, res.Wins, res.Losses)
	}
	fmt.Printf("  收益率:  %+.2f%%\n", res.Return*100)

	for _, o := range res.Orders {
		fmt.Printf("  %s %s %s 仓位 %.4f @ %.2f (%s)\n",
			o.Timestamp.Format("2006-01-02 15:04"), o.Symbol, o.Side, o.Fraction, o.Price, o.Reason)
	}
}
