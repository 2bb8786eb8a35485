package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"PriceSentinel/internal/config"
	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/feed"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/monitor"
	"PriceSentinel/internal/notifier"
	"PriceSentinel/internal/pipeline"
	"PriceSentinel/internal/recorder"
	"PriceSentinel/internal/risk"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] PriceSentinel starting...")

	// .env is optional; real deployments use the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Println("[INFO] .env loaded")
	}

	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init trader
	var trader *execution.Trader
	if cfg.Execution.Enabled {
		xp := execution.DefaultParams()
		xp.RiskFraction = cfg.Execution.RiskFraction
		xp.MinConfidence = cfg.Execution.MinConfidence
		trader = execution.NewTrader(xp)
		log.Printf("[INFO] execution enabled, risk %.2f%%", xp.RiskFraction*100)
	}

	// Per-symbol pipelines sharing one event channel
	events := make(chan model.PipelineEvent, 256)
	opts := pipeline.Options{
		Analysis: cfg.AnalysisParams(),
		Filter: risk.FilterParams{
			VolatilityLimit: cfg.Risk.VolatilityLimit,
			VolumeDiscount:  cfg.Risk.VolumeDiscount,
			Cooldown:        time.Duration(cfg.Risk.CooldownSeconds) * time.Second,
		},
		Events: events,
	}
	pipelines := make(map[string]*pipeline.Pipeline, len(cfg.Feed.Symbols))
	for _, sym := range cfg.Feed.Symbols {
		pipelines[sym] = pipeline.New(sym, opts)
	}

	// Historical warm-up
	if cfg.Feed.Provider == "alpaca" {
		loader := feed.NewHistoryLoader(cfg.Feed.APIKey, cfg.Feed.APISecret)
		loader.BaseURL = cfg.Feed.DataURL
		for sym, p := range pipelines {
			bars, err := loader.LoadBars(sym, cfg.Feed.Timeframe, cfg.Feed.WarmupBars)
			if err != nil {
				log.Printf("[WARN] %s 历史数据加载失败: %v", sym, err)
				continue
			}
			p.Warmup(bars)
		}
	}

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		log.Println("[INFO] telegram notifier enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	notify := func(text string) {
		if tn == nil {
			return
		}
		go func() {
			if err := tn.SendWithRetry(ctx, text, 3); err != nil {
				log.Printf("[ERROR] send notification: %v", err)
			}
		}()
	}

	// Event dispatcher: monitor state, persistence, notifications
	tracker := monitor.NewTracker()
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-events:
				tracker.Handle(evt)
				switch evt.Type {
				case model.EventSignalGenerated:
					if err := rec.RecordSignal(evt.Signal, evt.Context); err != nil {
						log.Printf("[ERROR] record signal: %v", err)
					}
					notify(notifier.FormatSignalAlert(evt.Signal, evt.Context))
				case model.EventSignalRejected:
					if err := rec.RecordRejection(evt.Symbol, evt.Reason, evt.Signal); err != nil {
						log.Printf("[ERROR] record rejection: %v", err)
					}
				}
			}
		}
	}()

	// Bar path: feed -> pipeline -> trader
	barCh := make(chan model.Bar, 256)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case bar := <-barCh:
				p, ok := pipelines[bar.Symbol]
				if !ok {
					continue
				}
				decision := p.ProcessBar(bar)
				if decision == nil || decision.Signal == nil || trader == nil {
					continue
				}
				order := trader.HandleSignal(decision.Signal, p.RecentBars(50))
				if order == nil {
					continue
				}
				log.Printf("[INFO] 下单 %s %s 仓位 %.4f @ %.2f", order.Symbol, order.Side, order.Fraction, order.Price)
				if err := rec.RecordOrder(order); err != nil {
					log.Printf("[ERROR] record order: %v", err)
				}
				notify(notifier.FormatOrderAlert(order))
			}
		}
	}()

	// Start feeds
	startFeeds(ctx, cfg, barCh)

	// Periodic status report
	c := cron.New(cron.WithSeconds())
	if _, err := c.AddFunc(cfg.Schedule.StatusCron, func() {
		log.Println("[INFO]\n" + monitor.FormatStatusReport(tracker.Snapshot()))
	}); err != nil {
		log.Fatalf("[FATAL] register status report: %v", err)
	}
	c.Start()
	defer c.Stop()

	// Telegram command polling
	if tn != nil {
		go tn.StartPolling(ctx, func(command string) string {
			switch command {
			case "/status", "查看状态":
				return monitor.FormatStatusReport(tracker.Snapshot())
			case "/positions", "查看持仓":
				if trader == nil {
					return "自动下单未启用"
				}
				return notifier.FormatPositions(trader.Positions())
			default:
				return "可用命令:\n• /status 查看状态\n• /positions 查看持仓"
			}
		})
		log.Println("[INFO] Telegram polling started")
	}

	log.Println("[INFO] PriceSentinel is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] PriceSentinel stopped")
}

func startFeeds(ctx context.Context, cfg *config.Config, out chan<- model.Bar) {
	if cfg.Feed.Provider == "alpaca" {
		f := &feed.AlpacaFeed{
			URL:       cfg.Feed.StreamURL,
			APIKey:    cfg.Feed.APIKey,
			APISecret: cfg.Feed.APISecret,
			Symbols:   cfg.Feed.Symbols,
		}
		go runFeed(ctx, f, out)
		return
	}

	for _, sym := range cfg.Feed.Symbols {
		f := &feed.MockFeed{Symbol: sym, BasePrice: 100, Interval: time.Second}
		go runFeed(ctx, f, out)
	}
}

func runFeed(ctx context.Context, f feed.Feed, out chan<- model.Bar) {
	log.Printf("[INFO] feed %s started", f.Name())
	if err := f.Run(ctx, out); err != nil && ctx.Err() == nil {
		log.Printf("[ERROR] feed %s stopped: %v", f.Name(), err)
	}
}
