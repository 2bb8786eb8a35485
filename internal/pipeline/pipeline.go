package pipeline

import (
	"log"
	"sync"

	"PriceSentinel/internal/analysis"
	"PriceSentinel/internal/model"
	"PriceSentinel/internal/risk"
	"PriceSentinel/internal/signal"
	"PriceSentinel/internal/window"
)

const (
	defaultWindowCapacity = 1000
	minBars               = 20 // bars required before any signal work
	snapshotSize          = 50 // bars handed to the analyzers per tick
)

// Options configures a per-symbol pipeline. Zero values fall back to
// the defaults of each stage.
type Options struct {
	WindowCapacity int
	Analysis       analysis.Params
	Filter         risk.FilterParams
	// Events receives analysis and signal events. Nil disables
	// publishing; a full channel drops events rather than blocking
	// the bar path.
	Events chan<- model.PipelineEvent
}

// Pipeline runs the full per-symbol flow: window update, price-action
// analysis, signal generation, and risk filtering. One instance per
// symbol; ProcessBar is safe to call from a single feed goroutine while
// readers inspect state concurrently.
type Pipeline struct {
	symbol   string
	window   *window.RollingWindow
	analyzer *analysis.Analyzer
	gen      *signal.Generator
	filter   *risk.Filter
	events   chan<- model.PipelineEvent

	mu      sync.RWMutex
	lastCtx *model.PriceActionContext
	lastSig *model.TradingSignal
}

// New builds a pipeline for one symbol.
func New(symbol string, opts Options) *Pipeline {
	capacity := opts.WindowCapacity
	if capacity <= 0 {
		capacity = defaultWindowCapacity
	}
	p := opts.Analysis
	if p == (analysis.Params{}) {
		p = analysis.DefaultParams()
	}
	fp := opts.Filter
	if fp == (risk.FilterParams{}) {
		fp = risk.DefaultFilterParams()
	}

	return &Pipeline{
		symbol:   symbol,
		window:   window.New(capacity),
		analyzer: analysis.NewAnalyzer(p),
		gen:      signal.NewGenerator(p),
		filter:   risk.NewFilter(fp),
		events:   opts.Events,
	}
}

// Symbol returns the symbol this pipeline tracks.
func (p *Pipeline) Symbol() string { return p.symbol }

// Warmup seeds the window with historical bars without generating
// signals or events.
func (p *Pipeline) Warmup(bars []model.Bar) {
	for _, b := range bars {
		p.window.Push(b)
	}
	log.Printf("[INFO] %s 历史数据预热完成, 共 %d 根K线", p.symbol, p.window.Len())
}

// ProcessBar ingests one bar and runs the full analysis chain. It
// returns the risk decision for this bar, or nil when the history is
// still too short or no setup fired. A panic in any stage is contained
// to this bar.
func (p *Pipeline) ProcessBar(bar model.Bar) (decision *model.RiskDecision) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[ERROR] %s 处理K线异常: %v", p.symbol, r)
			decision = nil
		}
	}()

	p.window.Push(bar)
	if p.window.Len() < minBars {
		return nil
	}

	bars := p.window.Snapshot(snapshotSize)
	ctx := p.analyzer.Analyze(bars, bar)
	mctx := p.analyzer.MarketContext(ctx, bars)

	p.mu.Lock()
	p.lastCtx = ctx
	p.mu.Unlock()

	evt := model.NewPipelineEvent(model.EventAnalysisUpdated, p.symbol)
	evt.Context = ctx
	evt.Market = &mctx
	p.publish(evt)

	sig := p.gen.Generate(bars, bar, ctx, mctx)
	if sig == nil {
		return nil
	}

	d := p.filter.Check(sig, mctx)
	if d.Signal == nil {
		log.Printf("[WARN] %s 信号被风控拦截: %s", p.symbol, d.Reason)
		evt := model.NewPipelineEvent(model.EventSignalRejected, p.symbol)
		evt.Signal = sig
		evt.Reason = d.Reason
		p.publish(evt)
		return &d
	}

	p.mu.Lock()
	p.lastSig = d.Signal
	p.mu.Unlock()

	log.Printf("[INFO] %s 产生信号: %s 置信度 %.2f (%s)",
		p.symbol, d.Signal.SignalType, d.Signal.Confidence, d.Signal.Reason)
	evt = model.NewPipelineEvent(model.EventSignalGenerated, p.symbol)
	evt.Signal = d.Signal
	evt.Context = ctx
	p.publish(evt)

	return &d
}

// RecentBars returns up to count most recent bars, oldest first.
func (p *Pipeline) RecentBars(count int) []model.Bar {
	return p.window.Snapshot(count)
}

// CurrentPrice returns the latest close, or 0 before any bar arrived.
func (p *Pipeline) CurrentPrice() float64 {
	if b, ok := p.window.Latest(); ok {
		return b.Close
	}
	return 0
}

// LastSignal returns the most recent accepted signal, or nil.
func (p *Pipeline) LastSignal() *model.TradingSignal {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastSig
}

// LastContext returns the most recent analysis context, or nil.
func (p *Pipeline) LastContext() *model.PriceActionContext {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastCtx
}

func (p *Pipeline) publish(evt model.PipelineEvent) {
	if p.events == nil {
		return
	}
	select {
	case p.events <- evt:
	default:
		log.Printf("[WARN] 事件通道已满, 丢弃事件 %s/%s", evt.Symbol, evt.Type)
	}
}
