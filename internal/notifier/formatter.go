package notifier

import (
	"fmt"
	"strings"

	"PriceSentinel/internal/execution"
	"PriceSentinel/internal/model"
)

// FormatSignalAlert formats an accepted signal into a Telegram message.
func FormatSignalAlert(sig *model.TradingSignal, ctx *model.PriceActionContext) string {
	var b strings.Builder

	icon := "🟢"
	if sig.SignalType == model.SignalSell {
		icon = "🔴"
	}
	b.WriteString(fmt.Sprintf("%s <b>%s %s</b> | %s\n\n", icon, sig.Symbol, sig.SignalType,
		sig.Timestamp.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("价格: %.2f\n", sig.Price))
	b.WriteString(fmt.Sprintf("置信度: %.2f\n", sig.Confidence))
	b.WriteString(fmt.Sprintf("依据: %s\n", sig.Reason))

	if ctx != nil {
		b.WriteString(fmt.Sprintf("\n结构: %s (强度 %.2f)\n", ctx.MarketStructure, ctx.TrendStrength))
		b.WriteString(fmt.Sprintf("K线形态: %s\n", ctx.BarQuality))
		if ctx.AtKeyLevel {
			b.WriteString(fmt.Sprintf("位于关键位 (%s)\n", ctx.KeyLevelType))
		}
	}

	return b.String()
}

// FormatOrderAlert formats an executed order into a Telegram message.
func FormatOrderAlert(o *execution.Order) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📋 <b>下单 %s %s</b>\n\n", o.Symbol, o.Side))
	b.WriteString(fmt.Sprintf("仓位比例: %.2f%%\n", o.Fraction*100))
	b.WriteString(fmt.Sprintf("价格: %.2f\n", o.Price))
	if o.Stop > 0 {
		b.WriteString(fmt.Sprintf("止损: %.2f\n", o.Stop))
	}
	b.WriteString(fmt.Sprintf("依据: %s\n", o.Reason))
	return b.String()
}

// FormatPositions formats open positions for the /positions command.
func FormatPositions(positions map[string]float64) string {
	if len(positions) == 0 {
		return "当前无持仓"
	}
	var b strings.Builder
	b.WriteString("📦 <b>当前持仓</b>\n\n")
	for sym, frac := range positions {
		b.WriteString(fmt.Sprintf("%s: %.2f%%\n", sym, frac*100))
	}
	return b.String()
}
