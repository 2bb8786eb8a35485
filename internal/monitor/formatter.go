package monitor

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatStatusReport renders the periodic status summary for the log.
func FormatStatusReport(statuses []SymbolStatus) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 行情监控状态 | %s\n", time.Now().Format("2006-01-02 15:04")))

	if len(statuses) == 0 {
		b.WriteString("暂无行情数据\n")
		return b.String()
	}

	for _, s := range statuses {
		b.WriteString(fmt.Sprintf("\n%s: %.2f [%s/%s] 强度 %.2f 波动 %.2f 量能 %s\n",
			s.Symbol, s.Price, s.Structure, s.BarQuality,
			s.TrendStrength, s.Volatility, s.VolumeProfile))

		if s.LastSignal != nil {
			b.WriteString(fmt.Sprintf("  最近信号: %s %.2f (%s) %s\n",
				s.LastSignal.SignalType, s.LastSignal.Confidence,
				s.LastSignal.Reason, humanize.Time(s.LastSignal.Timestamp)))
		}
		b.WriteString(fmt.Sprintf("  信号 %s 次 / 拦截 %s 次",
			humanize.Comma(int64(s.SignalCount)), humanize.Comma(int64(s.RejectCount))))
		if s.LastRejected != "" {
			b.WriteString(fmt.Sprintf(" (最近拦截: %s)", s.LastRejected))
		}
		b.WriteString("\n")
	}

	return b.String()
}
