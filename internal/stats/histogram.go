package stats

import (
	"fmt"
	"strings"
)

// HistogramStats — распределение волатильности за отчётный интервал.
// Фиксированный набор бакетов шириной step; всё, что выше диапазона,
// падает в последний бакет. Пересоздаётся после каждого отчёта.
type HistogramStats struct {
	buckets []int
	count   int
	step    float64
}

func NewHistogramStats(step float64, bucketCount int) *HistogramStats {
	return &HistogramStats{
		buckets: make([]int, bucketCount),
		step:    step,
	}
}

// Record кладёт сэмпл в бакет floor(vol/step), прижимая к последнему индексу.
func (h *HistogramStats) Record(vol float64) {
	h.count++
	idx := int(vol / h.step)
	if idx < 0 {
		idx = 0
	}
	if idx > len(h.buckets)-1 {
		idx = len(h.buckets) - 1
	}
	h.buckets[idx]++
}

// Count — число записанных сэмплов.
func (h *HistogramStats) Count() int { return h.count }

// BucketCount — число сэмплов в бакете i.
func (h *HistogramStats) BucketCount(i int) int { return h.buckets[i] }

// GenerateReport — разреженная текстовая гистограмма для вебхука:
// только непустые бакеты, с процентами и примечанием о скрытых пустых.
func (h *HistogramStats) GenerateReport(intervalMinutes int64) string {
	total := len(h.buckets)
	active := 0
	for _, c := range h.buckets {
		if c > 0 {
			active++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 *Volatility Distribution (%d min)*\nStep: `%.2f%%` | Total Samples: `%d`\n```\n",
		intervalMinutes, h.step*100.0, h.count)

	hasData := false
	for i, c := range h.buckets {
		if c == 0 {
			continue
		}
		hasData = true

		lower := float64(i) * h.step * 100.0
		upper := float64(i+1) * h.step * 100.0

		// тепловая шкала по позиции бакета
		progress := float64(i) / float64(total)
		icon := "🔵"
		switch {
		case progress >= 0.9:
			icon = "🔥"
		case progress >= 0.6:
			icon = "🔴"
		case progress >= 0.2:
			icon = "🟡"
		}

		label := fmt.Sprintf("%.2f-%.2f%%", lower, upper)
		if i == total-1 {
			label = fmt.Sprintf("%.2f%%+", lower)
		}

		percentage := 0.0
		if h.count > 0 {
			percentage = float64(c) / float64(h.count) * 100.0
		}
		bar := strings.Repeat("█", int(percentage+0.5))

		fmt.Fprintf(&b, "%s %-14s: %-4s (%.1f%%)\n", icon, label, bar, percentage)
	}

	if !hasData {
		b.WriteString("   (No volatility data recorded in this interval)\n")
	} else if hidden := total - active; hidden > 0 {
		b.WriteString("\n----------------------------------\n")
		fmt.Fprintf(&b, "ℹ️ %d empty buckets hidden", hidden)
	}

	b.WriteString("```")
	return b.String()
}
