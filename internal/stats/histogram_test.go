package stats

import (
	"strings"
	"testing"
)

func TestHistogramRecordAndOverflowClamp(t *testing.T) {
	h := NewHistogramStats(0.01, 10)

	h.Record(0.005) // бакет 0
	h.Record(0.014) // бакет 1
	h.Record(0.50)  // за диапазоном — последний бакет
	h.Record(-0.1)  // отрицательное прижимается к нулевому

	if h.Count() != 4 {
		t.Fatalf("count = %d, want 4", h.Count())
	}
	if h.BucketCount(0) != 2 {
		t.Errorf("bucket 0 = %d, want 2", h.BucketCount(0))
	}
	if h.BucketCount(1) != 1 {
		t.Errorf("bucket 1 = %d, want 1", h.BucketCount(1))
	}
	if h.BucketCount(9) != 1 {
		t.Errorf("overflow bucket = %d, want 1", h.BucketCount(9))
	}
}

func TestHistogramReportSparse(t *testing.T) {
	h := NewHistogramStats(0.01, 10)
	h.Record(0.005)
	h.Record(0.005)
	h.Record(0.095)

	r := h.GenerateReport(60)

	if !strings.Contains(r, "Volatility Distribution (60 min)") {
		t.Error("missing header")
	}
	if !strings.Contains(r, "Total Samples: `3`") {
		t.Error("missing sample count")
	}
	if !strings.Contains(r, "0.00-1.00%") {
		t.Error("missing first bucket label")
	}
	// последний бакет подписан открытым диапазоном
	if !strings.Contains(r, "9.00%+") {
		t.Error("missing overflow bucket label")
	}
	// пустые бакеты не перечисляются, но упоминаются в сноске
	if strings.Contains(r, "1.00-2.00%") {
		t.Error("empty bucket rendered")
	}
	if !strings.Contains(r, "8 empty buckets hidden") {
		t.Error("missing hidden-buckets footer")
	}
}

func TestHistogramReportEmpty(t *testing.T) {
	h := NewHistogramStats(0.01, 10)
	r := h.GenerateReport(15)
	if !strings.Contains(r, "No volatility data recorded") {
		t.Error("missing empty-interval notice")
	}
	if strings.Contains(r, "buckets hidden") {
		t.Error("hidden footer on empty report")
	}
}
