package indicators

import (
	"math"
	"testing"
)

func newTestVolEngine(windowSize int, nowMs int64) *VolatilityEngine {
	v := NewVolatilityEngine(VolatilityConfig{
		WindowSize:         windowSize,
		StaleThresholdMs:   5000,
		FallbackVolatility: 0.5,
		ExpireThresholdMs:  60000,
	})
	v.nowMs = func() int64 { return nowMs }
	return v
}

func TestVolatilityBufferNeverExceedsWindow(t *testing.T) {
	v := newTestVolEngine(3, 10000)
	for i := int64(0); i < 10; i++ {
		v.Update(100+float64(i), i*100)
	}
	if v.prices.Len() != 3 {
		t.Fatalf("buffer len = %d, want 3", v.prices.Len())
	}
	// строго FIFO: остались три последние точки
	front, _ := v.prices.Front()
	if front.TimestampMs != 700 {
		t.Errorf("oldest ts = %d, want 700", front.TimestampMs)
	}
}

func TestVolatilityFewerThanTwoSamplesIsStale(t *testing.T) {
	v := newTestVolEngine(10, 1000)

	res := v.GetVolatility()
	if !res.IsStale {
		t.Fatal("empty engine not stale")
	}
	if res.Annualized != 0.5 {
		t.Errorf("annualized = %v, want fallback 0.5", res.Annualized)
	}
	if res.RawVol != 0 || res.DtSecs != 0 || res.DurationMs != 0 {
		t.Error("stale result carries non-zero window fields")
	}

	v.Update(100, 500)
	if res := v.GetVolatility(); !res.IsStale {
		t.Fatal("single sample not stale")
	}
	if v.CanCalculate() {
		t.Error("CanCalculate with one sample")
	}
}

func TestVolatilityConstantPriceIsZero(t *testing.T) {
	v := newTestVolEngine(5, 2000)
	for i := int64(0); i < 5; i++ {
		v.Update(100, i*100)
	}

	res := v.GetVolatility()
	if res.IsStale {
		t.Fatal("fresh feed reported stale")
	}
	if res.RawVol != 0 || res.Annualized != 0 {
		t.Errorf("constant price: raw=%v annualized=%v, want 0", res.RawVol, res.Annualized)
	}
}

func TestVolatilityStaleByFeedSilence(t *testing.T) {
	v := newTestVolEngine(5, 1000)
	v.Update(100, 0)
	v.Update(101, 500)

	// лента замолчала: "сейчас" далеко после последней сделки
	v.nowMs = func() int64 { return 500 + 5001 }

	res := v.GetVolatility()
	if !res.IsStale {
		t.Fatal("silent feed not reported stale")
	}
	if res.Annualized != 0.5 {
		t.Errorf("annualized = %v, want fallback", res.Annualized)
	}
}

func TestVolatilityExpiryEvictsIdleBuffer(t *testing.T) {
	v := newTestVolEngine(10, 0)
	v.nowMs = func() int64 { return 1000 }
	v.Update(100, 900)
	v.Update(100, 950)

	// долгая пауза: старые точки пережили expire_threshold
	v.nowMs = func() int64 { return 100000 }
	v.Update(105, 99900)

	if v.prices.Len() != 1 {
		t.Fatalf("buffer len after expiry = %d, want 1", v.prices.Len())
	}
}

func TestVolatilityTwoTradeAnnualization(t *testing.T) {
	v := newTestVolEngine(2, 1000)
	v.Update(100, 0)
	v.Update(101, 1000)

	res := v.GetVolatility()
	if res.IsStale {
		t.Fatal("unexpected stale")
	}

	wantRaw := math.Abs(math.Log(101) - math.Log(100))
	if math.Abs(res.RawVol-wantRaw) > 1e-12 {
		t.Errorf("raw vol = %v, want %v", res.RawVol, wantRaw)
	}
	if res.DtSecs != 1.0 {
		t.Errorf("dt = %v, want 1.0", res.DtSecs)
	}
	wantAnnualized := wantRaw * math.Sqrt(secondsPerYear)
	if math.Abs(res.Annualized-wantAnnualized) > 1e-9 {
		t.Errorf("annualized = %v, want %v", res.Annualized, wantAnnualized)
	}
	if !v.IsReady() {
		t.Error("window of 2 with 2 samples not ready")
	}
}
