package indicators

import (
	"math"
	"testing"
)

func seriesOf(points ...VwapPoint) *BoundedSeries[VwapPoint] {
	s := NewBoundedSeries[VwapPoint](len(points) + 1)
	for _, p := range points {
		s.Push(p)
	}
	return s
}

func TestFitRequiresMinPoints(t *testing.T) {
	f := NewTrendFitter(FitConfig{WindowSecs: 60, MinPoints: 3, MinR2: 0.5})
	s := seriesOf(
		VwapPoint{Price: 100, TimestampMs: 1000},
		VwapPoint{Price: 101, TimestampMs: 2000},
	)
	if r := f.Fit(s, 2000); r != nil {
		t.Error("fit with too few points must be nil")
	}
}

func TestFitIgnoresPointsOutsideWindow(t *testing.T) {
	f := NewTrendFitter(FitConfig{WindowSecs: 10, MinPoints: 3, MinR2: 0.5})
	s := seriesOf(
		VwapPoint{Price: 500, TimestampMs: 0}, // далеко за окном
		VwapPoint{Price: 100, TimestampMs: 20000},
		VwapPoint{Price: 101, TimestampMs: 21000},
		VwapPoint{Price: 102, TimestampMs: 22000},
	)
	r := f.Fit(s, 22000)
	if r == nil {
		t.Fatal("nil fit")
	}
	// выброс за окном не должен исказить идеальную прямую
	if math.Abs(r.Slope-1.0) > 1e-9 {
		t.Errorf("slope = %v, want 1.0", r.Slope)
	}
}

func TestFitPerfectLine(t *testing.T) {
	f := NewTrendFitter(FitConfig{WindowSecs: 60, MinPoints: 3, MinR2: 0.9})
	s := seriesOf(
		VwapPoint{Price: 100, TimestampMs: 1000},
		VwapPoint{Price: 102, TimestampMs: 2000},
		VwapPoint{Price: 104, TimestampMs: 3000},
		VwapPoint{Price: 106, TimestampMs: 4000},
	)
	r := f.Fit(s, 4000)
	if r == nil {
		t.Fatal("nil fit")
	}
	if math.Abs(r.Slope-2.0) > 1e-9 {
		t.Errorf("slope = %v, want 2.0", r.Slope)
	}
	if math.Abs(r.Intercept-100.0) > 1e-9 {
		t.Errorf("intercept = %v, want 100.0", r.Intercept)
	}
	if math.Abs(r.RSquared-1.0) > 1e-9 {
		t.Errorf("r² = %v, want 1.0", r.RSquared)
	}
	if !r.IsValid {
		t.Error("perfect line failed the r² gate")
	}
	if math.Abs(r.CurrentPrice-106.0) > 1e-9 {
		t.Errorf("current price = %v, want 106.0", r.CurrentPrice)
	}
	if got := f.Predict(r, 10); math.Abs(got-126.0) > 1e-9 {
		t.Errorf("predict(10s) = %v, want 126.0", got)
	}
}

func TestFitDegenerateTimeAxis(t *testing.T) {
	f := NewTrendFitter(FitConfig{WindowSecs: 60, MinPoints: 2, MinR2: 0.5})
	s := seriesOf(
		VwapPoint{Price: 100, TimestampMs: 1000},
		VwapPoint{Price: 200, TimestampMs: 1000},
	)
	if r := f.Fit(s, 1000); r != nil {
		t.Error("identical timestamps must not produce a fit")
	}
}

func TestFitNoisyLineFailsGate(t *testing.T) {
	f := NewTrendFitter(FitConfig{WindowSecs: 60, MinPoints: 4, MinR2: 0.99})
	s := seriesOf(
		VwapPoint{Price: 100, TimestampMs: 1000},
		VwapPoint{Price: 110, TimestampMs: 2000},
		VwapPoint{Price: 95, TimestampMs: 3000},
		VwapPoint{Price: 108, TimestampMs: 4000},
	)
	r := f.Fit(s, 4000)
	if r == nil {
		t.Fatal("nil fit")
	}
	if r.IsValid {
		t.Errorf("noisy series passed r² gate, r² = %v", r.RSquared)
	}
}
