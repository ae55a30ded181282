package indicators

import (
	"testing"

	"vol_monitor/internal/models"
)

func newTestStateMachine() *TrendStateMachine {
	return NewTrendStateMachine(TrendConfig{
		SlopeThreshold:      1.0,
		OFIConfirmThreshold: 10.0,
		CooldownSecs:        30.0,
		SlopeThresholdRatio: 0.5,
		MinPriceFallback:    1.0,
		MaxPriceFallback:    50.0,
		EntryProtectionSecs: 10.0,
		SlopeWeakThreshold:  0.5,
	})
}

func validFit(slope, price float64) *FitResult {
	return &FitResult{Slope: slope, RSquared: 1.0, IsValid: true, CurrentPrice: price}
}

func TestStateMachineEntryRequiresSlopeAndOFI(t *testing.T) {
	m := newTestStateMachine()

	m.Update(100, nil, 100, 100)
	if m.GetState() != models.StateScanning {
		t.Fatal("nil fit moved state")
	}

	// наклон за порогом, но OFI не подтверждает
	m.Update(100, validFit(2.0, 100), 5.0, 100)
	if m.GetState() != models.StateScanning {
		t.Fatal("entered without OFI confirmation")
	}

	// невалидная подгонка игнорируется
	weak := validFit(2.0, 100)
	weak.IsValid = false
	m.Update(100, weak, 20.0, 100)
	if m.GetState() != models.StateScanning {
		t.Fatal("entered on invalid fit")
	}

	m.Update(100, validFit(2.0, 100), 20.0, 100)
	if !m.IsHolding() || m.GetDirection() != models.TrendLong {
		t.Fatalf("state = %v/%v, want holding/long", m.GetState(), m.GetDirection())
	}
}

func TestStateMachineNoReentryWhileHolding(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(2.0, 100), 20.0, 100)
	if !m.IsHolding() {
		t.Fatal("no entry")
	}
	entryTs := m.entryTsSec

	// повторный входной сигнал не перезаписывает параметры входа
	m.Update(101, validFit(3.0, 200), 30.0, 200)
	if !m.IsHolding() || m.GetDirection() != models.TrendLong {
		t.Fatal("holding state disturbed")
	}
	if m.entryTsSec != entryTs || m.entrySlope != 2.0 {
		t.Errorf("entry state reset: ts %v slope %v", m.entryTsSec, m.entrySlope)
	}
}

func TestStateMachineShortEntry(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(-2.0, 100), -20.0, 100)
	if !m.IsHolding() || m.GetDirection() != models.TrendShort {
		t.Fatalf("state = %v/%v, want holding/short", m.GetState(), m.GetDirection())
	}
}

func TestStateMachineEntryProtection(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(2.0, 100), 20.0, 100)

	// обвал в защитном окне не выбивает позицию
	m.Update(105, validFit(2.0, 110), 20.0, 10.0)
	if !m.IsHolding() {
		t.Fatal("exited inside entry protection window")
	}
}

func TestStateMachinePriceFallbackExit(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(2.0, 100), 20.0, 100)

	// elapsed=15: прямая входа 100+2·15=130, порог clamp(0.5·2·15)=15.
	// Цена 116 выше 130−15 — держим.
	m.Update(115, validFit(2.0, 130), 20.0, 116.0)
	if !m.IsHolding() {
		t.Fatal("exited above fallback threshold")
	}

	m.Update(115, validFit(2.0, 130), 20.0, 114.0)
	if m.GetState() != models.StateCooldown {
		t.Fatalf("state = %v, want cooldown after fallback breach", m.GetState())
	}
	if m.GetDirection() != models.TrendNeutral {
		t.Error("direction not reset on exit")
	}
}

func TestStateMachineWeakSlopeExit(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(2.0, 100), 20.0, 100)

	// десять вялых наклонов при цене, не задевающей ценовой выход
	for ts := 101.0; ts <= 110.0; ts++ {
		m.Update(ts, validFit(0.1, 100), 20.0, 1000.0)
	}
	if m.GetState() != models.StateCooldown {
		t.Fatalf("state = %v, want cooldown after slope degradation", m.GetState())
	}
}

func TestStateMachineCooldownTiming(t *testing.T) {
	m := newTestStateMachine()
	m.Update(100, validFit(2.0, 100), 20.0, 100)
	m.Update(115, validFit(2.0, 130), 20.0, 50.0) // выход по цене
	if m.GetState() != models.StateCooldown {
		t.Fatal("no exit")
	}

	// в кулдауне сигналы входа игнорируются
	m.Update(120, validFit(5.0, 100), 100.0, 100)
	if m.GetState() != models.StateCooldown {
		t.Fatal("entered during cooldown")
	}

	m.Update(144.9, nil, 0, 0)
	if m.GetState() != models.StateCooldown {
		t.Fatal("cooldown ended early")
	}
	m.Update(145, nil, 0, 0)
	if m.GetState() != models.StateScanning {
		t.Fatal("cooldown did not end")
	}
}
