package indicators

// FitResult — результат линейной подгонки VWAP-серии.
type FitResult struct {
	Slope        float64 // $/сек
	Intercept    float64
	RSquared     float64
	IsValid      bool    // R² прошёл порог
	CurrentPrice float64 // значение прямой в последний момент окна
}

// TrendFitter — МНК-прямая по VWAP-точкам в хвостовом окне windowSecs.
// Время нормируется к первой точке окна, валидность гейтится по R².
type TrendFitter struct {
	windowSecs float64
	minPoints  int
	minR2      float64
}

type FitConfig struct {
	WindowSecs float64 `yaml:"window_secs"`
	MinPoints  int     `yaml:"min_points"`
	MinR2      float64 `yaml:"min_r2"`
}

func NewTrendFitter(cfg FitConfig) *TrendFitter {
	return &TrendFitter{
		windowSecs: cfg.WindowSecs,
		minPoints:  cfg.MinPoints,
		minR2:      cfg.MinR2,
	}
}

// Fit возвращает nil, если в окне меньше minPoints точек
// либо все точки легли в один момент времени.
func (f *TrendFitter) Fit(series *BoundedSeries[VwapPoint], currentTsMs int64) *FitResult {
	currentTs := float64(currentTsMs) / 1000.0
	cutoff := currentTs - f.windowSecs

	var times, prices []float64
	for _, p := range series.Items() {
		ts := float64(p.TimestampMs) / 1000.0
		if ts >= cutoff {
			times = append(times, ts)
			prices = append(prices, p.Price)
		}
	}
	if len(times) < f.minPoints {
		return nil
	}

	t0 := times[0]
	n := float64(len(times))
	var sumT, sumP, sumTT, sumTP float64
	for i := range times {
		t := times[i] - t0
		sumT += t
		sumP += prices[i]
		sumTT += t * t
		sumTP += t * prices[i]
	}

	denom := n*sumTT - sumT*sumT
	if denom < 1e-10 && denom > -1e-10 {
		return nil
	}

	slope := (n*sumTP - sumT*sumP) / denom
	intercept := (sumP - slope*sumT) / n

	meanP := sumP / n
	var ssTot, ssRes float64
	for i := range times {
		t := times[i] - t0
		dTot := prices[i] - meanP
		dRes := prices[i] - (intercept + slope*t)
		ssTot += dTot * dTot
		ssRes += dRes * dRes
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1.0 - ssRes/ssTot
	}

	lastT := times[len(times)-1] - t0
	return &FitResult{
		Slope:        slope,
		Intercept:    intercept,
		RSquared:     rSquared,
		IsValid:      rSquared >= f.minR2,
		CurrentPrice: intercept + slope*lastT,
	}
}

// Predict — линейная экстраполяция на horizonSecs вперёд.
func (f *TrendFitter) Predict(fit *FitResult, horizonSecs float64) float64 {
	return fit.CurrentPrice + fit.Slope*horizonSecs
}
