package usecase

import (
	"math"

	"github.com/quantex/auto-engine/internal/domain"
)

// IndicatorCalculator derives indicator series and boolean signals from
// candle history. All series are aligned with the input candles, oldest
// to newest, with NaN for warm-up bars.
type IndicatorCalculator struct{}

func NewIndicatorCalculator() *IndicatorCalculator {
	return &IndicatorCalculator{}
}

// BuildSignals evaluates every entry against the newest bar and returns
// the per-entry result keyed by entry id. Entries that cannot produce a
// value (too little history, unknown type) come out false.
func (c *IndicatorCalculator) BuildSignals(entries []domain.IndicatorEntry, candles []domain.Candle) map[string]bool {
	out := make(map[string]bool, len(entries))
	closes := closesOf(candles)
	for _, entry := range entries {
		out[entry.ID] = c.evalEntry(entry, candles, closes)
	}
	return out
}

// BuildNumericSeries returns one numeric series per entry, used by the
// price resolver for limit and stop price references.
func (c *IndicatorCalculator) BuildNumericSeries(entries []domain.IndicatorEntry, candles []domain.Candle) SeriesMap {
	out := make(SeriesMap, len(entries))
	closes := closesOf(candles)
	for _, entry := range entries {
		out[entry.ID] = c.numericSeries(entry, candles, closes)
	}
	return out
}

// RequiredLookback returns how many candles the given entries need, with
// head-room for warm-up. At least 50 bars are always requested.
func (c *IndicatorCalculator) RequiredLookback(entries []domain.IndicatorEntry) int {
	need := 0
	for _, entry := range entries {
		cfg := entry.Config
		var n int
		switch entry.Type {
		case domain.IndicatorMA:
			n = defaultInt(cfg.Period, 20)
		case domain.IndicatorRSI:
			n = defaultInt(cfg.Period, 14) + 2
		case domain.IndicatorBollinger:
			n = defaultInt(cfg.Length, 20) + 2
		case domain.IndicatorMACD:
			n = defaultInt(cfg.Slow, 26) + defaultInt(cfg.Signal, 9) + 2
		case domain.IndicatorDMI:
			n = defaultInt(cfg.DiPeriod, 14) + defaultInt(cfg.AdxPeriod, 14) + 2
		}
		if n > need {
			need = n
		}
	}
	if need == 0 {
		return 50
	}
	need += 5
	if need < 50 {
		return 50
	}
	return need
}

func (c *IndicatorCalculator) evalEntry(entry domain.IndicatorEntry, candles []domain.Candle, closes []float64) bool {
	switch entry.Type {
	case domain.IndicatorMA:
		return evalMa(entry.Config, closes)
	case domain.IndicatorRSI:
		return evalRsi(entry.Config, closes)
	case domain.IndicatorBollinger:
		return evalBollinger(entry.Config, closes)
	case domain.IndicatorMACD:
		return evalMacd(entry.Config, closes)
	case domain.IndicatorDMI:
		return evalDmi(entry.Config, candles)
	}
	return false
}

func (c *IndicatorCalculator) numericSeries(entry domain.IndicatorEntry, candles []domain.Candle, closes []float64) []float64 {
	cfg := entry.Config
	switch entry.Type {
	case domain.IndicatorMA:
		return sma(closes, atLeast(defaultInt(cfg.Period, 20), 1))
	case domain.IndicatorRSI:
		return rsiSeries(closes, atLeast(defaultInt(cfg.Period, 14), 2), cfg.Smoothing)
	case domain.IndicatorBollinger:
		length := atLeast(defaultInt(cfg.Length, 20), 2)
		dev := defaultFloat(cfg.StandardDeviation, 2)
		if dev < 0.1 {
			dev = 0.1
		}
		mean := sma(closes, length)
		switch cfg.Band {
		case "upper":
			return addScaled(mean, rollingStd(closes, length), dev)
		case "lower":
			return addScaled(mean, rollingStd(closes, length), -dev)
		default:
			return mean
		}
	case domain.IndicatorMACD:
		line, _, _ := macdSeries(closes, cfg)
		return line
	case domain.IndicatorDMI:
		_, _, adx := dmiSeries(candles, atLeast(defaultInt(cfg.DiPeriod, 14), 2), atLeast(defaultInt(cfg.AdxPeriod, 14), 2))
		return adx
	}
	return nanSeries(len(closes))
}

// ---- per-type signal evaluation ----

func evalMa(cfg domain.IndicatorConfig, closes []float64) bool {
	period := atLeast(defaultInt(cfg.Period, 20), 1)
	ma := sma(closes, period)
	c0, c1, ok := lastTwo(closes)
	m0, m1, mok := lastTwo(ma)
	if !ok || !mok {
		return false
	}
	if len(cfg.Actions) == 0 {
		return c0 > m0
	}
	for _, action := range cfg.Actions {
		var hit bool
		switch action {
		case "break_above":
			hit = c1 <= m1 && c0 > m0
		case "break_below":
			hit = c1 >= m1 && c0 < m0
		case "stay_above":
			hit = c0 > m0
		case "stay_below":
			hit = c0 < m0
		}
		if hit {
			return true
		}
	}
	return false
}

func evalRsi(cfg domain.IndicatorConfig, closes []float64) bool {
	period := atLeast(defaultInt(cfg.Period, 14), 2)
	threshold := defaultFloat(cfg.Threshold, 50)
	series := rsiSeries(closes, period, cfg.Smoothing)
	r0, r1, ok := lastTwo(series)
	if !ok {
		return false
	}
	if len(cfg.Actions) == 0 {
		return r0 > threshold
	}
	for _, action := range cfg.Actions {
		var hit bool
		switch action {
		case "cross_above":
			hit = r1 <= threshold && r0 > threshold
		case "cross_below":
			hit = r1 >= threshold && r0 < threshold
		case "stay_above":
			hit = r0 > threshold
		case "stay_below":
			hit = r0 < threshold
		}
		if hit {
			return true
		}
	}
	return false
}

func evalBollinger(cfg domain.IndicatorConfig, closes []float64) bool {
	length := atLeast(defaultInt(cfg.Length, 20), 2)
	dev := defaultFloat(cfg.StandardDeviation, 2)
	if dev < 0.1 {
		dev = 0.1
	}
	mean := sma(closes, length)
	var band []float64
	tolScale := 1.0
	switch cfg.Band {
	case "upper":
		band = addScaled(mean, rollingStd(closes, length), dev)
	case "lower":
		band = addScaled(mean, rollingStd(closes, length), -dev)
	default:
		band = mean
		tolScale = 0.75
	}
	c0, c1, ok := lastTwo(closes)
	b0, b1, bok := lastTwo(band)
	if !ok || !bok {
		return false
	}
	tolPct := 0.2
	if cfg.TouchTolerancePct != nil {
		tolPct = *cfg.TouchTolerancePct
	}
	if tolPct < 0 {
		tolPct = 0
	}
	tol := tolPct / 100 * tolScale
	switch cfg.Action {
	case "break_above":
		return c1 <= b1 && c0 > b0
	case "break_below":
		return c1 >= b1 && c0 < b0
	default:
		return math.Abs(c0-b0) <= math.Abs(b0)*tol
	}
}

func evalMacd(cfg domain.IndicatorConfig, closes []float64) bool {
	line, signal, hist := macdSeries(closes, cfg)
	m0, _, ok := lastTwo(line)
	s0, _, sok := lastTwo(signal)
	h0, h1, hok := lastTwo(hist)
	if !ok || !sok {
		return false
	}
	var checks []bool
	switch cfg.Comparison {
	case "macd_over_signal":
		checks = append(checks, m0 > s0)
	case "macd_under_signal":
		checks = append(checks, m0 < s0)
	}
	switch cfg.HistogramAction {
	case "increasing":
		checks = append(checks, hok && h0 > h1)
	case "decreasing":
		checks = append(checks, hok && h0 < h1)
	}
	if len(checks) == 0 {
		return m0 > s0
	}
	for _, c := range checks {
		if !c {
			return false
		}
	}
	return true
}

func evalDmi(cfg domain.IndicatorConfig, candles []domain.Candle) bool {
	diPeriod := atLeast(defaultInt(cfg.DiPeriod, 14), 2)
	adxPeriod := atLeast(defaultInt(cfg.AdxPeriod, 14), 2)
	diPlus, diMinus, adx := dmiSeries(candles, diPeriod, adxPeriod)
	dp0, _, dpok := lastTwo(diPlus)
	dm0, _, dmok := lastTwo(diMinus)
	if !dpok || !dmok {
		return false
	}
	var checks []bool
	switch cfg.DiComparison {
	case "plus_over_minus":
		checks = append(checks, dp0 > dm0)
	case "minus_over_plus":
		checks = append(checks, dm0 > dp0)
	}
	a0, _, aok := lastTwo(adx)
	if cfg.Adx.Enabled {
		checks = append(checks, aok && compare(a0, cfg.Adx.Comparator, cfg.Adx.Value))
	}
	if cfg.DiPlus.Enabled {
		checks = append(checks, compare(dp0, cfg.DiPlus.Comparator, cfg.DiPlus.Value))
	}
	if cfg.DiMinus.Enabled {
		checks = append(checks, compare(dm0, cfg.DiMinus.Comparator, cfg.DiMinus.Value))
	}
	switch cfg.AdxVsDi {
	case "adx_over_di":
		checks = append(checks, aok && a0 > dp0 && a0 > dm0)
	case "adx_under_di":
		checks = append(checks, aok && a0 < dp0 && a0 < dm0)
	}
	if len(checks) == 0 {
		return dp0 > dm0
	}
	for _, c := range checks {
		if !c {
			return false
		}
	}
	return true
}

// ---- series math ----

func sma(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum := 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			if !isFinite(values[j]) {
				ok = false
				break
			}
			sum += values[j]
		}
		if ok {
			out[i] = sum / float64(period)
		}
	}
	return out
}

func ema(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 1 {
		return out
	}
	k := 2.0 / (float64(period) + 1)
	prev := math.NaN()
	for i, v := range values {
		if !isFinite(v) {
			continue
		}
		if !isFinite(prev) {
			prev = v
		} else {
			prev = v*k + prev*(1-k)
		}
		out[i] = prev
	}
	return out
}

func rollingStd(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	if period < 2 {
		return out
	}
	for i := period - 1; i < len(values); i++ {
		sum, sumSq := 0.0, 0.0
		ok := true
		for j := i - period + 1; j <= i; j++ {
			v := values[j]
			if !isFinite(v) {
				ok = false
				break
			}
			sum += v
			sumSq += v * v
		}
		if !ok {
			continue
		}
		n := float64(period)
		variance := sumSq/n - (sum/n)*(sum/n)
		if variance < 0 {
			variance = 0
		}
		out[i] = math.Sqrt(variance)
	}
	return out
}

func rsiSeries(closes []float64, period int, smoothing string) []float64 {
	n := len(closes)
	gains := nanSeries(n)
	losses := nanSeries(n)
	for i := 1; i < n; i++ {
		if !isFinite(closes[i]) || !isFinite(closes[i-1]) {
			continue
		}
		diff := closes[i] - closes[i-1]
		if diff > 0 {
			gains[i], losses[i] = diff, 0
		} else {
			gains[i], losses[i] = 0, -diff
		}
	}
	var avgGain, avgLoss []float64
	if smoothing == "ema" {
		avgGain, avgLoss = ema(gains, period), ema(losses, period)
	} else {
		avgGain, avgLoss = sma(gains, period), sma(losses, period)
	}
	out := nanSeries(n)
	for i := 0; i < n; i++ {
		ag, al := avgGain[i], avgLoss[i]
		if !isFinite(ag) || !isFinite(al) {
			continue
		}
		if ag == 0 && al == 0 {
			continue
		}
		if al == 0 {
			out[i] = 100
			continue
		}
		rs := ag / al
		out[i] = 100 - 100/(1+rs)
	}
	return out
}

func macdSeries(closes []float64, cfg domain.IndicatorConfig) (line, signal, hist []float64) {
	fast := atLeast(defaultInt(cfg.Fast, 12), 1)
	slow := atLeast(defaultInt(cfg.Slow, 26), 2)
	sigPeriod := atLeast(defaultInt(cfg.Signal, 9), 1)
	avg := ema
	if cfg.Method == "SMA" {
		avg = sma
	}
	fastSeries := avg(closes, fast)
	slowSeries := avg(closes, slow)
	line = nanSeries(len(closes))
	for i := range closes {
		if isFinite(fastSeries[i]) && isFinite(slowSeries[i]) {
			line[i] = fastSeries[i] - slowSeries[i]
		}
	}
	signal = avg(line, sigPeriod)
	hist = nanSeries(len(closes))
	for i := range closes {
		if isFinite(line[i]) && isFinite(signal[i]) {
			hist[i] = line[i] - signal[i]
		}
	}
	return line, signal, hist
}

// wilderSmooth is running Wilder smoothing: a plain sum over the first
// period bars, then prev - prev/period + current.
func wilderSmooth(values []float64, period int) []float64 {
	out := nanSeries(len(values))
	sum := 0.0
	prev := math.NaN()
	for i, v := range values {
		if !isFinite(v) {
			v = 0
		}
		switch {
		case i < period:
			sum += v
		case i == period:
			prev = sum + v
			out[i] = prev
		default:
			prev = prev - prev/float64(period) + v
			out[i] = prev
		}
	}
	return out
}

func dmiSeries(candles []domain.Candle, diPeriod, adxPeriod int) (diPlus, diMinus, adx []float64) {
	n := len(candles)
	tr := make([]float64, n)
	dmPlus := make([]float64, n)
	dmMinus := make([]float64, n)
	for i := 1; i < n; i++ {
		cur, prev := candles[i], candles[i-1]
		tr[i] = math.Max(cur.High-cur.Low, math.Max(math.Abs(cur.High-prev.Close), math.Abs(cur.Low-prev.Close)))
		upMove := cur.High - prev.High
		downMove := prev.Low - cur.Low
		if upMove > downMove && upMove > 0 {
			dmPlus[i] = upMove
		}
		if downMove > upMove && downMove > 0 {
			dmMinus[i] = downMove
		}
	}
	smTR := wilderSmooth(tr, diPeriod)
	smDMP := wilderSmooth(dmPlus, diPeriod)
	smDMM := wilderSmooth(dmMinus, diPeriod)
	diPlus = nanSeries(n)
	diMinus = nanSeries(n)
	dx := nanSeries(n)
	for i := 0; i < n; i++ {
		if !isFinite(smTR[i]) || smTR[i] == 0 {
			continue
		}
		diPlus[i] = 100 * smDMP[i] / smTR[i]
		diMinus[i] = 100 * smDMM[i] / smTR[i]
		if sum := diPlus[i] + diMinus[i]; sum > 0 {
			dx[i] = 100 * math.Abs(diPlus[i]-diMinus[i]) / sum
		}
	}
	adxRaw := wilderSmooth(dx, adxPeriod)
	adx = nanSeries(n)
	for i := range adxRaw {
		if isFinite(adxRaw[i]) {
			adx[i] = adxRaw[i] / float64(adxPeriod)
		}
	}
	return diPlus, diMinus, adx
}

// ---- small helpers ----

func closesOf(candles []domain.Candle) []float64 {
	out := make([]float64, len(candles))
	for i, c := range candles {
		out[i] = c.Close
	}
	return out
}

func nanSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}

func addScaled(base, delta []float64, factor float64) []float64 {
	out := nanSeries(len(base))
	for i := range base {
		if isFinite(base[i]) && isFinite(delta[i]) {
			out[i] = base[i] + delta[i]*factor
		}
	}
	return out
}

// lastTwo returns the newest and second-newest finite values, requiring
// only the newest one to exist. The second value is NaN-guarded by the
// callers that need it.
func lastTwo(values []float64) (v0, v1 float64, ok bool) {
	v1 = math.NaN()
	for i := len(values) - 1; i >= 0; i-- {
		if !isFinite(values[i]) {
			continue
		}
		if !ok {
			v0 = values[i]
			ok = true
			continue
		}
		v1 = values[i]
		return v0, v1, true
	}
	return v0, v1, ok
}

func defaultInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func defaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

func atLeast(v, min int) int {
	if v < min {
		return min
	}
	return v
}
