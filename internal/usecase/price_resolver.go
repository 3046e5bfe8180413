package usecase

import (
	"math"

	"github.com/quantex/auto-engine/internal/domain"
)

// SeriesMap holds the numeric series of every indicator entry, keyed by
// entry id. Series run oldest to newest and may contain NaN warm-up
// values at the front.
type SeriesMap map[string][]float64

// PriceResolver turns price references ("<entryId>" or "expr:...") into
// concrete values against a set of indicator series. Every failure mode
// resolves to (0, false): unknown ids, malformed expressions, series
// whose newest value is not finite, crossings that never happened.
type PriceResolver struct{}

func NewPriceResolver() *PriceResolver {
	return &PriceResolver{}
}

// Resolve evaluates a reference at the newest point of the series.
func (r *PriceResolver) Resolve(ref string, series SeriesMap) (float64, bool) {
	parsed := domain.ParseExprRef(ref)
	if parsed == nil {
		return 0, false
	}
	switch parsed.Kind {
	case domain.ExprIndicator:
		return lastValue(series[parsed.ID])
	case domain.ExprPair:
		return r.resolvePair(parsed, series)
	case domain.ExprOffset:
		base, ok := lastValue(series[parsed.A])
		if !ok {
			return 0, false
		}
		v := base * (1 + parsed.Pct/100)
		if !isFinite(v) {
			return 0, false
		}
		return v, true
	case domain.ExprCross:
		return r.resolveCross(parsed, series)
	}
	return 0, false
}

func (r *PriceResolver) resolvePair(ref *domain.ExprRef, series SeriesMap) (float64, bool) {
	av, aok := lastValue(series[ref.A])
	bv, bok := lastValue(series[ref.B])
	if !aok || !bok {
		return 0, false
	}
	var v float64
	switch ref.Op {
	case domain.PairMin:
		v = math.Min(av, bv)
	case domain.PairMax:
		v = math.Max(av, bv)
	case domain.PairAvg:
		v = (av + bv) / 2
	case domain.PairRatio:
		v = av / bv
	default:
		return 0, false
	}
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

func (r *PriceResolver) resolveCross(ref *domain.ExprRef, series SeriesMap) (float64, bool) {
	a, b := series[ref.A], series[ref.B]
	first, second := findCrossIndexes(a, b, ref.Dir)
	idx := first
	if ref.When == domain.CrossPrevious {
		idx = second
	}
	if idx < 1 {
		return 0, false
	}
	if ref.Interp == domain.InterpLinear {
		if v, ok := interpolateCross(a[idx], a[idx-1], b[idx], b[idx-1]); ok {
			return v, true
		}
	}
	v := (a[idx] + b[idx]) / 2
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

// findCrossIndexes scans from the newest bar backwards and returns the
// newest and second-newest crossing indexes, or -1 where none exists.
// Bars where any of the four involved values is non-finite are skipped.
func findCrossIndexes(a, b []float64, dir domain.CrossDir) (int, int) {
	first, second := -1, -1
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := n - 1; i >= 1; i-- {
		a0, a1 := a[i], a[i-1]
		b0, b1 := b[i], b[i-1]
		if !isFinite(a0) || !isFinite(a1) || !isFinite(b0) || !isFinite(b1) {
			continue
		}
		up := a1 <= b1 && a0 > b0
		down := a1 >= b1 && a0 < b0
		var hit bool
		switch dir {
		case domain.CrossUp:
			hit = up
		case domain.CrossDown:
			hit = down
		default:
			hit = up || down
		}
		if !hit {
			continue
		}
		if first == -1 {
			first = i
			continue
		}
		second = i
		break
	}
	return first, second
}

// interpolateCross solves for the intersection of the two segments
// between bar i-1 and bar i. It reports false when the segments are
// near-parallel or the solution falls outside the bar.
func interpolateCross(a0, a1, b0, b1 float64) (float64, bool) {
	denom := (a0 - a1) - (b0 - b1)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := (b1 - a1) / denom
	if t < 0 || t > 1 {
		return 0, false
	}
	v := a1 + t*(a0-a1)
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

// lastValue returns the newest sample. An empty series or a non-finite
// newest sample fails; only the cross scan looks past non-finite bars.
func lastValue(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	v := values[len(values)-1]
	if !isFinite(v) {
		return 0, false
	}
	return v, true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
