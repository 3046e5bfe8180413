package usecase_test

import (
	"math"
	"testing"

	"github.com/quantex/auto-engine/internal/usecase"
)

const epsilon = 1e-9

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestResolve_PairOps(t *testing.T) {
	series := usecase.SeriesMap{
		"a": {2, 4, 6},
		"b": {1, 2, 3},
	}
	resolver := usecase.NewPriceResolver()

	tests := []struct {
		ref  string
		want float64
	}{
		{"expr:avg:a:b", 4.5},
		{"expr:min:a:b", 3},
		{"expr:max:a:b", 6},
		{"expr:ratio:a:b", 2},
	}
	for _, tt := range tests {
		got, ok := resolver.Resolve(tt.ref, series)
		if !ok {
			t.Errorf("Resolve(%q) not ok", tt.ref)
			continue
		}
		if !floatEquals(got, tt.want) {
			t.Errorf("Resolve(%q) = %f, want %f", tt.ref, got, tt.want)
		}
	}
}

func TestResolve_RatioByZeroFails(t *testing.T) {
	series := usecase.SeriesMap{"a": {5}, "b": {0}}
	if _, ok := usecase.NewPriceResolver().Resolve("expr:ratio:a:b", series); ok {
		t.Error("Resolve(ratio with zero denominator) should fail")
	}
}

func TestResolve_Offset(t *testing.T) {
	series := usecase.SeriesMap{"a": {90, 95, 100}}
	got, ok := usecase.NewPriceResolver().Resolve("expr:offset:a:pct=10", series)
	if !ok || !floatEquals(got, 110) {
		t.Fatalf("Resolve(offset pct=10) = %f, %v, want 110", got, ok)
	}
}

func TestResolve_NaNTailFailsClosed(t *testing.T) {
	series := usecase.SeriesMap{
		"a": {1, 2, math.NaN()},
		"b": {5, 6, math.NaN()},
	}
	resolver := usecase.NewPriceResolver()

	for _, ref := range []string{"a", "expr:avg:a:b", "expr:offset:a:pct=10"} {
		if got, ok := resolver.Resolve(ref, series); ok {
			t.Errorf("Resolve(%q) = %f, want failure on a non-finite newest sample", ref, got)
		}
	}
}

func TestResolve_CrossMidpoint(t *testing.T) {
	series := usecase.SeriesMap{
		"a": {1, 2, 3, 4, 3, 5},
		"b": {2, 2, 2, 3, 3, 4},
	}
	resolver := usecase.NewPriceResolver()

	recent, ok := resolver.Resolve("expr:cross:a:b:dir=up", series)
	if !ok || !floatEquals(recent, 4.5) {
		t.Fatalf("recent up-cross = %f, %v, want 4.5", recent, ok)
	}
	previous, ok := resolver.Resolve("expr:cross:a:b:dir=up:when=previous", series)
	if !ok || !floatEquals(previous, 2.5) {
		t.Fatalf("previous up-cross = %f, %v, want 2.5", previous, ok)
	}
}

func TestResolve_CrossLinearInterpolation(t *testing.T) {
	series := usecase.SeriesMap{
		"a": {1, 4},
		"b": {3, 2},
	}
	got, ok := usecase.NewPriceResolver().Resolve("expr:cross:a:b:interp=linear", series)
	if !ok || !floatEquals(got, 2.5) {
		t.Fatalf("linear cross = %f, %v, want 2.5", got, ok)
	}
}

func TestResolve_CrossLinearDirectional(t *testing.T) {
	series := usecase.SeriesMap{
		"a": {2, 5},
		"b": {3, 4},
	}
	got, ok := usecase.NewPriceResolver().Resolve("expr:cross:a:b:dir=up:interp=linear", series)
	if !ok || !floatEquals(got, 3.5) {
		t.Fatalf("linear up-cross = %f, %v, want 3.5", got, ok)
	}
	if _, ok := usecase.NewPriceResolver().Resolve("expr:cross:a:b:dir=down", series); ok {
		t.Error("down-cross on an upward crossing should fail")
	}
}

func TestResolve_CrossFailures(t *testing.T) {
	resolver := usecase.NewPriceResolver()

	flat := usecase.SeriesMap{"a": {1, 1, 1}, "b": {2, 2, 2}}
	if _, ok := resolver.Resolve("expr:cross:a:b", flat); ok {
		t.Error("cross on non-crossing series should fail")
	}

	single := usecase.SeriesMap{"a": {1, 2, 3, 4}, "b": {2, 2, 3, 3}}
	if _, ok := resolver.Resolve("expr:cross:a:b:dir=up:when=previous", single); ok {
		t.Error("previous cross with a single crossing should fail")
	}

	if _, ok := resolver.Resolve("expr:cross:a:missing", flat); ok {
		t.Error("cross against an unknown series should fail")
	}
}

func TestResolve_Malformed(t *testing.T) {
	series := usecase.SeriesMap{"a": {1}}
	resolver := usecase.NewPriceResolver()
	for _, ref := range []string{"", "expr:shift:a:b", "expr:offset:a:pct=x"} {
		if _, ok := resolver.Resolve(ref, series); ok {
			t.Errorf("Resolve(%q) should fail", ref)
		}
	}
}
