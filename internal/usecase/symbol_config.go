package usecase

import (
	"math"
	"strings"

	"github.com/quantex/auto-engine/internal/domain"
)

const maxLeverage = 125

// SymbolConfigResolver merges the global strategy settings with one
// symbol's overrides. Lookups are case-insensitive on the symbol.
type SymbolConfigResolver struct{}

func NewSymbolConfigResolver() *SymbolConfigResolver {
	return &SymbolConfigResolver{}
}

func (r *SymbolConfigResolver) Resolve(settings *domain.AutoTradingSettings, symbol string) domain.ResolvedSymbolConfig {
	out := domain.ResolvedSymbolConfig{
		PositionPreference: domain.PreferenceDefault,
		Features:           domain.FeatureSet{ScaleIn: true, Exit: true, StopLoss: true},
	}
	if settings == nil {
		out.Leverage = 1
		return out
	}
	out.Leverage = clampLeverage(settings.Leverage)

	key := strings.ToUpper(symbol)
	sel := settings.SymbolSelection

	if override, ok := sel.LeverageOverrides[key]; ok && isFinite(override) && override >= 1 {
		out.Leverage = clampLeverage(override)
	}
	switch domain.PositionPreference(sel.PositionOverrides[key]) {
	case domain.PreferenceBoth:
		out.PositionPreference = domain.PreferenceBoth
	case domain.PreferenceLong:
		out.PositionPreference = domain.PreferenceLong
	case domain.PreferenceShort:
		out.PositionPreference = domain.PreferenceShort
	}
	if fo, ok := sel.FeatureOverrides[key]; ok {
		if fo.ScaleIn != nil && !*fo.ScaleIn {
			out.Features.ScaleIn = false
		}
		if fo.Exit != nil && !*fo.Exit {
			out.Features.Exit = false
		}
		if fo.StopLoss != nil && !*fo.StopLoss {
			out.Features.StopLoss = false
		}
	}
	return out
}

// IsExcluded reports whether a symbol is on the exclusion list.
func (r *SymbolConfigResolver) IsExcluded(settings *domain.AutoTradingSettings, symbol string) bool {
	if settings == nil {
		return false
	}
	key := strings.ToUpper(symbol)
	for _, s := range settings.SymbolSelection.ExcludedSymbols {
		if strings.ToUpper(s) == key {
			return true
		}
	}
	return false
}

func clampLeverage(v float64) float64 {
	if !isFinite(v) || v < 1 {
		return 1
	}
	return math.Min(maxLeverage, math.Max(1, math.Round(v)))
}
