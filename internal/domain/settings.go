package domain

// PositionPreference restricts which directions a symbol may trade.
// PreferenceDefault means "no per-symbol restriction".
type PositionPreference string

const (
	PreferenceLong    PositionPreference = "long"
	PreferenceShort   PositionPreference = "short"
	PreferenceBoth    PositionPreference = "both"
	PreferenceDefault PositionPreference = "default"
)

// FeatureOverride is a per-symbol opt-out for engine features. Only an
// explicit false disables a feature; nil leaves it enabled.
type FeatureOverride struct {
	ScaleIn  *bool `json:"scaleIn,omitempty"`
	Exit     *bool `json:"exit,omitempty"`
	StopLoss *bool `json:"stopLoss,omitempty"`
}

// FeatureSet is the resolved per-symbol feature state.
type FeatureSet struct {
	ScaleIn  bool `json:"scaleIn"`
	Exit     bool `json:"exit"`
	StopLoss bool `json:"stopLoss"`
}

// SymbolSelection holds the traded symbol universe and the per-symbol
// override maps, keyed by uppercased symbol.
type SymbolSelection struct {
	ManualSymbols     []string                   `json:"manualSymbols"`
	ExcludedSymbols   []string                   `json:"excludedSymbols"`
	LeverageOverrides map[string]float64         `json:"leverageOverrides"`
	PositionOverrides map[string]string          `json:"positionOverrides,omitempty"`
	FeatureOverrides  map[string]FeatureOverride `json:"featureOverrides,omitempty"`
}

// ResolvedSymbolConfig is the merge of global settings with one symbol's
// overrides.
type ResolvedSymbolConfig struct {
	Leverage           float64            `json:"leverage"`
	PositionPreference PositionPreference `json:"positionPreference"`
	Features           FeatureSet         `json:"features"`
}

// ProfitCondition is an enable-able profit-rate threshold.
type ProfitCondition struct {
	Enabled    bool       `json:"enabled"`
	Comparator Comparator `json:"comparator"`
	Value      float64    `json:"value"`
}

// EntryDirectionSettings configures entries for one direction.
type EntryDirectionSettings struct {
	Enabled    bool                `json:"enabled"`
	Immediate  bool                `json:"immediate"`
	Indicators IndicatorConditions `json:"indicators"`
}

// ScaleInDirectionSettings configures scale-in buys for one direction.
type ScaleInDirectionSettings struct {
	Enabled           bool                `json:"enabled"`
	ProfitTarget      ProfitCondition     `json:"profitTarget"`
	CurrentProfitRate *ProfitCondition    `json:"currentProfitRate,omitempty"`
	Indicators        IndicatorConditions `json:"indicators"`
}

// ExitDirectionSettings configures exits for one direction.
type ExitDirectionSettings struct {
	Enabled           bool                `json:"enabled"`
	ProfitTarget      ProfitCondition     `json:"profitTarget"`
	CurrentProfitRate *ProfitCondition    `json:"currentProfitRate,omitempty"`
	Indicators        IndicatorConditions `json:"indicators"`
}

// StopLossConditions configures the stop-loss rules (shared across
// directions).
type StopLossConditions struct {
	ProfitTarget      ProfitCondition     `json:"profitTarget"`
	CurrentProfitRate *ProfitCondition    `json:"currentProfitRate,omitempty"`
	Indicators        IndicatorConditions `json:"indicators"`
}

// HedgeActivationSettings configures opening an opposite-direction hedge.
type HedgeActivationSettings struct {
	Enabled           bool                `json:"enabled"`
	Directions        []PositionDirection `json:"directions"`
	CurrentProfitRate *ProfitCondition    `json:"currentProfitRate,omitempty"`
	Indicators        IndicatorConditions `json:"indicators"`
}

// InitialMarginSetting sizes the first entry of a position.
type InitialMarginSetting struct {
	Mode        string  `json:"mode"`
	Percentage  float64 `json:"percentage"`
	MinNotional float64 `json:"minNotional"`
	UsdtAmount  float64 `json:"usdtAmount"`
}

// ScaleInBudgetSetting sizes subsequent scale-in entries.
type ScaleInBudgetSetting struct {
	Mode        string  `json:"mode"`
	Percentage  float64 `json:"percentage"`
	MinNotional float64 `json:"minNotional"`
	UsdtAmount  float64 `json:"usdtAmount"`
}

// CapitalSettings groups the sizing configuration consumed by the
// margin calculators and the order planner.
type CapitalSettings struct {
	EstimatedBalance       float64              `json:"estimatedBalance"`
	InitialMargin          InitialMarginSetting `json:"initialMargin"`
	ScaleInBudget          ScaleInBudgetSetting `json:"scaleInBudget"`
	UseMinNotionalFallback *bool                `json:"useMinNotionalFallback,omitempty"`
}

// AutoTradingSettings is the root settings document. Condition trees and
// override maps are supplied by an external settings store as JSON; this
// package only defines the shape and pure resolution helpers.
type AutoTradingSettings struct {
	LogicName string  `json:"logicName"`
	Leverage  float64 `json:"leverage"`
	Timeframe string  `json:"timeframe"`

	Capital         CapitalSettings `json:"capital"`
	SymbolSelection SymbolSelection `json:"symbolSelection"`

	Entry   map[PositionDirection]*EntryDirectionSettings   `json:"entry"`
	ScaleIn map[PositionDirection]*ScaleInDirectionSettings `json:"scaleIn"`
	Exit    map[PositionDirection]*ExitDirectionSettings    `json:"exit"`

	StopLoss        StopLossConditions      `json:"stopLoss"`
	HedgeActivation HedgeActivationSettings `json:"hedgeActivation"`
}
