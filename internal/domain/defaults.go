package domain

import "github.com/google/uuid"

func newNodeID() string {
	return "cond-" + uuid.NewString()
}

func newEntryID() string {
	return "ind-" + uuid.NewString()
}

// NewConditionGroup creates a group node with fresh id.
func NewConditionGroup(op AggregatorOperator, children ...*ConditionNode) *ConditionNode {
	if children == nil {
		children = []*ConditionNode{}
	}
	return &ConditionNode{Kind: NodeGroup, ID: newNodeID(), Operator: op, Children: children}
}

// NewStatusLeaf creates a status leaf comparing a snapshot metric.
func NewStatusLeaf(metric StatusMetric, cmp Comparator, value float64, unit StatusUnit) *ConditionNode {
	return &ConditionNode{Kind: NodeStatus, ID: newNodeID(), Metric: metric, Comparator: cmp, Value: value, Unit: unit}
}

// NewIndicatorLeaf wraps an indicator entry in a leaf node.
func NewIndicatorLeaf(entry IndicatorEntry, comparison *IndicatorComparison) *ConditionNode {
	if comparison == nil {
		comparison = &IndicatorComparison{Mode: CompareNone}
	}
	return &ConditionNode{Kind: NodeIndicator, ID: newNodeID(), Indicator: &entry, Comparison: comparison}
}

// NewCandleLeaf creates a candle-comparison leaf.
func NewCandleLeaf(cond CandleCondition) *ConditionNode {
	return &ConditionNode{Kind: NodeCandle, ID: newNodeID(), Candle: &cond}
}

// NewActionLeaf attaches an order action to a condition group.
func NewActionLeaf(action OrderActionConfig) *ConditionNode {
	return &ConditionNode{Kind: NodeAction, ID: newNodeID(), Action: &action}
}

// NewIndicatorEntry creates an entry of the given type with the
// conventional default parameters.
func NewIndicatorEntry(t IndicatorKey) IndicatorEntry {
	entry := IndicatorEntry{ID: newEntryID(), Type: t}
	switch t {
	case IndicatorMA:
		entry.Config = IndicatorConfig{Period: 20}
	case IndicatorRSI:
		entry.Config = IndicatorConfig{Period: 14, Smoothing: "sma", Threshold: 50}
	case IndicatorBollinger:
		entry.Config = IndicatorConfig{Length: 20, StandardDeviation: 2, Band: "middle", Action: "touch"}
	case IndicatorMACD:
		entry.Config = IndicatorConfig{Fast: 12, Slow: 26, Signal: 9, Method: "EMA"}
	case IndicatorDMI:
		entry.Config = IndicatorConfig{DiPeriod: 14, AdxPeriod: 14}
	}
	return entry
}

// NewIndicatorConditions returns an empty AND tree.
func NewIndicatorConditions() IndicatorConditions {
	return IndicatorConditions{Root: NewConditionGroup(AggregatorAnd)}
}

// DefaultSettings returns an all-disabled settings document with an
// empty condition tree per category and direction.
func DefaultSettings() *AutoTradingSettings {
	entry := map[PositionDirection]*EntryDirectionSettings{}
	scaleIn := map[PositionDirection]*ScaleInDirectionSettings{}
	exit := map[PositionDirection]*ExitDirectionSettings{}
	for _, dir := range []PositionDirection{DirectionLong, DirectionShort} {
		entry[dir] = &EntryDirectionSettings{Indicators: NewIndicatorConditions()}
		scaleIn[dir] = &ScaleInDirectionSettings{Indicators: NewIndicatorConditions()}
		exit[dir] = &ExitDirectionSettings{Indicators: NewIndicatorConditions()}
	}
	return &AutoTradingSettings{
		LogicName: "default",
		Leverage:  5,
		Timeframe: "1h",
		Capital: CapitalSettings{
			InitialMargin: InitialMarginSetting{Mode: "min_notional"},
			ScaleInBudget: ScaleInBudgetSetting{Mode: "min_notional"},
		},
		SymbolSelection: SymbolSelection{
			ManualSymbols:     []string{},
			ExcludedSymbols:   []string{},
			LeverageOverrides: map[string]float64{},
			PositionOverrides: map[string]string{},
			FeatureOverrides:  map[string]FeatureOverride{},
		},
		Entry:   entry,
		ScaleIn: scaleIn,
		Exit:    exit,
		StopLoss: StopLossConditions{
			Indicators: NewIndicatorConditions(),
		},
		HedgeActivation: HedgeActivationSettings{
			Directions: []PositionDirection{},
			Indicators: NewIndicatorConditions(),
		},
	}
}
