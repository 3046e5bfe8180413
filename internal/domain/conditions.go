package domain

// NodeKind discriminates condition tree nodes.
type NodeKind string

const (
	NodeGroup     NodeKind = "group"
	NodeIndicator NodeKind = "indicator"
	NodeStatus    NodeKind = "status"
	NodeCandle    NodeKind = "candle"
	NodeAction    NodeKind = "action"
)

// AggregatorOperator combines the results of a group's children.
type AggregatorOperator string

const (
	AggregatorAnd AggregatorOperator = "and"
	AggregatorOr  AggregatorOperator = "or"
)

// Comparator is the comparison operator used by leaves. CmpNone never
// matches; an empty comparator is treated the same way.
type Comparator string

const (
	CmpOver  Comparator = "over"
	CmpUnder Comparator = "under"
	CmpEq    Comparator = "eq"
	CmpLte   Comparator = "lte"
	CmpGte   Comparator = "gte"
	CmpNone  Comparator = "none"
)

// StatusMetric names a live account/position metric read from the
// evaluation snapshot.
type StatusMetric string

const (
	MetricProfitRate        StatusMetric = "profitRate"
	MetricMargin            StatusMetric = "margin"
	MetricBuyCount          StatusMetric = "buyCount"
	MetricEntryAge          StatusMetric = "entryAge"
	MetricWalletBalance     StatusMetric = "walletBalance"
	MetricInitialMarginRate StatusMetric = "initialMarginRate"
	MetricUnrealizedPnl     StatusMetric = "unrealizedPnl"
	MetricPositionSize      StatusMetric = "positionSize"
)

// StatusUnit qualifies the metric value. Asset units (USDT/USDC) must
// match the snapshot's asset for the comparison to count.
type StatusUnit string

const (
	UnitPercent StatusUnit = "percent"
	UnitUSDT    StatusUnit = "USDT"
	UnitUSDC    StatusUnit = "USDC"
	UnitCount   StatusUnit = "count"
	UnitDays    StatusUnit = "days"
	UnitHours   StatusUnit = "hours"
	UnitMinutes StatusUnit = "minutes"
)

type IndicatorKey string

const (
	IndicatorMA        IndicatorKey = "ma"
	IndicatorRSI       IndicatorKey = "rsi"
	IndicatorBollinger IndicatorKey = "bollinger"
	IndicatorMACD      IndicatorKey = "macd"
	IndicatorDMI       IndicatorKey = "dmi"
)

type CandleField string

const (
	FieldOpen  CandleField = "open"
	FieldHigh  CandleField = "high"
	FieldLow   CandleField = "low"
	FieldClose CandleField = "close"
)

type CandleReference string

const (
	RefCurrent  CandleReference = "current"
	RefPrevious CandleReference = "previous"
)

// ThresholdCondition is an enable-able numeric threshold used by DMI
// subconditions and profit targets.
type ThresholdCondition struct {
	Enabled    bool       `json:"enabled"`
	Comparator Comparator `json:"comparator"`
	Value      float64    `json:"value"`
}

// CandleCondition compares one OHLC field of the current or previous
// candle against a fixed value.
type CandleCondition struct {
	Enabled     bool            `json:"enabled"`
	Field       CandleField     `json:"field"`
	Comparator  Comparator      `json:"comparator"`
	TargetValue float64         `json:"targetValue"`
	Reference   CandleReference `json:"reference"`
}

// IndicatorConfig carries the per-type indicator parameters. Only the
// fields relevant to the entry's Type are consulted; zero values fall
// back to the conventional defaults at evaluation time.
type IndicatorConfig struct {
	Enabled bool `json:"enabled"`

	// ma / rsi
	Period    int      `json:"period,omitempty"`
	Actions   []string `json:"actions,omitempty"`
	Smoothing string   `json:"smoothing,omitempty"`
	Threshold float64  `json:"threshold,omitempty"`

	// bollinger
	Length            int      `json:"length,omitempty"`
	StandardDeviation float64  `json:"standardDeviation,omitempty"`
	Band              string   `json:"band,omitempty"`
	Action            string   `json:"action,omitempty"`
	TouchTolerancePct *float64 `json:"touchTolerancePct,omitempty"`

	// macd
	Fast            int    `json:"fast,omitempty"`
	Slow            int    `json:"slow,omitempty"`
	Signal          int    `json:"signal,omitempty"`
	Method          string `json:"method,omitempty"`
	Comparison      string `json:"comparison,omitempty"`
	HistogramAction string `json:"histogramAction,omitempty"`

	// dmi
	DiPeriod     int                `json:"diPeriod,omitempty"`
	AdxPeriod    int                `json:"adxPeriod,omitempty"`
	Adx          ThresholdCondition `json:"adx,omitempty"`
	DiPlus       ThresholdCondition `json:"diPlus,omitempty"`
	DiMinus      ThresholdCondition `json:"diMinus,omitempty"`
	DiComparison string             `json:"diComparison,omitempty"`
	AdxVsDi      string             `json:"adxVsDi,omitempty"`
}

// IndicatorEntry is one configured indicator instance referenced by an
// indicator leaf. The ID doubles as the key into signal and series maps.
type IndicatorEntry struct {
	ID     string          `json:"id"`
	Type   IndicatorKey    `json:"type"`
	Config IndicatorConfig `json:"config"`
}

type ComparisonMode string

const (
	CompareNone      ComparisonMode = "none"
	CompareValue     ComparisonMode = "value"
	CompareCandle    ComparisonMode = "candle"
	CompareIndicator ComparisonMode = "indicator"
)

// IndicatorComparison attaches an optional comparison target to an
// indicator leaf (fixed value, candle field, or another indicator).
type IndicatorComparison struct {
	Mode              ComparisonMode  `json:"mode"`
	Comparator        Comparator      `json:"comparator,omitempty"`
	Value             float64         `json:"value,omitempty"`
	Field             CandleField     `json:"field,omitempty"`
	Reference         CandleReference `json:"reference,omitempty"`
	TargetIndicatorID string          `json:"targetIndicatorId,omitempty"`
}

// AmountMode selects how an order action's size is resolved.
type AmountMode string

const (
	AmountUSDT            AmountMode = "usdt"
	AmountPositionPercent AmountMode = "position_percent"
	AmountWalletPercent   AmountMode = "wallet_percent"
	AmountInitialPercent  AmountMode = "initial_percent"
	AmountMinNotional     AmountMode = "min_notional"
	AmountQuantity        AmountMode = "qty"
)

// OrderActionConfig is the persisted configuration of an action leaf:
// a buy, sell, or stoploss to execute when its owning group fires.
type OrderActionConfig struct {
	Kind       string     `json:"kind"` // buy | sell | stoploss
	OrderType  string     `json:"orderType,omitempty"`
	AmountMode AmountMode `json:"amountMode,omitempty"`
	Asset      string     `json:"asset,omitempty"`

	USDT            *float64 `json:"usdt,omitempty"`
	Quantity        *float64 `json:"quantity,omitempty"`
	PositionPercent *float64 `json:"positionPercent,omitempty"`
	WalletPercent   *float64 `json:"walletPercent,omitempty"`
	InitialPercent  *float64 `json:"initialPercent,omitempty"`
	WalletBasis     string   `json:"walletBasis,omitempty"`

	LimitPriceMode string   `json:"limitPriceMode,omitempty"` // input | indicator
	LimitPrice     *float64 `json:"limitPrice,omitempty"`
	IndicatorRefID string   `json:"indicatorRefId,omitempty"`

	// stoploss
	PriceMode         string   `json:"priceMode,omitempty"` // input | indicator | condition
	Price             *float64 `json:"price,omitempty"`
	RecreateOnMissing bool     `json:"recreateOnMissing,omitempty"`

	ReduceOnly   bool   `json:"reduceOnly,omitempty"`
	WorkingType  string `json:"workingType,omitempty"`
	PositionSide string `json:"positionSide,omitempty"`
}

// ConditionNode is one node of a condition tree. Kind selects which of
// the remaining fields are meaningful:
//
//	group:     Operator, Children
//	indicator: Indicator, Comparison
//	status:    Metric, Comparator, Value, Unit
//	candle:    Candle
//	action:    Action
//
// Unknown kinds fail closed during evaluation instead of aborting the
// surrounding tree.
type ConditionNode struct {
	Kind NodeKind `json:"kind"`
	ID   string   `json:"id"`

	Operator AggregatorOperator `json:"operator,omitempty"`
	Children []*ConditionNode   `json:"children,omitempty"`

	Indicator  *IndicatorEntry      `json:"indicator,omitempty"`
	Comparison *IndicatorComparison `json:"comparison,omitempty"`

	Metric     StatusMetric `json:"metric,omitempty"`
	Comparator Comparator   `json:"comparator,omitempty"`
	Value      float64      `json:"value,omitempty"`
	Unit       StatusUnit   `json:"unit,omitempty"`

	Candle *CandleCondition `json:"candle,omitempty"`

	Action *OrderActionConfig `json:"action,omitempty"`
}

// IndicatorConditions wraps a condition tree root as stored in settings
// documents.
type IndicatorConditions struct {
	Root *ConditionNode `json:"root"`
}
