package domain

// Candle is one OHLCV bar, most recent last in any slice.
type Candle struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume"`
}

// Field returns the named OHLC component.
func (c Candle) Field(f CandleField) (float64, bool) {
	switch f {
	case FieldOpen:
		return c.Open, true
	case FieldHigh:
		return c.High, true
	case FieldLow:
		return c.Low, true
	case FieldClose:
		return c.Close, true
	}
	return 0, false
}

// AssetAmount is a monetary value qualified by its settlement asset.
type AssetAmount struct {
	Asset string  `json:"asset"`
	Value float64 `json:"value"`
}

type PositionDirection string

const (
	DirectionLong  PositionDirection = "long"
	DirectionShort PositionDirection = "short"
)

// EvaluationContext is the per-cycle runtime snapshot a condition tree
// is evaluated against. Optional metrics are pointers: a nil metric is
// "not available this cycle" and any leaf reading it evaluates false.
type EvaluationContext struct {
	Symbol    string            `json:"symbol"`
	Direction PositionDirection `json:"direction"`

	ProfitRatePct        *float64     `json:"profitRatePct,omitempty"`
	Margin               *AssetAmount `json:"margin,omitempty"`
	BuyCount             *float64     `json:"buyCount,omitempty"`
	EntryAgeDays         *float64     `json:"entryAgeDays,omitempty"`
	EntryAgeHours        *float64     `json:"entryAgeHours,omitempty"`
	EntryAgeMinutes      *float64     `json:"entryAgeMinutes,omitempty"`
	WalletBalance        *AssetAmount `json:"walletBalance,omitempty"`
	InitialMarginRatePct *float64     `json:"initialMarginRatePct,omitempty"`
	UnrealizedPnl        *AssetAmount `json:"unrealizedPnl,omitempty"`
	PositionSize         *AssetAmount `json:"positionSize,omitempty"`

	CandleCurrent  *Candle `json:"candleCurrent,omitempty"`
	CandlePrevious *Candle `json:"candlePrevious,omitempty"`
}
