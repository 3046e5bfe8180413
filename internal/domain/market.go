package domain

// MarketConstraints are the per-symbol exchange filters the order
// planner must honor. Nil fields mean the exchange does not publish the
// constraint for this symbol; the planner then leaves the corresponding
// value unrounded/unchecked.
type MarketConstraints struct {
	Symbol            string   `json:"symbol,omitempty"`
	PricePrecision    *int     `json:"pricePrecision,omitempty"`
	QuantityPrecision *int     `json:"quantityPrecision,omitempty"`
	MinNotional       *float64 `json:"minNotional,omitempty"`
	MinQuantity       *float64 `json:"minQuantity,omitempty"`
}

// LeverageBracket maps a leverage ceiling to the maximum notional the
// exchange permits at or below that leverage.
type LeverageBracket struct {
	MaxLeverage float64 `json:"maxLeverage"`
	MaxNotional float64 `json:"maxNotional"`
}
