package domain

// AmountSpec describes how an intent's size is resolved: a direct
// notional or quantity, or a percentage of a runtime reference amount.
type AmountSpec struct {
	Mode        AmountMode `json:"mode"`
	Asset       string     `json:"asset,omitempty"`
	Value       *float64   `json:"value,omitempty"`
	WalletBasis string     `json:"walletBasis,omitempty"`
}

// ActionIntent is an abstract desired action extracted from a fired
// condition group, prior to exchange-constraint materialization.
type ActionIntent struct {
	ID        string      `json:"id"`
	GroupID   string      `json:"groupId"`
	Kind      string      `json:"kind"` // buy | sell | stoploss
	OrderType string      `json:"orderType,omitempty"`
	Price     *float64    `json:"price,omitempty"`
	Amount    *AmountSpec `json:"amount,omitempty"`

	ReduceOnly   bool   `json:"reduceOnly,omitempty"`
	WorkingType  string `json:"workingType,omitempty"`
	PositionSide string `json:"positionSide,omitempty"`
}

// Planned order sides and types, in the exchange's vocabulary.
const (
	SideBuy      = "BUY"
	SideSell     = "SELL"
	SideStopLoss = "STOPLOSS"

	OrderMarket     = "MARKET"
	OrderLimit      = "LIMIT"
	OrderStopMarket = "STOP_MARKET"
)

// PlannedOrder is a concrete, exchange-admissible order. Quantity and
// prices are already rounded to the symbol's precision and the notional
// reflects the post-rounding values. A PlannedOrder is self-contained
// and final once returned.
type PlannedOrder struct {
	ID        string   `json:"id"`
	GroupID   string   `json:"groupId"`
	Side      string   `json:"side"`
	Type      string   `json:"type"`
	Price     *float64 `json:"price,omitempty"`
	StopPrice *float64 `json:"stopPrice,omitempty"`
	Quantity  *float64 `json:"quantity,omitempty"`
	Notional  *float64 `json:"notional,omitempty"`
	Reason    string   `json:"reason,omitempty"`

	ReduceOnly   bool   `json:"reduceOnly,omitempty"`
	WorkingType  string `json:"workingType,omitempty"`
	PositionSide string `json:"positionSide,omitempty"`
}
