package usecase

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/quantex/auto-engine/internal/domain"
)

const epsilon = 1e-8

// PrecisionMode selects the rounding direction for exchange precision
// alignment.
type PrecisionMode string

const (
	PrecisionFloor PrecisionMode = "floor"
	PrecisionCeil  PrecisionMode = "ceil"
	PrecisionRound PrecisionMode = "round"
)

// ApplyPrecision aligns a value to the given number of decimal places.
// Round is half away from zero. A nil or negative precision leaves the
// value untouched, as does a non-finite input.
func ApplyPrecision(value float64, precision *int, mode PrecisionMode) float64 {
	if !isFinite(value) || precision == nil || *precision < 0 {
		return value
	}
	d := decimal.NewFromFloat(value)
	places := int32(*precision)
	switch mode {
	case PrecisionFloor:
		d = d.RoundFloor(places)
	case PrecisionCeil:
		d = d.RoundCeil(places)
	default:
		d = d.Round(places)
	}
	out, _ := d.Float64()
	return out
}

// QuantityResult is an aligned quantity and the notional it actually
// represents after alignment.
type QuantityResult struct {
	Quantity *float64
	Notional *float64
}

// QuantityByNotional converts a target notional into an exchange-legal
// quantity: floor-aligned to the quantity precision, raised to the
// ceil-aligned minimum quantity when one applies, with the notional
// recomputed from the final quantity.
func QuantityByNotional(notional, price float64, precision *int, minQuantity *float64) QuantityResult {
	if !(notional > 0) || !isFinite(notional) || !(price > 0) || !isFinite(price) {
		var n *float64
		if notional > 0 && isFinite(notional) {
			n = &notional
		}
		return QuantityResult{Notional: n}
	}

	quantity := notional / price
	if !(quantity > 0) || !isFinite(quantity) {
		return QuantityResult{}
	}
	quantity = ApplyPrecision(quantity, precision, PrecisionFloor)

	if minQuantity != nil && *minQuantity > 0 {
		alignedMin := ApplyPrecision(*minQuantity, precision, PrecisionCeil)
		if quantity < alignedMin-epsilon {
			quantity = alignedMin
		}
		quantity = ApplyPrecision(quantity, precision, PrecisionFloor)
	}
	if !(quantity > 0) || !isFinite(quantity) {
		return QuantityResult{}
	}

	actual := quantity * price
	result := QuantityResult{Quantity: &quantity}
	if isFinite(actual) {
		result.Notional = &actual
	}
	return result
}

// MarginCapLimit names which constraint bounds a position.
type MarginCapLimit string

const (
	LimitExchange    MarginCapLimit = "exchange"
	LimitStrategy    MarginCapLimit = "strategy"
	LimitMinNotional MarginCapLimit = "min_notional"
	LimitBalance     MarginCapLimit = "balance"
	LimitMargin      MarginCapLimit = "margin"
	LimitNone        MarginCapLimit = "none"
)

// MarginCap is the merge of the exchange leverage-bracket cap with the
// configured strategy cap.
type MarginCap struct {
	ExchangeMaxNotional  *float64
	StrategyMaxNotional  *float64
	EffectiveMaxNotional *float64
	LimitedBy            MarginCapLimit
}

// MarginCalculator holds the position-sizing arithmetic shared by the
// order planner and the budget resolution.
type MarginCalculator struct{}

func NewMarginCalculator() *MarginCalculator {
	return &MarginCalculator{}
}

// ExchangeMaxNotional returns the largest bracket notional still
// available at the requested leverage, or nil when no bracket allows it.
func (m *MarginCalculator) ExchangeMaxNotional(brackets []domain.LeverageBracket, leverage float64) *float64 {
	if !(leverage > 0) || !isFinite(leverage) {
		return nil
	}
	var best *float64
	for _, b := range brackets {
		if !(b.MaxLeverage > 0) || !(b.MaxNotional > 0) {
			continue
		}
		if b.MaxLeverage >= leverage && (best == nil || b.MaxNotional > *best) {
			v := b.MaxNotional
			best = &v
		}
	}
	return best
}

// ResolveMarginCap computes the effective notional ceiling and which of
// the two sources produced it.
func (m *MarginCalculator) ResolveMarginCap(brackets []domain.LeverageBracket, leverage float64, strategyMax *float64) MarginCap {
	res := MarginCap{
		ExchangeMaxNotional: m.ExchangeMaxNotional(brackets, leverage),
		LimitedBy:           LimitNone,
	}
	if strategyMax != nil && *strategyMax > 0 && isFinite(*strategyMax) {
		v := *strategyMax
		res.StrategyMaxNotional = &v
	}

	switch {
	case res.ExchangeMaxNotional != nil && res.StrategyMaxNotional != nil:
		v := math.Min(*res.ExchangeMaxNotional, *res.StrategyMaxNotional)
		res.EffectiveMaxNotional = &v
	case res.ExchangeMaxNotional != nil:
		v := *res.ExchangeMaxNotional
		res.EffectiveMaxNotional = &v
	case res.StrategyMaxNotional != nil:
		v := *res.StrategyMaxNotional
		res.EffectiveMaxNotional = &v
	}

	if res.EffectiveMaxNotional != nil {
		if res.ExchangeMaxNotional != nil && math.Abs(*res.EffectiveMaxNotional-*res.ExchangeMaxNotional) <= epsilon {
			res.LimitedBy = LimitExchange
		} else if res.StrategyMaxNotional != nil && math.Abs(*res.EffectiveMaxNotional-*res.StrategyMaxNotional) <= epsilon {
			res.LimitedBy = LimitStrategy
		}
	}
	return res
}

// MinMargin is the margin required to carry a notional at the given
// leverage.
func (m *MarginCalculator) MinMargin(notional, leverage float64) *float64 {
	if !(notional > 0) || !isFinite(notional) || !(leverage > 0) || !isFinite(leverage) {
		return nil
	}
	v := notional / leverage
	return &v
}

const scaleInBudgetPercentCap = 1000

// ScaleInBudgetInput carries everything budget resolution can draw on.
// Optional fields are pointers; nil means unknown.
type ScaleInBudgetInput struct {
	Mode             string
	Percentage       *float64
	MinNotional      *float64
	Leverage         float64
	EstimatedBalance *float64
	AllocationCount  int
	BaseMargin       *float64
	BaseNotional     *float64
	Price            *float64
	QuantityPrec     *int
	MinQuantity      *float64
}

// ScaleInBudget is the resolved per-entry budget.
type ScaleInBudget struct {
	Mode      string
	LimitedBy MarginCapLimit
	Margin    *float64
	Notional  *float64
	Quantity  *float64
}

// ResolveScaleInBudget sizes one scale-in entry. Percentages are capped
// at 1000 and margin and notional convert through the leverage.
func (m *MarginCalculator) ResolveScaleInBudget(in ScaleInBudgetInput) ScaleInBudget {
	leverage := in.Leverage
	if !(leverage > 0) || !isFinite(leverage) {
		leverage = 1
	}
	var pct *float64
	if in.Percentage != nil && *in.Percentage > 0 && isFinite(*in.Percentage) {
		v := math.Min(*in.Percentage, scaleInBudgetPercentCap)
		pct = &v
	}
	count := in.AllocationCount
	if count < 1 {
		count = 1
	}

	out := ScaleInBudget{Mode: in.Mode, LimitedBy: LimitNone}
	var margin, notional *float64

	switch in.Mode {
	case "balance_percentage":
		if in.EstimatedBalance != nil && *in.EstimatedBalance > 0 && pct != nil {
			v := *in.EstimatedBalance * *pct / 100 / float64(count)
			margin = &v
			out.LimitedBy = LimitBalance
		}
	case "per_symbol_percentage":
		if in.BaseMargin != nil && *in.BaseMargin > 0 && pct != nil {
			v := *in.BaseMargin * *pct / 100
			margin = &v
			out.LimitedBy = LimitMargin
		}
	case "min_notional":
		switch {
		case in.MinNotional != nil && *in.MinNotional > 0:
			v := *in.MinNotional
			notional = &v
		case in.BaseNotional != nil && *in.BaseNotional > 0:
			v := *in.BaseNotional
			notional = &v
		}
		if in.BaseNotional != nil && notional != nil && *in.BaseNotional-*notional > epsilon {
			v := *in.BaseNotional
			notional = &v
		}
		out.LimitedBy = LimitMinNotional
	}

	if margin != nil {
		v := *margin * leverage
		notional = &v
	} else if notional != nil {
		v := *notional / leverage
		margin = &v
	}

	var qty QuantityResult
	if notional != nil && in.Price != nil {
		qty = QuantityByNotional(*notional, *in.Price, in.QuantityPrec, in.MinQuantity)
	}

	finalNotional := notional
	if qty.Notional != nil {
		finalNotional = qty.Notional
	}
	out.Notional = finalNotional
	out.Quantity = qty.Quantity
	if finalNotional != nil {
		v := *finalNotional / leverage
		out.Margin = &v
	}
	if out.Notional == nil && out.Margin == nil {
		out.LimitedBy = LimitNone
	}
	return out
}

// PositionSize is a sized position boundary.
type PositionSize struct {
	Margin    *float64
	Notional  *float64
	Quantity  *float64
	LimitedBy MarginCapLimit
}

// MinPosition sizes the smallest position the exchange accepts.
func (m *MarginCalculator) MinPosition(leverage float64, minNotional *float64, price *float64, quantityPrec *int, minQuantity *float64) PositionSize {
	out := PositionSize{LimitedBy: LimitMinNotional}
	if minNotional == nil || !(*minNotional > 0) {
		out.LimitedBy = LimitNone
		return out
	}
	notional := *minNotional
	out.Notional = &notional
	out.Margin = m.MinMargin(notional, leverage)
	if price != nil {
		qty := QuantityByNotional(notional, *price, quantityPrec, minQuantity)
		out.Quantity = qty.Quantity
		if qty.Notional != nil {
			out.Notional = qty.Notional
		}
	}
	return out
}

// MaxPosition sizes the largest position the caps allow, never below
// the exchange minimum notional.
func (m *MarginCalculator) MaxPosition(brackets []domain.LeverageBracket, leverage float64, strategyMax, price *float64, quantityPrec *int, minQuantity, minNotional *float64) PositionSize {
	limits := m.ResolveMarginCap(brackets, leverage, strategyMax)
	out := PositionSize{LimitedBy: limits.LimitedBy}

	target := limits.EffectiveMaxNotional
	if minNotional != nil && *minNotional > 0 {
		if target == nil || *target < *minNotional-epsilon {
			v := *minNotional
			target = &v
			out.LimitedBy = LimitNone
		}
	}
	out.Notional = target
	if target != nil && price != nil {
		qty := QuantityByNotional(*target, *price, quantityPrec, minQuantity)
		out.Quantity = qty.Quantity
		if qty.Notional != nil {
			out.Notional = qty.Notional
		}
	}
	if out.Notional != nil {
		out.Margin = m.MinMargin(*out.Notional, leverage)
	}
	return out
}
