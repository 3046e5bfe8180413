package usecase

import (
	"github.com/quantex/auto-engine/internal/domain"
)

// RuntimeAmounts are the live reference amounts percentage sizing draws
// on. Nil fields make the corresponding modes unresolvable.
type RuntimeAmounts struct {
	PositionNotional   *float64
	WalletBalance      *float64
	InitialBuyNotional *float64
}

// PlanOptions tunes materialization. UseMinNotionalFallback defaults to
// true: orders under the exchange minimum notional are bumped up to it.
type PlanOptions struct {
	UseMinNotionalFallback *bool
}

// OrderPlanner turns abstract intents into exchange-admissible orders:
// prices rounded to the price precision, quantities floor-aligned to
// the quantity precision, notionals recomputed from the rounded values.
type OrderPlanner struct{}

func NewOrderPlanner() *OrderPlanner {
	return &OrderPlanner{}
}

// MaterializeOrders plans one order per intent. Intents that cannot be
// fully sized still yield an order carrying a Reason so callers can
// log or surface the skip.
func (p *OrderPlanner) MaterializeOrders(intents []domain.ActionIntent, constraints domain.MarketConstraints, lastPrice *float64, runtime RuntimeAmounts, opts PlanOptions) []domain.PlannedOrder {
	orders := make([]domain.PlannedOrder, 0, len(intents))
	minNotional := clampPositive(constraints.MinNotional)
	minQty := clampPositive(constraints.MinQuantity)
	useFallback := opts.UseMinNotionalFallback == nil || *opts.UseMinNotionalFallback

	for _, intent := range intents {
		order := domain.PlannedOrder{
			ID:           intent.ID,
			GroupID:      intent.GroupID,
			Side:         sideOf(intent.Kind),
			Type:         domain.OrderMarket,
			ReduceOnly:   intent.ReduceOnly,
			WorkingType:  intent.WorkingType,
			PositionSide: intent.PositionSide,
		}

		switch {
		case intent.Kind == "stoploss":
			order.Type = domain.OrderStopMarket
			order.StopPrice = roundedPrice(intent.Price, constraints.PricePrecision)
			if order.StopPrice == nil {
				order.Reason = "stop price unresolved"
			}
		case intent.OrderType == "limit":
			order.Type = domain.OrderLimit
			order.Price = roundedPrice(intent.Price, constraints.PricePrecision)
			if order.Price == nil {
				order.Reason = "limit price unresolved"
			}
		}

		if intent.Kind != "stoploss" {
			refPrice := clampPositive(lastPrice)
			if order.Type == domain.OrderLimit {
				refPrice = clampPositive(order.Price)
			}
			p.sizeOrder(&order, intent, refPrice, constraints, runtime, minNotional, minQty, useFallback)
		}

		orders = append(orders, order)
	}
	return orders
}

func (p *OrderPlanner) sizeOrder(order *domain.PlannedOrder, intent domain.ActionIntent, refPrice *float64, constraints domain.MarketConstraints, runtime RuntimeAmounts, minNotional, minQty *float64, useFallback bool) {
	if refPrice == nil {
		return
	}

	if intent.Amount != nil && intent.Amount.Mode == domain.AmountQuantity {
		qty := clampPositive(intent.Amount.Value)
		if qty == nil {
			return
		}
		aligned := ApplyPrecision(*qty, constraints.QuantityPrecision, PrecisionFloor)
		if !(aligned > 0) {
			return
		}
		notional := aligned * *refPrice
		order.Quantity = &aligned
		order.Notional = &notional
		p.applyMinNotional(order, *refPrice, constraints, minNotional, minQty, useFallback)
		return
	}

	target := p.resolveNotional(intent.Amount, runtime, minNotional)
	if target == nil {
		return
	}
	q := QuantityByNotional(*target, *refPrice, constraints.QuantityPrecision, minQty)
	order.Quantity = q.Quantity
	order.Notional = q.Notional
	p.applyMinNotional(order, *refPrice, constraints, minNotional, minQty, useFallback)
}

func (p *OrderPlanner) applyMinNotional(order *domain.PlannedOrder, refPrice float64, constraints domain.MarketConstraints, minNotional, minQty *float64, useFallback bool) {
	if !useFallback || minNotional == nil {
		return
	}
	current := 0.0
	if order.Notional != nil {
		current = *order.Notional
	}
	if current >= *minNotional {
		return
	}
	bump := QuantityByNotional(*minNotional, refPrice, constraints.QuantityPrecision, minQty)
	order.Quantity = bump.Quantity
	order.Notional = bump.Notional
	if order.Reason == "" {
		order.Reason = "min_notional_aligned"
	}
}

func (p *OrderPlanner) resolveNotional(amount *domain.AmountSpec, runtime RuntimeAmounts, minNotional *float64) *float64 {
	if amount == nil {
		return nil
	}
	switch amount.Mode {
	case domain.AmountUSDT:
		return clampPositive(amount.Value)
	case domain.AmountPositionPercent:
		return percentOf(runtime.PositionNotional, amount.Value)
	case domain.AmountWalletPercent:
		return percentOf(runtime.WalletBalance, amount.Value)
	case domain.AmountInitialPercent:
		return percentOf(runtime.InitialBuyNotional, amount.Value)
	case domain.AmountMinNotional:
		return minNotional
	}
	return nil
}

func percentOf(base, pct *float64) *float64 {
	b := clampPositive(base)
	p := clampPositive(pct)
	if b == nil || p == nil {
		return nil
	}
	v := *b * *p / 100
	return &v
}

func sideOf(kind string) string {
	switch kind {
	case "buy":
		return domain.SideBuy
	case "sell":
		return domain.SideSell
	default:
		return domain.SideStopLoss
	}
}

func roundedPrice(price *float64, precision *int) *float64 {
	p := clampPositive(price)
	if p == nil {
		return nil
	}
	v := ApplyPrecision(*p, precision, PrecisionRound)
	return &v
}

func clampPositive(v *float64) *float64 {
	if v == nil || !isFinite(*v) || !(*v > 0) {
		return nil
	}
	out := *v
	return &out
}
