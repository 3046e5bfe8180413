package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantex/auto-engine/internal/domain"
	"github.com/quantex/auto-engine/internal/usecase"
)

func defaultConstraints() domain.MarketConstraints {
	return domain.MarketConstraints{
		Symbol:            "BTCUSDT",
		PricePrecision:    iptr(2),
		QuantityPrecision: iptr(3),
		MinNotional:       fptr(5),
	}
}

func TestMaterializeOrders_MarketBuy(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:      "a1",
		GroupID: "g1",
		Kind:    "buy",
		Amount:  &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(12)},
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, domain.SideBuy, order.Side)
	assert.Equal(t, domain.OrderMarket, order.Type)
	require.NotNil(t, order.Quantity)
	require.NotNil(t, order.Notional)
	assert.Equal(t, 1.2, *order.Quantity)
	assert.InDelta(t, 12, *order.Notional, 1e-9)
	assert.Empty(t, order.Reason)
}

func TestMaterializeOrders_Idempotent(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{
		{ID: "a1", GroupID: "g1", Kind: "buy", Amount: &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(12)}},
		{ID: "a2", GroupID: "g1", Kind: "stoploss", Price: fptr(9.5), ReduceOnly: true},
	}

	first := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	second := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	assert.Equal(t, first, second)
}

func TestMaterializeOrders_MinNotionalBump(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:     "a1",
		Kind:   "buy",
		Amount: &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(1)},
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Notional)
	assert.GreaterOrEqual(t, *orders[0].Notional, 5.0)
	assert.Equal(t, "min_notional_aligned", orders[0].Reason)
}

func TestMaterializeOrders_MinNotionalFallbackDisabled(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:     "a1",
		Kind:   "buy",
		Amount: &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(1)},
	}}
	off := false

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{UseMinNotionalFallback: &off})
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Notional)
	assert.InDelta(t, 1, *orders[0].Notional, 1e-9)
	assert.Empty(t, orders[0].Reason)
}

func TestMaterializeOrders_LimitSell(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:        "a1",
		Kind:      "sell",
		OrderType: "limit",
		Price:     fptr(101.237),
		Amount:    &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(50)},
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(100), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, domain.SideSell, order.Side)
	assert.Equal(t, domain.OrderLimit, order.Type)
	require.NotNil(t, order.Price)
	assert.Equal(t, 101.24, *order.Price)
	// Quantity derives from the rounded limit price, not the last price.
	require.NotNil(t, order.Quantity)
	assert.Equal(t, 0.493, *order.Quantity)
}

func TestMaterializeOrders_UnresolvedPrices(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{
		{ID: "limit", Kind: "buy", OrderType: "limit", Amount: &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(10)}},
		{ID: "stop", Kind: "stoploss"},
	}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 2)

	limit := orders[0]
	assert.Equal(t, domain.OrderLimit, limit.Type)
	assert.Nil(t, limit.Price)
	assert.Equal(t, "limit price unresolved", limit.Reason)
	assert.Nil(t, limit.Quantity)

	stop := orders[1]
	assert.Equal(t, domain.SideStopLoss, stop.Side)
	assert.Equal(t, domain.OrderStopMarket, stop.Type)
	assert.Nil(t, stop.StopPrice)
	assert.Equal(t, "stop price unresolved", stop.Reason)
}

func TestMaterializeOrders_StopLoss(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:         "s1",
		Kind:       "stoploss",
		Price:      fptr(95.128),
		ReduceOnly: true,
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(100), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, domain.OrderStopMarket, order.Type)
	require.NotNil(t, order.StopPrice)
	assert.Equal(t, 95.13, *order.StopPrice)
	assert.True(t, order.ReduceOnly)
	assert.Nil(t, order.Quantity)
}

func TestMaterializeOrders_PercentSizing(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	runtime := usecase.RuntimeAmounts{
		PositionNotional:   fptr(200),
		WalletBalance:      fptr(1000),
		InitialBuyNotional: fptr(40),
	}

	tests := []struct {
		name   string
		amount domain.AmountSpec
		want   float64
	}{
		{"position percent", domain.AmountSpec{Mode: domain.AmountPositionPercent, Value: fptr(50)}, 100},
		{"wallet percent", domain.AmountSpec{Mode: domain.AmountWalletPercent, Value: fptr(10)}, 100},
		{"initial percent", domain.AmountSpec{Mode: domain.AmountInitialPercent, Value: fptr(200)}, 80},
		{"min notional", domain.AmountSpec{Mode: domain.AmountMinNotional}, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount := tt.amount
			intents := []domain.ActionIntent{{ID: "a", Kind: "sell", Amount: &amount}}
			orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), runtime, usecase.PlanOptions{})
			require.Len(t, orders, 1)
			require.NotNil(t, orders[0].Notional)
			assert.InDelta(t, tt.want, *orders[0].Notional, 1e-9)
		})
	}
}

func TestMaterializeOrders_DirectQuantity(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:     "q1",
		Kind:   "buy",
		Amount: &domain.AmountSpec{Mode: domain.AmountQuantity, Value: fptr(1.2345)},
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), fptr(10), usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	require.NotNil(t, orders[0].Quantity)
	assert.Equal(t, 1.234, *orders[0].Quantity)
	require.NotNil(t, orders[0].Notional)
	assert.InDelta(t, 12.34, *orders[0].Notional, 1e-9)
}

func TestMaterializeOrders_NoLastPrice(t *testing.T) {
	planner := usecase.NewOrderPlanner()
	intents := []domain.ActionIntent{{
		ID:     "a1",
		Kind:   "buy",
		Amount: &domain.AmountSpec{Mode: domain.AmountUSDT, Value: fptr(12)},
	}}

	orders := planner.MaterializeOrders(intents, defaultConstraints(), nil, usecase.RuntimeAmounts{}, usecase.PlanOptions{})
	require.Len(t, orders, 1)
	assert.Nil(t, orders[0].Quantity)
	assert.Nil(t, orders[0].Notional)
}
