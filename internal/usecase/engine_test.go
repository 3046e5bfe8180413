package usecase_test

import (
	"context"
	"reflect"
	"testing"

	"go.uber.org/zap"

	"github.com/quantex/auto-engine/internal/domain"
	"github.com/quantex/auto-engine/internal/usecase"
)

type MockMarketData struct {
	Candles        []domain.Candle
	RequestedLimit int
}

func (m *MockMarketData) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	m.RequestedLimit = limit
	return m.Candles, nil
}

type MockExchangeMetadata struct {
	Constraints *domain.MarketConstraints
	LastPrice   float64
}

func (m *MockExchangeMetadata) GetConstraints(ctx context.Context, symbol string) (*domain.MarketConstraints, error) {
	return m.Constraints, nil
}

func (m *MockExchangeMetadata) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	return m.LastPrice, nil
}

type MockAccountState struct {
	Snapshot *domain.EvaluationContext
}

func (m *MockAccountState) GetSnapshot(ctx context.Context, symbol string, direction domain.PositionDirection) (*domain.EvaluationContext, error) {
	if m.Snapshot != nil {
		return m.Snapshot, nil
	}
	return &domain.EvaluationContext{Symbol: symbol, Direction: direction}, nil
}

func newTestEngine(market *MockMarketData, exchange *MockExchangeMetadata, account *MockAccountState) *usecase.Engine {
	return usecase.NewEngine(market, exchange, account, zap.NewNop())
}

func entrySettings(tree domain.IndicatorConditions) *domain.AutoTradingSettings {
	settings := domain.DefaultSettings()
	settings.Entry[domain.DirectionLong].Enabled = true
	settings.Entry[domain.DirectionLong].Indicators = tree
	return settings
}

func TestEvaluateSymbol_EntryTriggersOrders(t *testing.T) {
	entry := domain.NewIndicatorEntry(domain.IndicatorMA)
	entry.Config = domain.IndicatorConfig{Period: 5, Actions: []string{"stay_above"}}
	tree := domain.IndicatorConditions{Root: domain.NewConditionGroup(domain.AggregatorAnd,
		domain.NewIndicatorLeaf(entry, nil),
		domain.NewActionLeaf(domain.OrderActionConfig{Kind: "buy", AmountMode: domain.AmountUSDT, USDT: fptr(12)}),
	)}

	market := &MockMarketData{Candles: risingCandles(60)}
	exchange := &MockExchangeMetadata{
		Constraints: &domain.MarketConstraints{Symbol: "BTCUSDT", PricePrecision: iptr(2), QuantityPrecision: iptr(3), MinNotional: fptr(5)},
		LastPrice:   10,
	}
	engine := newTestEngine(market, exchange, &MockAccountState{})

	eval, err := engine.EvaluateSymbol(context.Background(), entrySettings(tree), "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if !eval.Result {
		t.Fatal("entry should trigger on a rising series")
	}
	if len(eval.Intents) != 1 || len(eval.Orders) != 1 {
		t.Fatalf("intents=%d orders=%d, want 1 and 1", len(eval.Intents), len(eval.Orders))
	}
	order := eval.Orders[0]
	if order.Side != domain.SideBuy || order.Type != domain.OrderMarket {
		t.Errorf("order = %+v, want market buy", order)
	}
	if order.Quantity == nil || *order.Quantity != 1.2 {
		t.Errorf("quantity = %v, want 1.2", order.Quantity)
	}
	if market.RequestedLimit != 50 {
		t.Errorf("requested lookback = %d, want 50", market.RequestedLimit)
	}
}

func TestEvaluateSymbol_DisabledAndExcluded(t *testing.T) {
	market := &MockMarketData{Candles: risingCandles(60)}
	engine := newTestEngine(market, &MockExchangeMetadata{LastPrice: 10}, &MockAccountState{})
	settings := domain.DefaultSettings()

	eval, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "category disabled" {
		t.Errorf("skipped = %q, want category disabled", eval.Skipped)
	}

	settings.SymbolSelection.ExcludedSymbols = []string{"BTCUSDT"}
	eval, err = engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "symbol excluded" {
		t.Errorf("skipped = %q, want symbol excluded", eval.Skipped)
	}
}

func TestEvaluateSymbol_DirectionPreference(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Entry[domain.DirectionShort].Enabled = true
	settings.SymbolSelection.PositionOverrides["BTCUSDT"] = "long"

	engine := newTestEngine(&MockMarketData{}, &MockExchangeMetadata{}, &MockAccountState{})
	eval, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionShort, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "direction not allowed" {
		t.Errorf("skipped = %q, want direction not allowed", eval.Skipped)
	}
}

func TestEvaluateSymbol_ImmediateEntry(t *testing.T) {
	tree := domain.IndicatorConditions{Root: domain.NewConditionGroup(domain.AggregatorOr,
		domain.NewActionLeaf(domain.OrderActionConfig{Kind: "buy", AmountMode: domain.AmountUSDT, USDT: fptr(20)}),
	)}
	settings := entrySettings(tree)
	settings.Entry[domain.DirectionLong].Immediate = true

	exchange := &MockExchangeMetadata{
		Constraints: &domain.MarketConstraints{Symbol: "BTCUSDT", QuantityPrecision: iptr(3)},
		LastPrice:   10,
	}
	engine := newTestEngine(&MockMarketData{Candles: risingCandles(60)}, exchange, &MockAccountState{})

	eval, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	// The OR root with only an action child is false, but immediate
	// entries fire regardless.
	if !eval.Result || len(eval.Intents) != 1 {
		t.Fatalf("result=%v intents=%d, want immediate trigger", eval.Result, len(eval.Intents))
	}
}

func TestEvaluateSymbol_ProfitGate(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Exit[domain.DirectionLong].Enabled = true
	settings.Exit[domain.DirectionLong].ProfitTarget = domain.ProfitCondition{Enabled: true, Comparator: domain.CmpGte, Value: 5}

	account := &MockAccountState{Snapshot: &domain.EvaluationContext{ProfitRatePct: fptr(2)}}
	engine := newTestEngine(&MockMarketData{Candles: risingCandles(60)}, &MockExchangeMetadata{}, account)

	eval, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryExit)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "profit condition not met" {
		t.Errorf("skipped = %q, want profit condition not met", eval.Skipped)
	}

	account.Snapshot = &domain.EvaluationContext{ProfitRatePct: fptr(8)}
	eval, err = engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryExit)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "" {
		t.Errorf("skipped = %q, want the gate to pass", eval.Skipped)
	}
	// An empty AND tree is satisfied once the gate passes.
	if !eval.Result {
		t.Error("empty exit tree should be satisfied")
	}
}

func TestEvaluateSymbol_HedgeDirections(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.HedgeActivation.Enabled = true
	settings.HedgeActivation.Directions = []domain.PositionDirection{domain.DirectionShort}

	engine := newTestEngine(&MockMarketData{Candles: risingCandles(60)}, &MockExchangeMetadata{}, &MockAccountState{})

	eval, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryHedge)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "category disabled" {
		t.Errorf("skipped = %q, hedge should be off for long", eval.Skipped)
	}

	eval, err = engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionShort, usecase.CategoryHedge)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if eval.Skipped != "" {
		t.Errorf("skipped = %q, hedge should run for short", eval.Skipped)
	}
}

func TestEvaluateSymbol_Idempotent(t *testing.T) {
	entry := domain.NewIndicatorEntry(domain.IndicatorMA)
	entry.Config = domain.IndicatorConfig{Period: 5, Actions: []string{"stay_above"}}
	tree := domain.IndicatorConditions{Root: domain.NewConditionGroup(domain.AggregatorAnd,
		domain.NewIndicatorLeaf(entry, nil),
		domain.NewActionLeaf(domain.OrderActionConfig{Kind: "buy", AmountMode: domain.AmountUSDT, USDT: fptr(12)}),
	)}

	exchange := &MockExchangeMetadata{
		Constraints: &domain.MarketConstraints{Symbol: "BTCUSDT", PricePrecision: iptr(2), QuantityPrecision: iptr(3), MinNotional: fptr(5)},
		LastPrice:   10,
	}
	engine := newTestEngine(&MockMarketData{Candles: risingCandles(60)}, exchange, &MockAccountState{})
	settings := entrySettings(tree)

	first, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	second, err := engine.EvaluateSymbol(context.Background(), settings, "BTCUSDT", domain.DirectionLong, usecase.CategoryEntry)
	if err != nil {
		t.Fatalf("EvaluateSymbol() error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation diverged:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestEvaluateAll(t *testing.T) {
	settings := domain.DefaultSettings()
	settings.Entry[domain.DirectionLong].Enabled = true

	engine := newTestEngine(&MockMarketData{Candles: risingCandles(60)}, &MockExchangeMetadata{LastPrice: 10}, &MockAccountState{})
	symbols := []string{"BTCUSDT", "ETHUSDT", "SOLUSDT"}

	out := engine.EvaluateAll(context.Background(), settings, symbols, domain.DirectionLong, usecase.CategoryEntry)
	if len(out) != len(symbols) {
		t.Fatalf("EvaluateAll() returned %d results, want %d", len(out), len(symbols))
	}
	for _, symbol := range symbols {
		if out[symbol] == nil {
			t.Errorf("missing result for %s", symbol)
		}
	}
}
