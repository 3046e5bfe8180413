package scenario

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/quantex/auto-engine/internal/domain"
)

// Scenario is a self-contained market snapshot loaded from a JSON file:
// candle history, exchange constraints, the last traded price and the
// account state. It backs the engine's provider interfaces so a full
// evaluation cycle can run offline.
type Scenario struct {
	Symbol      string                    `json:"symbol"`
	Candles     []domain.Candle           `json:"candles"`
	Constraints *domain.MarketConstraints `json:"constraints,omitempty"`
	LastPrice   float64                   `json:"lastPrice"`
	Snapshot    *domain.EvaluationContext `json:"snapshot,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return &s, nil
}

// Provider serves one loaded scenario through the engine's collaborator
// interfaces.
type Provider struct {
	scenario *Scenario
}

func NewProvider(s *Scenario) *Provider {
	return &Provider{scenario: s}
}

func (p *Provider) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]domain.Candle, error) {
	candles := p.scenario.Candles
	if limit > 0 && len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (p *Provider) GetConstraints(ctx context.Context, symbol string) (*domain.MarketConstraints, error) {
	if p.scenario.Constraints == nil {
		return &domain.MarketConstraints{Symbol: symbol}, nil
	}
	return p.scenario.Constraints, nil
}

func (p *Provider) GetLastPrice(ctx context.Context, symbol string) (float64, error) {
	if p.scenario.LastPrice <= 0 {
		return 0, fmt.Errorf("scenario has no last price for %s", symbol)
	}
	return p.scenario.LastPrice, nil
}

func (p *Provider) GetSnapshot(ctx context.Context, symbol string, direction domain.PositionDirection) (*domain.EvaluationContext, error) {
	if p.scenario.Snapshot != nil {
		snap := *p.scenario.Snapshot
		snap.Symbol = symbol
		snap.Direction = direction
		return &snap, nil
	}
	return &domain.EvaluationContext{Symbol: symbol, Direction: direction}, nil
}
