package usecase

import (
	"github.com/quantex/auto-engine/internal/domain"
)

// IntentBuilder turns a satisfied condition tree into abstract order
// intents. An action only fires when its owning group evaluated true,
// so OR trees emit just the actions of the branches that passed.
type IntentBuilder struct {
	evaluator *ConditionEvaluator
	resolver  *PriceResolver
}

func NewIntentBuilder() *IntentBuilder {
	return &IntentBuilder{
		evaluator: NewConditionEvaluator(),
		resolver:  NewPriceResolver(),
	}
}

// Build evaluates the tree and returns the intents of every triggered
// action leaf, in depth-first order. A false root yields nothing.
func (b *IntentBuilder) Build(conditions domain.IndicatorConditions, in EvalInput) []domain.ActionIntent {
	result, trace := b.evaluator.EvaluateWithTrace(conditions.Root, in)
	if !result {
		return nil
	}
	return b.collect(conditions, in.Series, trace)
}

// BuildUnconditional skips tree evaluation and emits every action leaf.
// Used for immediate entries.
func (b *IntentBuilder) BuildUnconditional(conditions domain.IndicatorConditions, series SeriesMap) []domain.ActionIntent {
	return b.collect(conditions, series, nil)
}

func (b *IntentBuilder) collect(conditions domain.IndicatorConditions, series SeriesMap, trace map[string]bool) []domain.ActionIntent {
	plan := ToExecutablePlan(conditions.Root)
	var intents []domain.ActionIntent
	for _, p := range plan {
		if trace != nil && !trace[p.GroupID] {
			continue
		}
		cfg := p.Action
		switch cfg.Kind {
		case "buy", "sell":
			intent := domain.ActionIntent{
				ID:           p.NodeID,
				GroupID:      p.GroupID,
				Kind:         cfg.Kind,
				OrderType:    cfg.OrderType,
				Amount:       amountSpec(cfg),
				ReduceOnly:   cfg.ReduceOnly,
				WorkingType:  cfg.WorkingType,
				PositionSide: cfg.PositionSide,
			}
			if cfg.OrderType == "limit" {
				intent.Price = b.limitPrice(cfg, series)
			}
			intents = append(intents, intent)
		case "stoploss":
			intents = append(intents, domain.ActionIntent{
				ID:           p.NodeID,
				GroupID:      p.GroupID,
				Kind:         cfg.Kind,
				Price:        b.stopPrice(cfg, series),
				ReduceOnly:   cfg.ReduceOnly,
				WorkingType:  cfg.WorkingType,
				PositionSide: cfg.PositionSide,
			})
		}
	}
	return intents
}

func amountSpec(cfg domain.OrderActionConfig) *domain.AmountSpec {
	spec := &domain.AmountSpec{
		Mode:        cfg.AmountMode,
		Asset:       cfg.Asset,
		WalletBasis: cfg.WalletBasis,
	}
	for _, v := range []*float64{cfg.USDT, cfg.Quantity, cfg.PositionPercent, cfg.WalletPercent, cfg.InitialPercent} {
		if v != nil {
			value := *v
			spec.Value = &value
			break
		}
	}
	return spec
}

func (b *IntentBuilder) limitPrice(cfg domain.OrderActionConfig, series SeriesMap) *float64 {
	if cfg.LimitPriceMode == "input" {
		if cfg.LimitPrice != nil && isFinite(*cfg.LimitPrice) {
			v := *cfg.LimitPrice
			return &v
		}
		return nil
	}
	if v, ok := b.resolver.Resolve(cfg.IndicatorRefID, series); ok {
		return &v
	}
	return nil
}

func (b *IntentBuilder) stopPrice(cfg domain.OrderActionConfig, series SeriesMap) *float64 {
	if cfg.PriceMode == "input" {
		if cfg.Price != nil && isFinite(*cfg.Price) {
			v := *cfg.Price
			return &v
		}
		return nil
	}
	if v, ok := b.resolver.Resolve(cfg.IndicatorRefID, series); ok {
		return &v
	}
	return nil
}
