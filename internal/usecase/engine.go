package usecase

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/quantex/auto-engine/internal/domain"
)

// Category names one of the condition trees a settings document
// carries.
type Category string

const (
	CategoryEntry    Category = "entry"
	CategoryScaleIn  Category = "scale_in"
	CategoryExit     Category = "exit"
	CategoryStopLoss Category = "stop_loss"
	CategoryHedge    Category = "hedge"
)

// SymbolEvaluation is the outcome of one evaluation cycle for one
// symbol, direction and category.
type SymbolEvaluation struct {
	Symbol    string
	Direction domain.PositionDirection
	Category  Category
	Result    bool
	Skipped   string
	Trace     map[string]bool
	Intents   []domain.ActionIntent
	Orders    []domain.PlannedOrder
}

// Engine wires market data, exchange metadata and the account snapshot
// into the evaluate-then-plan pipeline.
type Engine struct {
	market   domain.MarketDataProvider
	exchange domain.ExchangeMetadata
	account  domain.AccountStateProvider

	calculator *IndicatorCalculator
	evaluator  *ConditionEvaluator
	intents    *IntentBuilder
	planner    *OrderPlanner
	symbols    *SymbolConfigResolver
	logger     *zap.Logger
}

func NewEngine(market domain.MarketDataProvider, exchange domain.ExchangeMetadata, account domain.AccountStateProvider, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		market:     market,
		exchange:   exchange,
		account:    account,
		calculator: NewIndicatorCalculator(),
		evaluator:  NewConditionEvaluator(),
		intents:    NewIntentBuilder(),
		planner:    NewOrderPlanner(),
		symbols:    NewSymbolConfigResolver(),
		logger:     logger,
	}
}

// EvaluateSymbol runs the full pipeline for one symbol: fetch candles
// at the required lookback, build signals and series, evaluate the
// category's tree against the account snapshot, then materialize any
// triggered intents against the symbol's exchange constraints.
func (e *Engine) EvaluateSymbol(ctx context.Context, settings *domain.AutoTradingSettings, symbol string, direction domain.PositionDirection, category Category) (*SymbolEvaluation, error) {
	eval := &SymbolEvaluation{Symbol: symbol, Direction: direction, Category: category}
	if settings == nil {
		eval.Skipped = "no settings"
		return eval, nil
	}
	if e.symbols.IsExcluded(settings, symbol) {
		eval.Skipped = "symbol excluded"
		return eval, nil
	}

	cfg := e.symbols.Resolve(settings, symbol)
	if skip := directionSkip(cfg.PositionPreference, direction); skip != "" {
		eval.Skipped = skip
		return eval, nil
	}
	if skip := featureSkip(cfg.Features, category); skip != "" {
		eval.Skipped = skip
		return eval, nil
	}

	tree, immediate, enabled := categoryConditions(settings, direction, category)
	if !enabled {
		eval.Skipped = "category disabled"
		return eval, nil
	}

	entries := treeEntries(tree.Root)
	lookback := e.calculator.RequiredLookback(entries)
	candles, err := e.market.GetCandles(ctx, symbol, settings.Timeframe, lookback)
	if err != nil {
		return nil, fmt.Errorf("get candles for %s: %w", symbol, err)
	}

	snapshot, err := e.account.GetSnapshot(ctx, symbol, direction)
	if err != nil {
		return nil, fmt.Errorf("get snapshot for %s: %w", symbol, err)
	}
	attachCandles(snapshot, candles)

	if skip := profitGateSkip(settings, snapshot, direction, category); skip != "" {
		eval.Skipped = skip
		return eval, nil
	}

	in := EvalInput{
		Signals:  e.calculator.BuildSignals(entries, candles),
		Series:   e.calculator.BuildNumericSeries(entries, candles),
		Snapshot: snapshot,
	}
	eval.Result, eval.Trace = e.evaluator.EvaluateWithTrace(tree.Root, in)

	if immediate {
		eval.Result = true
		eval.Intents = e.intents.BuildUnconditional(tree, in.Series)
	} else if eval.Result {
		eval.Intents = e.intents.Build(tree, in)
	}

	if len(eval.Intents) > 0 {
		orders, err := e.planOrders(ctx, settings, symbol, snapshot, eval.Intents)
		if err != nil {
			return nil, err
		}
		eval.Orders = orders
	}

	e.logger.Debug("symbol evaluated",
		zap.String("symbol", symbol),
		zap.String("direction", string(direction)),
		zap.String("category", string(category)),
		zap.Bool("result", eval.Result),
		zap.Int("intents", len(eval.Intents)),
		zap.Int("orders", len(eval.Orders)))
	return eval, nil
}

func (e *Engine) planOrders(ctx context.Context, settings *domain.AutoTradingSettings, symbol string, snapshot *domain.EvaluationContext, intents []domain.ActionIntent) ([]domain.PlannedOrder, error) {
	constraints, err := e.exchange.GetConstraints(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get constraints for %s: %w", symbol, err)
	}
	if constraints == nil {
		constraints = &domain.MarketConstraints{Symbol: symbol}
	}
	lastPrice, err := e.exchange.GetLastPrice(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("get last price for %s: %w", symbol, err)
	}

	runtime := RuntimeAmounts{}
	if snapshot != nil {
		if snapshot.PositionSize != nil {
			v := snapshot.PositionSize.Value
			runtime.PositionNotional = &v
		}
		if snapshot.WalletBalance != nil {
			v := snapshot.WalletBalance.Value
			runtime.WalletBalance = &v
		}
	}
	if settings.Capital.InitialMargin.UsdtAmount > 0 {
		v := settings.Capital.InitialMargin.UsdtAmount
		runtime.InitialBuyNotional = &v
	}

	opts := PlanOptions{UseMinNotionalFallback: settings.Capital.UseMinNotionalFallback}
	return e.planner.MaterializeOrders(intents, *constraints, &lastPrice, runtime, opts), nil
}

// EvaluateAll fans the pipeline out over the symbol list, one goroutine
// per symbol. Failed symbols are logged and omitted from the result.
func (e *Engine) EvaluateAll(ctx context.Context, settings *domain.AutoTradingSettings, symbols []string, direction domain.PositionDirection, category Category) map[string]*SymbolEvaluation {
	out := make(map[string]*SymbolEvaluation, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, symbol := range symbols {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			eval, err := e.EvaluateSymbol(ctx, settings, symbol, direction, category)
			if err != nil {
				e.logger.Warn("symbol evaluation failed", zap.String("symbol", symbol), zap.Error(err))
				return
			}
			mu.Lock()
			out[symbol] = eval
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()
	return out
}

func directionSkip(pref domain.PositionPreference, direction domain.PositionDirection) string {
	switch pref {
	case domain.PreferenceLong:
		if direction != domain.DirectionLong {
			return "direction not allowed"
		}
	case domain.PreferenceShort:
		if direction != domain.DirectionShort {
			return "direction not allowed"
		}
	}
	return ""
}

func featureSkip(features domain.FeatureSet, category Category) string {
	switch category {
	case CategoryScaleIn:
		if !features.ScaleIn {
			return "scale-in disabled for symbol"
		}
	case CategoryExit:
		if !features.Exit {
			return "exit disabled for symbol"
		}
	case CategoryStopLoss:
		if !features.StopLoss {
			return "stop-loss disabled for symbol"
		}
	}
	return ""
}

// categoryConditions picks the tree for a category and direction and
// reports whether the category is enabled at all.
func categoryConditions(settings *domain.AutoTradingSettings, direction domain.PositionDirection, category Category) (domain.IndicatorConditions, bool, bool) {
	switch category {
	case CategoryEntry:
		if s := settings.Entry[direction]; s != nil {
			return s.Indicators, s.Immediate, s.Enabled
		}
	case CategoryScaleIn:
		if s := settings.ScaleIn[direction]; s != nil {
			return s.Indicators, false, s.Enabled
		}
	case CategoryExit:
		if s := settings.Exit[direction]; s != nil {
			return s.Indicators, false, s.Enabled
		}
	case CategoryStopLoss:
		return settings.StopLoss.Indicators, false, true
	case CategoryHedge:
		s := settings.HedgeActivation
		if !s.Enabled {
			return s.Indicators, false, false
		}
		for _, d := range s.Directions {
			if d == direction {
				return s.Indicators, false, true
			}
		}
		return s.Indicators, false, false
	}
	return domain.IndicatorConditions{}, false, false
}

// profitGateSkip applies the category's profit-rate preconditions
// before the tree is evaluated.
func profitGateSkip(settings *domain.AutoTradingSettings, snapshot *domain.EvaluationContext, direction domain.PositionDirection, category Category) string {
	var target, current *domain.ProfitCondition
	switch category {
	case CategoryScaleIn:
		if s := settings.ScaleIn[direction]; s != nil {
			target, current = &s.ProfitTarget, s.CurrentProfitRate
		}
	case CategoryExit:
		if s := settings.Exit[direction]; s != nil {
			target, current = &s.ProfitTarget, s.CurrentProfitRate
		}
	case CategoryStopLoss:
		target, current = &settings.StopLoss.ProfitTarget, settings.StopLoss.CurrentProfitRate
	case CategoryHedge:
		current = settings.HedgeActivation.CurrentProfitRate
	default:
		return ""
	}
	for _, cond := range []*domain.ProfitCondition{target, current} {
		if cond == nil || !cond.Enabled {
			continue
		}
		if snapshot == nil || snapshot.ProfitRatePct == nil {
			return "profit rate unavailable"
		}
		if !compare(*snapshot.ProfitRatePct, cond.Comparator, cond.Value) {
			return "profit condition not met"
		}
	}
	return ""
}

func treeEntries(root *domain.ConditionNode) []domain.IndicatorEntry {
	nodes := domain.CollectIndicatorNodes(root)
	entries := make([]domain.IndicatorEntry, 0, len(nodes))
	for _, n := range nodes {
		entries = append(entries, *n.Indicator)
	}
	return entries
}

// attachCandles fills the snapshot's candle references from the fetched
// history when the account provider left them empty.
func attachCandles(snapshot *domain.EvaluationContext, candles []domain.Candle) {
	if snapshot == nil || len(candles) == 0 {
		return
	}
	if snapshot.CandleCurrent == nil {
		c := candles[len(candles)-1]
		snapshot.CandleCurrent = &c
	}
	if snapshot.CandlePrevious == nil && len(candles) >= 2 {
		c := candles[len(candles)-2]
		snapshot.CandlePrevious = &c
	}
}
