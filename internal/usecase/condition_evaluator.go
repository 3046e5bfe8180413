package usecase

import (
	"math"

	"github.com/quantex/auto-engine/internal/domain"
)

// EvalInput bundles everything a condition tree is evaluated against:
// the per-entry boolean signals and numeric series built from candles,
// and the runtime snapshot for status and candle leaves.
type EvalInput struct {
	Signals  map[string]bool
	Series   SeriesMap
	Snapshot *domain.EvaluationContext
}

// PlannedAction is an action leaf paired with the group whose outcome
// gates it.
type PlannedAction struct {
	NodeID  string
	GroupID string
	Action  domain.OrderActionConfig
}

// ConditionEvaluator walks a condition tree bottom-up. Malformed or
// unresolvable leaves evaluate false; the walk never panics.
type ConditionEvaluator struct{}

func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{}
}

// Evaluate returns the root outcome.
func (e *ConditionEvaluator) Evaluate(root *domain.ConditionNode, in EvalInput) bool {
	result, _ := e.EvaluateWithTrace(root, in)
	return result
}

// EvaluateWithTrace additionally records the outcome of every node by
// id, so action planning can check the owning group of each action.
func (e *ConditionEvaluator) EvaluateWithTrace(root *domain.ConditionNode, in EvalInput) (bool, map[string]bool) {
	trace := map[string]bool{}
	result := e.evalNode(root, in, trace)
	return result, trace
}

func (e *ConditionEvaluator) evalNode(node *domain.ConditionNode, in EvalInput, trace map[string]bool) bool {
	if node == nil {
		return false
	}
	var result bool
	switch node.Kind {
	case domain.NodeGroup:
		result = e.evalGroup(node, in, trace)
	case domain.NodeIndicator:
		result = e.evalIndicator(node, in)
	case domain.NodeStatus:
		result = evalStatus(node, in.Snapshot)
	case domain.NodeCandle:
		result = evalCandle(node.Candle, in.Snapshot)
	case domain.NodeAction:
		// Action leaves carry no predicate of their own.
		result = false
	}
	if node.ID != "" {
		trace[node.ID] = result
	}
	return result
}

// evalGroup aggregates the non-action children. Action leaves are
// carriers for the planner, not predicates, so they do not count
// against an AND group. An AND group with no predicate children is
// true, an OR group false.
func (e *ConditionEvaluator) evalGroup(node *domain.ConditionNode, in EvalInput, trace map[string]bool) bool {
	op := node.Operator
	if op != domain.AggregatorOr {
		op = domain.AggregatorAnd
	}
	result := op == domain.AggregatorAnd
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		if child.Kind == domain.NodeAction {
			e.evalNode(child, in, trace)
			continue
		}
		childResult := e.evalNode(child, in, trace)
		if op == domain.AggregatorAnd {
			result = result && childResult
		} else {
			result = result || childResult
		}
	}
	return result
}

func (e *ConditionEvaluator) evalIndicator(node *domain.ConditionNode, in EvalInput) bool {
	entry := node.Indicator
	if entry == nil {
		return false
	}
	cmp := node.Comparison
	if cmp == nil || cmp.Mode == domain.CompareNone || cmp.Mode == "" {
		return in.Signals[entry.ID]
	}
	v0, ok := lastValue(in.Series[entry.ID])
	if !ok {
		return false
	}
	switch cmp.Mode {
	case domain.CompareValue:
		return compare(v0, cmp.Comparator, cmp.Value)
	case domain.CompareCandle:
		target := candleByReference(in.Snapshot, cmp.Reference)
		if target == nil {
			return false
		}
		field, fok := target.Field(cmp.Field)
		if !fok {
			return false
		}
		return compare(v0, cmp.Comparator, field)
	case domain.CompareIndicator:
		other, ook := lastValue(in.Series[cmp.TargetIndicatorID])
		if !ook {
			return false
		}
		return compare(v0, cmp.Comparator, other)
	}
	return false
}

func evalStatus(node *domain.ConditionNode, snap *domain.EvaluationContext) bool {
	if snap == nil || node.Comparator == "" || node.Comparator == domain.CmpNone {
		return false
	}
	switch node.Metric {
	case domain.MetricProfitRate:
		if node.Unit != "" && node.Unit != domain.UnitPercent {
			return false
		}
		return comparePtr(snap.ProfitRatePct, node)
	case domain.MetricInitialMarginRate:
		if node.Unit != "" && node.Unit != domain.UnitPercent {
			return false
		}
		return comparePtr(snap.InitialMarginRatePct, node)
	case domain.MetricBuyCount:
		return comparePtr(snap.BuyCount, node)
	case domain.MetricEntryAge:
		return comparePtr(entryAge(snap, node.Unit), node)
	case domain.MetricMargin:
		return compareAsset(snap.Margin, node)
	case domain.MetricWalletBalance:
		return compareAsset(snap.WalletBalance, node)
	case domain.MetricUnrealizedPnl:
		return compareAsset(snap.UnrealizedPnl, node)
	case domain.MetricPositionSize:
		return compareAsset(snap.PositionSize, node)
	}
	return false
}

func entryAge(snap *domain.EvaluationContext, unit domain.StatusUnit) *float64 {
	switch unit {
	case domain.UnitMinutes:
		return snap.EntryAgeMinutes
	case domain.UnitHours:
		return snap.EntryAgeHours
	default:
		return snap.EntryAgeDays
	}
}

func comparePtr(v *float64, node *domain.ConditionNode) bool {
	if v == nil {
		return false
	}
	return compare(*v, node.Comparator, node.Value)
}

// compareAsset enforces the unit as a settlement-asset filter: a leaf
// asking for USDT never matches a USDC amount.
func compareAsset(v *domain.AssetAmount, node *domain.ConditionNode) bool {
	if v == nil {
		return false
	}
	if node.Unit != "" && string(node.Unit) != v.Asset {
		return false
	}
	return compare(v.Value, node.Comparator, node.Value)
}

func evalCandle(cond *domain.CandleCondition, snap *domain.EvaluationContext) bool {
	if cond == nil || !cond.Enabled || snap == nil {
		return false
	}
	target := candleByReference(snap, cond.Reference)
	if target == nil {
		return false
	}
	field, ok := target.Field(cond.Field)
	if !ok {
		return false
	}
	cmp := cond.Comparator
	switch cmp {
	case domain.CmpOver, domain.CmpUnder, domain.CmpEq, domain.CmpLte, domain.CmpGte:
	default:
		cmp = domain.CmpOver
	}
	return compare(field, cmp, cond.TargetValue)
}

func candleByReference(snap *domain.EvaluationContext, ref domain.CandleReference) *domain.Candle {
	if snap == nil {
		return nil
	}
	if ref == domain.RefPrevious {
		return snap.CandlePrevious
	}
	return snap.CandleCurrent
}

// compare is the single comparison primitive for every leaf kind. It is
// false whenever either side is non-finite; equality uses a 1e-12
// tolerance.
func compare(left float64, op domain.Comparator, right float64) bool {
	if !isFinite(left) || !isFinite(right) {
		return false
	}
	switch op {
	case domain.CmpOver:
		return left > right
	case domain.CmpUnder:
		return left < right
	case domain.CmpEq:
		return math.Abs(left-right) <= 1e-12
	case domain.CmpLte:
		return left <= right
	case domain.CmpGte:
		return left >= right
	}
	return false
}

// CollectExecutableLeaves returns every action leaf in depth-first
// order.
func CollectExecutableLeaves(root *domain.ConditionNode) []*domain.ConditionNode {
	var out []*domain.ConditionNode
	var visit func(n *domain.ConditionNode)
	visit = func(n *domain.ConditionNode) {
		if n == nil {
			return
		}
		if n.Kind == domain.NodeAction && n.Action != nil {
			out = append(out, n)
		}
		for _, child := range n.Children {
			visit(child)
		}
	}
	visit(root)
	return out
}

// ToExecutablePlan pairs each action leaf with its innermost enclosing
// group. Actions hanging directly off the root use the root id.
func ToExecutablePlan(root *domain.ConditionNode) []PlannedAction {
	if root == nil {
		return nil
	}
	var out []PlannedAction
	var visit func(n *domain.ConditionNode, groupID string)
	visit = func(n *domain.ConditionNode, groupID string) {
		if n == nil {
			return
		}
		if n.Kind == domain.NodeGroup && n.ID != "" {
			groupID = n.ID
		}
		if n.Kind == domain.NodeAction && n.Action != nil {
			out = append(out, PlannedAction{NodeID: n.ID, GroupID: groupID, Action: *n.Action})
		}
		for _, child := range n.Children {
			visit(child, groupID)
		}
	}
	visit(root, root.ID)
	return out
}
