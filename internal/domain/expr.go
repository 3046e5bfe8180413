package domain

import (
	"math"
	"strconv"
	"strings"
)

// ExprKind discriminates the closed set of expression reference variants.
type ExprKind string

const (
	ExprIndicator ExprKind = "indicator"
	ExprCross     ExprKind = "cross"
	ExprPair      ExprKind = "pair"
	ExprOffset    ExprKind = "offset"
)

type CrossDir string

const (
	CrossUp   CrossDir = "up"
	CrossDown CrossDir = "down"
	CrossBoth CrossDir = "both"
)

type CrossWhen string

const (
	CrossRecent   CrossWhen = "recent"
	CrossPrevious CrossWhen = "previous"
)

// CrossInterp selects how the crossing price is synthesized. The empty
// value means "mid" (average of both series at the crossing bar).
type CrossInterp string

const (
	InterpMid    CrossInterp = ""
	InterpLinear CrossInterp = "linear"
)

type PairOp string

const (
	PairMin   PairOp = "min"
	PairMax   PairOp = "max"
	PairAvg   PairOp = "avg"
	PairRatio PairOp = "ratio"
)

// ExprRef is a parsed expression reference. Which fields are meaningful
// depends on Kind: ID for indicator lookups, A/B/Dir/When/Interp for
// crossings, A/B/Op for pair operations, A/Pct for offsets.
type ExprRef struct {
	Kind   ExprKind
	ID     string
	A      string
	B      string
	Dir    CrossDir
	When   CrossWhen
	Interp CrossInterp
	Op     PairOp
	Pct    float64
}

const exprPrefix = "expr:"

// ParseExprRef parses the compact textual reference format used inside
// persisted settings, e.g. "expr:cross:a:b:dir=up:when=recent" or
// "expr:offset:a:pct=2.5". Anything not starting with "expr:" is a plain
// indicator id. Malformed input yields nil; the function never panics,
// and callers treat nil as "cannot evaluate this reference".
func ParseExprRef(input string) *ExprRef {
	if input == "" {
		return nil
	}
	if !strings.HasPrefix(input, exprPrefix) {
		return &ExprRef{Kind: ExprIndicator, ID: input}
	}
	parts := strings.Split(input, ":")
	if len(parts) < 2 {
		return nil
	}
	op := parts[1]
	var a, b string
	if len(parts) > 2 {
		a = parts[2]
	}
	kv := map[string]string{}
	for _, seg := range parts[3:] {
		if idx := strings.Index(seg, "="); idx > 0 {
			kv[seg[:idx]] = seg[idx+1:]
		} else if b == "" {
			b = seg
		}
	}

	switch op {
	case "cross":
		if a == "" || b == "" {
			return nil
		}
		dir := CrossDir(kv["dir"])
		if dir == "" {
			dir = CrossBoth
		}
		when := CrossWhen(kv["when"])
		if when == "" {
			when = CrossRecent
		}
		interp := InterpMid
		if kv["interp"] == "linear" {
			interp = InterpLinear
		}
		return &ExprRef{Kind: ExprCross, A: a, B: b, Dir: dir, When: when, Interp: interp}
	case "offset":
		if a == "" {
			return nil
		}
		pct := 0.0
		if raw, ok := kv["pct"]; ok {
			parsed, err := strconv.ParseFloat(raw, 64)
			if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) {
				return nil
			}
			pct = parsed
		}
		return &ExprRef{Kind: ExprOffset, A: a, Pct: pct}
	case "min", "max", "avg", "ratio":
		if a == "" || b == "" {
			return nil
		}
		return &ExprRef{Kind: ExprPair, Op: PairOp(op), A: a, B: b}
	}
	return nil
}
