package domain_test

import (
	"testing"

	"github.com/quantex/auto-engine/internal/domain"
)

func TestParseExprRef_PlainIndicator(t *testing.T) {
	ref := domain.ParseExprRef("ind-123")
	if ref == nil || ref.Kind != domain.ExprIndicator || ref.ID != "ind-123" {
		t.Fatalf("ParseExprRef() = %+v, want indicator ind-123", ref)
	}
}

func TestParseExprRef_Cross(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		dir    domain.CrossDir
		when   domain.CrossWhen
		interp domain.CrossInterp
	}{
		{"defaults", "expr:cross:a:b", domain.CrossBoth, domain.CrossRecent, domain.InterpMid},
		{"up recent", "expr:cross:a:b:dir=up", domain.CrossUp, domain.CrossRecent, domain.InterpMid},
		{"down previous", "expr:cross:a:b:dir=down:when=previous", domain.CrossDown, domain.CrossPrevious, domain.InterpMid},
		{"linear interp", "expr:cross:a:b:interp=linear", domain.CrossBoth, domain.CrossRecent, domain.InterpLinear},
		{"unknown interp falls back to mid", "expr:cross:a:b:interp=cubic", domain.CrossBoth, domain.CrossRecent, domain.InterpMid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := domain.ParseExprRef(tt.input)
			if ref == nil {
				t.Fatalf("ParseExprRef(%q) = nil", tt.input)
			}
			if ref.Kind != domain.ExprCross || ref.A != "a" || ref.B != "b" {
				t.Fatalf("ParseExprRef(%q) = %+v", tt.input, ref)
			}
			if ref.Dir != tt.dir || ref.When != tt.when || ref.Interp != tt.interp {
				t.Errorf("got dir=%s when=%s interp=%q, want dir=%s when=%s interp=%q",
					ref.Dir, ref.When, ref.Interp, tt.dir, tt.when, tt.interp)
			}
		})
	}
}

func TestParseExprRef_PairAndOffset(t *testing.T) {
	for _, op := range []string{"min", "max", "avg", "ratio"} {
		ref := domain.ParseExprRef("expr:" + op + ":a:b")
		if ref == nil || ref.Kind != domain.ExprPair || ref.Op != domain.PairOp(op) {
			t.Errorf("ParseExprRef(expr:%s:a:b) = %+v", op, ref)
		}
	}

	ref := domain.ParseExprRef("expr:offset:a:pct=2.5")
	if ref == nil || ref.Kind != domain.ExprOffset || ref.A != "a" || ref.Pct != 2.5 {
		t.Fatalf("ParseExprRef(offset) = %+v", ref)
	}

	ref = domain.ParseExprRef("expr:offset:a")
	if ref == nil || ref.Pct != 0 {
		t.Fatalf("ParseExprRef(offset without pct) = %+v, want pct 0", ref)
	}
}

func TestParseExprRef_Malformed(t *testing.T) {
	inputs := []string{
		"",
		"expr:",
		"expr:cross:a",         // missing b
		"expr:avg:a",           // missing b
		"expr:offset",          // missing a
		"expr:offset:a:pct=x",  // unparsable pct
		"expr:offset:a:pct=NaN",
		"expr:shift:a:b",       // unknown op
	}
	for _, input := range inputs {
		if ref := domain.ParseExprRef(input); ref != nil {
			t.Errorf("ParseExprRef(%q) = %+v, want nil", input, ref)
		}
	}
}
