package llm

import (
	"math"
	"testing"
)

func TestLookupCost(t *testing.T) {
	if c := LookupCost("gemini-2.5-flash"); c == nil {
		t.Fatal("expected pricing for gemini-2.5-flash")
	}
	if c := LookupCost("google/gemini-2.5-flash"); c == nil {
		t.Fatal("expected pricing for OpenRouter-style ID")
	}
	if c := LookupCost("mock"); c != nil {
		t.Fatalf("expected no pricing for mock, got %+v", c)
	}
}

func TestModelCost_Cost(t *testing.T) {
	c := ModelCost{InputPerMTok: 1, OutputPerMTok: 5}
	got := c.Cost(1_000_000, 200_000)
	if math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("Cost() = %v, want 2.0", got)
	}
}
