package domain

import "testing"

func TestParseIntentLabel(t *testing.T) {
	cases := []struct {
		raw  string
		want IntentLabel
		ok   bool
	}{
		{"db_contact", IntentDBContact, true},
		{"  RAG  ", IntentRAG, true},
		{"Small_Talk", IntentSmallTalk, true},
		{"weather", IntentAIFallback, false},
		{"", IntentAIFallback, false},
	}
	for _, tc := range cases {
		got, ok := ParseIntentLabel(tc.raw)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseIntentLabel(%q) = (%s, %v), want (%s, %v)", tc.raw, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAggregateTakesMaxPerLabel(t *testing.T) {
	results := []IntentResult{
		{Intent: IntentDBContact, Confidence: 0.90, Tier: TierKeyword},
		{Intent: IntentDBContact, Confidence: 0.60, Tier: TierML},
		{Intent: IntentDBLocation, Confidence: 0.72, Tier: TierML},
	}

	aggregated := AggregateTierResults(results)
	if len(aggregated) != 2 {
		t.Fatalf("expected 2 aggregated labels, got %d", len(aggregated))
	}
	if aggregated[0].Intent != IntentDBContact || aggregated[0].Confidence != 0.90 {
		t.Fatalf("expected db_contact at 0.90, got %s at %f", aggregated[0].Intent, aggregated[0].Confidence)
	}
	if aggregated[1].Intent != IntentDBLocation || aggregated[1].Confidence != 0.72 {
		t.Fatalf("expected db_location at 0.72, got %s at %f", aggregated[1].Intent, aggregated[1].Confidence)
	}
}

func TestAggregateTieBrokenByTierPrecedence(t *testing.T) {
	results := []IntentResult{
		{Intent: IntentRAG, Confidence: 0.8, Tier: TierLLM},
		{Intent: IntentDBContact, Confidence: 0.8, Tier: TierKeyword},
	}

	aggregated := AggregateTierResults(results)
	if aggregated[0].Intent != IntentDBContact {
		t.Fatalf("keyword tier must win confidence ties, got %s first", aggregated[0].Intent)
	}
}

func TestClampConfidence(t *testing.T) {
	nan := func() float64 {
		zero := 0.0
		return zero / zero
	}()
	cases := []struct {
		in   float64
		want float64
	}{
		{-0.2, 0},
		{0.5, 0.5},
		{1.3, 1},
		{nan, 0},
	}
	for _, tc := range cases {
		if got := ClampConfidence(tc.in); got != tc.want {
			t.Fatalf("ClampConfidence(%f) = %f, want %f", tc.in, got, tc.want)
		}
	}
}
