package domain

import (
	"sort"
	"strings"
)

// IntentLabel is the closed set of query intents. Unrecognized external
// output must be mapped through ParseIntentLabel instead of minting new
// label values.
type IntentLabel string

const (
	IntentDBContact  IntentLabel = "db_contact"
	IntentDBLocation IntentLabel = "db_location"
	IntentRAG        IntentLabel = "rag"
	IntentSmallTalk  IntentLabel = "small_talk"
	IntentAIFallback IntentLabel = "ai_fallback"
)

// AllIntentLabels is the fixed label order, also used as the final
// tie-breaker when sorting aggregated intents.
var AllIntentLabels = []IntentLabel{
	IntentDBContact,
	IntentDBLocation,
	IntentRAG,
	IntentSmallTalk,
	IntentAIFallback,
}

var labelOrder = func() map[IntentLabel]int {
	m := make(map[IntentLabel]int, len(AllIntentLabels))
	for i, l := range AllIntentLabels {
		m[l] = i
	}
	return m
}()

// ParseIntentLabel maps a raw string onto the closed label set. Unknown
// values resolve to IntentAIFallback with ok=false so callers can decide
// whether that is a defect or an expected external-model miss.
func ParseIntentLabel(raw string) (IntentLabel, bool) {
	candidate := IntentLabel(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := labelOrder[candidate]; ok {
		return candidate, true
	}
	return IntentAIFallback, false
}

// ClassifierTier identifies which cascade stage produced a result.
type ClassifierTier string

const (
	TierKeyword ClassifierTier = "keyword"
	TierML      ClassifierTier = "ml"
	TierLLM     ClassifierTier = "llm"
)

// tierRank orders tiers by cost: earlier tiers are cheaper and more
// auditable, so they win confidence ties during aggregation.
func tierRank(t ClassifierTier) int {
	switch t {
	case TierKeyword:
		return 0
	case TierML:
		return 1
	case TierLLM:
		return 2
	default:
		return 3
	}
}

// IntentResult is a single tier's verdict for one query. Created once,
// never mutated.
type IntentResult struct {
	Intent     IntentLabel    `json:"intent"`
	Confidence float64        `json:"confidence"`
	Tier       ClassifierTier `json:"tier"`
	Rationale  string         `json:"rationale,omitempty"`
}

// ScoredIntent is one aggregated (label, confidence) pair.
type ScoredIntent struct {
	Intent     IntentLabel `json:"intent"`
	Confidence float64     `json:"confidence"`
}

// ClassificationResult is the cascade's final output. PrimaryIntent always
// equals AllIntents[0].Intent and AllIntents holds at most one entry per
// label, sorted descending by confidence.
type ClassificationResult struct {
	PrimaryIntent IntentLabel    `json:"primary_intent"`
	Confidence    float64        `json:"confidence"`
	AllIntents    []ScoredIntent `json:"all_intents"`
	IsMultiIntent bool           `json:"is_multi_intent"`
	NeedsFallback bool           `json:"needs_fallback"`
	TierResults   []IntentResult `json:"tier_results"`
}

// AggregateTierResults merges per-tier results into one scored entry per
// label. Confidence per label is the maximum across tiers: one strong
// signal is enough evidence and averaging would let a noisy tier dilute
// it. Ties are broken by tier precedence keyword > ml > llm, then by the
// fixed label order.
func AggregateTierResults(results []IntentResult) []ScoredIntent {
	type best struct {
		confidence float64
		rank       int
	}
	byLabel := make(map[IntentLabel]best, len(results))
	for _, r := range results {
		rank := tierRank(r.Tier)
		current, seen := byLabel[r.Intent]
		if !seen || r.Confidence > current.confidence ||
			(r.Confidence == current.confidence && rank < current.rank) {
			byLabel[r.Intent] = best{confidence: r.Confidence, rank: rank}
		}
	}

	out := make([]ScoredIntent, 0, len(byLabel))
	for label, b := range byLabel {
		out = append(out, ScoredIntent{Intent: label, Confidence: b.confidence})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		ri, rj := byLabel[out[i].Intent].rank, byLabel[out[j].Intent].rank
		if ri != rj {
			return ri < rj
		}
		return labelOrder[out[i].Intent] < labelOrder[out[j].Intent]
	})
	return out
}

// ClampConfidence forces a score into [0,1]; NaN collapses to 0.
func ClampConfidence(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
