package classifier

import (
	"context"
	"log/slog"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// Thresholds are the cascade's policy constants: escalate to the LLM
// below Escalation, fall back below FallbackConfidence. Exposed as
// configuration rather than hard-coded.
type Thresholds struct {
	Escalation         float64
	FallbackConfidence float64
	MultiIntentMargin  float64
	MultiIntentFloor   float64
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Escalation:         0.7,
		FallbackConfidence: 0.3,
		MultiIntentMargin:  0.15,
		MultiIntentFloor:   0.25,
	}
}

func (t Thresholds) normalize() Thresholds {
	def := DefaultThresholds()
	if t.Escalation <= 0 || t.Escalation > 1 {
		t.Escalation = def.Escalation
	}
	if t.FallbackConfidence <= 0 || t.FallbackConfidence > 1 {
		t.FallbackConfidence = def.FallbackConfidence
	}
	if t.MultiIntentMargin <= 0 || t.MultiIntentMargin > 1 {
		t.MultiIntentMargin = def.MultiIntentMargin
	}
	if t.MultiIntentFloor <= 0 || t.MultiIntentFloor > 1 {
		t.MultiIntentFloor = def.MultiIntentFloor
	}
	return t
}

// MLTier is the trained-model stage as the cascade sees it.
type MLTier interface {
	IsTrained() bool
	Classify(text string) (domain.IntentResult, error)
}

// LLMTier is the escalation stage as the cascade sees it.
type LLMTier interface {
	Classify(ctx context.Context, text string) (domain.IntentResult, error)
}

// UnifiedClassifier runs the three-tier cascade sequentially: each later
// tier's invocation is gated on the confidence accumulated so far, so
// this is a sequenced decision, not a fan-out. It always returns a valid
// result; tier failures are absorbed as zero-confidence votes.
type UnifiedClassifier struct {
	keyword    *KeywordClassifier
	ml         MLTier
	llm        LLMTier
	thresholds Thresholds
	logger     *slog.Logger
}

func NewUnifiedClassifier(
	keyword *KeywordClassifier,
	ml MLTier,
	llm LLMTier,
	thresholds Thresholds,
	logger *slog.Logger,
) *UnifiedClassifier {
	if keyword == nil {
		keyword = NewKeywordClassifier(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &UnifiedClassifier{
		keyword:    keyword,
		ml:         ml,
		llm:        llm,
		thresholds: thresholds.normalize(),
		logger:     logger,
	}
}

func (u *UnifiedClassifier) Classify(ctx context.Context, text string, allowLLM bool) domain.ClassificationResult {
	results := make([]domain.IntentResult, 0, 3)

	keywordResult := u.keyword.Classify(text)
	results = append(results, keywordResult)
	best := keywordResult.Confidence

	if u.ml != nil && u.ml.IsTrained() {
		mlResult, err := u.ml.Classify(text)
		if err != nil {
			u.logger.Warn("ml_tier_failed", "error", err)
			mlResult = failedTierResult(domain.TierML)
		}
		results = append(results, mlResult)
		if mlResult.Confidence > best {
			best = mlResult.Confidence
		}
	}

	if allowLLM && u.llm != nil && best < u.thresholds.Escalation {
		llmResult, err := u.llm.Classify(ctx, text)
		if err != nil {
			u.logger.Warn("llm_tier_failed", "error", err)
			llmResult = failedTierResult(domain.TierLLM)
		}
		results = append(results, llmResult)
	}

	return u.compose(results)
}

func (u *UnifiedClassifier) compose(results []domain.IntentResult) domain.ClassificationResult {
	aggregated := domain.AggregateTierResults(results)
	if len(aggregated) == 0 {
		aggregated = []domain.ScoredIntent{{Intent: domain.IntentAIFallback, Confidence: 0}}
	}

	primary := aggregated[0]

	multiIntent := false
	if len(aggregated) >= 2 {
		second := aggregated[1]
		if second.Confidence >= primary.Confidence-u.thresholds.MultiIntentMargin &&
			second.Confidence >= u.thresholds.MultiIntentFloor {
			multiIntent = true
		}
	}

	needsFallback := primary.Intent == domain.IntentAIFallback ||
		primary.Confidence < u.thresholds.FallbackConfidence

	return domain.ClassificationResult{
		PrimaryIntent: primary.Intent,
		Confidence:    primary.Confidence,
		AllIntents:    aggregated,
		IsMultiIntent: multiIntent,
		NeedsFallback: needsFallback,
		TierResults:   results,
	}
}

// failedTierResult records a tier-level failure as a zero-confidence
// vote so the pipeline degrades instead of aborting.
func failedTierResult(tier domain.ClassifierTier) domain.IntentResult {
	return domain.IntentResult{
		Intent:     domain.IntentAIFallback,
		Confidence: 0,
		Tier:       tier,
		Rationale:  "tier failed",
	}
}
