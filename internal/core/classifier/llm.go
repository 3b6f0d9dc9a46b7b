package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// unparsedFallbackConfidence is assigned when the model's output does
// not map onto a known label: recovered as a weak ai_fallback vote
// rather than a failure.
const unparsedFallbackConfidence = 0.25

// LLMClassifier is the escalation tier. It asks the completion
// collaborator to name exactly one label plus a rationale; parsing the
// reply never fails. Calls carry an explicit deadline; a timeout is
// reported as ErrTierTimeout for the cascade to absorb.
type LLMClassifier struct {
	completer ports.Completer
	timeout   time.Duration
}

func NewLLMClassifier(completer ports.Completer, timeout time.Duration) *LLMClassifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &LLMClassifier{completer: completer, timeout: timeout}
}

func (c *LLMClassifier) Classify(ctx context.Context, text string) (domain.IntentResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.completer.Complete(callCtx, buildIntentPrompt(text), 0.0)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.IntentResult{}, domain.WrapError(domain.ErrTierTimeout, "llm classify", err)
		}
		return domain.IntentResult{}, fmt.Errorf("llm classify: %w", err)
	}

	return parseIntentReply(raw), nil
}

func buildIntentPrompt(text string) string {
	labels := make([]string, 0, len(domain.AllIntentLabels))
	for _, l := range domain.AllIntentLabels {
		labels = append(labels, string(l))
	}

	return fmt.Sprintf(`You classify campus assistant queries.
Return a strict JSON object with keys:
intent (one of: %s), confidence (number from 0 to 1), rationale (short string).
No markdown, no extra keys.

Query:
%s`, strings.Join(labels, ", "), text)
}

// parseIntentReply never fails: uninterpretable output degrades to a
// low-confidence ai_fallback vote.
func parseIntentReply(raw string) domain.IntentResult {
	var reply struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
		Rationale  string  `json:"rationale"`
	}

	if err := json.Unmarshal([]byte(extractJSONObject(raw)), &reply); err != nil {
		return domain.IntentResult{
			Intent:     domain.IntentAIFallback,
			Confidence: unparsedFallbackConfidence,
			Tier:       domain.TierLLM,
			Rationale:  "model reply was not valid JSON",
		}
	}

	label, ok := domain.ParseIntentLabel(reply.Intent)
	if !ok {
		return domain.IntentResult{
			Intent:     domain.IntentAIFallback,
			Confidence: unparsedFallbackConfidence,
			Tier:       domain.TierLLM,
			Rationale:  fmt.Sprintf("%v: %q", domain.ErrUnrecognizedLabel, reply.Intent),
		}
	}

	return domain.IntentResult{
		Intent:     label,
		Confidence: domain.ClampConfidence(reply.Confidence),
		Tier:       domain.TierLLM,
		Rationale:  reply.Rationale,
	}
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
