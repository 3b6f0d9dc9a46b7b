package classifier

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

type completerFake struct {
	reply string
	err   error
	block bool

	calls       int
	temperature float64
}

func (f *completerFake) Complete(ctx context.Context, _ string, temperature float64) (string, error) {
	f.calls++
	f.temperature = temperature
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func TestLLMClassifierParsesStrictJSON(t *testing.T) {
	fake := &completerFake{reply: `{"intent":"db_contact","confidence":0.92,"rationale":"asks for a phone number"}`}
	c := NewLLMClassifier(fake, time.Second)

	result, err := c.Classify(context.Background(), "I want to get in touch with the person managing food")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Intent != domain.IntentDBContact {
		t.Fatalf("expected db_contact, got %s", result.Intent)
	}
	if result.Confidence != 0.92 {
		t.Fatalf("expected confidence 0.92, got %f", result.Confidence)
	}
	if result.Tier != domain.TierLLM {
		t.Fatalf("expected llm tier, got %s", result.Tier)
	}
	if fake.temperature != 0 {
		t.Fatalf("classification must use temperature 0, got %f", fake.temperature)
	}
}

func TestLLMClassifierToleratesSurroundingProse(t *testing.T) {
	fake := &completerFake{reply: "Sure! Here you go:\n{\"intent\":\"rag\",\"confidence\":0.8}\nHope that helps."}
	c := NewLLMClassifier(fake, time.Second)

	result, err := c.Classify(context.Background(), "hostel rules")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Intent != domain.IntentRAG {
		t.Fatalf("expected rag, got %s", result.Intent)
	}
}

func TestLLMClassifierUnknownLabelDegradesToFallback(t *testing.T) {
	fake := &completerFake{reply: `{"intent":"weather_report","confidence":0.99}`}
	c := NewLLMClassifier(fake, time.Second)

	result, err := c.Classify(context.Background(), "will it rain")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Intent != domain.IntentAIFallback {
		t.Fatalf("expected ai_fallback, got %s", result.Intent)
	}
	if result.Confidence >= 0.5 {
		t.Fatalf("expected low confidence, got %f", result.Confidence)
	}
}

func TestLLMClassifierInvalidJSONDegradesToFallback(t *testing.T) {
	fake := &completerFake{reply: "the intent is probably contact related"}
	c := NewLLMClassifier(fake, time.Second)

	result, err := c.Classify(context.Background(), "query")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Intent != domain.IntentAIFallback {
		t.Fatalf("expected ai_fallback, got %s", result.Intent)
	}
}

func TestLLMClassifierClampsConfidence(t *testing.T) {
	fake := &completerFake{reply: `{"intent":"rag","confidence":1.7}`}
	c := NewLLMClassifier(fake, time.Second)

	result, err := c.Classify(context.Background(), "query")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if result.Confidence != 1.0 {
		t.Fatalf("expected clamped confidence 1.0, got %f", result.Confidence)
	}
}

func TestLLMClassifierTimeout(t *testing.T) {
	fake := &completerFake{block: true}
	c := NewLLMClassifier(fake, 20*time.Millisecond)

	start := time.Now()
	_, err := c.Classify(context.Background(), "query")
	if !errors.Is(err, domain.ErrTierTimeout) {
		t.Fatalf("expected ErrTierTimeout, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not bounded")
	}
}

func TestLLMClassifierTransportError(t *testing.T) {
	fake := &completerFake{err: errors.New("connection refused")}
	c := NewLLMClassifier(fake, time.Second)

	if _, err := c.Classify(context.Background(), "query"); err == nil {
		t.Fatalf("expected error")
	}
}
