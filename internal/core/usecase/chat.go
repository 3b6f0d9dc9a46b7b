package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rudradey/campus-companion/internal/core/domain"
	"github.com/rudradey/campus-companion/internal/core/ports"
)

// fallbackTemperature is the creative setting used for deflection
// answers; classification uses 0.
const fallbackTemperature = 0.7

const cannedFallback = "I'm the campus companion - I can help with campus contacts, " +
	"locations, and questions about academic documents and policies. " +
	"I couldn't find an answer to that one."

const smallTalkReply = "Hi! I'm the campus companion. Ask me about campus contacts, " +
	"locations, or academic policies."

// ChatUseCase is the response decision router: it maps the cascade's
// verdict to a structured-data lookup, a retrieval-grounded answer, or
// the fallback path, and composes the final fallback verdict (a rag
// query with no usable chunks falls back even when classification was
// confident).
type ChatUseCase struct {
	classifier ports.IntentClassifier
	retriever  ports.Retriever
	directory  ports.Directory
	completer  ports.Completer
	logger     *slog.Logger

	topK     int
	allowLLM bool
}

func NewChatUseCase(
	classifier ports.IntentClassifier,
	retriever ports.Retriever,
	directory ports.Directory,
	completer ports.Completer,
	topK int,
	allowLLM bool,
	logger *slog.Logger,
) *ChatUseCase {
	if topK <= 0 {
		topK = 3
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatUseCase{
		classifier: classifier,
		retriever:  retriever,
		directory:  directory,
		completer:  completer,
		logger:     logger,
		topK:       topK,
		allowLLM:   allowLLM,
	}
}

func (uc *ChatUseCase) Chat(ctx context.Context, text string) (*domain.ChatReply, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat", fmt.Errorf("empty query"))
	}

	classification := uc.classifier.Classify(ctx, text, uc.allowLLM)
	uc.logger.Info("query_classified",
		"intent", classification.PrimaryIntent,
		"confidence", classification.Confidence,
		"multi_intent", classification.IsMultiIntent,
	)

	switch classification.PrimaryIntent {
	case domain.IntentDBContact:
		return uc.answerContact(ctx, text, classification)
	case domain.IntentDBLocation:
		return uc.answerLocation(ctx, text, classification)
	case domain.IntentRAG:
		return uc.answerGrounded(ctx, text, classification)
	case domain.IntentSmallTalk:
		return &domain.ChatReply{
			Answer:         smallTalkReply,
			Classification: classification,
		}, nil
	default:
		return uc.answerFallback(ctx, text, classification), nil
	}
}

func (uc *ChatUseCase) answerContact(ctx context.Context, text string, classification domain.ClassificationResult) (*domain.ChatReply, error) {
	contacts, err := uc.directory.LookupContacts(ctx, entityTerms(text))
	if err != nil {
		uc.logger.Warn("contact_lookup_failed", "error", err)
		return uc.answerFallback(ctx, text, classification), nil
	}
	if len(contacts) == 0 {
		return uc.answerFallback(ctx, text, classification), nil
	}

	return &domain.ChatReply{
		Answer:         formatContacts(contacts),
		Classification: classification,
		Contacts:       contacts,
	}, nil
}

func (uc *ChatUseCase) answerLocation(ctx context.Context, text string, classification domain.ClassificationResult) (*domain.ChatReply, error) {
	locations, err := uc.directory.LookupLocations(ctx, entityTerms(text))
	if err != nil {
		uc.logger.Warn("location_lookup_failed", "error", err)
		return uc.answerFallback(ctx, text, classification), nil
	}
	if len(locations) == 0 {
		return uc.answerFallback(ctx, text, classification), nil
	}

	return &domain.ChatReply{
		Answer:         formatLocations(locations),
		Classification: classification,
		Locations:      locations,
	}, nil
}

func (uc *ChatUseCase) answerGrounded(ctx context.Context, text string, classification domain.ClassificationResult) (*domain.ChatReply, error) {
	chunks, err := uc.retriever.Retrieve(ctx, text, uc.topK)
	if err != nil {
		if domain.IsKind(err, domain.ErrDimensionMismatch) {
			return nil, err
		}
		uc.logger.Warn("retrieval_failed", "error", err)
		chunks = nil
	}

	if len(chunks) == 0 {
		// Confident rag classification with nothing to ground on still
		// falls back; the retrieval step is the final arbiter.
		classification.NeedsFallback = true
		return uc.answerFallback(ctx, text, classification), nil
	}

	answer, err := uc.completer.Complete(ctx, buildGroundedPrompt(text, chunks), 0.2)
	if err != nil {
		uc.logger.Warn("answer_generation_failed", "error", err)
		reply := uc.answerFallback(ctx, text, classification)
		reply.Sources = chunks
		return reply, nil
	}

	return &domain.ChatReply{
		Answer:         strings.TrimSpace(answer),
		Classification: classification,
		Sources:        chunks,
	}, nil
}

// answerFallback never fails: when the deflection model is unreachable
// it degrades to a canned message.
func (uc *ChatUseCase) answerFallback(ctx context.Context, text string, classification domain.ClassificationResult) *domain.ChatReply {
	classification.NeedsFallback = true

	answer := cannedFallback
	if uc.completer != nil {
		generated, err := uc.completer.Complete(ctx, buildFallbackPrompt(text), fallbackTemperature)
		if err != nil {
			uc.logger.Warn("fallback_generation_failed", "error", err)
		} else if strings.TrimSpace(generated) != "" {
			answer = strings.TrimSpace(generated)
		}
	}

	return &domain.ChatReply{
		Answer:         answer,
		Classification: classification,
		UsedFallback:   true,
	}
}

func buildGroundedPrompt(question string, chunks []domain.RetrievalResult) string {
	var contextBuilder strings.Builder
	for idx, r := range chunks {
		contextBuilder.WriteString(fmt.Sprintf(
			"[%d] file=%s similarity=%.3f\n%s\n\n",
			idx+1, r.Chunk.Filename, r.Similarity, r.Chunk.Text,
		))
	}

	return fmt.Sprintf(`Answer the student's question only from the context below.
If the context is insufficient, say so directly.

Question:
%s

Context:
%s`, question, contextBuilder.String())
}

func buildFallbackPrompt(question string) string {
	return fmt.Sprintf(`You are a friendly campus assistant. The question below is outside
your campus database and documents. Reply briefly and helpfully, and
mention what you can help with: campus contacts, locations, and academic
policies. Keep it under 80 words.

Question:
%s`, question)
}

func formatContacts(contacts []domain.ContactRecord) string {
	var b strings.Builder
	for i, c := range contacts {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(c.Name)
		if c.Role != "" {
			b.WriteString(" (" + c.Role + ")")
		}
		if c.Phone != "" {
			b.WriteString(": " + c.Phone)
		}
		if c.Email != "" {
			b.WriteString(" / " + c.Email)
		}
	}
	return b.String()
}

func formatLocations(locations []domain.LocationRecord) string {
	var b strings.Builder
	for i, l := range locations {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(l.Name)
		if l.Building != "" {
			b.WriteString(": " + l.Building)
		}
		if l.Floor != "" {
			b.WriteString(", " + l.Floor)
		}
		if l.Description != "" {
			b.WriteString(" - " + l.Description)
		}
	}
	return b.String()
}

// directoryStopwords are query words that carry intent but name no
// entity; the remaining tokens drive the directory lookup.
var directoryStopwords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "of": {}, "for": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "what": {}, "whats": {}, "how": {}, "where": {},
	"i": {}, "me": {}, "my": {}, "can": {}, "do": {}, "does": {}, "get": {},
	"phone": {}, "number": {}, "contact": {}, "email": {}, "mail": {},
	"call": {}, "reach": {}, "helpline": {}, "mobile": {},
	"location": {}, "located": {}, "direction": {}, "directions": {},
	"building": {}, "floor": {}, "map": {}, "venue": {},
}

func entityTerms(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !(r >= 'a' && r <= 'z') && !(r >= '0' && r <= '9')
		})
		if f == "" {
			continue
		}
		if _, skip := directoryStopwords[f]; skip {
			continue
		}
		out = append(out, f)
	}
	return out
}
