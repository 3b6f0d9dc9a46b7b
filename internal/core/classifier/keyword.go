package classifier

import (
	"strings"
	"unicode"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// KeywordGroup is one entry of the fixed-priority rule table: a label,
// its base confidence, and the terms that vote for it. Groups are
// evaluated strictly in slice order with early exit, so priority is an
// explicit, testable artifact.
type KeywordGroup struct {
	Intent domain.IntentLabel `yaml:"intent"`
	Weight float64            `yaml:"weight"`
	Terms  []string           `yaml:"terms"`
}

// extraTermBonus is added per matching term beyond the first; the
// resulting confidence is monotonic in match strength and capped at 1.0.
const extraTermBonus = 0.05

// DefaultKeywordGroups returns the built-in rule table. Document-domain
// terms come first: such queries are rarer and more distinguishable, so
// they pre-empt the broader contact/location buckets ("CGPA helpline
// number" must not be captured by a generic contact keyword).
func DefaultKeywordGroups() []KeywordGroup {
	return []KeywordGroup{
		{
			Intent: domain.IntentRAG,
			Weight: 0.90,
			Terms: []string{
				"cgpa", "sgpa", "gpa", "grade", "grades", "syllabus",
				"curriculum", "exam", "exams", "policy", "rule", "rules",
				"regulation", "regulations", "attendance", "scholarship",
				"admission", "semester", "credit", "credits", "academic",
				"procedure", "ragging", "backlog", "transcript",
			},
		},
		{
			Intent: domain.IntentDBContact,
			Weight: 0.85,
			Terms: []string{
				"phone", "number", "contact", "email", "mail", "call",
				"reach", "helpline", "mobile", "canteen", "mess", "warden",
			},
		},
		{
			Intent: domain.IntentDBLocation,
			Weight: 0.80,
			Terms: []string{
				"where", "location", "located", "direction", "directions",
				"building", "room", "floor", "block", "map", "venue",
			},
		},
		{
			Intent: domain.IntentSmallTalk,
			Weight: 0.75,
			Terms: []string{
				"hello", "hi", "hey", "thanks", "thank", "bye", "goodbye",
				"morning", "evening", "howdy",
			},
		},
	}
}

// KeywordClassifier is the zero-latency first tier. It never fails: a
// query matching no group resolves to ai_fallback with zero confidence.
type KeywordClassifier struct {
	groups []KeywordGroup
}

func NewKeywordClassifier(groups []KeywordGroup) *KeywordClassifier {
	if len(groups) == 0 {
		groups = DefaultKeywordGroups()
	}
	return &KeywordClassifier{groups: groups}
}

func (c *KeywordClassifier) Classify(text string) domain.IntentResult {
	normalized, tokens := normalizeQuery(text)

	for _, group := range c.groups {
		matches := countMatches(group.Terms, normalized, tokens)
		if matches == 0 {
			continue
		}
		confidence := domain.ClampConfidence(group.Weight + extraTermBonus*float64(matches-1))
		return domain.IntentResult{
			Intent:     group.Intent,
			Confidence: confidence,
			Tier:       domain.TierKeyword,
		}
	}

	return domain.IntentResult{
		Intent:     domain.IntentAIFallback,
		Confidence: 0,
		Tier:       domain.TierKeyword,
	}
}

func countMatches(terms []string, normalized string, tokens map[string]struct{}) int {
	matches := 0
	for _, term := range terms {
		if strings.ContainsRune(term, ' ') {
			if strings.Contains(normalized, term) {
				matches++
			}
			continue
		}
		if _, ok := tokens[term]; ok {
			matches++
		}
	}
	return matches
}

// normalizeQuery lowercases the text, strips punctuation, and returns
// both the joined form (for multi-word terms) and a token set.
func normalizeQuery(text string) (string, map[string]struct{}) {
	fields := tokenize(text)
	tokens := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		tokens[f] = struct{}{}
	}
	return strings.Join(fields, " "), tokens
}

func tokenize(s string) []string {
	if s == "" {
		return nil
	}
	out := make([]string, 0, 16)
	var b strings.Builder
	for _, r := range s {
		r = unicode.ToLower(r)
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			continue
		}
		if b.Len() > 0 {
			out = append(out, b.String())
			b.Reset()
		}
	}
	if b.Len() > 0 {
		out = append(out, b.String())
	}
	return out
}
