package classifier

import (
	"errors"
	"math"
	"sort"
	"sync/atomic"

	"github.com/rudradey/campus-companion/internal/core/domain"
)

// MLClassifier is the second tier: TF-IDF features over the training
// corpus fed into a multinomial logistic regression. Training builds a
// complete model snapshot and atomically swaps it in, so concurrent
// Classify calls never observe a partially-fitted model.
type MLClassifier struct {
	model atomic.Pointer[mlModel]

	epochs       int
	learningRate float64
}

type mlModel struct {
	vocab  []string
	index  map[string]int
	idf    []float64
	labels []domain.IntentLabel
	// weights[class][feature], bias[class]
	weights [][]float64
	bias    []float64
}

func NewMLClassifier() *MLClassifier {
	return &MLClassifier{
		epochs:       300,
		learningRate: 0.5,
	}
}

func (c *MLClassifier) IsTrained() bool {
	return c.model.Load() != nil
}

// Fit trains a fresh model from the labeled examples and replaces any
// prior state. Training is deterministic: zero-initialized weights,
// sorted vocabulary, full-batch gradient descent.
func (c *MLClassifier) Fit(examples []domain.TrainingExample) error {
	if len(examples) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "fit ml classifier", errors.New("no training examples"))
	}

	model, err := fitModel(examples, c.epochs, c.learningRate)
	if err != nil {
		return err
	}
	c.model.Store(model)
	return nil
}

// Classify returns the arg-max label with its class probability as
// confidence. Calling it before any Fit is a programmer error.
func (c *MLClassifier) Classify(text string) (domain.IntentResult, error) {
	model := c.model.Load()
	if model == nil {
		return domain.IntentResult{}, domain.ErrUntrainedModel
	}

	features := model.vectorize(text)
	probs := model.predict(features)

	bestIdx := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[bestIdx] {
			bestIdx = i
		}
	}

	return domain.IntentResult{
		Intent:     model.labels[bestIdx],
		Confidence: domain.ClampConfidence(probs[bestIdx]),
		Tier:       domain.TierML,
	}, nil
}

func fitModel(examples []domain.TrainingExample, epochs int, learningRate float64) (*mlModel, error) {
	// Vocabulary and document frequencies over the full corpus.
	df := make(map[string]int)
	docTokens := make([][]string, len(examples))
	labelSet := make(map[domain.IntentLabel]struct{})
	for i, ex := range examples {
		tokens := tokenize(ex.Text)
		docTokens[i] = tokens
		labelSet[ex.Label] = struct{}{}
		seen := make(map[string]struct{}, len(tokens))
		for _, tok := range tokens {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(labelSet) < 2 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "fit ml classifier", errors.New("need examples for at least two labels"))
	}

	vocab := make([]string, 0, len(df))
	for tok := range df {
		vocab = append(vocab, tok)
	}
	sort.Strings(vocab)

	index := make(map[string]int, len(vocab))
	for i, tok := range vocab {
		index[tok] = i
	}

	n := float64(len(examples))
	idf := make([]float64, len(vocab))
	for i, tok := range vocab {
		idf[i] = math.Log((1+n)/(1+float64(df[tok]))) + 1
	}

	labels := make([]domain.IntentLabel, 0, len(labelSet))
	for _, l := range domain.AllIntentLabels {
		if _, ok := labelSet[l]; ok {
			labels = append(labels, l)
		}
	}
	labelIdx := make(map[domain.IntentLabel]int, len(labels))
	for i, l := range labels {
		labelIdx[l] = i
	}

	model := &mlModel{
		vocab:   vocab,
		index:   index,
		idf:     idf,
		labels:  labels,
		weights: make([][]float64, len(labels)),
		bias:    make([]float64, len(labels)),
	}
	for i := range model.weights {
		model.weights[i] = make([]float64, len(vocab))
	}

	// Pre-vectorize the corpus once.
	vectors := make([]map[int]float64, len(examples))
	targets := make([]int, len(examples))
	for i, ex := range examples {
		vectors[i] = model.vectorizeTokens(docTokens[i])
		targets[i] = labelIdx[ex.Label]
	}

	// Full-batch gradient descent on the softmax cross-entropy loss.
	for epoch := 0; epoch < epochs; epoch++ {
		gradW := make([][]float64, len(labels))
		for i := range gradW {
			gradW[i] = make([]float64, len(vocab))
		}
		gradB := make([]float64, len(labels))

		for i, vec := range vectors {
			probs := model.predictSparse(vec)
			for class := range labels {
				delta := probs[class]
				if class == targets[i] {
					delta -= 1
				}
				gradB[class] += delta
				for feat, val := range vec {
					gradW[class][feat] += delta * val
				}
			}
		}

		step := learningRate / n
		for class := range labels {
			model.bias[class] -= step * gradB[class]
			for feat := range vocab {
				model.weights[class][feat] -= step * gradW[class][feat]
			}
		}
	}

	return model, nil
}

// vectorize builds the L2-normalized TF-IDF feature map for a query.
// Terms outside the training vocabulary are dropped.
func (m *mlModel) vectorize(text string) map[int]float64 {
	return m.vectorizeTokens(tokenize(text))
}

func (m *mlModel) vectorizeTokens(tokens []string) map[int]float64 {
	tf := make(map[int]float64)
	for _, tok := range tokens {
		if idx, ok := m.index[tok]; ok {
			tf[idx]++
		}
	}
	var norm float64
	for idx := range tf {
		tf[idx] *= m.idf[idx]
		norm += tf[idx] * tf[idx]
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for idx := range tf {
			tf[idx] /= norm
		}
	}
	return tf
}

func (m *mlModel) predict(features map[int]float64) []float64 {
	return m.predictSparse(features)
}

func (m *mlModel) predictSparse(features map[int]float64) []float64 {
	scores := make([]float64, len(m.labels))
	for class := range m.labels {
		score := m.bias[class]
		for feat, val := range features {
			score += m.weights[class][feat] * val
		}
		scores[class] = score
	}
	return softmax(scores)
}

func softmax(scores []float64) []float64 {
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	out := make([]float64, len(scores))
	var sum float64
	for i, s := range scores {
		out[i] = math.Exp(s - maxScore)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
