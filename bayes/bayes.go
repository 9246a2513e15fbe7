// Package bayes trains and applies a Naive Bayes sentiment model.
package bayes

import (
	"errors"
	"math"

	"github.com/hickeroar/sentibayes/tokenizer"
)

// SmoothingFloor is the likelihood used for a token never seen under a label.
const SmoothingFloor = 1e-10

var (
	// ErrEmptyCorpus is returned when training or evaluating on no data.
	ErrEmptyCorpus = errors.New("empty corpus")
	// ErrUnknownLabel is returned for a model label missing from the feature table.
	ErrUnknownLabel = errors.New("label not present in training data")
	// ErrEmptyLabel is returned for a label whose documents left no tokens.
	ErrEmptyLabel = errors.New("label has no observed tokens")

	errDuplicateLabel = errors.New("duplicate label")
)

// Classification is the best label for a text and its log score.
type Classification struct {
	Label string
	Score float64
}

// Classifier scores text against a trained model. It is safe for concurrent
// use since neither the model nor the analyzer change after construction.
type Classifier struct {
	model    *Model
	analyzer *tokenizer.Analyzer
}

// NewClassifier returns a pointer to a instance of type Classifier
func NewClassifier(model *Model, analyzer *tokenizer.Analyzer) *Classifier {
	return &Classifier{
		model:    model,
		analyzer: analyzer,
	}
}

// Model returns the classifier's model.
func (c *Classifier) Model() *Model {
	return c.model
}

// Analyzer returns the analyzer applied to classified text.
func (c *Classifier) Analyzer() *tokenizer.Analyzer {
	return c.analyzer
}

// Labels returns the labels the classifier chooses from, in tie-break order.
func (c *Classifier) Labels() []string {
	return c.model.Labels()
}

// Score returns log(prior) + sum(log P(token | label)) for every label.
func (c *Classifier) Score(text string) map[string]float64 {
	tokens := c.analyzer.Analyze(text)

	scores := make(map[string]float64, len(c.model.labels))
	for _, label := range c.model.labels {
		scores[label] = c.logPosterior(label, tokens)
	}
	return scores
}

// Classify returns the label with the highest score. When scores tie the
// label that comes first in the model wins.
func (c *Classifier) Classify(text string) Classification {
	tokens := c.analyzer.Analyze(text)

	best := Classification{Score: math.Inf(-1)}
	for i, label := range c.model.labels {
		score := c.logPosterior(label, tokens)
		if i == 0 || score > best.Score {
			best = Classification{Label: label, Score: score}
		}
	}
	return best
}

func (c *Classifier) logPosterior(label string, tokens []string) float64 {
	lm := c.model.models[label]

	score := math.Log(lm.Prior)
	for _, token := range tokens {
		p, ok := lm.Tokens[token]
		if !ok {
			p = SmoothingFloor
		}
		score += math.Log(p)
	}
	return score
}
