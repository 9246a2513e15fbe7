package bayes

import (
	"fmt"

	"github.com/hickeroar/sentibayes/bayes/category"
)

// LabelModel holds the trained probabilities of one label.
type LabelModel struct {
	Prior  float64            // Share of the model's distinct vocabulary seen under this label
	Tokens map[string]float64 // P(token | label) for every token seen under this label
}

// Model maps labels to their probabilities. It is immutable once built.
type Model struct {
	labels []string
	models map[string]LabelModel
}

// NewModel converts a feature table into a model over labels. With no labels
// every label of the table is used, in first-seen order.
//
// The prior of a label is its distinct-token count divided by the sum of the
// distinct-token counts of all model labels. P(token | label) is the token's
// count divided by the label's total token count; unseen tokens get no entry.
func NewModel(table *category.Categories, labels ...string) (*Model, error) {
	if table == nil || table.DistinctTotal() == 0 {
		return nil, ErrEmptyCorpus
	}
	if len(labels) == 0 {
		labels = table.Names()
	}

	cats := make([]*category.Category, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	distinctTotal := 0
	for _, label := range labels {
		if _, dup := seen[label]; dup {
			return nil, fmt.Errorf("%w: %q", errDuplicateLabel, label)
		}
		seen[label] = struct{}{}

		cat, ok := table.LookupCategory(label)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownLabel, label)
		}
		if cat.Distinct() == 0 {
			return nil, fmt.Errorf("%w: %q", ErrEmptyLabel, label)
		}
		distinctTotal += cat.Distinct()
		cats = append(cats, cat)
	}

	m := &Model{
		labels: make([]string, 0, len(labels)),
		models: make(map[string]LabelModel, len(labels)),
	}
	for _, cat := range cats {
		tally := float64(cat.GetTally())
		tokens := make(map[string]float64, cat.Distinct())
		cat.Each(func(token string, count int) {
			tokens[token] = float64(count) / tally
		})

		m.labels = append(m.labels, cat.Name())
		m.models[cat.Name()] = LabelModel{
			Prior:  float64(cat.Distinct()) / float64(distinctTotal),
			Tokens: tokens,
		}
	}

	return m, nil
}

// Labels returns the model's labels in scoring order.
func (m *Model) Labels() []string {
	labels := make([]string, len(m.labels))
	copy(labels, m.labels)
	return labels
}

// Prior returns the prior of label.
func (m *Model) Prior(label string) (float64, bool) {
	lm, ok := m.models[label]
	return lm.Prior, ok
}

// Probability returns P(token | label) if token was seen under label.
func (m *Model) Probability(label, token string) (float64, bool) {
	p, ok := m.models[label].Tokens[token]
	return p, ok
}

// Vocabulary returns the number of distinct tokens trained for label.
func (m *Model) Vocabulary(label string) int {
	return len(m.models[label].Tokens)
}

// Label returns a copy of the probabilities of label.
func (m *Model) Label(label string) (LabelModel, bool) {
	lm, ok := m.models[label]
	if !ok {
		return LabelModel{}, false
	}
	tokens := make(map[string]float64, len(lm.Tokens))
	for token, p := range lm.Tokens {
		tokens[token] = p
	}
	return LabelModel{Prior: lm.Prior, Tokens: tokens}, true
}
