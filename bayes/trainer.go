package bayes

import (
	"fmt"
	"io"

	"github.com/hickeroar/sentibayes/bayes/category"
	"github.com/hickeroar/sentibayes/corpus"
	"github.com/hickeroar/sentibayes/tokenizer"
)

// Trainer aggregates analyzed token counts per label from labeled documents.
type Trainer struct {
	analyzer  *tokenizer.Analyzer
	table     *category.Categories
	documents int
}

// NewTrainer returns an empty trainer analyzing text with analyzer.
func NewTrainer(analyzer *tokenizer.Analyzer) *Trainer {
	return &Trainer{
		analyzer: analyzer,
		table:    category.NewCategories(),
	}
}

// Add counts every analyzed token of text under label.
func (t *Trainer) Add(text, label string) {
	cat := t.table.GetCategory(label)
	for _, token := range t.analyzer.Analyze(text) {
		// A count of one is always valid.
		_ = cat.TrainToken(token, 1)
	}
	t.documents++
}

// Consume drains src, adding every record, and returns how many were added.
// Counts from records read before a source error are kept.
func (t *Trainer) Consume(src corpus.Source) (int, error) {
	added := 0
	for {
		record, err := src.Next()
		if err == io.EOF {
			return added, nil
		}
		if err != nil {
			return added, fmt.Errorf("read training corpus: %w", err)
		}
		t.Add(record.Text, record.Label)
		added++
	}
}

// Table returns the feature table being built.
func (t *Trainer) Table() *category.Categories {
	return t.table
}

// Documents returns the number of documents added.
func (t *Trainer) Documents() int {
	return t.documents
}

// Analyzer returns the analyzer used for training.
func (t *Trainer) Analyzer() *tokenizer.Analyzer {
	return t.analyzer
}

// Model builds a model from the counts so far. See NewModel.
func (t *Trainer) Model(labels ...string) (*Model, error) {
	return NewModel(t.table, labels...)
}

// Classifier builds a model and pairs it with the training analyzer.
func (t *Trainer) Classifier(labels ...string) (*Classifier, error) {
	model, err := t.Model(labels...)
	if err != nil {
		return nil, err
	}
	return NewClassifier(model, t.analyzer), nil
}
