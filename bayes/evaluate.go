package bayes

import (
	"fmt"
	"io"

	"github.com/hickeroar/sentibayes/corpus"
)

// Prediction is the outcome for one evaluated record.
type Prediction struct {
	Record    corpus.Record
	Predicted Classification
	Correct   bool
}

// Evaluation summarizes a run of the classifier over labeled records.
type Evaluation struct {
	Total     int
	Correct   int
	Confusion map[string]map[string]int // true label -> predicted label -> count
}

// Accuracy returns Correct / Total. Evaluate never returns an Evaluation with
// Total == 0.
func (e *Evaluation) Accuracy() float64 {
	return float64(e.Correct) / float64(e.Total)
}

// Evaluate classifies every record of src once and compares the prediction
// with the record's label. observe, when non-nil, sees each prediction in
// source order. An empty source yields ErrEmptyCorpus.
func Evaluate(c *Classifier, src corpus.Source, observe func(Prediction)) (*Evaluation, error) {
	eval := &Evaluation{Confusion: make(map[string]map[string]int)}

	for {
		record, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read test corpus: %w", err)
		}

		predicted := c.Classify(record.Text)
		prediction := Prediction{
			Record:    record,
			Predicted: predicted,
			Correct:   predicted.Label == record.Label,
		}

		eval.Total++
		if prediction.Correct {
			eval.Correct++
		}
		row, ok := eval.Confusion[record.Label]
		if !ok {
			row = make(map[string]int)
			eval.Confusion[record.Label] = row
		}
		row[predicted.Label]++

		if observe != nil {
			observe(prediction)
		}
	}

	if eval.Total == 0 {
		return nil, ErrEmptyCorpus
	}
	return eval, nil
}
