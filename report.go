package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/hickeroar/sentibayes/bayes"
	"github.com/hickeroar/sentibayes/bayes/category"
	"github.com/hickeroar/sentibayes/corpus"
)

const maxSampleTextRunes = 72

// writeFeatureListing prints every label's tokens by descending frequency.
func writeFeatureListing(w io.Writer, table *category.Categories) error {
	for _, name := range table.Names() {
		if _, err := fmt.Fprintf(w, "\nLabel: %s\n", name); err != nil {
			return err
		}
		for _, entry := range table.GetCategory(name).Frequencies() {
			if _, err := fmt.Fprintf(w, "%s: %d\n", entry.Token, entry.Count); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeAccuracy prints the accuracy as a percentage with two decimals.
func writeAccuracy(w io.Writer, eval *bayes.Evaluation) error {
	_, err := fmt.Fprintf(w, "Accuracy: %.2f%% (%d/%d)\n", eval.Accuracy()*100, eval.Correct, eval.Total)
	return err
}

// writeConfusion prints true label -> predicted label counts.
func writeConfusion(w io.Writer, eval *bayes.Evaluation, labels []string, descriptions corpus.Descriptions) error {
	for _, truth := range labels {
		row := eval.Confusion[truth]
		if len(row) == 0 {
			continue
		}
		parts := make([]string, 0, len(labels))
		for _, predicted := range labels {
			parts = append(parts, fmt.Sprintf("%s=%d", descriptions.Describe(predicted), row[predicted]))
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", descriptions.Describe(truth), strings.Join(parts, " ")); err != nil {
			return err
		}
	}
	return nil
}

// writePrediction prints one evaluated sample with the predicted label's description.
func writePrediction(w io.Writer, p bayes.Prediction, descriptions corpus.Descriptions) error {
	mark := "miss"
	if p.Correct {
		mark = "ok"
	}
	_, err := fmt.Fprintf(w, "[%s] predicted %s, expected %s: %s\n",
		mark,
		descriptions.Describe(p.Predicted.Label),
		descriptions.Describe(p.Record.Label),
		truncate(p.Record.Text, maxSampleTextRunes),
	)
	return err
}

// writeClassification prints a single classification result.
func writeClassification(w io.Writer, result bayes.Classification, descriptions corpus.Descriptions) error {
	_, err := fmt.Fprintf(w, "%s (%s) score=%.4f\n", result.Label, descriptions.Describe(result.Label), result.Score)
	return err
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
