package main

import "github.com/hickeroar/sentibayes/bayes"

// LabelInfo describes one trained label.
type LabelInfo struct {
	Prior      float64
	Vocabulary int
	TokenTally int
}

// InfoClassifierResponse is the /info payload: every label with its prior
// and token counts, and how many documents were trained.
type InfoClassifierResponse struct {
	Documents int
	Trainable bool
	Labels    map[string]LabelInfo
}

// NewInfoClassifierResponse assembles an info response. classifier may be nil
// while the trainer cannot build a model yet; priors are then zero.
func NewInfoClassifierResponse(trainer *bayes.Trainer, classifier *bayes.Classifier) *InfoClassifierResponse {
	response := &InfoClassifierResponse{
		Trainable: trainer != nil,
		Labels:    make(map[string]LabelInfo),
	}

	if trainer != nil {
		response.Documents = trainer.Documents()
		for name, summary := range trainer.Table().Summaries() {
			response.Labels[name] = LabelInfo{Vocabulary: summary.Distinct, TokenTally: summary.TokenTally}
		}
	}

	if classifier != nil {
		model := classifier.Model()
		for _, label := range model.Labels() {
			info := response.Labels[label]
			info.Prior, _ = model.Prior(label)
			info.Vocabulary = model.Vocabulary(label)
			response.Labels[label] = info
		}
	}

	return response
}

// TrainingClassifierResponse is returned by training endpoints with the
// list of labels and a success flag.
type TrainingClassifierResponse struct {
	Success bool
	Labels  []string
}

// NewTrainingClassifierResponse gets an assembled instance of TrainingClassifierResponse.
func NewTrainingClassifierResponse(trainer *bayes.Trainer, success bool) *TrainingClassifierResponse {
	return &TrainingClassifierResponse{
		Success: success,
		Labels:  trainer.Table().Names(),
	}
}
