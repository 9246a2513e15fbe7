package tokenizer

import (
	"fmt"

	"github.com/kljensen/snowball"
)

// Analyzer is the text pipeline shared by training and classification:
// tokenize, drop stop words, then optionally stem.
type Analyzer struct {
	stopwords    StopwordSet
	stemLanguage string
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithStemming reduces every surviving token to its Snowball stem in the
// given language ("english", "spanish", "french", "russian", ...).
func WithStemming(language string) Option {
	return func(a *Analyzer) {
		a.stemLanguage = language
	}
}

// NewAnalyzer returns an analyzer filtering with stopwords. A nil set
// filters nothing.
func NewAnalyzer(stopwords StopwordSet, opts ...Option) (*Analyzer, error) {
	a := &Analyzer{stopwords: stopwords}
	for _, opt := range opts {
		opt(a)
	}

	if a.stemLanguage != "" {
		if _, err := snowball.Stem("testing", a.stemLanguage, true); err != nil {
			return nil, fmt.Errorf("stemmer %q: %w", a.stemLanguage, err)
		}
	}

	return a, nil
}

// Analyze returns the filtered (and stemmed, when enabled) tokens of text.
func (a *Analyzer) Analyze(text string) []string {
	tokens := a.stopwords.Filter(Tokenize(text))
	if a.stemLanguage == "" {
		return tokens
	}

	for i, token := range tokens {
		// The language was validated in NewAnalyzer.
		stemmed, err := snowball.Stem(token, a.stemLanguage, true)
		if err != nil || stemmed == "" {
			continue
		}
		tokens[i] = stemmed
	}
	return tokens
}

// Stopwords returns the analyzer's stop-word set.
func (a *Analyzer) Stopwords() StopwordSet {
	return a.stopwords
}

// StemLanguage returns the Snowball language, or "" when stemming is off.
func (a *Analyzer) StemLanguage() string {
	return a.stemLanguage
}
