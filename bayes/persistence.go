package bayes

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hickeroar/sentibayes/tokenizer"
)

const persistedModelVersion = 1
const defaultModelFilePath = "/tmp/sentibayes.gob"

type tempFile interface {
	io.Writer
	Sync() error
	Close() error
	Name() string
}

var (
	errNilWriter          = errors.New("writer is nil")
	errNilReader          = errors.New("reader is nil")
	errPathNotAbsolute    = errors.New("path must be absolute")
	errUnsupportedVersion = errors.New("unsupported model version")
	errNoLabels           = errors.New("persisted model has no labels")
	errInvalidLabel       = errors.New("invalid label in persisted model")
	errInvalidPrior       = errors.New("invalid prior in persisted model")
	errInvalidProbability = errors.New("invalid token probability in persisted model")
	createTemp            = func(dir, pattern string) (tempFile, error) { return os.CreateTemp(dir, pattern) }
	renameFile            = os.Rename
	removeFile            = os.Remove
)

type persistedLabel struct {
	Name   string
	Prior  float64
	Tokens map[string]float64
}

type modelState struct {
	Version      int
	Labels       []persistedLabel
	Stopwords    []string
	StemLanguage string
}

// Save writes the model and analyzer settings to a writer using gob encoding.
// Probabilities are stored as float64 bits, so a loaded classifier makes the
// same decisions.
func (c *Classifier) Save(w io.Writer) error {
	if w == nil {
		return errNilWriter
	}

	state := modelState{
		Version:      persistedModelVersion,
		Labels:       make([]persistedLabel, 0, len(c.model.labels)),
		Stopwords:    c.analyzer.Stopwords().Words(),
		StemLanguage: c.analyzer.StemLanguage(),
	}
	for _, label := range c.model.labels {
		lm := c.model.models[label]
		state.Labels = append(state.Labels, persistedLabel{
			Name:   label,
			Prior:  lm.Prior,
			Tokens: lm.Tokens,
		})
	}

	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}

	return nil
}

// Load reads a classifier from a gob-encoded reader.
func Load(r io.Reader) (*Classifier, error) {
	if r == nil {
		return nil, errNilReader
	}

	var state modelState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if err := validateModelState(state); err != nil {
		return nil, err
	}

	var opts []tokenizer.Option
	if state.StemLanguage != "" {
		opts = append(opts, tokenizer.WithStemming(state.StemLanguage))
	}
	analyzer, err := tokenizer.NewAnalyzer(tokenizer.NewStopwordSet(state.Stopwords...), opts...)
	if err != nil {
		return nil, fmt.Errorf("restore analyzer: %w", err)
	}

	model := &Model{
		labels: make([]string, 0, len(state.Labels)),
		models: make(map[string]LabelModel, len(state.Labels)),
	}
	for _, label := range state.Labels {
		model.labels = append(model.labels, label.Name)
		model.models[label.Name] = LabelModel{Prior: label.Prior, Tokens: label.Tokens}
	}

	return NewClassifier(model, analyzer), nil
}

// SaveToFile writes classifier model data to a file atomically.
func (c *Classifier) SaveToFile(path string) error {
	path = resolveModelPath(path)
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	dir := filepath.Dir(path)
	tempFile, err := createTemp(dir, ".sentibayes-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer removeFile(tempPath)

	if err := c.Save(tempFile); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := renameFile(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	return nil
}

// LoadFromFile reads a classifier from a gob-encoded file.
func LoadFromFile(path string) (*Classifier, error) {
	path = resolveModelPath(path)
	if !filepath.IsAbs(path) {
		return nil, fmt.Errorf("%w: %q", errPathNotAbsolute, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	return Load(f)
}

func validateModelState(state modelState) error {
	if state.Version != persistedModelVersion {
		return fmt.Errorf("%w: %d", errUnsupportedVersion, state.Version)
	}
	if len(state.Labels) == 0 {
		return errNoLabels
	}

	seen := make(map[string]struct{}, len(state.Labels))
	for _, label := range state.Labels {
		if _, dup := seen[label.Name]; dup || label.Name == "" {
			return fmt.Errorf("%w: %q", errInvalidLabel, label.Name)
		}
		seen[label.Name] = struct{}{}

		if !(label.Prior > 0 && label.Prior <= 1) {
			return fmt.Errorf("%w for %q: %v", errInvalidPrior, label.Name, label.Prior)
		}
		if len(label.Tokens) == 0 {
			return fmt.Errorf("%w for %q: no tokens", errInvalidProbability, label.Name)
		}

		for token, p := range label.Tokens {
			if token == "" || !(p > 0 && p <= 1) {
				return fmt.Errorf("%w for %q token %q: %v", errInvalidProbability, label.Name, token, p)
			}
		}
	}

	return nil
}

func resolveModelPath(path string) string {
	if path == "" {
		return defaultModelFilePath
	}
	return path
}
