package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// StopwordSet is an immutable set of tokens dropped before counting.
type StopwordSet map[string]struct{}

// NewStopwordSet builds a set from words, ignoring empty strings.
func NewStopwordSet(words ...string) StopwordSet {
	set := make(StopwordSet, len(words))
	for _, word := range words {
		if word == "" {
			continue
		}
		set[word] = struct{}{}
	}
	return set
}

// ReadStopwords parses comma-separated stop words, any number per line.
func ReadStopwords(r io.Reader) (StopwordSet, error) {
	set := make(StopwordSet)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		for _, piece := range strings.Split(scanner.Text(), ",") {
			word := strings.TrimSpace(piece)
			if word == "" {
				continue
			}
			set[word] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stop words: %w", err)
	}

	return set, nil
}

// LoadStopwords reads a stop-word file from disk.
func LoadStopwords(path string) (StopwordSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open stop words: %w", err)
	}
	defer f.Close()

	return ReadStopwords(f)
}

// Contains reports whether token is a stop word.
func (s StopwordSet) Contains(token string) bool {
	_, ok := s[token]
	return ok
}

// Len returns the number of stop words.
func (s StopwordSet) Len() int {
	return len(s)
}

// Words returns the stop words sorted.
func (s StopwordSet) Words() []string {
	words := make([]string, 0, len(s))
	for word := range s {
		words = append(words, word)
	}
	sort.Strings(words)
	return words
}

// Filter returns the tokens that are not stop words, in their original order.
// The input slice is not modified.
func (s StopwordSet) Filter(tokens []string) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if s.Contains(token) {
			continue
		}
		kept = append(kept, token)
	}
	return kept
}
