// Package tokenizer turns raw text into the lowercase word tokens the
// classifier counts and scores.
package tokenizer

import (
	"iter"
	"slices"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// All returns the tokens of text in left-to-right order.
//
// Text is NFC-normalized and lowercased first. A token is a maximal run of
// letters, marks, numbers and underscores; runs containing a decimal digit
// are skipped entirely and every other rune separates tokens.
func All(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		if text == "" {
			return
		}

		// cases.Caser keeps state, so each call gets its own.
		lowered := []rune(cases.Lower(language.Und).String(norm.NFC.String(text)))

		start := -1
		digit := false
		for i := 0; i <= len(lowered); i++ {
			if i < len(lowered) && isWordRune(lowered[i]) {
				if start < 0 {
					start = i
					digit = false
				}
				if unicode.IsDigit(lowered[i]) {
					digit = true
				}
				continue
			}

			if start >= 0 && !digit {
				if !yield(string(lowered[start:i])) {
					return
				}
			}
			start = -1
		}
	}
}

// Tokenize collects All(text) into a slice.
func Tokenize(text string) []string {
	tokens := slices.Collect(All(text))
	if tokens == nil {
		return []string{}
	}
	return tokens
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsMark(r) || unicode.IsNumber(r)
}
