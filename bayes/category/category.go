package category

import (
	"errors"
	"fmt"
	"sort"
)

var errInvalidCount = errors.New("token count must be positive")

// Category holds the token counts observed for a single label.
type Category struct {
	name   string         // Label this category counts for
	tokens map[string]int // Map of tokens to their count
	order  []string       // Tokens in first-seen order
	tally  int            // Total token occurrences in this category
}

// TokenCount is one entry of a frequency listing.
type TokenCount struct {
	Token string
	Count int
}

// NewCategory returns a pointer to a instance of type Category
func NewCategory(name string) *Category {
	return &Category{
		name:   name,
		tokens: make(map[string]int),
	}
}

// Name returns the label this category counts for.
func (cat *Category) Name() string {
	return cat.name
}

// TrainToken adds count occurrences of word. Counts only ever grow.
func (cat *Category) TrainToken(word string, count int) error {
	if count <= 0 {
		return fmt.Errorf("%w: %d", errInvalidCount, count)
	}

	// Creating the token if it doesn't exist, otherwise incrementing it
	if _, ok := cat.tokens[word]; !ok {
		cat.order = append(cat.order, word)
	}
	cat.tokens[word] += count
	cat.tally += count

	return nil
}

// GetTokenCount returns at tokens count from this category
func (cat *Category) GetTokenCount(word string) int {
	return cat.tokens[word]
}

// GetTally returns the total of all tokens for this category
func (cat *Category) GetTally() int {
	return cat.tally
}

// Distinct returns the number of distinct tokens in this category.
func (cat *Category) Distinct() int {
	return len(cat.tokens)
}

// Tokens returns a copy of the token counts.
func (cat *Category) Tokens() map[string]int {
	tokens := make(map[string]int, len(cat.tokens))
	for token, count := range cat.tokens {
		tokens[token] = count
	}
	return tokens
}

// Frequencies lists tokens by descending count. Equal counts keep the order
// in which the tokens were first seen.
func (cat *Category) Frequencies() []TokenCount {
	listing := make([]TokenCount, 0, len(cat.order))
	for _, token := range cat.order {
		listing = append(listing, TokenCount{Token: token, Count: cat.tokens[token]})
	}
	sort.SliceStable(listing, func(i, j int) bool {
		return listing[i].Count > listing[j].Count
	})
	return listing
}

// Each calls fn for every token in first-seen order.
func (cat *Category) Each(fn func(token string, count int)) {
	for _, token := range cat.order {
		fn(token, cat.tokens[token])
	}
}
