package category

// Categories is the feature table: every trained label and its token counts.
// Labels are kept in first-seen order.
type Categories struct {
	categories map[string]*Category // Map of label names to categories
	order      []string             // Label names in first-seen order
}

// Summary describes one category without exposing its token map.
type Summary struct {
	Distinct   int
	TokenTally int
}

// NewCategories returns a pointer to a instance of type Categories
func NewCategories() *Categories {
	return &Categories{
		categories: make(map[string]*Category),
	}
}

// AddCategory is responsible for adding a new trainable category. An existing
// category of the same name is returned unchanged.
func (cats *Categories) AddCategory(name string) *Category {
	if cat, ok := cats.categories[name]; ok {
		return cat
	}

	cat := NewCategory(name)
	cats.categories[name] = cat
	cats.order = append(cats.order, name)

	return cat
}

// GetCategory returns a specified category, creating it if needed.
func (cats *Categories) GetCategory(name string) *Category {
	if val, ok := cats.categories[name]; ok {
		return val
	}

	// If we get here, we don't have this category, so we're adding it.
	return cats.AddCategory(name)
}

// LookupCategory returns a category without creating it.
func (cats *Categories) LookupCategory(name string) (*Category, bool) {
	cat, ok := cats.categories[name]
	return cat, ok
}

// Names returns the label names in first-seen order.
func (cats *Categories) Names() []string {
	names := make([]string, len(cats.order))
	copy(names, cats.order)
	return names
}

// Len returns the number of categories.
func (cats *Categories) Len() int {
	return len(cats.order)
}

// DistinctTotal sums the distinct-token counts of all categories.
func (cats *Categories) DistinctTotal() int {
	total := 0
	for _, cat := range cats.categories {
		total += cat.Distinct()
	}
	return total
}

// Summaries returns a value snapshot of every category.
func (cats *Categories) Summaries() map[string]Summary {
	summaries := make(map[string]Summary, len(cats.categories))
	for name, cat := range cats.categories {
		summaries[name] = Summary{Distinct: cat.Distinct(), TokenTally: cat.GetTally()}
	}
	return summaries
}

// Merge adds every count of other into cats. Labels and tokens new to cats
// are appended in other's order, so merging partial tables built from
// consecutive chunks of a corpus gives the same table as one pass over it.
func (cats *Categories) Merge(other *Categories) {
	for _, name := range other.order {
		src := other.categories[name]
		dst := cats.GetCategory(name)
		src.Each(func(token string, count int) {
			// Counts in a category are always positive.
			_ = dst.TrainToken(token, count)
		})
	}
}
