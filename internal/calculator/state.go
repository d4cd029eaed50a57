package calculator

// Calculator holds the weights entered while the calculator panel is open.
// It is not safe for concurrent use.
type Calculator struct {
	weights Weights
}

func New() *Calculator {
	c := &Calculator{}
	c.Reset()
	return c
}

// AddWeight appends a zero weight to the category.
func (c *Calculator) AddWeight(category Category) {
	if !category.IsKnown() {
		return
	}
	c.weights[category] = append(c.weights[category], 0)
}

// UpdateWeight replaces the weight at index; raw is coerced with ParseWeight.
// Out of range indexes are ignored.
func (c *Calculator) UpdateWeight(category Category, index int, raw string) {
	list := c.weights[category]
	if index < 0 || index >= len(list) {
		return
	}
	list[index] = ParseWeight(raw)
}

// RemoveWeight deletes the weight at index and shifts the following ones down.
func (c *Calculator) RemoveWeight(category Category, index int) {
	list := c.weights[category]
	if index < 0 || index >= len(list) {
		return
	}
	c.weights[category] = append(list[:index:index], list[index+1:]...)
}

// Reset clears every category.
func (c *Calculator) Reset() {
	c.weights = make(Weights, len(Categories))
	for _, category := range Categories {
		c.weights[category] = []float64{}
	}
}

// Weights returns a copy of the entered weights.
func (c *Calculator) Weights() Weights {
	out := make(Weights, len(c.weights))
	for category, list := range c.weights {
		out[category] = append([]float64{}, list...)
	}
	return out
}

// Breakdown computes the breakdown of the entered weights.
func (c *Calculator) Breakdown(prices Prices) Breakdown {
	return ComputeBreakdown(prices, c.weights)
}

// FromInput builds a calculator from raw per-category entries, as submitted by a form.
// Unknown categories are dropped.
func FromInput(input map[string][]string) *Calculator {
	c := New()
	for _, category := range Categories {
		for i, raw := range input[string(category)] {
			c.AddWeight(category)
			c.UpdateWeight(category, i, raw)
		}
	}
	return c
}
