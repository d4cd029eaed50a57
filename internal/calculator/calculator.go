// Package calculator computes the updated metal cost of a jewelry item from entered weights.
//
// Breakdown and total are pure functions of the current prices and weights, so callers recompute
// them on every edit. Rounding happens only in FormatMoney.
package calculator

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"joarchive/internal/model"
)

// Category is a metal category with its own per-gram price.
type Category string

const (
	Gold14K Category = "gold_14k"
	Gold18K Category = "gold_18k"
	Silver  Category = "silver"
)

// Categories lists the metal categories in display order.
var Categories = []Category{Gold14K, Gold18K, Silver}

var labels = map[Category]string{
	Gold14K: "14k GOLD",
	Gold18K: "18k GOLD",
	Silver:  "SILVER",
}

// Label returns the display label of the category.
func (c Category) Label() string {
	if label, ok := labels[c]; ok {
		return label
	}
	return string(c)
}

// IsKnown reports whether c is one of Categories.
func (c Category) IsKnown() bool {
	_, ok := labels[c]
	return ok
}

// Prices maps a category to its local-currency price per gram.
type Prices map[Category]float64

// PricesFrom extracts calculator prices from the current price record.
func PricesFrom(prices *model.MetalPrices) Prices {
	if prices == nil {
		return Prices{}
	}

	return Prices{
		Gold14K: prices.Gold14K,
		Gold18K: prices.Gold18K,
		Silver:  prices.Silver,
	}
}

// Weights maps a category to its ordered gram weights.
type Weights map[Category][]float64

// Line is one breakdown row, positionally linked to the weight it was computed from.
type Line struct {
	Weight   float64 `json:"weight"`
	Subtotal float64 `json:"subtotal"`
}

// Breakdown maps a category to its lines, in input order.
type Breakdown map[Category][]Line

// ComputeBreakdown multiplies every weight by its category price. Every known category is
// present in the result; zero weights stay as zero-subtotal lines.
func ComputeBreakdown(prices Prices, weights Weights) Breakdown {
	breakdown := make(Breakdown, len(Categories))
	for _, category := range Categories {
		list := weights[category]
		lines := make([]Line, len(list))
		for i, weight := range list {
			lines[i] = Line{Weight: weight, Subtotal: weight * prices[category]}
		}
		breakdown[category] = lines
	}

	return breakdown
}

// ComputeTotal sums every subtotal at full precision. Categories are summed in display order,
// then any other keys in sorted order, so the same breakdown always gives the same total.
func ComputeTotal(breakdown Breakdown) float64 {
	var total float64
	for _, category := range orderedCategories(breakdown) {
		for _, line := range breakdown[category] {
			total += line.Subtotal
		}
	}

	return total
}

func orderedCategories(breakdown Breakdown) []Category {
	out := make([]Category, 0, len(breakdown))
	for _, category := range Categories {
		if _, ok := breakdown[category]; ok {
			out = append(out, category)
		}
	}

	var extra []Category
	for category := range breakdown {
		if !category.IsKnown() {
			extra = append(extra, category)
		}
	}
	slices.Sort(extra)

	return append(out, extra...)
}

// ParseWeight converts free-text input into a weight. Anything that is not a finite,
// non-negative number becomes zero.
func ParseWeight(raw string) float64 {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}

	return value
}
