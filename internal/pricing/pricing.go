// Package pricing converts USD troy-ounce spot quotes into local per-gram prices.
package pricing

import "math"

const (
	// TroyOunceGrams is the mass of one troy ounce in grams.
	TroyOunceGrams = 31.1035

	// Fraction of pure gold by mass in each karat alloy.
	Purity18K = 0.75
	Purity14K = 0.585
)

// Quote is the raw market input of a refresh.
type Quote struct {
	GoldUSDPerOz   float64
	SilverUSDPerOz float64
	FxRate         float64
}

// PerGram holds local-currency prices per gram.
type PerGram struct {
	Gold24K float64
	Gold18K float64
	Gold14K float64
	Silver  float64
}

// Compute derives purity-adjusted local prices per gram. Silver is not purity-adjusted.
func Compute(q Quote) PerGram {
	gold24K := q.GoldUSDPerOz / TroyOunceGrams * q.FxRate
	silver := q.SilverUSDPerOz / TroyOunceGrams * q.FxRate

	return PerGram{
		Gold24K: gold24K,
		Gold18K: gold24K * Purity18K,
		Gold14K: gold24K * Purity14K,
		Silver:  silver,
	}
}

// IsValidPrice reports whether v is a finite, strictly positive number.
func IsValidPrice(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
