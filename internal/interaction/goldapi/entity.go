package goldapi

import "time"

// Symbol is a GoldAPI metal symbol.
type Symbol string

const (
	Gold   Symbol = "XAU"
	Silver Symbol = "XAG"
)

// SpotPrice is a spot quote in US dollars per troy ounce.
type SpotPrice struct {
	Symbol    Symbol
	USDPerOz  float64   // ex: 2350.45
	Timestamp time.Time // quote time, zero if absent
}

type spotResponse struct {
	Metal     string   `json:"metal"`
	Currency  string   `json:"currency"`
	Timestamp int64    `json:"timestamp"`
	Price     *float64 `json:"price"`
}
