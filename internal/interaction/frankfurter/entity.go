package frankfurter

import (
	"time"
)

// Rate is a USD to local currency conversion rate.
type Rate struct {
	Base  string    // ex: USD
	Quote string    // ex: PHP
	Value float64   // ex: 58.417
	Date  time.Time // as-of date published by the source, zero if absent
}

type latestResponse struct {
	Amount float64        `json:"amount"`
	Base   string         `json:"base"`
	Date   string         `json:"date"`
	Rates  map[string]any `json:"rates"`
}
