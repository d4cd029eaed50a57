package calculator

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.English)

// FormatMoney rounds v to two places and groups thousands, e.g. "₱36,746.12".
func FormatMoney(symbol string, v float64) string {
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	if rounded < 0 {
		return "-" + symbol + printer.Sprintf("%v", number.Decimal(-rounded, number.Scale(2)))
	}

	return symbol + printer.Sprintf("%v", number.Decimal(rounded, number.Scale(2)))
}
