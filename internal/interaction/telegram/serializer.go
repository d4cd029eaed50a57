package telegram

import (
	"fmt"
	"strings"

	"joarchive/internal/calculator"
	"joarchive/internal/model"
)

// PricesToString returns an HTML table of the per-gram prices to send to the user.
func (that *Interaction) PricesToString(languageCode string, prices *model.MetalPrices) string {
	updatedAt := prices.UpdatedAt.In(that.settings.Location).Format("2006-01-02 15:04")

	title, _ := that.renderLocaledMessage(languageCode, "metalPricesTitle", "UpdatedAt", updatedAt)
	headerMetal, _ := that.renderLocaledMessage(languageCode, "columnMetal")
	headerPrice, _ := that.renderLocaledMessage(languageCode, "columnPrice")

	rows := []struct {
		messageID string
		value     float64
	}{
		{messageID: "labelGold14k", value: prices.Gold14K},
		{messageID: "labelGold18k", value: prices.Gold18K},
		{messageID: "labelSilver", value: prices.Silver},
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<b>%s</b>\n<pre>\n", title))
	sb.WriteString(fmt.Sprintf("%-12s %s\n", headerMetal, headerPrice))

	for _, row := range rows {
		label, _ := that.renderLocaledMessage(languageCode, row.messageID)
		sb.WriteString(fmt.Sprintf("%-12s %s\n", label, calculator.FormatMoney(that.settings.CurrencySymbol, row.value)))
	}

	fxLabel, _ := that.renderLocaledMessage(languageCode, "labelFxRate")
	sb.WriteString(fmt.Sprintf("%-12s %.4f\n", fxLabel, prices.FxRate))

	sb.WriteString("</pre>")
	return sb.String()
}
