package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"joarchive/internal/calculator"
	"joarchive/internal/model"
	"joarchive/internal/repository/prices"
)

var calcWeights = map[calculator.Category]*[]string{
	calculator.Gold14K: new([]string),
	calculator.Gold18K: new([]string),
	calculator.Silver:  new([]string),
}

var calcCmd = &cobra.Command{
	Use:     "calc",
	Short:   "Compute the updated metal cost of a piece from its weights in grams",
	Example: "  joarchive calc --gold_14k 2.5 --gold_14k 1.2 --silver 3",
	RunE: func(cmd *cobra.Command, _ []string) error {
		postgresConnection := mustConnectPostgres()
		defer postgresConnection.MustClose()

		current, err := prices.NewRepository(postgresConnection.DB).GetCurrent(cmd.Context())
		if errors.Is(err, model.ErrPricesNotFound) {
			return fmt.Errorf("%w, run the refresh command first", err)
		}
		if err != nil {
			return err
		}

		input := map[string][]string{}
		for category, values := range calcWeights {
			input[string(category)] = *values
		}

		breakdown := calculator.FromInput(input).Breakdown(calculator.PricesFrom(current))

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		for _, category := range calculator.Categories {
			for _, line := range breakdown[category] {
				_, _ = fmt.Fprintf(w, "%s\t%g g\t%s\n", category.Label(), line.Weight, calculator.FormatMoney(cnf.Prices.CurrencySymbol, line.Subtotal))
			}
		}
		_, _ = fmt.Fprintf(w, "TOTAL\t\t%s\n", calculator.FormatMoney(cnf.Prices.CurrencySymbol, calculator.ComputeTotal(breakdown)))
		_, _ = fmt.Fprintf(w, "prices as of %s\n", current.UpdatedAt.In(cnf.Prices.Location()).Format("2006-01-02 15:04"))

		return w.Flush()
	},
}

func init() {
	for _, category := range calculator.Categories {
		calcCmd.Flags().StringArrayVar(calcWeights[category], string(category), nil, "weight in grams of one "+category.Label()+" piece, repeatable")
	}
}
