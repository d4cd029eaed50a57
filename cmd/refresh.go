package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"joarchive/internal/repository/prices"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the metal prices once and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		postgresConnection := mustConnectPostgres()
		defer postgresConnection.MustClose()

		updatePricesUC := newUpdatePricesUseCase(prices.NewRepository(postgresConnection.DB))

		result, err := updatePricesUC.RefreshPrices(cmd.Context())
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "14k gold: %.4f\n18k gold: %.4f\nsilver:   %.4f\nfx rate:  %.4f\n",
			result.Gold14K, result.Gold18K, result.Silver, result.FxRate)
		return nil
	},
}
