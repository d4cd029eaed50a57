package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"joarchive/internal/repository/jewelry"
	"joarchive/internal/usecases"
)

var importFile string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import jewelry records from a spreadsheet, one sheet per classification",
	RunE: func(cmd *cobra.Command, _ []string) error {
		file, err := os.Open(importFile)
		if err != nil {
			return fmt.Errorf("open %s: %w", importFile, err)
		}
		defer file.Close()

		postgresConnection := mustConnectPostgres()
		defer postgresConnection.MustClose()

		importUC := usecases.NewImportUseCase(logger, jewelry.NewRepository(postgresConnection.DB))

		result, err := importUC.Import(cmd.Context(), file)
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintln(cmd.OutOrStdout(), result.String())
		for _, joNumber := range result.Failed {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "failed:", joNumber)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&importFile, "file", "f", "", "path to the .xlsx archive")
	_ = importCmd.MarkFlagRequired("file")
}
