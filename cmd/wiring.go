package cmd

import (
	"net/http"

	"joarchive/internal/interaction/frankfurter"
	"joarchive/internal/interaction/goldapi"
	"joarchive/internal/repository/prices"
	"joarchive/internal/storage"
	"joarchive/internal/usecases"
)

func mustConnectPostgres() *storage.PostgresConnection {
	postgresConnection := storage.MustNewPostgresConnection(logger, cnf.Database.ConnString(), cnf.Logger.ParsedGORMLevel)
	postgresConnection.MustMigration()
	return postgresConnection
}

// newUpdatePricesUseCase wires the refresh job to GoldAPI and Frankfurter. Every upstream request
// is bounded by the configured timeout.
func newUpdatePricesUseCase(pricesRepository *prices.Repository) *usecases.UpdatePricesUseCase {
	upstreamClient := &http.Client{Timeout: cnf.Prices.RequestTimeout}

	goldAPIInteractor := goldapi.NewInteraction(logger, upstreamClient, cnf.Prices.GoldAPIURL, cnf.Prices.GoldAPIKey)
	frankfurterInteractor := frankfurter.NewInteraction(logger, upstreamClient, cnf.Prices.FxURL)

	return usecases.NewUpdatePricesUseCase(logger, pricesRepository, goldAPIInteractor, frankfurterInteractor, cnf.Prices.Currency)
}
