package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"joarchive/internal/interaction/telegram"
	"joarchive/internal/interaction/web"
	"joarchive/internal/repository/jewelry"
	"joarchive/internal/repository/prices"
	"joarchive/internal/scheduler"
	"joarchive/internal/storage"
	"joarchive/internal/usecases"
	"joarchive/locales"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web archive, the daily price refresh and the telegram bot",
	Run: func(cmd *cobra.Command, _ []string) {
		log := logger.With("package", "cmd")

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		// Initialize database connection
		postgresConnection := mustConnectPostgres()
		defer postgresConnection.MustClose()

		// Initialize repositories
		pricesRepository := prices.NewRepository(postgresConnection.DB)
		jewelryRepository := jewelry.NewRepository(postgresConnection.DB)

		// Initialize image storage, uploads are disabled without a bucket
		var images usecases.ImageStore
		if cnf.Images.Bucket != "" {
			imageStore, err := storage.NewImageStore(ctx, logger, storage.ImageStoreOptions{
				Bucket:          cnf.Images.Bucket,
				Region:          cnf.Images.Region,
				Endpoint:        cnf.Images.Endpoint,
				AccessKeyID:     cnf.Images.AccessKeyID,
				SecretAccessKey: cnf.Images.SecretAccessKey,
				PublicURL:       cnf.Images.PublicURL,
				HTTPClient:      &http.Client{Timeout: time.Minute},
			})
			cobra.CheckErr(err)
			images = imageStore
		} else {
			log.Warn("images bucket is not configured, photo uploads are disabled")
		}

		// Initialize usecases
		updatePricesUC := newUpdatePricesUseCase(pricesRepository)
		jewelryUC := usecases.NewJewelryUseCase(logger, jewelryRepository, images)

		g, ctx := errgroup.WithContext(ctx)

		// Initialize telegram bot, it is optional
		if cnf.Telegram.Token != "" {
			bundle, err := locales.GetBundle(".")
			cobra.CheckErr(err)

			telegramInteractor := telegram.NewInteraction(logger, cnf.Telegram.Token, &http.Client{Timeout: time.Minute}, bundle, pricesRepository, telegram.Settings{
				AdminChatID:    cnf.Telegram.AdminChatID,
				Language:       cnf.Telegram.Language,
				CurrencySymbol: cnf.Prices.CurrencySymbol,
				Location:       cnf.Prices.Location(),
			})
			updatePricesUC.WithNotifier(telegramInteractor)

			g.Go(func() error {
				log.Info("starting telegram bot")
				telegramInteractor.Start(ctx)
				return nil
			})
		}

		// Initialize scheduler
		sched := scheduler.New(ctx, logger, cnf.Prices.Location())
		sched.Add("refresh_prices", cnf.Prices.Schedule, updatePricesUC.Run)
		g.Go(sched.Start)

		// Initialize HTTP server
		authorizer, err := web.NewAuthorizer(cnf.Auth)
		cobra.CheckErr(err)
		if cnf.Auth.SessionSecret == "" {
			log.Warn("session secret is not configured, sessions end on restart")
		}

		server := web.New(logger, cnf.HTTP, web.Dependencies{
			Authorizer:     authorizer,
			Prices:         pricesRepository,
			Refresher:      updatePricesUC,
			Jewelry:        jewelryUC,
			CurrencySymbol: cnf.Prices.CurrencySymbol,
			Location:       cnf.Prices.Location(),
		})

		g.Go(func() error {
			if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		})

		if err := g.Wait(); err != nil {
			log.Error("stopped with error", "error", err)
		}
	},
}
