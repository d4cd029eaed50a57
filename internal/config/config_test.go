package config_test

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"joarchive/internal/config"
)

func Test_MustLoad(t *testing.T) {
	t.Run("should read the file and fill in defaults", func(t *testing.T) {
		cnf := config.MustLoad("testdata/config.yml")

		require.Equal(t, "postgres", cnf.Database.Host)
		require.Equal(t, 5432, cnf.Database.Port)
		require.Equal(t, "host=postgres port=5432 user=postgres password=postgres dbname=archive sslmode=disable", cnf.Database.ConnString())

		require.Equal(t, ":8080", cnf.HTTP.Addr)
		require.Equal(t, "from-file", cnf.Auth.AccessCode)
		require.Equal(t, 168*time.Hour, cnf.Auth.SessionTTL)

		require.Equal(t, "30 7 * * *", cnf.Prices.Schedule)
		require.Equal(t, 5*time.Second, cnf.Prices.RequestTimeout)
		require.Equal(t, "PHP", cnf.Prices.Currency)
		require.Equal(t, "₱", cnf.Prices.CurrencySymbol)
		require.Equal(t, "https://www.goldapi.io", cnf.Prices.GoldAPIURL)

		require.Equal(t, int64(42), cnf.Telegram.AdminChatID)
		require.Equal(t, slog.LevelDebug, cnf.Logger.ParsedSlogLevel)
		require.Equal(t, slog.LevelError, cnf.Logger.ParsedGORMLevel)
	})

	t.Run("should let the environment override the file", func(t *testing.T) {
		t.Setenv("DB_HOST", "db.internal")
		t.Setenv("CRON_SECRET", "env-secret")
		t.Setenv("PRICE_SCHEDULE", "0 9 * * 1-5")

		cnf := config.MustLoad("testdata/config.yml")

		require.Equal(t, "db.internal", cnf.Database.Host)
		require.Equal(t, "env-secret", cnf.Auth.CronSecret)
		require.Equal(t, "0 9 * * 1-5", cnf.Prices.Schedule)
	})

	t.Run("should read only the environment without a file", func(t *testing.T) {
		t.Setenv("ADMIN_ACCESS_CODE", "env-code")

		cnf := config.MustLoad("testdata/missing.yml")

		require.Equal(t, "env-code", cnf.Auth.AccessCode)
		require.Equal(t, "localhost", cnf.Database.Host)
		require.Equal(t, "0 8 * * *", cnf.Prices.Schedule)
		require.Equal(t, "Asia/Manila", cnf.Prices.Timezone)
		require.Equal(t, slog.LevelInfo, cnf.Logger.ParsedSlogLevel)
	})
}

func Test_PricesLocation(t *testing.T) {
	t.Run("should fall back to UTC+8 for an unknown zone", func(t *testing.T) {
		prices := config.Prices{Timezone: "Nowhere/Atlantis"}

		_, offset := time.Date(2025, 11, 7, 0, 0, 0, 0, prices.Location()).Zone()
		require.Equal(t, 8*3600, offset)
	})

	t.Run("should load a known zone", func(t *testing.T) {
		prices := config.Prices{Timezone: "UTC"}
		require.Equal(t, time.UTC, prices.Location())
	})
}
