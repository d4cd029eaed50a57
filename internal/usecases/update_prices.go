package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"joarchive/internal/interaction/frankfurter"
	"joarchive/internal/interaction/goldapi"
	"joarchive/internal/model"
	"joarchive/internal/pricing"
)

type PricesRepository interface {
	Upsert(ctx context.Context, prices *model.MetalPrices) error
}

type SpotPriceInteraction interface {
	GetSpotPrice(ctx context.Context, symbol goldapi.Symbol) (*goldapi.SpotPrice, error)
}

type RateInteraction interface {
	GetUSDRate(ctx context.Context, currency string) (*frankfurter.Rate, error)
}

// Notifier reports refresh outcomes to an operator. Delivery failures never affect the refresh.
type Notifier interface {
	NotifyPricesUpdated(ctx context.Context, prices *model.MetalPrices) error
	NotifyPricesFailed(ctx context.Context, cause error) error
}

// RefreshStats describes the refresh history of the running process.
type RefreshStats struct {
	LastSuccess time.Time `json:"last_success"`
	LastFailure time.Time `json:"last_failure"`
	Failures    int64     `json:"failures"`
}

type UpdatePricesUseCase struct {
	logger      *slog.Logger
	repository  PricesRepository
	spotPrices  SpotPriceInteraction
	rates       RateInteraction
	notifier    Notifier
	currency    string
	now         func() time.Time
	lastSuccess *atomic.Time
	lastFailure *atomic.Time
	failures    *atomic.Int64
}

func NewUpdatePricesUseCase(logger *slog.Logger, repository PricesRepository, spotPrices SpotPriceInteraction, rates RateInteraction, currency string) *UpdatePricesUseCase {
	return &UpdatePricesUseCase{
		logger:      logger.With("component", "update_prices"),
		repository:  repository,
		spotPrices:  spotPrices,
		rates:       rates,
		currency:    currency,
		now:         time.Now,
		lastSuccess: atomic.NewTime(time.Time{}),
		lastFailure: atomic.NewTime(time.Time{}),
		failures:    atomic.NewInt64(0),
	}
}

// WithNotifier sets the notifier used to report refresh outcomes.
func (that *UpdatePricesUseCase) WithNotifier(notifier Notifier) *UpdatePricesUseCase {
	that.notifier = notifier
	return that
}

// WithClock replaces time.Now, used for updated_at.
func (that *UpdatePricesUseCase) WithClock(now func() time.Time) *UpdatePricesUseCase {
	that.now = now
	return that
}

// RefreshPrices fetches the exchange rate and both spot prices, converts them into local
// per-gram prices and replaces the singleton price row. Any failure leaves the stored row as it
// was. There is no retry; the next scheduled run is the retry.
func (that *UpdatePricesUseCase) RefreshPrices(ctx context.Context) (*model.MetalPrices, error) {
	log := that.logger.With("method", "RefreshPrices")

	prices, err := that.refresh(ctx)
	if err != nil {
		that.failures.Inc()
		that.lastFailure.Store(that.now())
		log.Error("failed to refresh metal prices", "error", err)
		that.notify(func(n Notifier) error { return n.NotifyPricesFailed(ctx, err) })
		return nil, err
	}

	that.lastSuccess.Store(prices.UpdatedAt)
	log.Info("metal prices refreshed", "gold_14k", prices.Gold14K, "gold_18k", prices.Gold18K, "silver", prices.Silver, "fx_rate", prices.FxRate)
	that.notify(func(n Notifier) error { return n.NotifyPricesUpdated(ctx, prices) })

	return prices, nil
}

// Run is the scheduler entry point.
func (that *UpdatePricesUseCase) Run(ctx context.Context) {
	_, _ = that.RefreshPrices(ctx)
}

func (that *UpdatePricesUseCase) Stats() RefreshStats {
	return RefreshStats{
		LastSuccess: that.lastSuccess.Load(),
		LastFailure: that.lastFailure.Load(),
		Failures:    that.failures.Load(),
	}
}

func (that *UpdatePricesUseCase) refresh(ctx context.Context) (*model.MetalPrices, error) {
	log := that.logger.With("method", "refresh")

	rate, err := that.rates.GetUSDRate(ctx, that.currency)
	if err != nil {
		return nil, fmt.Errorf("get USD->%s rate: %w", that.currency, err)
	}
	log.Debug("exchange rate", "rate", rate.Value, "rate_date", rate.Date)

	var gold, silver *goldapi.SpotPrice

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if gold, err = that.spotPrices.GetSpotPrice(groupCtx, goldapi.Gold); err != nil {
			return fmt.Errorf("get gold spot price: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		if silver, err = that.spotPrices.GetSpotPrice(groupCtx, goldapi.Silver); err != nil {
			return fmt.Errorf("get silver spot price: %w", err)
		}
		return nil
	})

	if err = group.Wait(); err != nil {
		return nil, err
	}

	perGram := pricing.Compute(pricing.Quote{
		GoldUSDPerOz:   gold.USDPerOz,
		SilverUSDPerOz: silver.USDPerOz,
		FxRate:         rate.Value,
	})

	prices := &model.MetalPrices{
		ID:        model.MetalPricesID,
		Gold14K:   perGram.Gold14K,
		Gold18K:   perGram.Gold18K,
		Silver:    perGram.Silver,
		FxRate:    rate.Value,
		UpdatedAt: that.now().UTC(),
	}

	if err = that.repository.Upsert(ctx, prices); err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrPersistence, err)
	}

	return prices, nil
}

func (that *UpdatePricesUseCase) notify(send func(Notifier) error) {
	if that.notifier == nil {
		return
	}

	if err := send(that.notifier); err != nil {
		that.logger.Warn("failed to send refresh notification", "error", err)
	}
}
