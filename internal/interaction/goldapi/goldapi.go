package goldapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"joarchive/internal/model"
	"joarchive/internal/pricing"
)

const DefaultBaseURL = "https://www.goldapi.io"

type Interaction struct {
	logger *slog.Logger
	client *resty.Client
}

// NewInteraction creates a new instance of Interaction with GoldAPI. The timeout of the given
// http.Client applies to every request.
func NewInteraction(logger *slog.Logger, client *http.Client, baseURL string, apiKey string) *Interaction {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	restyClient := resty.NewWithClient(client).
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("x-access-token", apiKey).
		SetHeader("Accept", "application/json")

	return &Interaction{
		logger: logger.With("component", "goldapi"),
		client: restyClient,
	}
}

// GetSpotPrice returns the current USD price per troy ounce of the given metal.
func (that *Interaction) GetSpotPrice(ctx context.Context, symbol Symbol) (*SpotPrice, error) {
	log := that.logger.With("method", "GetSpotPrice", "symbol", symbol)

	resp, err := that.client.R().
		SetContext(ctx).
		SetPathParam("symbol", string(symbol)).
		Get("/api/{symbol}/USD")
	if err != nil {
		return nil, fmt.Errorf("%w: GoldAPI request for %s: %w", model.ErrUpstreamFetch, symbol, err)
	}

	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: GoldAPI request for %s failed with status %d: %s", model.ErrUpstreamFetch, symbol, resp.StatusCode(), resp.String())
	}

	price, err := ParseSpotPrice(resp.Body(), symbol)
	if err != nil {
		return nil, err
	}

	log.Debug("fetched spot price", "usd_per_oz", price.USDPerOz)
	return price, nil
}

// ParseSpotPrice extracts the price field of a GoldAPI payload.
func ParseSpotPrice(body []byte, symbol Symbol) (*SpotPrice, error) {
	var payload spotResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode %s price: %w", model.ErrMalformedPayload, symbol, err)
	}

	if payload.Price == nil || !pricing.IsValidPrice(*payload.Price) {
		return nil, fmt.Errorf("%w: invalid %s price data: %s", model.ErrMalformedPayload, symbol, string(body))
	}

	price := &SpotPrice{Symbol: symbol, USDPerOz: *payload.Price}
	if payload.Timestamp > 0 {
		price.Timestamp = time.Unix(payload.Timestamp, 0).UTC()
	}

	return price, nil
}
