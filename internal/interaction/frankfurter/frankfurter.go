package frankfurter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/araddon/dateparse"

	"joarchive/internal/model"
	"joarchive/internal/pricing"
)

const DefaultBaseURL = "https://api.frankfurter.app"

type Interaction struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
}

// NewInteraction creates a new instance of Interaction with the Frankfurter exchange rate API.
func NewInteraction(logger *slog.Logger, client *http.Client, baseURL string) *Interaction {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Interaction{
		logger:  logger.With("component", "frankfurter"),
		client:  client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// GetUSDRate returns how many units of the given currency one US dollar buys.
func (that *Interaction) GetUSDRate(ctx context.Context, currency string) (*Rate, error) {
	log := that.logger.With("method", "GetUSDRate", "currency", currency)

	target := that.baseURL + "/latest?" + url.Values{"from": {"USD"}, "to": {currency}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := that.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: do request: %w", model.ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %w", model.ErrUpstreamFetch, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: bad status code: %d", model.ErrUpstreamFetch, resp.StatusCode)
	}

	rate, err := ParseLatest(body, currency)
	if err != nil {
		return nil, err
	}

	log.Debug("fetched exchange rate", "rate", rate.Value, "date", rate.Date)
	return rate, nil
}

// ParseLatest extracts the rate for currency from a /latest payload.
func ParseLatest(body []byte, currency string) (*Rate, error) {
	var payload latestResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: decode exchange rate: %w", model.ErrMalformedPayload, err)
	}

	value, ok := payload.Rates[currency].(float64)
	if !ok || !pricing.IsValidPrice(value) {
		return nil, fmt.Errorf("%w: invalid USD->%s rate: %s", model.ErrMalformedPayload, currency, string(body))
	}

	rate := &Rate{Base: payload.Base, Quote: currency, Value: value}
	if payload.Date != "" {
		if date, err := dateparse.ParseAny(payload.Date); err == nil {
			rate.Date = date
		}
	}

	return rate, nil
}
