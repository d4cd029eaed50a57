package goldapi_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"

	"joarchive/internal/interaction/goldapi"
	"joarchive/internal/model"
)

func Test_GetSpotPrice(t *testing.T) {
	r, err := recorder.New(
		filepath.Join("testdata", strings.ReplaceAll(t.Name(), "/", "_")),
		recorder.WithMode(recorder.ModeReplayOnly),
		recorder.WithMatcher(func(r *http.Request, i cassette.Request) bool {
			return r.Method == i.Method && r.URL.String() == i.URL
		}),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		// Make sure recorder is stopped once done with it.
		require.NoError(t, r.Stop())
	})

	interaction := goldapi.NewInteraction(slog.Default(), r.GetDefaultClient(), "", "goldapi-key")

	gold, err := interaction.GetSpotPrice(context.Background(), goldapi.Gold)
	require.NoError(t, err)
	require.Equal(t, &goldapi.SpotPrice{Symbol: goldapi.Gold, USDPerOz: 4002.15, Timestamp: time.Unix(1762502400, 0).UTC()}, gold)

	silver, err := interaction.GetSpotPrice(context.Background(), goldapi.Silver)
	require.NoError(t, err)
	require.Equal(t, &goldapi.SpotPrice{Symbol: goldapi.Silver, USDPerOz: 48.37, Timestamp: time.Unix(1762502400, 0).UTC()}, silver)
}

func Test_GetSpotPrice_Request(t *testing.T) {
	t.Run("should send the access token and request the symbol in USD", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			require.Equal(t, "/api/XAG/USD", r.URL.Path)
			require.Equal(t, "secret-token", r.Header.Get("x-access-token"))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"metal":"XAG","currency":"USD","price":31.5}`))
		}))
		t.Cleanup(ts.Close)

		interaction := goldapi.NewInteraction(slog.Default(), ts.Client(), ts.URL, "secret-token")

		price, err := interaction.GetSpotPrice(context.Background(), goldapi.Silver)
		require.NoError(t, err)
		require.Equal(t, 31.5, price.USDPerOz)
		require.True(t, price.Timestamp.IsZero())
	})
}

func Test_GetSpotPrice_Failures(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		expected error
	}{
		{name: "forbidden", status: http.StatusForbidden, body: `{"error":"Invalid API Key"}`, expected: model.ErrUpstreamFetch},
		{name: "server error", status: http.StatusInternalServerError, body: ``, expected: model.ErrUpstreamFetch},
		{name: "missing price", status: http.StatusOK, body: `{"metal":"XAU","currency":"USD"}`, expected: model.ErrMalformedPayload},
		{name: "string price", status: http.StatusOK, body: `{"metal":"XAU","price":"2300.1"}`, expected: model.ErrMalformedPayload},
		{name: "null price", status: http.StatusOK, body: `{"metal":"XAU","price":null}`, expected: model.ErrMalformedPayload},
		{name: "negative price", status: http.StatusOK, body: `{"metal":"XAU","price":-1}`, expected: model.ErrMalformedPayload},
	}

	for _, tc := range cases {
		t.Run("should fail on "+tc.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(ts.Close)

			interaction := goldapi.NewInteraction(slog.Default(), ts.Client(), ts.URL, "key")

			price, err := interaction.GetSpotPrice(context.Background(), goldapi.Gold)
			require.ErrorIs(t, err, tc.expected)
			require.Nil(t, price)
		})
	}

	t.Run("should fail when the server is unreachable", func(t *testing.T) {
		ts := httptest.NewServer(http.NotFoundHandler())
		url := ts.URL
		ts.Close()

		interaction := goldapi.NewInteraction(slog.Default(), &http.Client{Timeout: time.Second}, url, "key")

		_, err := interaction.GetSpotPrice(context.Background(), goldapi.Gold)
		require.ErrorIs(t, err, model.ErrUpstreamFetch)
	})
}
