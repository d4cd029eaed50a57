package suite

import (
	"net/http"
	"net/http/httptest"
	"sync"
)

// Quote paths served by Market.
const (
	GoldQuotePath   = "/api/XAU/USD"
	SilverQuotePath = "/api/XAG/USD"
	RatePath        = "/latest"
)

// Market serves GoldAPI and Frankfurter responses from one httptest server.
// A path without a body answers 503.
type Market struct {
	*httptest.Server

	mu       sync.Mutex
	bodies   map[string]string
	requests []string
}

// WithMarket starts a Market, closed when the test ends.
func WithMarket() Option {
	return func(s *Suite) {
		m := &Market{bodies: map[string]string{}}
		m.Server = httptest.NewServer(http.HandlerFunc(m.serve))
		s.T.Cleanup(m.Close)

		s.Market = m
	}
}

// Quote sets the response body of path; an empty body makes the path fail.
func (m *Market) Quote(path string, body string) *Market {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.bodies[path] = body
	return m
}

// Requests returns the requested paths in order.
func (m *Market) Requests() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]string(nil), m.requests...)
}

func (m *Market) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests = append(m.requests, r.URL.Path)
	body := m.bodies[r.URL.Path]
	m.mu.Unlock()

	if body == "" {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}
