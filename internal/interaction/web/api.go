package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"joarchive/internal/calculator"
	"joarchive/internal/model"
	"joarchive/internal/usecases"
)

type pricesPayload struct {
	Gold14K float64 `json:"gold_14k"`
	Gold18K float64 `json:"gold_18k"`
	Silver  float64 `json:"silver"`
}

type refreshResponse struct {
	Success bool           `json:"success"`
	Prices  *pricesPayload `json:"prices,omitempty"`
	Error   string         `json:"error,omitempty"`
}

type currentPricesResponse struct {
	pricesPayload
	FxRate    float64   `json:"fx_rate"`
	UpdatedAt time.Time `json:"updated_at"`
}

type calculatorRequest struct {
	Weights map[string][]string `json:"weights"`
}

type calculatorLine struct {
	calculator.Line
	SubtotalDisplay string `json:"subtotal_display"`
}

type calculatorResponse struct {
	Prices       calculator.Prices                        `json:"prices"`
	Breakdown    map[calculator.Category][]calculatorLine `json:"breakdown"`
	Total        float64                                  `json:"total"`
	TotalDisplay string                                   `json:"total_display"`
	UpdatedAt    *time.Time                               `json:"updated_at"`
}

type healthResponse struct {
	Status  string                `json:"status"`
	Refresh usecases.RefreshStats `json:"refresh"`
}

type accessRequest struct {
	Code string `json:"code"`
}

func newPricesPayload(prices *model.MetalPrices) *pricesPayload {
	return &pricesPayload{Gold14K: prices.Gold14K, Gold18K: prices.Gold18K, Silver: prices.Silver}
}

// handleRefresh runs the price refresh job. Unauthorized requests are rejected before anything
// is fetched or written.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("method", "handleRefresh")

	if !s.deps.Authorizer.AuthorizeRefresh(r) {
		log.Warn("unauthorized refresh attempt", "remote_addr", r.RemoteAddr)
		s.writeJSON(w, http.StatusUnauthorized, refreshResponse{Success: false, Error: "unauthorized"})
		return
	}

	prices, err := s.deps.Refresher.RefreshPrices(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusInternalServerError, refreshResponse{Success: false, Error: err.Error()})
		return
	}

	s.writeJSON(w, http.StatusOK, refreshResponse{Success: true, Prices: newPricesPayload(prices)})
}

func (s *Server) handleGetPrices(w http.ResponseWriter, r *http.Request) {
	prices, err := s.deps.Prices.GetCurrent(r.Context())
	if errors.Is(err, model.ErrPricesNotFound) {
		s.writeJSON(w, http.StatusNotFound, refreshResponse{Success: false, Error: err.Error()})
		return
	}
	if err != nil {
		s.logger.Error("failed to get prices", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, refreshResponse{Success: false, Error: "internal error"})
		return
	}

	s.writeJSON(w, http.StatusOK, currentPricesResponse{
		pricesPayload: *newPricesPayload(prices),
		FxRate:        prices.FxRate,
		UpdatedAt:     prices.UpdatedAt,
	})
}

// handleCalculator recomputes the breakdown from the submitted weights and freshly read prices.
// Before the first refresh every price is zero.
func (s *Server) handleCalculator(w http.ResponseWriter, r *http.Request) {
	var req calculatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, refreshResponse{Success: false, Error: "invalid request body"})
		return
	}

	prices, updatedAt, err := s.currentPrices(r)
	if err != nil {
		s.logger.Error("failed to get prices", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, refreshResponse{Success: false, Error: "internal error"})
		return
	}

	breakdown := calculator.FromInput(req.Weights).Breakdown(prices)
	total := calculator.ComputeTotal(breakdown)

	s.writeJSON(w, http.StatusOK, calculatorResponse{
		Prices:       prices,
		Breakdown:    s.displayBreakdown(breakdown),
		Total:        total,
		TotalDisplay: calculator.FormatMoney(s.deps.CurrencySymbol, total),
		UpdatedAt:    updatedAt,
	})
}

// displayBreakdown formats every subtotal the same way the detail page does.
func (s *Server) displayBreakdown(breakdown calculator.Breakdown) map[calculator.Category][]calculatorLine {
	out := make(map[calculator.Category][]calculatorLine, len(breakdown))
	for category, lines := range breakdown {
		display := make([]calculatorLine, len(lines))
		for i, line := range lines {
			display[i] = calculatorLine{Line: line, SubtotalDisplay: calculator.FormatMoney(s.deps.CurrencySymbol, line.Subtotal)}
		}
		out[category] = display
	}

	return out
}

func (s *Server) handleClassifications(w http.ResponseWriter, r *http.Request) {
	classifications, err := s.deps.Jewelry.Classifications(r.Context())
	if err != nil {
		s.logger.Error("failed to get classifications", "error", err)
		s.writeJSON(w, http.StatusInternalServerError, refreshResponse{Success: false, Error: "internal error"})
		return
	}

	s.writeJSON(w, http.StatusOK, classifications)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.deps.Refresher != nil {
		resp.Refresh = s.deps.Refresher.Stats()
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	var req accessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, refreshResponse{Success: false})
		return
	}

	if !s.deps.Authorizer.CheckAccessCode(req.Code) {
		s.logger.Warn("wrong access code", "remote_addr", r.RemoteAddr)
		s.writeJSON(w, http.StatusUnauthorized, refreshResponse{Success: false})
		return
	}

	s.deps.Authorizer.SetSessionCookie(w)
	s.writeJSON(w, http.StatusOK, refreshResponse{Success: true})
}

func (s *Server) handleLogout(w http.ResponseWriter, _ *http.Request) {
	s.deps.Authorizer.ClearSessionCookie(w)
	s.writeJSON(w, http.StatusOK, refreshResponse{Success: true})
}

// currentPrices reads the singleton row; a missing row yields zero prices and a nil timestamp.
func (s *Server) currentPrices(r *http.Request) (calculator.Prices, *time.Time, error) {
	prices, err := s.deps.Prices.GetCurrent(r.Context())
	if errors.Is(err, model.ErrPricesNotFound) {
		return calculator.PricesFrom(&model.MetalPrices{}), nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	return calculator.PricesFrom(prices), &prices.UpdatedAt, nil
}
