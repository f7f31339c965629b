// Package handlers provides HTTP handlers for VaR calculations.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aristath/varcalc/internal/modules/charts"
	"github.com/aristath/varcalc/internal/modules/risk"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// Handler handles VaR HTTP requests
type Handler struct {
	service  *risk.Service
	renderer *charts.Renderer
	log      zerolog.Logger
}

// NewHandler creates a new VaR handler
func NewHandler(service *risk.Service, renderer *charts.Renderer, log zerolog.Logger) *Handler {
	return &Handler{
		service:  service,
		renderer: renderer,
		log:      log.With().Str("handler", "risk").Logger(),
	}
}

// HandleCalculate handles POST /api/var
func (h *Handler) HandleCalculate(w http.ResponseWriter, r *http.Request) {
	params, err := h.decodeParameters(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.service.Calculate(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeData(w, http.StatusOK, newResultResponse(*result, true))
}

// HandleGetHistory handles GET /api/var/history
func (h *Handler) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	limit := risk.DefaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, fmt.Errorf("%w: limit must be an integer", risk.ErrInvalidInput))
			return
		}
		limit = n
	}

	results, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	runs := make([]resultResponse, 0, len(results))
	for _, result := range results {
		runs = append(runs, newResultResponse(result, false))
	}
	h.writeData(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// HandleGetDefaults handles GET /api/var/defaults
func (h *Handler) HandleGetDefaults(w http.ResponseWriter, r *http.Request) {
	d := h.service.Defaults()
	h.writeData(w, http.StatusOK, inputsResponse{
		Tickers:         d.Tickers,
		StartDate:       d.StartDate.Format(risk.DateLayout),
		EndDate:         d.EndDate.Format(risk.DateLayout),
		RollingWindow:   d.RollingWindow,
		ConfidenceLevel: d.ConfidenceLevel,
		PortfolioValue:  d.PortfolioValue,
	})
}

// HandleChart handles POST /api/var/chart/{method}
func (h *Handler) HandleChart(w http.ResponseWriter, r *http.Request) {
	method, err := risk.ParseMethod(chi.URLParam(r, "method"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	params, err := h.decodeParameters(r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	// Charts redraw a query; only POST /api/var records history.
	result, err := h.service.Evaluate(r.Context(), params)
	if err != nil {
		h.writeError(w, err)
		return
	}

	img, err := h.renderer.RenderDistribution(*result, method)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(img); err != nil {
		h.log.Error().Err(err).Msg("Failed to write chart response")
	}
}

func (h *Handler) decodeParameters(r *http.Request) (risk.Parameters, error) {
	var req CalculateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return risk.Parameters{}, fmt.Errorf("%w: invalid request body: %v", risk.ErrInvalidInput, err)
	}
	return req.toParameters()
}

// statusFor maps an error kind onto an HTTP status
func statusFor(err error) int {
	switch risk.KindOf(err) {
	case risk.KindInvalidInput:
		return http.StatusBadRequest
	case risk.KindInsufficientData:
		return http.StatusUnprocessableEntity
	case risk.KindDataUnavailable:
		return http.StatusNotFound
	case risk.KindNotReady:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("VaR request failed")
		message = "internal error"
	}

	h.writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"kind":    risk.KindOf(err),
			"message": message,
		},
	})
}

func (h *Handler) writeData(w http.ResponseWriter, status int, data interface{}) {
	h.writeJSON(w, status, map[string]interface{}{
		"data": data,
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
