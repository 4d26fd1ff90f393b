package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// ForecastHandler handles demand forecast endpoints
type ForecastHandler struct {
	svc    *service.ForecastService
	logger *logger.Logger
}

// NewForecastHandler creates a new forecast handler
func NewForecastHandler(svc *service.ForecastService, log *logger.Logger) *ForecastHandler {
	return &ForecastHandler{
		svc:    svc,
		logger: log,
	}
}

// defaultHorizonWeeks is used when the horizon query parameter is absent.
const defaultHorizonWeeks = 4

// Get projects demand for one medicine
func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")
	horizon := parseHorizon(r)

	result, err := h.svc.Forecast(r.Context(), medicineID, horizon)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, result)
}

// List projects demand for every medicine
func (h *ForecastHandler) List(w http.ResponseWriter, r *http.Request) {
	horizon := parseHorizon(r)

	results, err := h.svc.ForecastAll(r.Context(), horizon)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, results)
}

// parseHorizon reads horizon_weeks, leaving validation to the service so an
// out-of-range value yields a validation error rather than a silent default.
func parseHorizon(r *http.Request) int {
	raw := r.URL.Query().Get("horizon_weeks")
	if raw == "" {
		return defaultHorizonWeeks
	}
	horizon, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return horizon
}
