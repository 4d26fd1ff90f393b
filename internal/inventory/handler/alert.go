package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// AlertHandler handles alert lifecycle endpoints
type AlertHandler struct {
	engine *service.AlertEngine
	logger *logger.Logger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(engine *service.AlertEngine, log *logger.Logger) *AlertHandler {
	return &AlertHandler{
		engine: engine,
		logger: log,
	}
}

// List lists alerts. Supports unresolved, unread, type, and medicine_id
// filters.
func (h *AlertHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := repository.AlertFilter{
		MedicineID: r.URL.Query().Get("medicine_id"),
		AlertType:  r.URL.Query().Get("type"),
		Unresolved: r.URL.Query().Get("unresolved") == "true",
		UnreadOnly: r.URL.Query().Get("unread") == "true",
	}

	alerts, err := h.engine.ListAlerts(r.Context(), filter)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alerts)
}

// Get gets a single alert
func (h *AlertHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.engine.GetAlert(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alert)
}

// UnreadCount returns the unread open alert count for the dashboard badge
func (h *AlertHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.engine.CountUnread(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]int64{"unread": count})
}

// MarkRead marks an alert as read
func (h *AlertHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.engine.MarkRead(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Resolve marks an alert as resolved
func (h *AlertHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	alert, err := h.engine.ResolveAlert(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, alert)
}

// Dismiss permanently deletes an alert
func (h *AlertHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.engine.DismissAlert(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Evaluate triggers an immediate evaluation pass for one medicine
func (h *AlertHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")

	if err := h.engine.EvaluateMedicine(r.Context(), medicineID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
