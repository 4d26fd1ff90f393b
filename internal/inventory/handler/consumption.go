package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/errors"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// ConsumptionHandler handles dispense recording endpoints
type ConsumptionHandler struct {
	svc    *service.InventoryService
	logger *logger.Logger
}

// NewConsumptionHandler creates a new consumption handler
func NewConsumptionHandler(svc *service.InventoryService, log *logger.Logger) *ConsumptionHandler {
	return &ConsumptionHandler{
		svc:    svc,
		logger: log,
	}
}

// RecordConsumptionRequest is the payload for recording a dispense
type RecordConsumptionRequest struct {
	ConsumptionDate time.Time `json:"consumption_date" validate:"required"`
	Quantity        int       `json:"quantity" validate:"gt=0"`
	Notes           *string   `json:"notes"`
}

// Record appends a dispense record and draws down batch stock
func (h *ConsumptionHandler) Record(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")

	var req RecordConsumptionRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	record, err := h.svc.RecordConsumption(r.Context(), medicineID, req.ConsumptionDate, req.Quantity, req.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, record)
}

// List lists a medicine's dispense history. The since parameter defaults to
// the last 12 weeks.
func (h *ConsumptionHandler) List(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")

	since := time.Now().UTC().AddDate(0, 0, -12*7)
	if raw := r.URL.Query().Get("since"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httputil.Error(w, errors.BadRequest("since must be a date in YYYY-MM-DD format"))
			return
		}
		since = parsed
	}

	records, err := h.svc.ListConsumption(r.Context(), medicineID, since)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, records)
}
