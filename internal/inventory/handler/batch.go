package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// BatchHandler handles batch stock endpoints
type BatchHandler struct {
	svc    *service.InventoryService
	logger *logger.Logger
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(svc *service.InventoryService, log *logger.Logger) *BatchHandler {
	return &BatchHandler{
		svc:    svc,
		logger: log,
	}
}

// BatchRequest is the payload for creating or updating a batch
type BatchRequest struct {
	BatchNumber string    `json:"batch_number" validate:"required"`
	Quantity    int       `json:"quantity" validate:"gte=0"`
	ExpiryDate  time.Time `json:"expiry_date" validate:"required"`
	Supplier    *string   `json:"supplier"`
	UnitPrice   *float64  `json:"unit_price"`
	Location    *string   `json:"location"`
}

// AdjustQuantityRequest is the payload for a stock correction
type AdjustQuantityRequest struct {
	Quantity int    `json:"quantity" validate:"gte=0"`
	Reason   string `json:"reason"`
}

// Create adds a batch to a medicine
func (h *BatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")

	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	b := &repository.Batch{
		MedicineID:  medicineID,
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		ExpiryDate:  req.ExpiryDate,
		Supplier:    req.Supplier,
		UnitPrice:   req.UnitPrice,
		Location:    req.Location,
	}
	if err := h.svc.CreateBatch(r.Context(), b); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, b)
}

// List lists a medicine's batches, soonest expiry first
func (h *BatchHandler) List(w http.ResponseWriter, r *http.Request) {
	medicineID := chi.URLParam(r, "medicineID")

	batches, err := h.svc.ListBatches(r.Context(), medicineID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, batches)
}

// Get gets a batch
func (h *BatchHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	b, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, b)
}

// Update updates all fields of a batch
func (h *BatchHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	existing, err := h.svc.GetBatch(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	var req BatchRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	b := &repository.Batch{
		ID:          id,
		MedicineID:  existing.MedicineID,
		BatchNumber: req.BatchNumber,
		Quantity:    req.Quantity,
		ExpiryDate:  req.ExpiryDate,
		Supplier:    req.Supplier,
		UnitPrice:   req.UnitPrice,
		Location:    req.Location,
	}
	if err := h.svc.UpdateBatch(r.Context(), b); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, b)
}

// AdjustQuantity sets a batch's on-hand quantity
func (h *BatchHandler) AdjustQuantity(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req AdjustQuantityRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.svc.AdjustBatchQuantity(r.Context(), id, req.Quantity, req.Reason); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Delete deletes a batch
func (h *BatchHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteBatch(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
