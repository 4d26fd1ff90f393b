package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/repository"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// MedicineHandler handles medicine catalog endpoints
type MedicineHandler struct {
	svc    *service.InventoryService
	logger *logger.Logger
}

// NewMedicineHandler creates a new medicine handler
func NewMedicineHandler(svc *service.InventoryService, log *logger.Logger) *MedicineHandler {
	return &MedicineHandler{
		svc:    svc,
		logger: log,
	}
}

// CreateMedicineRequest is the payload for creating a medicine
type CreateMedicineRequest struct {
	Name         string  `json:"name" validate:"required"`
	GenericName  *string `json:"generic_name"`
	Category     string  `json:"category" validate:"required"`
	Manufacturer *string `json:"manufacturer"`
	ReorderLevel int     `json:"reorder_level" validate:"gte=0"`
	SafetyStock  int     `json:"safety_stock" validate:"gte=0"`
	Unit         string  `json:"unit" validate:"required"`
}

// UpdateThresholdsRequest is the payload for the stock-fields-only update
type UpdateThresholdsRequest struct {
	ReorderLevel int `json:"reorder_level" validate:"gte=0"`
	SafetyStock  int `json:"safety_stock" validate:"gte=0"`
}

// Create creates a medicine
func (h *MedicineHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateMedicineRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	m := &repository.Medicine{
		Name:         req.Name,
		GenericName:  req.GenericName,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		ReorderLevel: req.ReorderLevel,
		SafetyStock:  req.SafetyStock,
		Unit:         req.Unit,
	}
	if err := h.svc.CreateMedicine(r.Context(), m); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, m)
}

// Get returns a medicine with its stock picture, batches, and open alerts
func (h *MedicineHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	detail, err := h.svc.GetMedicine(r.Context(), id)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, detail)
}

// List lists medicines with optional category and search filters
func (h *MedicineHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}

	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	category := r.URL.Query().Get("category")
	search := r.URL.Query().Get("search")

	medicines, total, err := h.svc.ListMedicines(r.Context(), page, perPage, category, search)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	totalPages := int(total) / perPage
	if int(total)%perPage > 0 {
		totalPages++
	}

	httputil.JSONWithMeta(w, http.StatusOK, medicines, &httputil.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	})
}

// Update updates all catalog fields of a medicine
func (h *MedicineHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req CreateMedicineRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	m := &repository.Medicine{
		ID:           id,
		Name:         req.Name,
		GenericName:  req.GenericName,
		Category:     req.Category,
		Manufacturer: req.Manufacturer,
		ReorderLevel: req.ReorderLevel,
		SafetyStock:  req.SafetyStock,
		Unit:         req.Unit,
	}
	if err := h.svc.UpdateMedicine(r.Context(), m); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, m)
}

// UpdateThresholds updates only the reorder level and safety stock
func (h *MedicineHandler) UpdateThresholds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateThresholdsRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.svc.UpdateStockThresholds(r.Context(), id, req.ReorderLevel, req.SafetyStock); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// Delete deletes a medicine
func (h *MedicineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.svc.DeleteMedicine(r.Context(), id); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
