package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pharmstock/pharmstock-backend/internal/access"
	"github.com/pharmstock/pharmstock-backend/internal/inventory/service"
	"github.com/pharmstock/pharmstock-backend/pkg/httputil"
	"github.com/pharmstock/pharmstock-backend/pkg/logger"
)

// UserHandler handles role management endpoints
type UserHandler struct {
	svc    *service.UserService
	logger *logger.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(svc *service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		svc:    svc,
		logger: log,
	}
}

// AssignRoleRequest is the payload for granting a role
type AssignRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=admin pharmacy_manager store_manager"`
}

// List lists every user with their assigned role
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.JSON(w, http.StatusOK, users)
}

// AssignRole grants a role to a user
func (h *UserHandler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req AssignRoleRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	if err := httputil.Validate(req); err != nil {
		httputil.Error(w, err)
		return
	}

	if err := h.svc.AssignRole(r.Context(), userID, access.Role(req.Role)); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}

// RemoveRole drops a user's role
func (h *UserHandler) RemoveRole(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if err := h.svc.RemoveRole(r.Context(), userID); err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.NoContent(w)
}
