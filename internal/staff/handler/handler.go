package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"refurb/internal/staff/models"
	"refurb/internal/staff/service"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/httputil"
	"refurb/pkg/requestcontext"
)

// Service is the staff registry surface the admin API drives.
type Service interface {
	Create(ctx context.Context, in service.CreateInput) (models.Account, error)
	Update(ctx context.Context, staffID id.StaffID, patch service.Patch) (models.Account, error)
	SetStatus(ctx context.Context, staffID id.StaffID, status models.Status) (models.Account, error)
	ToggleStatus(ctx context.Context, staffID id.StaffID) (models.Account, error)
	SetPermissions(ctx context.Context, staffID id.StaffID, keys []string) (models.Account, error)
	Remove(ctx context.Context, staffID id.StaffID) error
	Get(ctx context.Context, staffID id.StaffID) (models.Account, error)
	List(ctx context.Context, f models.Filter) ([]models.Account, error)
	Summarize(ctx context.Context) (service.Summary, error)
}

// Handler wires staff endpoints to the registry.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts staff endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/staff", h.HandleList)
	r.Post("/staff", h.HandleCreate)
	r.Get("/staff/permissions", h.HandlePermissions)
	r.Get("/staff/roles", h.HandleRoles)
	r.Get("/staff/summary", h.HandleSummary)
	r.Get("/staff/{id}", h.HandleGet)
	r.Patch("/staff/{id}", h.HandleUpdate)
	r.Delete("/staff/{id}", h.HandleRemove)
	r.Put("/staff/{id}/status", h.HandleSetStatus)
	r.Post("/staff/{id}/toggle", h.HandleToggle)
	r.Put("/staff/{id}/permissions", h.HandleSetPermissions)
}

// HandleList handles GET /staff?search=&role=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := models.Filter{Search: q.Get("search"), Role: q.Get("role")}
	if role := strings.TrimSpace(filter.Role); role != "" && role != models.FilterAll && !models.Role(role).IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "role must be one of all, admin, staff, moderator"))
		return
	}
	accounts, err := h.service.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list staff failed", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]StaffResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toStaffResponse(a))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Staff: out, Total: len(out)})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	a, err := h.service.Get(r.Context(), staffID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStaffResponse(a))
}

// HandleCreate handles POST /staff.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[CreateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Create(ctx, service.CreateInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Role:            req.Role,
		Permissions:     req.Permissions,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.logFailure(ctx, "create staff failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toStaffResponse(a))
}

// HandleUpdate handles PATCH /staff/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.Update(ctx, staffID, service.Patch{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Role:            req.Role,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	})
	if err != nil {
		h.logFailure(ctx, "update staff failed", err, "staff_id", staffID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStaffResponse(a))
}

// HandleSetStatus handles PUT /staff/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.SetStatus(ctx, staffID, models.Status(req.Status))
	if err != nil {
		h.logFailure(ctx, "set staff status failed", err, "staff_id", staffID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStaffResponse(a))
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	a, err := h.service.ToggleStatus(ctx, staffID)
	if err != nil {
		h.logFailure(ctx, "toggle staff status failed", err, "staff_id", staffID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStaffResponse(a))
}

// HandleSetPermissions handles PUT /staff/{id}/permissions.
func (h *Handler) HandleSetPermissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[PermissionsRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	a, err := h.service.SetPermissions(ctx, staffID, req.Permissions)
	if err != nil {
		h.logFailure(ctx, "set permissions failed", err, "staff_id", staffID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toStaffResponse(a))
}

// HandleRemove handles DELETE /staff/{id}.
func (h *Handler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	staffID, ok := h.staffID(w, r)
	if !ok {
		return
	}
	if err := h.service.Remove(ctx, staffID); err != nil {
		h.logFailure(ctx, "remove staff failed", err, "staff_id", staffID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandlePermissions(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, models.PermissionCatalog)
}

func (h *Handler) HandleRoles(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, roleResponses())
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summarize(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(sum))
}

func (h *Handler) staffID(w http.ResponseWriter, r *http.Request) (id.StaffID, bool) {
	staffID, err := id.ParseStaffID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.StaffID{}, false
	}
	return staffID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}
