package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"refurb/internal/dashboard"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/httputil"
	"refurb/pkg/requestcontext"
)

type Service interface {
	Summarize(ctx context.Context) (dashboard.Summary, error)
}

// AuditReader reads the recorded audit trail.
type AuditReader interface {
	List(ctx context.Context, subjectType audit.SubjectType, subjectID string) ([]audit.Event, error)
	Recent(ctx context.Context, limit int) ([]audit.Event, error)
}

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 200
)

type Handler struct {
	service Service
	audit   AuditReader
	logger  *slog.Logger
}

func New(service Service, auditReader AuditReader, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		audit:   auditReader,
		logger:  logger,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/dashboard", h.HandleSummary)
	r.Get("/audit", h.HandleRecentActivity)
	r.Get("/audit/{subject}/{id}", h.HandleAuditTrail)
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summarize(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, sum)
}

type AuditTrailResponse struct {
	Events []audit.Event `json:"events"`
	Total  int           `json:"total"`
}

// HandleAuditTrail handles GET /audit/{subject}/{id} for products, payments,
// staff and customers.
func (h *Handler) HandleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	subject := audit.SubjectType(chi.URLParam(r, "subject"))
	switch subject {
	case audit.SubjectProduct, audit.SubjectPayment, audit.SubjectStaff, audit.SubjectCustomer:
	default:
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "subject must be one of product, payment, staff, customer"))
		return
	}
	subjectID := chi.URLParam(r, "id")
	if _, err := uuid.Parse(subjectID); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid "+string(subject)+" id"))
		return
	}

	events, err := h.audit.List(ctx, subject, subjectID)
	h.writeEvents(ctx, w, events, err)
}

// HandleRecentActivity handles GET /audit?limit=n, newest first.
func (h *Handler) HandleRecentActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	limit := defaultActivityLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxActivityLimit {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and 200"))
			return
		}
		limit = n
	}
	events, err := h.audit.Recent(ctx, limit)
	h.writeEvents(ctx, w, events, err)
}

func (h *Handler) writeEvents(ctx context.Context, w http.ResponseWriter, events []audit.Event, err error) {
	if err != nil {
		h.logger.ErrorContext(ctx, "read audit trail failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail"))
		return
	}
	if events == nil {
		events = []audit.Event{}
	}
	httputil.WriteJSON(w, http.StatusOK, AuditTrailResponse{Events: events, Total: len(events)})
}
