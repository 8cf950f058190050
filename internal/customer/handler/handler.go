package handler

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"refurb/internal/customer/models"
	"refurb/internal/customer/service"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/httputil"
	"refurb/pkg/requestcontext"
)

// Service is the customer management surface the admin API drives.
type Service interface {
	List(ctx context.Context, f models.Filter) ([]models.Customer, error)
	Get(ctx context.Context, customerID id.CustomerID) (models.Customer, error)
	Summarize(ctx context.Context) (service.Summary, error)
	SetStatus(ctx context.Context, customerID id.CustomerID, status models.Status) (models.Customer, error)
	ToggleStatus(ctx context.Context, customerID id.CustomerID) (models.Customer, error)
	BulkSetStatus(ctx context.Context, customerIDs []id.CustomerID, status models.Status) (int, error)
	BulkSetSelected(ctx context.Context, status models.Status) (int, error)
	ToggleSelection(ctx context.Context, customerID id.CustomerID) (bool, error)
	SelectAll(ctx context.Context, f models.Filter) (int, error)
	ClearSelection()
	Selected() []id.CustomerID
	ReviewDocument(ctx context.Context, customerID id.CustomerID, review models.DocumentReview) (models.Customer, error)
	SetRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel) (models.Customer, error)
}

// Handler wires customer endpoints to the service.
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

// Register mounts customer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/customers", h.HandleList)
	r.Get("/customers/summary", h.HandleSummary)
	r.Get("/customers/selection", h.HandleSelection)
	r.Post("/customers/selection/all", h.HandleSelectAll)
	r.Delete("/customers/selection", h.HandleClearSelection)
	r.Post("/customers/bulk-status", h.HandleBulkStatus)
	r.Get("/customers/{id}", h.HandleGet)
	r.Put("/customers/{id}/status", h.HandleSetStatus)
	r.Post("/customers/{id}/toggle", h.HandleToggle)
	r.Post("/customers/{id}/select", h.HandleToggleSelection)
	r.Put("/customers/{id}/kyc/documents/{kind}", h.HandleReviewDocument)
	r.Put("/customers/{id}/kyc/risk", h.HandleSetRisk)
}

// filterFrom reads ?search=&status=&kyc= and rejects unknown values.
func filterFrom(q url.Values) (models.Filter, error) {
	f := models.Filter{Search: q.Get("search"), Status: q.Get("status"), KYC: q.Get("kyc")}
	if st := strings.TrimSpace(f.Status); st != "" && st != models.FilterAll && !models.Status(st).IsValid() {
		return models.Filter{}, dErrors.New(dErrors.CodeValidation, "status must be one of all, active, suspended, banned")
	}
	if k := strings.TrimSpace(f.KYC); k != "" && k != models.FilterAll && !models.KYCStatus(k).IsValid() {
		return models.Filter{}, dErrors.New(dErrors.CodeValidation, "kyc must be one of all, pending, verified, rejected")
	}
	return f, nil
}

// HandleList handles GET /customers?search=&status=&kyc=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	filter, err := filterFrom(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	customers, err := h.service.List(ctx, filter)
	if err != nil {
		h.logFailure(ctx, "list customers failed", err)
		httputil.WriteError(w, err)
		return
	}
	out := make([]CustomerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Customers: out, Total: len(out)})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	c, err := h.service.Get(r.Context(), customerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := h.service.Summarize(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(sum))
}

// HandleSetStatus handles PUT /customers/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.SetStatus(ctx, customerID, models.Status(req.Status))
	if err != nil {
		h.logFailure(ctx, "set customer status failed", err, "customer_id", customerID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	c, err := h.service.ToggleStatus(ctx, customerID)
	if err != nil {
		h.logFailure(ctx, "toggle customer status failed", err, "customer_id", customerID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(c))
}

// HandleBulkStatus handles POST /customers/bulk-status.
func (h *Handler) HandleBulkStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := httputil.DecodeAndPrepare[BulkStatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	var (
		n   int
		err error
	)
	status := models.Status(req.Status)
	if len(req.parsedIDs) == 0 {
		n, err = h.service.BulkSetSelected(ctx, status)
	} else {
		n, err = h.service.BulkSetStatus(ctx, req.parsedIDs, status)
	}
	if err != nil {
		h.logFailure(ctx, "bulk customer status failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BulkStatusResponse{Updated: n, Status: req.Status})
}

// HandleReviewDocument handles PUT /customers/{id}/kyc/documents/{kind}.
func (h *Handler) HandleReviewDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ReviewRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	kind := models.DocumentKind(chi.URLParam(r, "kind"))
	c, err := h.service.ReviewDocument(ctx, customerID, req.review(kind))
	if err != nil {
		h.logFailure(ctx, "kyc review failed", err, "customer_id", customerID, "document", kind)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(c))
}

// HandleSetRisk handles PUT /customers/{id}/kyc/risk.
func (h *Handler) HandleSetRisk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[RiskRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	c, err := h.service.SetRiskLevel(ctx, customerID, models.RiskLevel(req.RiskLevel))
	if err != nil {
		h.logFailure(ctx, "set risk level failed", err, "customer_id", customerID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toCustomerResponse(c))
}

func (h *Handler) HandleSelection(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

func (h *Handler) HandleToggleSelection(w http.ResponseWriter, r *http.Request) {
	customerID, ok := h.customerID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.ToggleSelection(r.Context(), customerID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

// HandleSelectAll handles POST /customers/selection/all with the list's
// filter in the query string.
func (h *Handler) HandleSelectAll(w http.ResponseWriter, r *http.Request) {
	filter, err := filterFrom(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if _, err := h.service.SelectAll(r.Context(), filter); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

func (h *Handler) HandleClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.service.ClearSelection()
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: []id.CustomerID{}})
}

func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (id.CustomerID, bool) {
	customerID, err := id.ParseCustomerID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.CustomerID{}, false
	}
	return customerID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}
