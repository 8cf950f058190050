package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"refurb/internal/catalog/models"
	"refurb/internal/catalog/service"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/httputil"
	"refurb/pkg/requestcontext"
)

// Service is the catalog store surface the admin API drives.
type Service interface {
	FetchProducts(ctx context.Context, filter models.Filter, page models.Pagination) (models.Page, error)
	Load(ctx context.Context, productID id.ProductID) (models.Product, error)
	Get(productID id.ProductID) (models.Product, error)
	IsBusy(productID id.ProductID) bool
	SetStatus(ctx context.Context, productID id.ProductID, status models.ProductStatus, reason string) (models.Product, error)
	BulkSetStatus(ctx context.Context, productIDs []id.ProductID, status models.ProductStatus, reason string) (int, error)
	BulkSetSelected(ctx context.Context, status models.ProductStatus, reason string) (int, error)
	Propose(ctx context.Context, productID id.ProductID, in service.ProposalInput) (models.Negotiation, error)
	Remove(ctx context.Context, productID id.ProductID) error
	ToggleSelection(productID id.ProductID) (bool, error)
	SelectAll() int
	ClearSelection()
	Selected() []id.ProductID
}

// Handler wires product moderation endpoints to the catalog store.
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

// Register mounts product endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/products", h.HandleList)
	r.Get("/products/negotiation-reasons", h.HandleReasons)
	r.Get("/products/selection", h.HandleSelection)
	r.Post("/products/selection/all", h.HandleSelectAll)
	r.Delete("/products/selection", h.HandleClearSelection)
	r.Post("/products/bulk-status", h.HandleBulkStatus)
	r.Get("/products/{id}", h.HandleGet)
	r.Patch("/products/{id}/status", h.HandleSetStatus)
	r.Post("/products/{id}/select", h.HandleToggleSelection)
	r.Get("/products/{id}/negotiations", h.HandleNegotiationHistory)
	r.Post("/products/{id}/negotiations", h.HandlePropose)
	r.Delete("/products/{id}", h.HandleDelete)
}

// HandleList handles GET /products?search=&status=&category=&page=&limit=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := models.Filter{
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
	}
	if s := strings.TrimSpace(filter.Status); s != "" && s != models.FilterAll {
		if _, ok := models.ParseStatus(s); !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "status must be one of all, pending, approved, rejected"))
			return
		}
	}
	page, err := parsePagination(q.Get("page"), q.Get("limit"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	result, err := h.service.FetchProducts(ctx, filter, page)
	if err != nil {
		h.logFailure(ctx, "list products failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toPageResponse(result))
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Load(r.Context(), productID)
	if err != nil {
		h.logFailure(r.Context(), "load product failed", err, "product_id", productID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toProductResponse(p))
}

// HandleSetStatus handles PATCH /products/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.SetStatus(ctx, productID, req.parsedStatus, req.Reason)
	if err != nil {
		h.logFailure(ctx, "set product status failed", err, "product_id", productID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toProductResponse(p))
}

// HandleBulkStatus handles POST /products/bulk-status. Without ids the
// current selection is used.
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
	if len(req.parsedIDs) == 0 {
		n, err = h.service.BulkSetSelected(ctx, req.parsedStatus, req.Reason)
	} else {
		n, err = h.service.BulkSetStatus(ctx, req.parsedIDs, req.parsedStatus, req.Reason)
	}
	if err != nil {
		h.logFailure(ctx, "bulk product status failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, BulkStatusResponse{Updated: n, Status: string(req.parsedStatus)})
}

// HandlePropose handles POST /products/{id}/negotiations.
func (h *Handler) HandlePropose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[NegotiationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	n, err := h.service.Propose(ctx, productID, service.ProposalInput{
		ProposedPrice: req.ProposedPrice,
		Reason:        req.Reason,
		Message:       req.Message,
	})
	if err != nil {
		h.logFailure(ctx, "price negotiation failed", err, "product_id", productID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) HandleNegotiationHistory(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	p, err := h.service.Get(productID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	negotiations := p.Negotiations
	if negotiations == nil {
		negotiations = []models.Negotiation{}
	}
	httputil.WriteJSON(w, http.StatusOK, NegotiationHistoryResponse{ProductID: productID, Negotiations: negotiations})
}

// HandleDelete handles DELETE /products/{id}?confirm=true. Deletion cannot
// be undone, so the caller must confirm explicitly.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	if confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm")); !confirmed {
		httputil.WriteError(w, dErrors.New(dErrors.CodePreconditionFailed,
			"deletion cannot be undone; repeat the request with confirm=true"))
		return
	}
	if err := h.service.Remove(ctx, productID); err != nil {
		h.logFailure(ctx, "delete product failed", err, "product_id", productID)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleReasons(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, reasonResponses())
}

func (h *Handler) HandleSelection(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

func (h *Handler) HandleToggleSelection(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}
	if _, err := h.service.ToggleSelection(productID); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

func (h *Handler) HandleSelectAll(w http.ResponseWriter, _ *http.Request) {
	h.service.SelectAll()
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: h.service.Selected()})
}

func (h *Handler) HandleClearSelection(w http.ResponseWriter, _ *http.Request) {
	h.service.ClearSelection()
	httputil.WriteJSON(w, http.StatusOK, SelectionResponse{Selected: []id.ProductID{}})
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (id.ProductID, bool) {
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ProductID{}, false
	}
	return productID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}

func parsePagination(rawPage, rawLimit string) (models.Pagination, error) {
	p := models.DefaultPagination()
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return p, dErrors.New(dErrors.CodeValidation, "page must be a positive integer")
		}
		p.Page = n
	}
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > models.MaxPageLimit {
			return p, dErrors.New(dErrors.CodeValidation, "limit must be between 1 and "+strconv.Itoa(models.MaxPageLimit))
		}
		p.Limit = n
	}
	return p, nil
}
