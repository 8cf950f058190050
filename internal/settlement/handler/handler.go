package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"refurb/internal/settlement/models"
	"refurb/internal/settlement/service"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/httputil"
	"refurb/pkg/requestcontext"
)

// Service is the settlement store surface the admin API drives.
type Service interface {
	FetchPayments(ctx context.Context) ([]models.Payment, error)
	List(f models.Filter) []models.Payment
	View(paymentID id.PaymentID) (models.Payment, error)
	IsBusy(paymentID id.PaymentID) bool
	Process(ctx context.Context, paymentID id.PaymentID, in service.ProcessInput) (models.Payment, error)
	RecordVerification(ctx context.Context, paymentID id.PaymentID, update models.VerificationUpdate) (models.Payment, error)
	Summarize() service.Summary
}

// Handler wires payout endpoints to the settlement store.
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

// Register mounts payment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/payments", h.HandleList)
	r.Get("/payments/summary", h.HandleSummary)
	r.Get("/payments/methods", h.HandleMethods)
	r.Get("/payments/{id}", h.HandleGet)
	r.Post("/payments/{id}/process", h.HandleProcess)
	r.Patch("/payments/{id}/verification", h.HandleVerification)
}

// HandleList handles GET /payments?search=&status=. The ledger is reloaded
// from the gateway first unless cached=true.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	filter := models.Filter{Search: q.Get("search"), Status: q.Get("status")}
	if s := strings.TrimSpace(filter.Status); s != "" && s != models.FilterAll && !models.PaymentStatus(s).IsValid() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "status must be one of all, pending, processing, completed, failed"))
		return
	}

	if q.Get("cached") != "true" {
		if _, err := h.service.FetchPayments(ctx); err != nil {
			h.logFailure(ctx, "list payments failed", err)
			httputil.WriteError(w, err)
			return
		}
	}
	payments := h.service.List(filter)
	out := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, h.toPaymentResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, ListResponse{Payments: out, Total: len(out)})
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	p, err := h.service.View(paymentID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toPaymentResponse(p))
}

// HandleProcess handles POST /payments/{id}/process. The payout settles
// asynchronously, so success answers 202 with the processing payment.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[ProcessRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.Process(ctx, paymentID, service.ProcessInput{
		Amount: req.Amount,
		Method: req.Method,
		Notes:  req.Notes,
	})
	if err != nil {
		h.logFailure(ctx, "process payment failed", err, "payment_id", paymentID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, h.toPaymentResponse(p))
}

// HandleVerification handles PATCH /payments/{id}/verification.
func (h *Handler) HandleVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	paymentID, ok := h.paymentID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[VerificationRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}

	p, err := h.service.RecordVerification(ctx, paymentID, models.VerificationUpdate{
		Customer: req.CustomerVerified,
		Product:  req.ProductVerified,
	})
	if err != nil {
		h.logFailure(ctx, "record verification failed", err, "payment_id", paymentID)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, h.toPaymentResponse(p))
}

func (h *Handler) HandleSummary(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(h.service.Summarize()))
}

func (h *Handler) HandleMethods(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, methodResponses())
}

func (h *Handler) paymentID(w http.ResponseWriter, r *http.Request) (id.PaymentID, bool) {
	paymentID, err := id.ParsePaymentID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.PaymentID{}, false
	}
	return paymentID, true
}

func (h *Handler) logFailure(ctx context.Context, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if dErrors.HasCode(err, dErrors.CodeUnavailable) || dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg, args...)
		return
	}
	h.logger.InfoContext(ctx, msg, args...)
}
