// Package service manages marketplace customers: account status, bulk
// moderation over a selection, and KYC document review.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/customer/metrics"
	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/busy"
	"refurb/pkg/platform/sentinel"
	"refurb/pkg/requestcontext"
)

// Operation kinds recorded in the busy set.
const (
	opStatus = "status"
	opBulk   = "bulk"
	opKYC    = "kyc"
	opRisk   = "risk"
)

const (
	msgNotFound      = "User not found"
	msgBusy          = "An action is already in progress for this user"
	msgSelectUsers   = "Please select users to perform bulk action"
	msgInvalidStatus = "Please select a valid status"
	msgStatusFailed  = "Failed to update user status. Please try again."
	msgBulkFailed    = "Failed to perform bulk action. Please try again."
	msgKYCFailed     = "Failed to update KYC. Please try again."
)

// Service is safe for concurrent use. A customer is held in the busy set
// from load to save, so two admin actions never interleave on one
// customer.
type Service struct {
	mu       sync.Mutex
	selected []id.CustomerID
	busy     *busy.Set[id.CustomerID]

	store    Store
	notifier Notifier
	auditor  AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = t
	}
}

func New(store Store, notifier Notifier, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("customer store is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	s := &Service{
		busy:     busy.New[id.CustomerID](),
		store:    store,
		notifier: notifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("refurb/customer"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) Get(ctx context.Context, customerID id.CustomerID) (models.Customer, error) {
	c, err := s.store.FindByID(ctx, customerID)
	if err != nil {
		return models.Customer{}, wrapStoreErr(err, "failed to load customer")
	}
	return c, nil
}

// List returns customers matching f in join order.
func (s *Service) List(ctx context.Context, f models.Filter) ([]models.Customer, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	out := make([]models.Customer, 0, len(all))
	for _, c := range all {
		if f.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

// Summary counts customers for the dashboard.
type Summary struct {
	Total    int
	ByStatus map[models.Status]int
	ByKYC    map[models.KYCStatus]int
	HighRisk int
}

func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list customers")
	}
	sum := Summary{
		Total:    len(all),
		ByStatus: make(map[models.Status]int, 3),
		ByKYC:    make(map[models.KYCStatus]int, 3),
	}
	for _, c := range all {
		sum.ByStatus[c.Status]++
		sum.ByKYC[c.KYC.Status]++
		if c.KYC.RiskLevel == models.RiskHigh {
			sum.HighRisk++
		}
	}
	return sum, nil
}

func (s *Service) IsBusy(customerID id.CustomerID) bool {
	return s.busy.Has(customerID)
}

// BusyKind names the operation holding the customer, or "" when idle.
func (s *Service) BusyKind(customerID id.CustomerID) string {
	return s.busy.Kind(customerID)
}

// begin marks customerIDs busy with kind and loads each of them. Nothing
// stays marked when any load fails.
func (s *Service) begin(ctx context.Context, kind string, customerIDs ...id.CustomerID) ([]models.Customer, error) {
	if held := s.busy.Acquire(kind, customerIDs...); len(held) > 0 {
		if len(customerIDs) == 1 {
			return nil, dErrors.New(dErrors.CodeConflict, msgBusy)
		}
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("%d selected user(s) already have an action in progress", len(held)))
	}
	s.setBusyGauge()

	out := make([]models.Customer, 0, len(customerIDs))
	for _, cid := range customerIDs {
		c, err := s.store.FindByID(ctx, cid)
		if err != nil {
			s.release(customerIDs...)
			return nil, wrapStoreErr(err, "failed to load customer")
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) release(customerIDs ...id.CustomerID) {
	s.busy.Release(customerIDs...)
	s.setBusyGauge()
}

func (s *Service) setBusyGauge() {
	if s.metrics != nil {
		s.metrics.SetBusy(s.busy.Len())
	}
}

// changed refreshes the per-status gauges.
func (s *Service) changed(ctx context.Context) {
	if s.metrics == nil {
		return
	}
	sum, err := s.Summarize(ctx)
	if err != nil {
		return
	}
	for _, st := range models.Statuses() {
		s.metrics.SetCustomers(string(st), sum.ByStatus[st])
	}
}

func wrapStoreErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, msgNotFound)
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// reject reports a failure as one error notification.
func (s *Service) reject(ctx context.Context, span trace.Span, err error) error {
	msg := dErrors.Message(err)
	span.SetStatus(codes.Error, msg)
	if dErrors.HasCode(err, dErrors.CodeInternal) || dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "customer operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	} else {
		s.logger.InfoContext(ctx, "customer operation rejected",
			"request_id", requestcontext.RequestID(ctx),
			"reason", msg,
		)
	}
	s.notifier.Error(msg)
	return err
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, customerID id.CustomerID, reason, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.New(action, audit.SubjectCustomer, customerID.String())
	event.Timestamp = requestcontext.Now(ctx)
	event.Reason = reason
	event.Detail = detail
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorName = requestcontext.ActorName(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"customer_id", customerID,
			"error", err,
		)
	}
}

func customerAttr(customerID id.CustomerID) trace.SpanStartOption {
	return trace.WithAttributes(attribute.String("customer.id", customerID.String()))
}

func dedupeIDs(in []id.CustomerID) []id.CustomerID {
	out := make([]id.CustomerID, 0, len(in))
	for _, cid := range in {
		if cid.IsNil() || slices.Contains(out, cid) {
			continue
		}
		out = append(out, cid)
	}
	return out
}
