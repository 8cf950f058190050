// Package service is the payout settlement store. Processing is gated on
// two independent verification flags; settlement resolves asynchronously
// after a fixed delay.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/settlement/metrics"
	"refurb/internal/settlement/models"
	"refurb/internal/settlement/ports"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/money"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/busy"
	"refurb/pkg/platform/clock"
	"refurb/pkg/platform/upstream"
	"refurb/pkg/requestcontext"
)

const (
	opList    = "list"
	opProcess = "process"
	opSettle  = "settle"
	opVerify  = "verify"
)

// DefaultSettlementDelay models the payout network's confirmation time.
const DefaultSettlementDelay = 2 * time.Second

// settleTimeout bounds the confirmation call, which has no caller context.
const settleTimeout = 30 * time.Second

const (
	msgLoadFailed           = "Failed to load payments. Please try again."
	msgProcessFailed        = "Failed to process payment. Please try again."
	msgSettleFailed         = "Payment settlement failed. Please try again."
	msgVerifyFailed         = "Failed to update verification. Please try again."
	msgNoVerificationChange = "No verification change supplied"
	msgRequiredFields       = "Please fill in all required fields"
	msgInvalidAmount        = "Please enter a valid amount"
	msgInvalidMethod        = "Please select a valid payment method"
	msgPaymentBusy          = "Another action is already in progress for this payment"
	msgPaymentNotFound      = "Payment not found"
	defaultNotes            = "Payment processed"
)

// ProcessInput is the admin's raw payout form.
type ProcessInput struct {
	Amount string
	Method string
	Notes  string
}

// Service is safe for concurrent use. mu is never held across a gateway
// call.
type Service struct {
	mu       sync.Mutex
	payments map[id.PaymentID]models.Payment
	order    []id.PaymentID
	busy     *busy.Set[id.PaymentID]
	timers   map[id.PaymentID]clock.Timer
	lastTxn  int64
	closed   bool

	gateway  ports.Gateway
	notifier ports.Notifier
	auditor  ports.AuditPublisher
	logger   *slog.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	clock    clock.Clock
	delay    time.Duration
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
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

func WithClock(c clock.Clock) Option {
	return func(s *Service) {
		s.clock = c
	}
}

func WithSettlementDelay(d time.Duration) Option {
	return func(s *Service) {
		s.delay = d
	}
}

func New(gateway ports.Gateway, notifier ports.Notifier, opts ...Option) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("payment gateway is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	s := &Service{
		payments: make(map[id.PaymentID]models.Payment),
		busy:     busy.New[id.PaymentID](),
		timers:   make(map[id.PaymentID]clock.Timer),
		gateway:  gateway,
		notifier: notifier,
		logger:   slog.Default(),
		tracer:   otel.Tracer("refurb/settlement"),
		clock:    clock.Real(),
		delay:    DefaultSettlementDelay,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// FetchPayments reloads the ledger from the gateway. Payments with an
// operation or settlement in flight keep their local copy.
func (s *Service) FetchPayments(ctx context.Context) ([]models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.FetchPayments")
	defer span.End()

	start := time.Now()
	fetched, err := s.gateway.ListPayments(ctx)
	s.observe(opList, start)
	if err != nil {
		return nil, s.fail(ctx, span, opList, err, msgLoadFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[id.PaymentID]models.Payment, len(fetched))
	order := make([]id.PaymentID, 0, len(fetched))
	for _, p := range fetched {
		if _, dup := next[p.ID]; dup {
			continue
		}
		if s.inFlightLocked(p.ID) {
			if local, ok := s.payments[p.ID]; ok {
				p = local
			}
		} else if err := p.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping payment that violates invariants",
				"payment_id", p.ID,
				"error", err,
			)
			continue
		}
		next[p.ID] = p.Clone()
		order = append(order, p.ID)
	}
	for pid, p := range s.payments {
		if _, ok := next[pid]; !ok && s.inFlightLocked(pid) {
			next[pid] = p
			order = append(order, pid)
		}
	}
	s.payments = next
	s.order = order
	return s.listLocked(models.Filter{}), nil
}

func (s *Service) inFlightLocked(pid id.PaymentID) bool {
	_, pending := s.timers[pid]
	return pending || s.busy.Has(pid)
}

// View returns a payment without changing anything.
func (s *Service) View(paymentID id.PaymentID) (models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return models.Payment{}, dErrors.New(dErrors.CodeNotFound, msgPaymentNotFound)
	}
	return p.Clone(), nil
}

// List returns payments matching f in ledger order.
func (s *Service) List(f models.Filter) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(f)
}

func (s *Service) listLocked(f models.Filter) []models.Payment {
	out := make([]models.Payment, 0, len(s.order))
	for _, pid := range s.order {
		if p, ok := s.payments[pid]; ok && f.Matches(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (s *Service) IsBusy(paymentID id.PaymentID) bool {
	return s.busy.Has(paymentID)
}

// AwaitingSettlement counts payouts with a scheduled settlement.
func (s *Service) AwaitingSettlement() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Process starts a payout. Verification gates are checked first, then the
// form; neither failure reaches the gateway. On success the payment is
// processing and settlement is scheduled.
func (s *Service) Process(ctx context.Context, paymentID id.PaymentID, in ProcessInput) (models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.Process",
		trace.WithAttributes(attribute.String("payment.id", paymentID.String())))
	defer span.End()

	req, before, err := s.beginProcess(paymentID, in)
	if err != nil {
		return models.Payment{}, s.reject(ctx, span, err)
	}
	defer s.release(paymentID)

	start := time.Now()
	result, err := s.gateway.ProcessPayment(ctx, paymentID, req)
	s.observe(opProcess, start)
	if err != nil {
		return models.Payment{}, s.fail(ctx, span, opProcess, err, msgProcessFailed)
	}

	now := requestcontext.Now(ctx)
	s.mu.Lock()
	if result.TransactionID == "" {
		result.TransactionID = s.nextTransactionIDLocked(now)
	}
	if result.ProcessedAt.IsZero() {
		result.ProcessedAt = now
	}
	updated, err := s.payments[paymentID].WithProcessing(models.Processing{
		Amount:        req.Amount,
		Method:        req.Method,
		Notes:         req.Notes,
		TransactionID: result.TransactionID,
		ProcessedAt:   result.ProcessedAt,
	})
	if err == nil {
		s.payments[paymentID] = updated
		if !s.closed {
			s.timers[paymentID] = s.clock.AfterFunc(s.delay, func() { s.settle(paymentID) })
		}
	}
	awaiting := len(s.timers)
	s.mu.Unlock()
	if err != nil {
		return models.Payment{}, s.fail(ctx, span, opProcess, dErrors.Wrap(err, dErrors.CodeInternal, "apply processing"), msgProcessFailed)
	}

	span.SetAttributes(attribute.String("payment.transaction_id", updated.TransactionID))
	s.notifier.Info(fmt.Sprintf("Payment of %s to %s is processing (%s)",
		money.Format(updated.Amount), before.CustomerName, updated.TransactionID))
	s.emitAudit(ctx, audit.EventPaymentProcessing, paymentID, "", updated.TransactionID)
	if s.metrics != nil {
		s.metrics.IncrementProcessed()
		s.metrics.SetInFlight(awaiting)
	}
	s.logger.InfoContext(ctx, "payment processing started",
		"request_id", requestcontext.RequestID(ctx),
		"payment_id", paymentID,
		"transaction_id", updated.TransactionID,
		"amount", updated.Amount.String(),
		"method", updated.Method,
	)
	return updated.Clone(), nil
}

// beginProcess gates, validates and marks the payment busy in one
// critical section.
func (s *Service) beginProcess(paymentID id.PaymentID, in ProcessInput) (ports.ProcessRequest, models.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.payments[paymentID]
	if !ok {
		return ports.ProcessRequest{}, models.Payment{}, dErrors.New(dErrors.CodeNotFound, msgPaymentNotFound)
	}
	if err := p.CanProcess(); err != nil {
		if s.metrics != nil && dErrors.HasCode(err, dErrors.CodePreconditionFailed) {
			gate := "customer"
			if p.CustomerVerified {
				gate = "product"
			}
			s.metrics.IncrementGateRejection(gate)
		}
		return ports.ProcessRequest{}, models.Payment{}, err
	}
	req, err := parseProcessInput(in)
	if err != nil {
		return ports.ProcessRequest{}, models.Payment{}, err
	}
	if held := s.busy.Acquire(opProcess, paymentID); len(held) > 0 {
		return ports.ProcessRequest{}, models.Payment{}, dErrors.New(dErrors.CodeConflict, msgPaymentBusy)
	}
	return req, p.Clone(), nil
}

func parseProcessInput(in ProcessInput) (ports.ProcessRequest, error) {
	rawAmount := strings.TrimSpace(in.Amount)
	rawMethod := strings.TrimSpace(in.Method)
	if rawAmount == "" || rawMethod == "" {
		return ports.ProcessRequest{}, dErrors.New(dErrors.CodeValidation, msgRequiredFields)
	}
	amount, err := money.Parse(rawAmount)
	if err != nil || !amount.IsPositive() {
		return ports.ProcessRequest{}, dErrors.New(dErrors.CodeValidation, msgInvalidAmount)
	}
	method := models.Method(rawMethod)
	if !method.IsValid() {
		return ports.ProcessRequest{}, dErrors.New(dErrors.CodeValidation, msgInvalidMethod)
	}
	notes := strings.TrimSpace(in.Notes)
	if notes == "" {
		notes = defaultNotes
	}
	return ports.ProcessRequest{Amount: amount, Method: method, Notes: notes}, nil
}

// nextTransactionIDLocked returns TXN<unix millis>, bumped past the last id
// handed out so ids stay unique within the process.
func (s *Service) nextTransactionIDLocked(now time.Time) string {
	ms := max(now.UnixMilli(), s.lastTxn+1)
	s.lastTxn = ms
	return "TXN" + strconv.FormatInt(ms, 10)
}

// settle runs on the clock's timer goroutine once the delay elapses.
func (s *Service) settle(paymentID id.PaymentID) {
	s.mu.Lock()
	delete(s.timers, paymentID)
	p, ok := s.payments[paymentID]
	if s.closed || !ok || p.Status != models.StatusProcessing {
		s.mu.Unlock()
		return
	}
	s.busy.Acquire(opSettle, paymentID)
	s.mu.Unlock()
	defer s.release(paymentID)

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()
	ctx, span := s.tracer.Start(ctx, "settlement.Settle", trace.WithAttributes(
		attribute.String("payment.id", paymentID.String()),
		attribute.String("payment.transaction_id", p.TransactionID),
	))
	defer span.End()

	start := time.Now()
	callErr := s.gateway.ConfirmSettlement(ctx, paymentID, p.TransactionID)
	s.observe(opSettle, start)

	failure := ""
	if callErr != nil {
		failure = upstream.FailureMessage(callErr, msgSettleFailed)
	}
	now := s.clock.Now()
	s.mu.Lock()
	updated, err := s.payments[paymentID].WithSettlement(failure, now)
	if err == nil {
		s.payments[paymentID] = updated
	}
	awaiting := len(s.timers)
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SetInFlight(awaiting)
	}
	if err != nil {
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "failed to apply settlement",
			"payment_id", paymentID,
			"error", err,
		)
		s.notifier.Error(msgSettleFailed)
		return
	}

	if callErr != nil {
		span.RecordError(callErr)
		span.SetStatus(codes.Error, failure)
		s.logger.ErrorContext(ctx, "payment settlement failed",
			"payment_id", paymentID,
			"transaction_id", p.TransactionID,
			"error", callErr,
		)
		s.notifier.Error(failure)
		s.emitAudit(ctx, audit.EventPaymentFailed, paymentID, failure, p.TransactionID)
		if s.metrics != nil {
			s.metrics.ObserveSettlement("failed", 0)
		}
		return
	}

	s.notifier.Success(fmt.Sprintf("Payment of %s processed successfully to %s",
		money.Format(updated.Amount), updated.CustomerName))
	s.emitAudit(ctx, audit.EventPaymentCompleted, paymentID, "", p.TransactionID)
	if s.metrics != nil {
		s.metrics.ObserveSettlement("completed", updated.Amount.InexactFloat64())
	}
	s.logger.InfoContext(ctx, "payment settled",
		"payment_id", paymentID,
		"transaction_id", p.TransactionID,
	)
}

// RecordVerification forwards a back-office verification result to the
// gateway and applies it once accepted. The store never sets the flags on
// its own.
func (s *Service) RecordVerification(ctx context.Context, paymentID id.PaymentID, update models.VerificationUpdate) (models.Payment, error) {
	ctx, span := s.tracer.Start(ctx, "settlement.RecordVerification",
		trace.WithAttributes(attribute.String("payment.id", paymentID.String())))
	defer span.End()

	if update.IsEmpty() {
		return models.Payment{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgNoVerificationChange))
	}
	if err := s.beginVerification(paymentID, update); err != nil {
		return models.Payment{}, s.reject(ctx, span, err)
	}
	defer s.release(paymentID)

	start := time.Now()
	err := s.gateway.UpdateVerification(ctx, paymentID, update)
	s.observe(opVerify, start)
	if err != nil {
		return models.Payment{}, s.fail(ctx, span, opVerify, err, msgVerifyFailed)
	}

	s.mu.Lock()
	updated, err := s.payments[paymentID].WithVerification(update)
	if err == nil {
		s.payments[paymentID] = updated
	}
	s.mu.Unlock()
	if err != nil {
		return models.Payment{}, s.fail(ctx, span, opVerify, dErrors.Wrap(err, dErrors.CodeInternal, "apply verification"), msgVerifyFailed)
	}

	s.emitAudit(ctx, audit.EventVerificationUpdated, paymentID, "",
		fmt.Sprintf("customer=%t product=%t", updated.CustomerVerified, updated.ProductVerified))
	s.logger.InfoContext(ctx, "payment verification updated",
		"request_id", requestcontext.RequestID(ctx),
		"payment_id", paymentID,
		"customer_verified", updated.CustomerVerified,
		"product_verified", updated.ProductVerified,
	)
	return updated.Clone(), nil
}

func (s *Service) beginVerification(paymentID id.PaymentID, update models.VerificationUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, msgPaymentNotFound)
	}
	if _, err := p.WithVerification(update); err != nil {
		return err
	}
	if held := s.busy.Acquire(opVerify, paymentID); len(held) > 0 {
		return dErrors.New(dErrors.CodeConflict, msgPaymentBusy)
	}
	return nil
}

// Close cancels scheduled settlements. Payments left processing stay that
// way until the next FetchPayments.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for pid, t := range s.timers {
		t.Stop()
		delete(s.timers, pid)
	}
}

func (s *Service) release(paymentID id.PaymentID) {
	s.busy.Release(paymentID)
}

func (s *Service) observe(op string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveGateway(op, start)
	}
}

func (s *Service) reject(ctx context.Context, span trace.Span, err error) error {
	msg := dErrors.Message(err)
	span.SetStatus(codes.Error, msg)
	s.logger.InfoContext(ctx, "payment operation rejected",
		"request_id", requestcontext.RequestID(ctx),
		"reason", msg,
	)
	s.notifier.Error(msg)
	return err
}

func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error, fallback string) error {
	msg := upstream.FailureMessage(err, fallback)
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, "payment gateway call failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	)
	s.notifier.Error(msg)
	return dErrors.Wrap(err, upstream.CodeFor(err), msg)
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, paymentID id.PaymentID, reason, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.New(action, audit.SubjectPayment, paymentID.String())
	event.Timestamp = requestcontext.Now(ctx)
	event.Reason = reason
	event.Detail = detail
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorName = requestcontext.ActorName(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"payment_id", paymentID,
			"error", err,
		)
	}
}
