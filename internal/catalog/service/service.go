// Package service is the admin-side product catalog: a cache of fetched
// listings plus the moderation, negotiation and removal operations that
// go through the product backend.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/catalog/metrics"
	"refurb/internal/catalog/models"
	"refurb/internal/catalog/ports"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/busy"
	"refurb/pkg/platform/clock"
	"refurb/pkg/platform/upstream"
	"refurb/pkg/requestcontext"
)

// Operation kinds recorded in the busy set and used as metric labels.
const (
	opList      = "list"
	opGet       = "get"
	opStatus    = "status"
	opBulk      = "bulk"
	opNegotiate = "negotiate"
	opDelete    = "delete"
)

// DefaultSearchDebounce collapses keystrokes into one fetch.
const DefaultSearchDebounce = 500 * time.Millisecond

// Service is safe for concurrent use. Busy checks and marks happen under mu;
// mu is never held across a gateway call.
type Service struct {
	mu         sync.Mutex
	products   map[id.ProductID]models.Product
	order      []id.ProductID
	selected   map[id.ProductID]struct{}
	filter     models.Filter
	pagination models.Pagination
	total      int
	busy       *busy.Set[id.ProductID]

	gateway   ports.Gateway
	notifier  ports.Notifier
	auditor   ports.AuditPublisher
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
	clock     clock.Clock
	debounce  time.Duration
	pageLimit int
	debouncer *Debouncer
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

// WithSearchDebounce sets the quiet period before a search fetch. Zero
// fetches on every keystroke.
func WithSearchDebounce(d time.Duration) Option {
	return func(s *Service) {
		s.debounce = d
	}
}

func WithPageLimit(limit int) Option {
	return func(s *Service) {
		s.pageLimit = limit
	}
}

func New(gateway ports.Gateway, notifier ports.Notifier, opts ...Option) (*Service, error) {
	if gateway == nil {
		return nil, fmt.Errorf("product gateway is required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	s := &Service{
		products:  make(map[id.ProductID]models.Product),
		selected:  make(map[id.ProductID]struct{}),
		filter:    models.DefaultFilter(),
		busy:      busy.New[id.ProductID](),
		gateway:   gateway,
		notifier:  notifier,
		logger:    slog.Default(),
		tracer:    otel.Tracer("refurb/catalog"),
		clock:     clock.Real(),
		debounce:  DefaultSearchDebounce,
		pageLimit: models.DefaultPageLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.pagination = models.Pagination{Page: 1, Limit: s.pageLimit}.Normalize()
	s.debouncer = NewDebouncer(s.clock, s.debounce)
	return s, nil
}

// FetchProducts loads one page from the backend and merges it into the
// cache. Products with an operation in flight keep their local copy.
func (s *Service) FetchProducts(ctx context.Context, filter models.Filter, page models.Pagination) (models.Page, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.FetchProducts")
	defer span.End()

	filter = filter.Normalize()
	page = page.Normalize()
	s.mu.Lock()
	s.filter = filter
	s.pagination = page
	s.mu.Unlock()

	start := time.Now()
	result, err := s.gateway.ListProducts(ctx, filter, page)
	s.observe(opList, start, err)
	if err != nil {
		return models.Page{}, s.fail(ctx, span, opList, err, msgLoadFailed)
	}

	s.mu.Lock()
	merged := s.mergeLocked(ctx, result.Products)
	s.total = result.Total
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("catalog.total", result.Total))
	return models.Page{
		Products:   merged,
		Total:      result.Total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: models.TotalPages(result.Total, page.Limit),
	}, nil
}

// Refresh re-fetches the current view.
func (s *Service) Refresh(ctx context.Context) (models.Page, error) {
	return s.FetchProducts(ctx, s.Filter(), s.Pagination())
}

// Load fetches a single product, refreshing its cached copy unless busy.
func (s *Service) Load(ctx context.Context, productID id.ProductID) (models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Load",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer span.End()

	start := time.Now()
	p, err := s.gateway.GetProduct(ctx, productID)
	s.observe(opGet, start, err)
	if err != nil {
		return models.Product{}, s.fail(ctx, span, opGet, err, msgLoadOneFailed)
	}
	if err := p.Validate(); err != nil {
		return models.Product{}, s.fail(ctx, span, opGet, err, msgLoadOneFailed)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy.Has(productID) {
		if local, ok := s.products[productID]; ok {
			return local.Clone(), nil
		}
	}
	s.products[productID] = p.Clone()
	return p, nil
}

// mergeLocked replaces the cache with fetched, keeping local copies of busy
// products and pinning busy products absent from the page.
func (s *Service) mergeLocked(ctx context.Context, fetched []models.Product) []models.Product {
	next := make(map[id.ProductID]models.Product, len(fetched))
	order := make([]id.ProductID, 0, len(fetched))
	out := make([]models.Product, 0, len(fetched))

	for _, p := range fetched {
		if _, dup := next[p.ID]; dup {
			continue
		}
		if s.busy.Has(p.ID) {
			if local, ok := s.products[p.ID]; ok {
				p = local
			}
		} else if err := p.Validate(); err != nil {
			s.logger.WarnContext(ctx, "skipping product that violates invariants",
				"product_id", p.ID,
				"error", err,
			)
			continue
		}
		next[p.ID] = p.Clone()
		order = append(order, p.ID)
		out = append(out, p.Clone())
	}
	for pid, p := range s.products {
		if _, ok := next[pid]; !ok && s.busy.Has(pid) {
			next[pid] = p
		}
	}
	for pid := range s.selected {
		if _, ok := next[pid]; !ok {
			delete(s.selected, pid)
		}
	}
	s.products = next
	s.order = order
	return out
}

// Products returns the cached page in display order.
func (s *Service) Products() []models.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Product, 0, len(s.order))
	for _, pid := range s.order {
		if p, ok := s.products[pid]; ok {
			out = append(out, p.Clone())
		}
	}
	return out
}

// Get returns the cached copy of a product.
func (s *Service) Get(productID id.ProductID) (models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return models.Product{}, dErrors.New(dErrors.CodeNotFound, msgProductNotFound)
	}
	return p.Clone(), nil
}

// IsBusy reports whether an operation is in flight for productID.
func (s *Service) IsBusy(productID id.ProductID) bool {
	return s.busy.Has(productID)
}

// BusyKind names the in-flight operation, or "" when idle.
func (s *Service) BusyKind(productID id.ProductID) string {
	return s.busy.Kind(productID)
}

// Total is the unpaged count reported by the last fetch.
func (s *Service) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Close stops any pending debounced search.
func (s *Service) Close() {
	s.debouncer.Stop()
}

// begin marks productIDs busy with kind after check accepts each cached
// product, all within one critical section.
func (s *Service) begin(kind string, productIDs []id.ProductID, check func(models.Product) error) (map[id.ProductID]models.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := make(map[id.ProductID]models.Product, len(productIDs))
	for _, pid := range productIDs {
		p, ok := s.products[pid]
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, msgProductNotFound)
		}
		if check != nil {
			if err := check(p); err != nil {
				return nil, err
			}
		}
		snapshot[pid] = p.Clone()
	}
	if held := s.busy.Acquire(kind, productIDs...); len(held) > 0 {
		if len(productIDs) == 1 {
			return nil, dErrors.New(dErrors.CodeConflict, msgProductBusy)
		}
		return nil, dErrors.New(dErrors.CodeConflict,
			fmt.Sprintf("%d selected product(s) already have an action in progress", len(held)))
	}
	s.setBusyGauge()
	return snapshot, nil
}

func (s *Service) release(productIDs ...id.ProductID) {
	s.busy.Release(productIDs...)
	s.setBusyGauge()
}

func (s *Service) setBusyGauge() {
	if s.metrics != nil {
		s.metrics.SetBusy(s.busy.Len())
	}
}

func (s *Service) observe(op string, start time.Time, err error) {
	if s.metrics != nil {
		s.metrics.ObserveGateway(op, start, err)
	}
}

// reject reports a local validation or gating failure: one error
// notification, no backend call.
func (s *Service) reject(ctx context.Context, span trace.Span, err error) error {
	msg := dErrors.Message(err)
	span.SetStatus(codes.Error, msg)
	s.logger.InfoContext(ctx, "product operation rejected",
		"request_id", requestcontext.RequestID(ctx),
		"reason", msg,
	)
	s.notifier.Error(msg)
	return err
}

// fail reports a backend failure with the backend's message or fallback.
func (s *Service) fail(ctx context.Context, span trace.Span, op string, err error, fallback string) error {
	msg := upstream.FailureMessage(err, fallback)
	span.RecordError(err)
	span.SetStatus(codes.Error, msg)
	s.logger.ErrorContext(ctx, "product backend call failed",
		"request_id", requestcontext.RequestID(ctx),
		"operation", op,
		"error", err,
	)
	s.notifier.Error(msg)
	return dErrors.Wrap(err, upstream.CodeFor(err), msg)
}

func (s *Service) emitAudit(ctx context.Context, action audit.AuditEvent, productID id.ProductID, reason, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.New(action, audit.SubjectProduct, productID.String())
	event.Timestamp = requestcontext.Now(ctx)
	event.Reason = reason
	event.Detail = detail
	event.RequestID = requestcontext.RequestID(ctx)
	event.ActorName = requestcontext.ActorName(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", action,
			"product_id", productID,
			"error", err,
		)
	}
}

func dedupeIDs(in []id.ProductID) []id.ProductID {
	out := make([]id.ProductID, 0, len(in))
	for _, pid := range in {
		if pid.IsNil() || slices.Contains(out, pid) {
			continue
		}
		out = append(out, pid)
	}
	return out
}
