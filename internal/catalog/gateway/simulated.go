// Package gateway holds product backends: an in-process simulation of the
// marketplace API and a Redis read-through cache that wraps any backend.
package gateway

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"refurb/internal/catalog/models"
	"refurb/internal/catalog/ports"
	"refurb/internal/platform/simulate"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/upstream"
)

// Operation names accepted by FailNext.
const (
	OpList      = "list"
	OpGet       = "get"
	OpStatus    = "status"
	OpBulk      = "bulk"
	OpNegotiate = "negotiate"
	OpDelete    = "delete"
)

const (
	DefaultFastLatency   = 300 * time.Millisecond
	DefaultNormalLatency = 800 * time.Millisecond
)

// Simulated is an in-memory marketplace backend. Mutations answer in the
// fast latency tier, listings and batch calls in the normal tier.
type Simulated struct {
	mu       sync.Mutex
	products map[id.ProductID]models.Product

	fast   time.Duration
	normal time.Duration
	faults *simulate.Faults
	now    func() time.Time
}

type SimulatedOption func(*Simulated)

func WithLatency(fast, normal time.Duration) SimulatedOption {
	return func(s *Simulated) {
		s.fast = fast
		s.normal = normal
	}
}

// WithFailureRate makes roughly rate of all calls fail with a transport
// error.
func WithFailureRate(rate float64, seed uint64) SimulatedOption {
	return func(s *Simulated) {
		s.faults = simulate.NewFaults(rate, seed)
	}
}

func WithProducts(products ...models.Product) SimulatedOption {
	return func(s *Simulated) {
		for _, p := range products {
			s.products[p.ID] = p.Clone()
		}
	}
}

// WithSeedData loads the demo listings.
func WithSeedData() SimulatedOption {
	return WithProducts(SeedProducts()...)
}

func WithNow(now func() time.Time) SimulatedOption {
	return func(s *Simulated) {
		s.now = now
	}
}

func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		products: make(map[id.ProductID]models.Product),
		fast:     DefaultFastLatency,
		normal:   DefaultNormalLatency,
		faults:   simulate.NewFaults(0, 0),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FailNext makes the next call to op return err.
func (s *Simulated) FailNext(op string, err error) {
	s.faults.FailNext(op, err)
}

func (s *Simulated) call(ctx context.Context, op string, latency time.Duration) error {
	if err := simulate.Sleep(ctx, latency); err != nil {
		return err
	}
	return s.faults.Check(op)
}

// ListProducts returns newest submissions first.
func (s *Simulated) ListProducts(ctx context.Context, filter models.Filter, page models.Pagination) (ports.ListResult, error) {
	if err := s.call(ctx, OpList, s.normal); err != nil {
		return ports.ListResult{}, err
	}
	filter = filter.Normalize()
	page = page.Normalize()

	s.mu.Lock()
	defer s.mu.Unlock()
	matched := make([]models.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Matches(p) {
			matched = append(matched, p)
		}
	}
	slices.SortFunc(matched, func(a, b models.Product) int {
		if c := b.SubmittedAt.Compare(a.SubmittedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Title, b.Title)
	})

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.Limit, total)
	out := make([]models.Product, 0, end-start)
	for _, p := range matched[start:end] {
		out = append(out, p.Clone())
	}
	return ports.ListResult{Products: out, Total: total}, nil
}

func (s *Simulated) GetProduct(ctx context.Context, productID id.ProductID) (models.Product, error) {
	if err := s.call(ctx, OpGet, s.fast); err != nil {
		return models.Product{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return models.Product{}, upstream.NotFound("Product not found")
	}
	return p.Clone(), nil
}

func (s *Simulated) SetProductStatus(ctx context.Context, productID id.ProductID, status models.ProductStatus, _ string) error {
	if err := s.call(ctx, OpStatus, s.fast); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return upstream.NotFound("Product not found")
	}
	next, err := p.WithStatus(status, s.now())
	if err != nil {
		return upstream.InvalidState("Product status cannot be changed to " + string(status))
	}
	s.products[productID] = next
	return nil
}

// BulkSetProductStatus applies to every id or none.
func (s *Simulated) BulkSetProductStatus(ctx context.Context, productIDs []id.ProductID, status models.ProductStatus, _ string) error {
	if err := s.call(ctx, OpBulk, s.normal); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	updates := make(map[id.ProductID]models.Product, len(productIDs))
	for _, pid := range productIDs {
		p, ok := s.products[pid]
		if !ok {
			return upstream.NotFound("One or more products were not found")
		}
		if p.Status == status {
			continue
		}
		next, err := p.WithStatus(status, now)
		if err != nil {
			return upstream.InvalidState("One or more products cannot be changed to " + string(status))
		}
		updates[pid] = next
	}
	for pid, p := range updates {
		s.products[pid] = p
	}
	return nil
}

func (s *Simulated) ProposeNegotiation(ctx context.Context, productID id.ProductID, negotiation models.Negotiation) error {
	if err := s.call(ctx, OpNegotiate, s.normal); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[productID]
	if !ok {
		return upstream.NotFound("Product not found")
	}
	next, err := p.WithNegotiation(negotiation, s.now())
	if err != nil {
		return upstream.Rejected("Negotiation could not be recorded")
	}
	s.products[productID] = next
	return nil
}

func (s *Simulated) DeleteProduct(ctx context.Context, productID id.ProductID) error {
	if err := s.call(ctx, OpDelete, s.fast); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[productID]; !ok {
		return upstream.NotFound("Product not found")
	}
	delete(s.products, productID)
	return nil
}

var seedNamespace = uuid.MustParse("6f1c9a52-3d4e-4b8a-9c21-5e7f0a1b2c3d")

// SeedProductID derives the stable id of demo listing n.
func SeedProductID(n int) id.ProductID {
	return id.ProductID(uuid.NewSHA1(seedNamespace, []byte{'p', byte(n)}))
}

// SeedProducts is the demo catalogue.
func SeedProducts() []models.Product {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	rupees := decimal.NewFromInt

	iphone := models.Product{
		ID:            SeedProductID(1),
		Title:         "iPhone 13 Pro Max - 256GB Space Gray",
		Seller:        "John Doe",
		SellerEmail:   "john.doe@email.com",
		Category:      "Electronics",
		Condition:     "Excellent",
		Description:   "Excellent condition iPhone 13 Pro Max with 256GB storage...",
		Price:         rupees(85000),
		OriginalPrice: rupees(90000),
		Status:        models.StatusPending,
		SubmittedAt:   at("2024-12-25T10:30:00Z"),
		UpdatedAt:     at("2024-12-26T09:00:00Z"),
		Negotiations: []models.Negotiation{{
			ID:            id.NegotiationID(uuid.NewSHA1(seedNamespace, []byte{'n', 1})),
			Type:          models.NegotiationTypeAdminOffer,
			ProposedPrice: rupees(85000),
			Reason:        models.ReasonMarketAdjustment,
			Message:       "Based on current market trends, we suggest this price adjustment",
			AdminName:     "Alice Johnson",
			CreatedAt:     at("2024-12-26T09:00:00Z"),
			Status:        models.NegotiationPending,
		}},
	}
	macbook := models.Product{
		ID:            SeedProductID(2),
		Title:         "MacBook Air M2 - 512GB Silver",
		Seller:        "Jane Smith",
		SellerEmail:   "jane.smith@email.com",
		Category:      "Electronics",
		Condition:     "Like New",
		Description:   "Like new MacBook Air with M2 chip...",
		Price:         rupees(115000),
		OriginalPrice: rupees(115000),
		Status:        models.StatusApproved,
		SubmittedAt:   at("2024-12-24T15:45:00Z"),
		UpdatedAt:     at("2024-12-24T15:45:00Z"),
	}
	headphones := models.Product{
		ID:            SeedProductID(3),
		Title:         "Sony WH-1000XM4 Headphones",
		Seller:        "Mike Johnson",
		SellerEmail:   "mike.johnson@email.com",
		Category:      "Electronics",
		Condition:     "Good",
		Description:   "Premium wireless headphones...",
		Price:         rupees(18000),
		OriginalPrice: rupees(20000),
		Status:        models.StatusRejected,
		SubmittedAt:   at("2024-12-23T09:15:00Z"),
		UpdatedAt:     at("2024-12-23T10:00:00Z"),
		Negotiations: []models.Negotiation{{
			ID:            id.NegotiationID(uuid.NewSHA1(seedNamespace, []byte{'n', 2})),
			Type:          models.NegotiationTypeAdminOffer,
			ProposedPrice: rupees(18000),
			Reason:        models.ReasonConditionAdjustment,
			Message:       "Price adjusted based on product condition assessment",
			AdminName:     "Bob Smith",
			CreatedAt:     at("2024-12-23T10:00:00Z"),
			Status:        models.NegotiationAccepted,
		}},
	}
	sofa := models.Product{
		ID:            SeedProductID(4),
		Title:         "Vintage Leather Sofa",
		Seller:        "Sarah Wilson",
		SellerEmail:   "sarah.wilson@email.com",
		Category:      "Furniture",
		Condition:     "Used",
		Description:   "Beautiful vintage leather sofa...",
		Price:         rupees(45000),
		OriginalPrice: rupees(45000),
		Status:        models.StatusPending,
		SubmittedAt:   at("2024-12-22T14:20:00Z"),
		UpdatedAt:     at("2024-12-22T14:20:00Z"),
	}
	return []models.Product{iphone, macbook, headphones, sofa}
}
