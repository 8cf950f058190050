// Package gateway holds the payout backend the settlement store talks to.
package gateway

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	catalog "refurb/internal/catalog/gateway"
	customers "refurb/internal/customer/store"
	"refurb/internal/platform/simulate"
	"refurb/internal/settlement/models"
	"refurb/internal/settlement/ports"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/upstream"
)

// Operation names accepted by FailNext.
const (
	OpList    = "list"
	OpProcess = "process"
	OpSettle  = "settle"
	OpVerify  = "verify"
)

const (
	DefaultFastLatency   = 300 * time.Millisecond
	DefaultNormalLatency = time.Second
)

// Simulated is an in-memory payout network. It keeps its own copy of each
// payment and enforces the same gates as the store.
type Simulated struct {
	mu       sync.Mutex
	payments map[id.PaymentID]models.Payment
	order    []id.PaymentID

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
// error. A failed settle call marks the payout failed.
func WithFailureRate(rate float64, seed uint64) SimulatedOption {
	return func(s *Simulated) {
		s.faults = simulate.NewFaults(rate, seed)
	}
}

func WithPayments(payments ...models.Payment) SimulatedOption {
	return func(s *Simulated) {
		for _, p := range payments {
			if _, ok := s.payments[p.ID]; !ok {
				s.order = append(s.order, p.ID)
			}
			s.payments[p.ID] = p.Clone()
		}
	}
}

// WithSeedData loads the demo payouts.
func WithSeedData() SimulatedOption {
	return WithPayments(SeedPayments()...)
}

func WithNow(now func() time.Time) SimulatedOption {
	return func(s *Simulated) {
		s.now = now
	}
}

func NewSimulated(opts ...SimulatedOption) *Simulated {
	s := &Simulated{
		payments: make(map[id.PaymentID]models.Payment),
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

// ListPayments returns payouts in ledger order.
func (s *Simulated) ListPayments(ctx context.Context) ([]models.Payment, error) {
	if err := s.call(ctx, OpList, s.normal); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Payment, 0, len(s.order))
	for _, pid := range s.order {
		out = append(out, s.payments[pid].Clone())
	}
	return out, nil
}

// ProcessPayment accepts a payout. Transaction ids are left to the caller.
func (s *Simulated) ProcessPayment(ctx context.Context, paymentID id.PaymentID, req ports.ProcessRequest) (ports.ProcessResult, error) {
	if err := s.call(ctx, OpProcess, s.fast); err != nil {
		return ports.ProcessResult{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return ports.ProcessResult{}, upstream.NotFound("Payment not found")
	}
	if err := p.CanProcess(); err != nil {
		return ports.ProcessResult{}, upstream.InvalidState(err.Error())
	}
	now := s.now()
	next, err := p.WithProcessing(models.Processing{
		Amount:        req.Amount,
		Method:        req.Method,
		Notes:         req.Notes,
		TransactionID: "pending-" + paymentID.String(),
		ProcessedAt:   now,
	})
	if err != nil {
		return ports.ProcessResult{}, upstream.Rejected(err.Error())
	}
	s.payments[paymentID] = next
	return ports.ProcessResult{ProcessedAt: now}, nil
}

// ConfirmSettlement completes a processing payout. An injected fault marks
// it failed before the error is returned.
func (s *Simulated) ConfirmSettlement(ctx context.Context, paymentID id.PaymentID, transactionID string) error {
	callErr := s.call(ctx, OpSettle, s.fast)

	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return upstream.NotFound("Payment not found")
	}
	if p.Status != models.StatusProcessing {
		return upstream.InvalidState("Payment is not awaiting settlement")
	}
	p.TransactionID = transactionID
	failure := ""
	if callErr != nil {
		failure = upstream.FailureMessage(callErr, "Settlement failed")
	}
	next, err := p.WithSettlement(failure, s.now())
	if err != nil {
		return upstream.Rejected(err.Error())
	}
	s.payments[paymentID] = next
	return callErr
}

// UpdateVerification records a back-office verification result.
func (s *Simulated) UpdateVerification(ctx context.Context, paymentID id.PaymentID, update models.VerificationUpdate) error {
	if err := s.call(ctx, OpVerify, s.fast); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	if !ok {
		return upstream.NotFound("Payment not found")
	}
	next, err := p.WithVerification(update)
	if err != nil {
		return upstream.InvalidState(err.Error())
	}
	s.payments[paymentID] = next
	return nil
}

// Payment exposes the backend's copy for tests and diagnostics.
func (s *Simulated) Payment(paymentID id.PaymentID) (models.Payment, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.payments[paymentID]
	return p.Clone(), ok
}

func (s *Simulated) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// IDs returns payment ids in ledger order.
func (s *Simulated) IDs() []id.PaymentID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.order)
}

var seedNamespace = uuid.MustParse("0b7d3e44-8f21-4c6a-a1d9-73e5c2f8b610")

// SeedPaymentID derives the stable id of demo payout n.
func SeedPaymentID(n int) id.PaymentID {
	return id.PaymentID(uuid.NewSHA1(seedNamespace, []byte{'y', byte(n)}))
}

// SeedPayments is the demo ledger. Payout n belongs to demo listing n and
// demo customer n.
func SeedPayments() []models.Payment {
	at := func(s string) time.Time {
		t, _ := time.Parse(time.RFC3339, s)
		return t
	}
	processedAt := at("2024-12-25T10:15:00Z")

	return []models.Payment{
		{
			ID:               SeedPaymentID(1),
			ProductID:        catalog.SeedProductID(1),
			ProductTitle:     "iPhone 13 Pro Max - 256GB Space Gray",
			CustomerID:       customers.SeedCustomerID(1),
			CustomerName:     "John Doe",
			CustomerEmail:    "john.doe@email.com",
			CustomerPhone:    "+91 9876543210",
			CustomerVerified: true,
			ProductVerified:  true,
			Amount:           decimal.NewFromInt(85000),
			Status:           models.StatusPending,
			SubmittedAt:      at("2024-12-25T10:30:00Z"),
			Notes:            "Product verification completed",
			BankDetails:      models.BankDetails{AccountNumber: "****1234", IFSCCode: "HDFC0001234", AccountName: "John Doe"},
		},
		{
			ID:               SeedPaymentID(2),
			ProductID:        catalog.SeedProductID(2),
			ProductTitle:     "MacBook Air M2 - 512GB Silver",
			CustomerID:       customers.SeedCustomerID(2),
			CustomerName:     "Jane Smith",
			CustomerEmail:    "jane.smith@email.com",
			CustomerPhone:    "+91 8765432109",
			CustomerVerified: true,
			ProductVerified:  true,
			Amount:           decimal.NewFromInt(115000),
			Status:           models.StatusCompleted,
			SubmittedAt:      at("2024-12-24T15:45:00Z"),
			ProcessedAt:      &processedAt,
			SettledAt:        &processedAt,
			Method:           models.MethodBankTransfer,
			TransactionID:    "TXN123456789",
			Notes:            "Payment processed successfully",
			BankDetails:      models.BankDetails{AccountNumber: "****5678", IFSCCode: "ICICI0005678", AccountName: "Jane Smith"},
		},
		{
			ID:               SeedPaymentID(3),
			ProductID:        catalog.SeedProductID(3),
			ProductTitle:     "Sony WH-1000XM4 Headphones",
			CustomerID:       customers.SeedCustomerID(3),
			CustomerName:     "Mike Johnson",
			CustomerEmail:    "mike.johnson@email.com",
			CustomerPhone:    "+91 7654321098",
			CustomerVerified: false,
			ProductVerified:  true,
			Amount:           decimal.NewFromInt(18000),
			Status:           models.StatusPending,
			SubmittedAt:      at("2024-12-23T09:15:00Z"),
			Notes:            "Waiting for customer verification",
			BankDetails:      models.BankDetails{AccountNumber: "****9012", IFSCCode: "SBI0009012", AccountName: "Mike Johnson"},
		},
		{
			ID:               SeedPaymentID(4),
			ProductID:        catalog.SeedProductID(4),
			ProductTitle:     "Vintage Leather Sofa",
			CustomerID:       customers.SeedCustomerID(4),
			CustomerName:     "Sarah Wilson",
			CustomerEmail:    "sarah.wilson@email.com",
			CustomerPhone:    "+91 6543210987",
			CustomerVerified: true,
			ProductVerified:  false,
			Amount:           decimal.NewFromInt(45000),
			Status:           models.StatusPending,
			SubmittedAt:      at("2024-12-22T14:20:00Z"),
			Notes:            "Product verification in progress",
			BankDetails:      models.BankDetails{AccountNumber: "****3456", IFSCCode: "AXIS0003456", AccountName: "Sarah Wilson"},
		},
	}
}
