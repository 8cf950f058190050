package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

// PaymentStatus is the settlement state of a payout.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "pending"
	StatusProcessing PaymentStatus = "processing"
	StatusCompleted  PaymentStatus = "completed"
	StatusFailed     PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// CanTransitionTo encodes pending → processing → completed | failed.
// Completed and failed are terminal.
func (s PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	switch s {
	case StatusPending:
		return target == StatusProcessing
	case StatusProcessing:
		return target == StatusCompleted || target == StatusFailed
	}
	return false
}

// Method is how the payout reaches the customer.
type Method string

const (
	MethodBankTransfer Method = "bank_transfer"
	MethodUPI          Method = "upi"
	MethodCheck        Method = "check"
)

var methodLabels = map[Method]string{
	MethodBankTransfer: "Bank Transfer",
	MethodUPI:          "UPI",
	MethodCheck:        "Check",
}

func (m Method) IsValid() bool {
	_, ok := methodLabels[m]
	return ok
}

func (m Method) Label() string {
	return methodLabels[m]
}

// BankDetails are masked payout coordinates.
type BankDetails struct {
	AccountNumber string `json:"account_number"`
	IFSCCode      string `json:"ifsc_code"`
	AccountName   string `json:"account_name"`
}

// Payment is a payout owed to a customer for a sold product. Product and
// customer are referenced by id only.
//
// Invariants:
//   - Amount is positive
//   - A payment leaves pending only when both verification flags are set
//   - ProcessedAt and TransactionID are set exactly when status is not pending
type Payment struct {
	ID               id.PaymentID    `json:"id"`
	ProductID        id.ProductID    `json:"product_id"`
	ProductTitle     string          `json:"product_title"`
	CustomerID       id.CustomerID   `json:"customer_id"`
	CustomerName     string          `json:"customer_name"`
	CustomerEmail    string          `json:"customer_email"`
	CustomerPhone    string          `json:"customer_phone,omitempty"`
	CustomerVerified bool            `json:"customer_verified"`
	ProductVerified  bool            `json:"product_verified"`
	Amount           decimal.Decimal `json:"amount"`
	Status           PaymentStatus   `json:"status"`
	SubmittedAt      time.Time       `json:"submitted_at"`
	ProcessedAt      *time.Time      `json:"processed_at"`
	SettledAt        *time.Time      `json:"settled_at,omitempty"`
	Method           Method          `json:"payment_method,omitempty"`
	TransactionID    string          `json:"transaction_id,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	BankDetails      BankDetails     `json:"bank_details"`
}

func (p Payment) Validate() error {
	if p.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "payment id is required")
	}
	if !p.Amount.IsPositive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "payment amount must be positive")
	}
	if !p.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "payment status is invalid")
	}
	started := p.ProcessedAt != nil && p.TransactionID != ""
	if p.Status == StatusPending && (p.ProcessedAt != nil || p.TransactionID != "") {
		return dErrors.New(dErrors.CodeInvariantViolation, "pending payment must not carry a transaction")
	}
	if p.Status != StatusPending && !started {
		return dErrors.New(dErrors.CodeInvariantViolation, "processed payment requires a transaction id and processing time")
	}
	if p.Status != StatusPending && !p.Verified() {
		return dErrors.New(dErrors.CodeInvariantViolation, "unverified payment cannot leave pending")
	}
	return nil
}

// Verified reports whether both independent gates are open.
func (p Payment) Verified() bool {
	return p.CustomerVerified && p.ProductVerified
}

// Clone returns a deep copy.
func (p Payment) Clone() Payment {
	if p.ProcessedAt != nil {
		t := *p.ProcessedAt
		p.ProcessedAt = &t
	}
	if p.SettledAt != nil {
		t := *p.SettledAt
		p.SettledAt = &t
	}
	return p
}

// CanProcess gates a new processing attempt. The customer gate is reported
// before the product gate.
func (p Payment) CanProcess() error {
	if !p.CustomerVerified {
		return dErrors.New(dErrors.CodePreconditionFailed, "Cannot process payment: Customer is not verified")
	}
	if !p.ProductVerified {
		return dErrors.New(dErrors.CodePreconditionFailed, "Cannot process payment: Product is not verified")
	}
	if p.Status != StatusPending {
		return dErrors.New(dErrors.CodeConflict, "Only pending payments can be processed")
	}
	return nil
}

// Processing is the outcome of a successful processing request.
type Processing struct {
	Amount        decimal.Decimal
	Method        Method
	Notes         string
	TransactionID string
	ProcessedAt   time.Time
}

// WithProcessing returns a copy moved to processing.
func (p Payment) WithProcessing(in Processing) (Payment, error) {
	if err := p.CanProcess(); err != nil {
		return Payment{}, err
	}
	next := p.Clone()
	next.Status = StatusProcessing
	next.Amount = in.Amount
	next.Method = in.Method
	next.Notes = in.Notes
	next.TransactionID = in.TransactionID
	processedAt := in.ProcessedAt
	next.ProcessedAt = &processedAt
	return next, next.Validate()
}

// WithSettlement returns a copy moved to completed, or to failed when
// failure is non-empty.
func (p Payment) WithSettlement(failure string, now time.Time) (Payment, error) {
	target := StatusCompleted
	if failure != "" {
		target = StatusFailed
	}
	if !p.Status.CanTransitionTo(target) {
		return Payment{}, dErrors.New(dErrors.CodeInvariantViolation,
			"payment cannot move from "+string(p.Status)+" to "+string(target))
	}
	next := p.Clone()
	next.Status = target
	next.FailureReason = failure
	settledAt := now
	next.SettledAt = &settledAt
	return next, next.Validate()
}

// VerificationUpdate carries gate changes from the verification back office.
// Nil fields are left alone.
type VerificationUpdate struct {
	Customer *bool `json:"customer_verified,omitempty"`
	Product  *bool `json:"product_verified,omitempty"`
}

func (u VerificationUpdate) IsEmpty() bool {
	return u.Customer == nil && u.Product == nil
}

// WithVerification applies u. Gates only matter while pending, so a
// payment past pending rejects changes.
func (p Payment) WithVerification(u VerificationUpdate) (Payment, error) {
	if p.Status != StatusPending {
		return Payment{}, dErrors.New(dErrors.CodeConflict, "verification can only change while the payment is pending")
	}
	next := p.Clone()
	if u.Customer != nil {
		next.CustomerVerified = *u.Customer
	}
	if u.Product != nil {
		next.ProductVerified = *u.Product
	}
	return next, next.Validate()
}

// Filter narrows the payment list. Search matches product title, customer
// name and email, and transaction id.
type Filter struct {
	Search string `json:"search"`
	Status string `json:"status"`
}

const FilterAll = "all"

func (f Filter) Matches(p Payment) bool {
	status := strings.TrimSpace(f.Status)
	if status != "" && status != FilterAll && string(p.Status) != status {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.ProductTitle), q) ||
		strings.Contains(strings.ToLower(p.CustomerName), q) ||
		strings.Contains(strings.ToLower(p.CustomerEmail), q) ||
		strings.Contains(strings.ToLower(p.TransactionID), q)
}
