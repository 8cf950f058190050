package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

// Product is a seller listing under admin review.
//
// Invariants:
//   - Price and OriginalPrice are non-negative
//   - Without negotiations, Price equals OriginalPrice
//   - With negotiations, Price equals the last negotiation's ProposedPrice
//   - Negotiations are append-only and never reordered
//
// Products are values: every mutation returns a new Product, so a copy
// handed to a caller never changes underneath them.
type Product struct {
	ID            id.ProductID    `json:"id"`
	Title         string          `json:"title"`
	Seller        string          `json:"seller"`
	SellerEmail   string          `json:"seller_email"`
	Category      string          `json:"category"`
	Condition     string          `json:"condition"`
	Description   string          `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Status        ProductStatus   `json:"status"`
	SubmittedAt   time.Time       `json:"submitted_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	Negotiations  []Negotiation   `json:"negotiations"`
}

// Validate checks the price invariants.
func (p Product) Validate() error {
	if p.ID.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "product id is required")
	}
	if !p.Status.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "product status is invalid")
	}
	if p.Price.IsNegative() || p.OriginalPrice.IsNegative() {
		return dErrors.New(dErrors.CodeInvariantViolation, "product prices must not be negative")
	}
	want := p.OriginalPrice
	if last, ok := p.LastNegotiation(); ok {
		want = last.ProposedPrice
	}
	if !p.Price.Equal(want) {
		return dErrors.New(dErrors.CodeInvariantViolation, "product price does not match negotiation history")
	}
	return nil
}

// Clone returns a deep copy.
func (p Product) Clone() Product {
	p.Negotiations = slices.Clone(p.Negotiations)
	return p
}

func (p Product) LastNegotiation() (Negotiation, bool) {
	if len(p.Negotiations) == 0 {
		return Negotiation{}, false
	}
	return p.Negotiations[len(p.Negotiations)-1], true
}

// CanTransitionTo reports whether the product may move to target.
func (p Product) CanTransitionTo(target ProductStatus) error {
	if !target.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "invalid product status")
	}
	if !p.Status.CanTransitionTo(target) {
		return dErrors.New(dErrors.CodeInvariantViolation,
			"product cannot move from "+string(p.Status)+" to "+string(target))
	}
	return nil
}

// WithStatus returns a copy moved to target.
func (p Product) WithStatus(target ProductStatus, now time.Time) (Product, error) {
	if err := p.CanTransitionTo(target); err != nil {
		return Product{}, err
	}
	next := p.Clone()
	next.Status = target
	next.UpdatedAt = now
	return next, next.Validate()
}

// WithNegotiation returns a copy with n appended and the price moved to the
// proposal.
func (p Product) WithNegotiation(n Negotiation, now time.Time) (Product, error) {
	if err := n.Validate(); err != nil {
		return Product{}, err
	}
	next := p.Clone()
	next.Negotiations = append(next.Negotiations, n)
	next.Price = n.ProposedPrice
	next.UpdatedAt = now
	return next, next.Validate()
}

// NewProduct builds a freshly submitted listing.
func NewProduct(productID id.ProductID, title, seller, sellerEmail, category, condition string, price decimal.Decimal, submittedAt time.Time) (Product, error) {
	if title == "" || seller == "" {
		return Product{}, dErrors.New(dErrors.CodeInvariantViolation, "product title and seller are required")
	}
	p := Product{
		ID:            productID,
		Title:         title,
		Seller:        seller,
		SellerEmail:   sellerEmail,
		Category:      category,
		Condition:     condition,
		Price:         price,
		OriginalPrice: price,
		Status:        StatusPending,
		SubmittedAt:   submittedAt,
		UpdatedAt:     submittedAt,
	}
	return p, p.Validate()
}
