package models

import (
	"time"

	"github.com/shopspring/decimal"

	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
)

// NegotiationReason explains an admin price proposal.
type NegotiationReason string

const (
	ReasonMarketAdjustment    NegotiationReason = "market_adjustment"
	ReasonConditionAdjustment NegotiationReason = "condition_adjustment"
	ReasonCompetitivePricing  NegotiationReason = "competitive_pricing"
	ReasonDemandBased         NegotiationReason = "demand_based"
	ReasonSeasonalAdjustment  NegotiationReason = "seasonal_adjustment"
	ReasonOther               NegotiationReason = "other"
)

var reasonLabels = map[NegotiationReason]string{
	ReasonMarketAdjustment:    "Market Price Adjustment",
	ReasonConditionAdjustment: "Condition-based Adjustment",
	ReasonCompetitivePricing:  "Competitive Pricing",
	ReasonDemandBased:         "Demand-based Pricing",
	ReasonSeasonalAdjustment:  "Seasonal Adjustment",
	ReasonOther:               "Other",
}

func (r NegotiationReason) IsValid() bool {
	_, ok := reasonLabels[r]
	return ok
}

// Label is the human-readable reason shown to sellers.
func (r NegotiationReason) Label() string {
	return reasonLabels[r]
}

// NegotiationStatus tracks the seller's answer to a proposal.
type NegotiationStatus string

const (
	NegotiationPending  NegotiationStatus = "pending"
	NegotiationAccepted NegotiationStatus = "accepted"
	NegotiationRejected NegotiationStatus = "rejected"
)

// NegotiationType distinguishes admin offers from seller counters.
const NegotiationTypeAdminOffer = "admin_offer"

// Negotiation is an admin price proposal owned by a product.
type Negotiation struct {
	ID            id.NegotiationID  `json:"id"`
	Type          string            `json:"type"`
	ProposedPrice decimal.Decimal   `json:"proposed_price"`
	Reason        NegotiationReason `json:"reason"`
	Message       string            `json:"message"`
	AdminName     string            `json:"admin_name"`
	CreatedAt     time.Time         `json:"created_at"`
	Status        NegotiationStatus `json:"status"`
}

func (n Negotiation) Validate() error {
	if !n.ProposedPrice.IsPositive() {
		return dErrors.New(dErrors.CodeInvariantViolation, "proposed price must be positive")
	}
	if !n.Reason.IsValid() {
		return dErrors.New(dErrors.CodeInvariantViolation, "negotiation reason is invalid")
	}
	if n.Message == "" {
		return dErrors.New(dErrors.CodeInvariantViolation, "negotiation message is required")
	}
	return nil
}

// NewNegotiation builds a pending admin offer.
func NewNegotiation(negotiationID id.NegotiationID, price decimal.Decimal, reason NegotiationReason, message, adminName string, now time.Time) (Negotiation, error) {
	n := Negotiation{
		ID:            negotiationID,
		Type:          NegotiationTypeAdminOffer,
		ProposedPrice: price,
		Reason:        reason,
		Message:       message,
		AdminName:     adminName,
		CreatedAt:     now,
		Status:        NegotiationPending,
	}
	return n, n.Validate()
}
