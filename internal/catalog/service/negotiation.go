package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/catalog/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/money"
	"refurb/pkg/platform/audit"
	"refurb/pkg/requestcontext"
)

// ProposalInput is an admin's raw price proposal.
type ProposalInput struct {
	ProposedPrice string
	Reason        string
	Message       string
}

// Propose sends a price proposal to the seller. Input is checked before
// any backend call; on success the negotiation is appended and the product
// price follows it.
func (s *Service) Propose(ctx context.Context, productID id.ProductID, in ProposalInput) (models.Negotiation, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.Propose",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer span.End()

	message := strings.TrimSpace(in.Message)
	if strings.TrimSpace(in.ProposedPrice) == "" || strings.TrimSpace(in.Reason) == "" || message == "" {
		return models.Negotiation{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgRequiredFields))
	}
	price, err := money.Parse(in.ProposedPrice)
	if err != nil || !price.IsPositive() {
		return models.Negotiation{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidPrice))
	}
	reason := models.NegotiationReason(strings.TrimSpace(in.Reason))
	if !reason.IsValid() {
		return models.Negotiation{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidReason))
	}

	snapshot, err := s.begin(opNegotiate, []id.ProductID{productID}, nil)
	if err != nil {
		return models.Negotiation{}, s.reject(ctx, span, err)
	}
	defer s.release(productID)
	before := snapshot[productID]

	now := requestcontext.Now(ctx)
	negotiation, err := models.NewNegotiation(id.NewNegotiationID(), price, reason, message, requestcontext.ActorName(ctx), now)
	if err != nil {
		return models.Negotiation{}, s.reject(ctx, span, dErrors.Wrap(err, dErrors.CodeValidation, msgInvalidPrice))
	}

	start := time.Now()
	err = s.gateway.ProposeNegotiation(ctx, productID, negotiation)
	s.observe(opNegotiate, start, err)
	if err != nil {
		return models.Negotiation{}, s.fail(ctx, span, opNegotiate, err, msgNegotiationFailed)
	}

	s.mu.Lock()
	updated, err := s.products[productID].WithNegotiation(negotiation, now)
	if err == nil {
		s.products[productID] = updated
	}
	s.mu.Unlock()
	if err != nil {
		return models.Negotiation{}, s.fail(ctx, span, opNegotiate, dErrors.Wrap(err, dErrors.CodeInternal, "apply negotiation"), msgNegotiationFailed)
	}

	s.notifier.Success(NegotiationMessage(before.Seller, before.Price, price))
	s.emitAudit(ctx, audit.EventNegotiationProposed, productID, string(reason),
		before.Price.String()+" -> "+price.String())
	if s.metrics != nil {
		s.metrics.IncrementNegotiation()
	}
	s.logger.InfoContext(ctx, "price negotiation proposed",
		"request_id", requestcontext.RequestID(ctx),
		"product_id", productID,
		"previous_price", before.Price.String(),
		"proposed_price", price.String(),
		"reason", reason,
	)
	return negotiation, nil
}
