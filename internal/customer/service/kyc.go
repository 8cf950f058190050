package service

import (
	"context"
	"fmt"
	"strings"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/audit"
	"refurb/pkg/requestcontext"
)

// ReviewDocument records an approval or rejection of one KYC document and
// recomputes the customer's KYC status.
func (s *Service) ReviewDocument(ctx context.Context, customerID id.CustomerID, review models.DocumentReview) (models.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.ReviewDocument", customerAttr(customerID))
	defer span.End()

	loaded, err := s.begin(ctx, opKYC, customerID)
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	defer s.release(customerID)

	current := loaded[0]
	next, err := current.WithDocumentReview(review, requestcontext.Now(ctx))
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	if err := s.store.SaveAll(ctx, []models.Customer{next}); err != nil {
		return models.Customer{}, s.reject(ctx, span, wrapStoreErr(err, msgKYCFailed))
	}

	label := review.Kind.Label()
	reason := strings.TrimSpace(review.Reason)
	decision, event := "approved", audit.EventKYCDocumentVerified
	switch {
	case !review.Approve:
		decision, event = "rejected", audit.EventKYCDocumentRejected
		s.notifier.Warning(fmt.Sprintf("%s rejected for %s: %s", label, next.Name, reason))
	case next.KYC.Status == models.KYCVerified && current.KYC.Status != models.KYCVerified:
		s.notifier.Success(fmt.Sprintf("KYC verified for %s", next.Name))
	default:
		s.notifier.Success(fmt.Sprintf("%s verified for %s", label, next.Name))
	}
	if review.Approve {
		reason = ""
	}
	s.emitAudit(ctx, event, next.ID, reason,
		fmt.Sprintf("document=%s kyc=%s", review.Kind, next.KYC.Status))
	if s.metrics != nil {
		s.metrics.IncrementReview(string(review.Kind), decision)
	}
	s.logger.InfoContext(ctx, "kyc document reviewed",
		"request_id", requestcontext.RequestID(ctx),
		"customer_id", next.ID,
		"document", review.Kind,
		"decision", decision,
		"kyc_status", next.KYC.Status,
	)
	return next, nil
}

// SetRiskLevel replaces the customer's risk assessment.
func (s *Service) SetRiskLevel(ctx context.Context, customerID id.CustomerID, level models.RiskLevel) (models.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.SetRiskLevel", customerAttr(customerID))
	defer span.End()

	loaded, err := s.begin(ctx, opRisk, customerID)
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	defer s.release(customerID)

	current := loaded[0]
	next, err := current.WithRiskLevel(level, requestcontext.Now(ctx))
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	if err := s.store.SaveAll(ctx, []models.Customer{next}); err != nil {
		return models.Customer{}, s.reject(ctx, span, wrapStoreErr(err, msgKYCFailed))
	}

	s.notifier.Success(fmt.Sprintf("Risk level for %s set to %s", next.Name, level))
	s.emitAudit(ctx, audit.EventCustomerRiskChanged, next.ID, "",
		fmt.Sprintf("%s -> %s", current.KYC.RiskLevel, level))
	return next, nil
}
