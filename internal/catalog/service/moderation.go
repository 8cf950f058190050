package service

import (
	"context"
	"slices"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/catalog/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/requestcontext"
)

// SetStatus moves one product through the moderation state machine.
// The product stays busy until the backend answers; on failure its status
// is unchanged.
func (s *Service) SetStatus(ctx context.Context, productID id.ProductID, status models.ProductStatus, reason string) (models.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.SetStatus", trace.WithAttributes(
		attribute.String("product.id", productID.String()),
		attribute.String("product.status", string(status)),
	))
	defer span.End()

	if !status.IsValid() {
		return models.Product{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidStatus))
	}
	if _, err := s.begin(opStatus, []id.ProductID{productID}, func(p models.Product) error {
		if !p.Status.CanTransitionTo(status) {
			return dErrors.New(dErrors.CodeConflict, transitionMessage(p.Title, p.Status, status))
		}
		return nil
	}); err != nil {
		return models.Product{}, s.reject(ctx, span, err)
	}
	defer s.release(productID)

	start := time.Now()
	err := s.gateway.SetProductStatus(ctx, productID, status, reason)
	s.observe(opStatus, start, err)
	if err != nil {
		return models.Product{}, s.fail(ctx, span, opStatus, err, msgStatusFailed)
	}

	s.mu.Lock()
	updated, err := s.products[productID].WithStatus(status, requestcontext.Now(ctx))
	if err == nil {
		s.products[productID] = updated
	}
	s.mu.Unlock()
	if err != nil {
		return models.Product{}, s.fail(ctx, span, opStatus, dErrors.Wrap(err, dErrors.CodeInternal, "apply status"), msgStatusFailed)
	}

	switch status {
	case models.StatusApproved:
		s.notifier.Success(statusMessage(updated.Title, status))
	case models.StatusRejected:
		s.notifier.Warning(statusMessage(updated.Title, status))
	default:
		s.notifier.Info(statusMessage(updated.Title, status))
	}
	s.emitAudit(ctx, statusEvent(status), productID, reason, "")
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(status), "single", 1)
	}
	s.logger.InfoContext(ctx, "product status changed",
		"request_id", requestcontext.RequestID(ctx),
		"product_id", productID,
		"status", status,
	)
	return updated.Clone(), nil
}

// BulkSetStatus applies one status to a batch in a single backend call.
// The batch is all-or-nothing: an unknown id, a busy id or a forbidden
// transition rejects it before the call. Products already at status are
// carried through unchanged.
func (s *Service) BulkSetStatus(ctx context.Context, productIDs []id.ProductID, status models.ProductStatus, reason string) (int, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.BulkSetStatus", trace.WithAttributes(
		attribute.Int("catalog.batch_size", len(productIDs)),
		attribute.String("product.status", string(status)),
	))
	defer span.End()

	ids := dedupeIDs(productIDs)
	if len(ids) == 0 {
		span.SetAttributes(attribute.Bool("catalog.empty_selection", true))
		s.notifier.Warning(msgSelectProducts)
		return 0, dErrors.New(dErrors.CodeValidation, msgSelectProducts)
	}
	if !status.IsValid() {
		return 0, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidStatus))
	}
	if _, err := s.begin(opBulk, ids, func(p models.Product) error {
		if p.Status != status && !p.Status.CanTransitionTo(status) {
			return dErrors.New(dErrors.CodeConflict, transitionMessage(p.Title, p.Status, status))
		}
		return nil
	}); err != nil {
		return 0, s.reject(ctx, span, err)
	}
	defer s.release(ids...)

	start := time.Now()
	err := s.gateway.BulkSetProductStatus(ctx, ids, status, reason)
	s.observe(opBulk, start, err)
	if err != nil {
		return 0, s.fail(ctx, span, opBulk, err, msgBulkFailed)
	}

	now := requestcontext.Now(ctx)
	s.mu.Lock()
	updates := make(map[id.ProductID]models.Product, len(ids))
	var applyErr error
	for _, pid := range ids {
		p := s.products[pid]
		if p.Status == status {
			continue
		}
		next, err := p.WithStatus(status, now)
		if err != nil {
			applyErr = err
			break
		}
		updates[pid] = next
	}
	if applyErr == nil {
		for pid, p := range updates {
			s.products[pid] = p
		}
		clear(s.selected)
	}
	s.mu.Unlock()
	if applyErr != nil {
		return 0, s.fail(ctx, span, opBulk, dErrors.Wrap(applyErr, dErrors.CodeInternal, "apply bulk status"), msgBulkFailed)
	}

	s.notifier.Success(bulkMessage(len(ids), status))
	for pid := range updates {
		s.emitAudit(ctx, statusEvent(status), pid, reason, "bulk")
	}
	if s.metrics != nil {
		s.metrics.IncrementTransition(string(status), "bulk", len(updates))
	}
	s.logger.InfoContext(ctx, "bulk product status applied",
		"request_id", requestcontext.RequestID(ctx),
		"status", status,
		"count", len(ids),
		"changed", len(updates),
	)
	return len(ids), nil
}

// BulkSetSelected runs BulkSetStatus over the current selection.
func (s *Service) BulkSetSelected(ctx context.Context, status models.ProductStatus, reason string) (int, error) {
	return s.BulkSetStatus(ctx, s.Selected(), status, reason)
}

// Remove deletes a product through the backend. The removal cannot be
// undone; callers confirm with the admin before invoking it.
func (s *Service) Remove(ctx context.Context, productID id.ProductID) error {
	ctx, span := s.tracer.Start(ctx, "catalog.Remove",
		trace.WithAttributes(attribute.String("product.id", productID.String())))
	defer span.End()

	snapshot, err := s.begin(opDelete, []id.ProductID{productID}, nil)
	if err != nil {
		return s.reject(ctx, span, err)
	}
	defer s.release(productID)

	start := time.Now()
	err = s.gateway.DeleteProduct(ctx, productID)
	s.observe(opDelete, start, err)
	if err != nil {
		return s.fail(ctx, span, opDelete, err, msgDeleteFailed)
	}

	s.mu.Lock()
	delete(s.products, productID)
	delete(s.selected, productID)
	if i := slices.Index(s.order, productID); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
	if s.total > 0 {
		s.total--
	}
	s.mu.Unlock()

	title := snapshot[productID].Title
	s.notifier.Success(deletedMessage(title))
	s.emitAudit(ctx, audit.EventProductDeleted, productID, "", title)
	if s.metrics != nil {
		s.metrics.IncrementDeletion()
	}
	s.logger.InfoContext(ctx, "product deleted",
		"request_id", requestcontext.RequestID(ctx),
		"product_id", productID,
	)
	return nil
}

func statusEvent(status models.ProductStatus) audit.AuditEvent {
	switch status {
	case models.StatusApproved:
		return audit.EventProductApproved
	case models.StatusRejected:
		return audit.EventProductRejected
	default:
		return audit.EventProductReopened
	}
}

