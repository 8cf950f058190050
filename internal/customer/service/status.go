package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"refurb/internal/customer/models"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/requestcontext"
)

var statusEvents = map[models.Status]audit.AuditEvent{
	models.StatusActive:    audit.EventCustomerActivated,
	models.StatusSuspended: audit.EventCustomerSuspended,
	models.StatusBanned:    audit.EventCustomerBanned,
}

// SetStatus moves one customer to status. Setting the current status is a
// conflict.
func (s *Service) SetStatus(ctx context.Context, customerID id.CustomerID, status models.Status) (models.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.SetStatus", customerAttr(customerID))
	defer span.End()

	if !status.IsValid() {
		return models.Customer{}, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidStatus))
	}
	return s.changeStatus(ctx, span, customerID, func(models.Customer) models.Status { return status })
}

// ToggleStatus suspends an active customer and reactivates anyone else.
func (s *Service) ToggleStatus(ctx context.Context, customerID id.CustomerID) (models.Customer, error) {
	ctx, span := s.tracer.Start(ctx, "customer.ToggleStatus", customerAttr(customerID))
	defer span.End()

	return s.changeStatus(ctx, span, customerID, models.Customer.Toggled)
}

func (s *Service) changeStatus(ctx context.Context, span trace.Span, customerID id.CustomerID, target func(models.Customer) models.Status) (models.Customer, error) {
	loaded, err := s.begin(ctx, opStatus, customerID)
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	defer s.release(customerID)

	current := loaded[0]
	next, err := current.WithStatus(target(current), requestcontext.Now(ctx))
	if err != nil {
		return models.Customer{}, s.reject(ctx, span, err)
	}
	if err := s.store.SaveAll(ctx, []models.Customer{next}); err != nil {
		return models.Customer{}, s.reject(ctx, span, wrapStoreErr(err, msgStatusFailed))
	}

	s.announceStatus(next)
	s.emitAudit(ctx, statusEvents[next.Status], next.ID, "",
		fmt.Sprintf("%s -> %s", current.Status, next.Status))
	if s.metrics != nil {
		s.metrics.IncrementStatusChange(string(next.Status), 1)
	}
	s.changed(ctx)
	s.logger.InfoContext(ctx, "customer status changed",
		"request_id", requestcontext.RequestID(ctx),
		"customer_id", next.ID,
		"from", current.Status,
		"to", next.Status,
	)
	return next, nil
}

// announceStatus posts the one notification for a status change. Its kind
// follows the severity of the new status.
func (s *Service) announceStatus(c models.Customer) {
	switch c.Status {
	case models.StatusActive:
		s.notifier.Success(fmt.Sprintf("User %q has been activated", c.Name))
	case models.StatusSuspended:
		s.notifier.Warning(fmt.Sprintf("User %q has been suspended", c.Name))
	default:
		s.notifier.Error(fmt.Sprintf("User %q has been banned", c.Name))
	}
}

// bulkVerb is the past tense used in the bulk summary. Bans are reported as
// updates.
func bulkVerb(status models.Status) string {
	switch status {
	case models.StatusActive:
		return "activated"
	case models.StatusSuspended:
		return "suspended"
	default:
		return "updated"
	}
}

// BulkSetStatus moves a batch of customers to status in one store write.
// Customers already at status count toward the total but are not
// rewritten. Either every customer changes or none does; the selection is
// cleared only on success.
func (s *Service) BulkSetStatus(ctx context.Context, customerIDs []id.CustomerID, status models.Status) (int, error) {
	ctx, span := s.tracer.Start(ctx, "customer.BulkSetStatus", trace.WithAttributes(
		attribute.Int("customer.count", len(customerIDs)),
		attribute.String("customer.status", string(status)),
	))
	defer span.End()

	ids := dedupeIDs(customerIDs)
	if len(ids) == 0 {
		s.notifier.Warning(msgSelectUsers)
		return 0, dErrors.New(dErrors.CodeValidation, msgSelectUsers)
	}
	if !status.IsValid() {
		return 0, s.reject(ctx, span, dErrors.New(dErrors.CodeValidation, msgInvalidStatus))
	}

	loaded, err := s.begin(ctx, opBulk, ids...)
	if err != nil {
		return 0, s.reject(ctx, span, err)
	}
	defer s.release(ids...)

	now := requestcontext.Now(ctx)
	changed := make([]models.Customer, 0, len(loaded))
	from := make(map[id.CustomerID]models.Status, len(loaded))
	for _, c := range loaded {
		if c.Status == status {
			continue
		}
		next, err := c.WithStatus(status, now)
		if err != nil {
			return 0, s.reject(ctx, span, err)
		}
		from[c.ID] = c.Status
		changed = append(changed, next)
	}
	if len(changed) > 0 {
		if err := s.store.SaveAll(ctx, changed); err != nil {
			return 0, s.reject(ctx, span, wrapStoreErr(err, msgBulkFailed))
		}
	}

	s.ClearSelection()
	s.notifier.Success(fmt.Sprintf("%d user(s) %s successfully", len(ids), bulkVerb(status)))
	for _, c := range changed {
		s.emitAudit(ctx, statusEvents[status], c.ID, "",
			fmt.Sprintf("bulk: %s -> %s", from[c.ID], status))
	}
	if s.metrics != nil {
		s.metrics.IncrementStatusChange(string(status), len(changed))
	}
	s.changed(ctx)
	s.logger.InfoContext(ctx, "customer bulk status applied",
		"request_id", requestcontext.RequestID(ctx),
		"status", status,
		"selected", len(ids),
		"changed", len(changed),
	)
	return len(ids), nil
}

// BulkSetSelected runs BulkSetStatus over the current selection.
func (s *Service) BulkSetSelected(ctx context.Context, status models.Status) (int, error) {
	return s.BulkSetStatus(ctx, s.Selected(), status)
}
