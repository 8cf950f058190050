package service

import (
	"context"

	"refurb/internal/customer/models"
	"refurb/internal/notification"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/audit"
)

// Store persists customers. SaveAll replaces every given customer or none.
type Store interface {
	FindByID(ctx context.Context, customerID id.CustomerID) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	SaveAll(ctx context.Context, customers []models.Customer) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier is the slice of the notification center customer management
// writes to.
type Notifier interface {
	Success(message string, opts ...notification.NotifyOption) notification.ID
	Error(message string, opts ...notification.NotifyOption) notification.ID
	Warning(message string, opts ...notification.NotifyOption) notification.ID
}
