package service

import (
	"context"

	"refurb/internal/notification"
	"refurb/internal/staff/models"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/audit"
)

// Store persists staff accounts. Execute runs fn under the store's lock
// and saves the account it returns.
type Store interface {
	CreateIfEmailAvailable(ctx context.Context, account models.Account) error
	FindByID(ctx context.Context, staffID id.StaffID) (models.Account, error)
	List(ctx context.Context) ([]models.Account, error)
	Execute(ctx context.Context, staffID id.StaffID, fn func(models.Account) (models.Account, error)) (models.Account, error)
	Delete(ctx context.Context, staffID id.StaffID) (models.Account, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier is the slice of the notification center the registry writes to.
type Notifier interface {
	Success(message string, opts ...notification.NotifyOption) notification.ID
	Error(message string, opts ...notification.NotifyOption) notification.ID
}
