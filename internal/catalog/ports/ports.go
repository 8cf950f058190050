// Package ports defines the collaborators the catalog store depends on.
// Backend refusals are reported with the upstream package's RejectedError.
package ports

import (
	"context"

	"refurb/internal/catalog/models"
	"refurb/internal/notification"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/audit"
)

// ListResult is one page of the remote listing plus the unpaged total.
type ListResult struct {
	Products []models.Product
	Total    int
}

// Gateway is the marketplace product backend.
type Gateway interface {
	ListProducts(ctx context.Context, filter models.Filter, page models.Pagination) (ListResult, error)
	GetProduct(ctx context.Context, productID id.ProductID) (models.Product, error)
	SetProductStatus(ctx context.Context, productID id.ProductID, status models.ProductStatus, reason string) error
	BulkSetProductStatus(ctx context.Context, productIDs []id.ProductID, status models.ProductStatus, reason string) error
	ProposeNegotiation(ctx context.Context, productID id.ProductID, negotiation models.Negotiation) error
	DeleteProduct(ctx context.Context, productID id.ProductID) error
}

// AuditPublisher emits audit events for completed transitions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier is the slice of the notification center the store writes to.
type Notifier interface {
	Success(message string, opts ...notification.NotifyOption) notification.ID
	Error(message string, opts ...notification.NotifyOption) notification.ID
	Warning(message string, opts ...notification.NotifyOption) notification.ID
	Info(message string, opts ...notification.NotifyOption) notification.ID
}
