// Package ports defines the collaborators the settlement store depends on.
package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"refurb/internal/notification"
	"refurb/internal/settlement/models"
	id "refurb/pkg/domain"
	"refurb/pkg/platform/audit"
)

// ProcessRequest is what the admin submits to start a payout.
type ProcessRequest struct {
	Amount decimal.Decimal
	Method models.Method
	Notes  string
}

// ProcessResult is the gateway's acknowledgement. An empty TransactionID or
// zero ProcessedAt is filled in by the store.
type ProcessResult struct {
	TransactionID string
	ProcessedAt   time.Time
}

// Gateway is the payout network.
type Gateway interface {
	ListPayments(ctx context.Context) ([]models.Payment, error)
	ProcessPayment(ctx context.Context, paymentID id.PaymentID, req ProcessRequest) (ProcessResult, error)
	// ConfirmSettlement resolves a processing payout. It is called once,
	// after the settlement delay; an error marks the payment failed.
	ConfirmSettlement(ctx context.Context, paymentID id.PaymentID, transactionID string) error
	UpdateVerification(ctx context.Context, paymentID id.PaymentID, update models.VerificationUpdate) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Notifier is the slice of the notification center the store writes to.
type Notifier interface {
	Success(message string, opts ...notification.NotifyOption) notification.ID
	Error(message string, opts ...notification.NotifyOption) notification.ID
	Info(message string, opts ...notification.NotifyOption) notification.ID
}
