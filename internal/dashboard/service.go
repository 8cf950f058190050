// Package dashboard aggregates the catalog, the payout ledger and the staff
// registry into the console's landing summary.
package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	catalogmodels "refurb/internal/catalog/models"
	"refurb/internal/catalog/ports"
	settlementmodels "refurb/internal/settlement/models"
	settlement "refurb/internal/settlement/service"
	staff "refurb/internal/staff/service"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/requestcontext"
)

const summaryTimeout = 10 * time.Second

// ProductCounter reads listing totals from the marketplace backend.
type ProductCounter interface {
	ListProducts(ctx context.Context, filter catalogmodels.Filter, page catalogmodels.Pagination) (ports.ListResult, error)
}

// PaymentLedger is the settlement store.
type PaymentLedger interface {
	FetchPayments(ctx context.Context) ([]settlementmodels.Payment, error)
	Summarize() settlement.Summary
	AwaitingSettlement() int
}

// StaffDirectory is the staff registry.
type StaffDirectory interface {
	Summarize(ctx context.Context) (staff.Summary, error)
}

type ProductCounts struct {
	Total    int `json:"total"`
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
}

type PaymentCounts struct {
	Counts             map[settlementmodels.PaymentStatus]int `json:"counts"`
	PendingAmount      string                                 `json:"pending_amount"`
	CompletedAmount    string                                 `json:"completed_amount"`
	AwaitingSettlement int                                    `json:"awaiting_settlement"`
}

type StaffCounts struct {
	Active   int            `json:"active"`
	Inactive int            `json:"inactive"`
	ByRole   map[string]int `json:"by_role"`
}

type Summary struct {
	Products    ProductCounts `json:"products"`
	Payments    PaymentCounts `json:"payments"`
	Staff       StaffCounts   `json:"staff"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type Service struct {
	products ProductCounter
	payments PaymentLedger
	staff    StaffDirectory
	logger   *slog.Logger
}

func New(products ProductCounter, payments PaymentLedger, staff StaffDirectory, logger *slog.Logger) (*Service, error) {
	if products == nil || payments == nil || staff == nil {
		return nil, fmt.Errorf("products, payments and staff are required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{products: products, payments: payments, staff: staff, logger: logger}, nil
}

// Summarize gathers every section in parallel. The first failure cancels
// the rest.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, summaryTimeout)
	defer cancel()

	out := Summary{GeneratedAt: requestcontext.Now(ctx)}
	g, ctx := errgroup.WithContext(ctx)

	counts := map[string]*int{
		catalogmodels.FilterAll:              &out.Products.Total,
		string(catalogmodels.StatusPending):  &out.Products.Pending,
		string(catalogmodels.StatusApproved): &out.Products.Approved,
		string(catalogmodels.StatusRejected): &out.Products.Rejected,
	}
	for status, dst := range counts {
		g.Go(func() error {
			res, err := s.products.ListProducts(ctx,
				catalogmodels.Filter{Status: status, Category: catalogmodels.FilterAll},
				catalogmodels.Pagination{Page: 1, Limit: 1},
			)
			if err != nil {
				return fmt.Errorf("count %s products: %w", status, err)
			}
			*dst = res.Total
			return nil
		})
	}

	g.Go(func() error {
		if _, err := s.payments.FetchPayments(ctx); err != nil {
			return err
		}
		sum := s.payments.Summarize()
		out.Payments = PaymentCounts{
			Counts:             sum.Counts,
			PendingAmount:      sum.PendingAmount,
			CompletedAmount:    sum.CompletedAmount,
			AwaitingSettlement: s.payments.AwaitingSettlement(),
		}
		return nil
	})

	g.Go(func() error {
		sum, err := s.staff.Summarize(ctx)
		if err != nil {
			return err
		}
		byRole := make(map[string]int, len(sum.ByRole))
		for role, n := range sum.ByRole {
			byRole[string(role)] = n
		}
		out.Staff = StaffCounts{Active: sum.Active, Inactive: sum.Inactive, ByRole: byRole}
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard summary failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		if dErrors.CodeOf(err) != dErrors.CodeInternal {
			return Summary{}, err
		}
		return Summary{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "Failed to load dashboard. Please try again.")
	}
	return out, nil
}
