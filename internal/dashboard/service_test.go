package dashboard

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	catalog "refurb/internal/catalog/gateway"
	"refurb/internal/notification"
	settlementgateway "refurb/internal/settlement/gateway"
	settlementmodels "refurb/internal/settlement/models"
	settlement "refurb/internal/settlement/service"
	"refurb/internal/staff/secrets"
	staff "refurb/internal/staff/service"
	staffstore "refurb/internal/staff/store"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/clock"
	"refurb/pkg/requestcontext"
)

// =============================================================================
// Dashboard Test Suite
// =============================================================================
// Justification for unit tests: the summary fans out to three stores at once
// and must fail as a whole when any section fails.

type DashboardSuite struct {
	suite.Suite
	products *catalog.Simulated
	ledger   *settlement.Service
	service  *Service
	ctx      context.Context
}

func TestDashboardSuite(t *testing.T) {
	suite.Run(t, new(DashboardSuite))
}

func (s *DashboardSuite) SetupTest() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	now := time.Date(2024, 12, 30, 11, 0, 0, 0, time.UTC)
	fake := clock.NewFake(now)
	center := notification.New(notification.WithClock(fake))
	s.ctx = requestcontext.WithTime(context.Background(), now)

	s.products = catalog.NewSimulated(catalog.WithLatency(0, 0), catalog.WithSeedData())

	payouts := settlementgateway.NewSimulated(settlementgateway.WithLatency(0, 0), settlementgateway.WithSeedData())
	ledger, err := settlement.New(payouts, center, settlement.WithLogger(logger), settlement.WithClock(fake))
	s.Require().NoError(err)
	s.ledger = ledger

	st := staffstore.NewInMemory()
	s.Require().NoError(staffstore.SeedDemoStaff(s.ctx, st, secrets.NewHasher(bcrypt.MinCost)))
	registry, err := staff.New(st, center, staff.WithLogger(logger))
	s.Require().NoError(err)

	s.service, err = New(s.products, s.ledger, registry, logger)
	s.Require().NoError(err)
}

func (s *DashboardSuite) TearDownTest() {
	s.ledger.Close()
}

func (s *DashboardSuite) TestNew() {
	_, err := New(nil, s.ledger, nil, nil)
	s.Error(err)
}

func (s *DashboardSuite) TestSummarize() {
	sum, err := s.service.Summarize(s.ctx)
	s.Require().NoError(err)

	s.Equal(ProductCounts{Total: 4, Pending: 2, Approved: 1, Rejected: 1}, sum.Products)

	s.Equal(3, sum.Payments.Counts[settlementmodels.StatusPending])
	s.Equal(1, sum.Payments.Counts[settlementmodels.StatusCompleted])
	s.Equal("₹148,000", sum.Payments.PendingAmount)
	s.Equal("₹115,000", sum.Payments.CompletedAmount)
	s.Zero(sum.Payments.AwaitingSettlement)

	s.Equal(2, sum.Staff.Active)
	s.Equal(1, sum.Staff.Inactive)
	s.Equal(1, sum.Staff.ByRole["moderator"])

	s.Equal(time.Date(2024, 12, 30, 11, 0, 0, 0, time.UTC), sum.GeneratedAt)
}

func (s *DashboardSuite) TestSectionFailureFailsSummary() {
	s.products.FailNext(catalog.OpList, errors.New("connection reset"))

	_, err := s.service.Summarize(s.ctx)
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
	s.Equal("Failed to load dashboard. Please try again.", dErrors.Message(err))
}
