package service

//go:generate mockgen -source=../ports/ports.go -destination=mocks/mocks.go -package=mocks Gateway,AuditPublisher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"refurb/internal/catalog/models"
	"refurb/internal/catalog/ports"
	"refurb/internal/catalog/service/mocks"
	"refurb/internal/notification"
	id "refurb/pkg/domain"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/clock"
	"refurb/pkg/platform/upstream"
	"refurb/pkg/requestcontext"
)

// =============================================================================
// Catalog Service Test Suite
// =============================================================================
// Justification for unit tests: the store's guarantees are about ordering
// against the backend (busy marks, no call on local rejection, state only
// changing after success) which need a scripted gateway to observe.

type CatalogServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	gateway *mocks.MockGateway
	center  *notification.Center
	clock   *clock.Fake
	service *Service
	ctx     context.Context
	now     time.Time

	iphone  models.Product
	macbook models.Product
	watch   models.Product
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.gateway = mocks.NewMockGateway(s.ctrl)
	s.now = time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)
	s.clock = clock.NewFake(s.now)
	s.center = notification.New(notification.WithClock(clock.NewFake(s.now)))
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.ctx = requestcontext.WithActorName(s.ctx, "Priya Admin")

	s.iphone = s.product("iPhone 13 Pro", "Rahul Sharma", "Electronics", 85000, models.StatusPending)
	s.macbook = s.product("MacBook Air M1", "Priya Patel", "Computers", 72000, models.StatusPending)
	s.watch = s.product("Apple Watch Series 7", "Amit Kumar", "Wearables", 28000, models.StatusApproved)

	s.service = s.newService()
}

func (s *CatalogServiceSuite) TearDownTest() {
	s.service.Close()
}

func (s *CatalogServiceSuite) newService(opts ...Option) *Service {
	base := []Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithClock(s.clock),
	}
	svc, err := New(s.gateway, s.center, append(base, opts...)...)
	s.Require().NoError(err)
	return svc
}

func (s *CatalogServiceSuite) product(title, seller, category string, price int64, status models.ProductStatus) models.Product {
	p, err := models.NewProduct(id.NewProductID(), title, seller, "seller@example.com", category, "Excellent",
		decimal.NewFromInt(price), s.now.Add(-24*time.Hour))
	s.Require().NoError(err)
	p.Status = status
	return p
}

// load primes the cache with a fetched page.
func (s *CatalogServiceSuite) load(products ...models.Product) {
	s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.ListResult{Products: products, Total: len(products)}, nil)
	_, err := s.service.FetchProducts(s.ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)
	s.center.Clear()
}

func (s *CatalogServiceSuite) lastNotification() notification.Notification {
	list := s.center.List()
	s.Require().NotEmpty(list)
	return list[len(list)-1]
}

func (s *CatalogServiceSuite) mustGet(pid id.ProductID) models.Product {
	p, err := s.service.Get(pid)
	s.Require().NoError(err)
	return p
}

// =============================================================================
// Construction
// =============================================================================

func (s *CatalogServiceSuite) TestNew() {
	s.Run("requires a gateway", func() {
		_, err := New(nil, s.center)
		s.Error(err)
	})
	s.Run("requires a notifier", func() {
		_, err := New(s.gateway, nil)
		s.Error(err)
	})
}

// =============================================================================
// Fetching
// =============================================================================

func (s *CatalogServiceSuite) TestFetchProducts() {
	s.Run("reports ceil page count and caches the page in order", func() {
		s.gateway.EXPECT().ListProducts(gomock.Any(), models.Filter{Search: "apple", Status: "all", Category: "all"}, models.Pagination{Page: 1, Limit: 10}).
			Return(ports.ListResult{Products: []models.Product{s.iphone, s.macbook}, Total: 21}, nil)

		page, err := s.service.FetchProducts(s.ctx, models.Filter{Search: " apple "}, models.Pagination{Page: 1, Limit: 10})
		s.Require().NoError(err)
		s.Equal(21, page.Total)
		s.Equal(3, page.TotalPages)
		s.Equal(21, s.service.Total())

		got := s.service.Products()
		s.Require().Len(got, 2)
		s.Equal(s.iphone.ID, got[0].ID)
		s.Equal(s.macbook.ID, got[1].ID)
	})

	s.Run("skips products that violate price invariants", func() {
		broken := s.iphone
		broken.ID = id.NewProductID()
		broken.Price = decimal.NewFromInt(1)
		s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ports.ListResult{Products: []models.Product{broken, s.watch}, Total: 2}, nil)

		page, err := s.service.FetchProducts(s.ctx, models.DefaultFilter(), models.DefaultPagination())
		s.Require().NoError(err)
		s.Require().Len(page.Products, 1)
		s.Equal(s.watch.ID, page.Products[0].ID)
	})

	s.Run("failure keeps the cache and shows the fallback message", func() {
		s.center.Clear()
		s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(ports.ListResult{}, errors.New("connection refused"))

		_, err := s.service.FetchProducts(s.ctx, models.DefaultFilter(), models.DefaultPagination())
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Len(s.service.Products(), 1)
		n := s.lastNotification()
		s.Equal(notification.KindError, n.Kind)
		s.Equal(msgLoadFailed, n.Message)
	})
}

func (s *CatalogServiceSuite) TestFetchPreservesBusyProducts() {
	s.load(s.iphone, s.macbook)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusApproved, "").
		DoAndReturn(func(context.Context, id.ProductID, models.ProductStatus, string) error {
			close(entered)
			<-release
			return nil
		})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
	}()
	<-entered

	// the backend still reports the old copy and drops the product from
	// this page; the in-flight product must survive both
	stale := s.iphone
	stale.Title = "stale title"
	s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.ListResult{Products: []models.Product{stale, s.macbook}, Total: 2}, nil)
	page, err := s.service.FetchProducts(s.ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)
	s.Equal("iPhone 13 Pro", page.Products[0].Title)

	s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.ListResult{Products: []models.Product{s.macbook}, Total: 1}, nil)
	_, err = s.service.FetchProducts(s.ctx, models.DefaultFilter(), models.DefaultPagination())
	s.Require().NoError(err)
	s.Len(s.service.Products(), 1)

	close(release)
	wg.Wait()

	s.Equal(models.StatusApproved, s.mustGet(s.iphone.ID).Status)
	s.False(s.service.IsBusy(s.iphone.ID))
}

func (s *CatalogServiceSuite) TestLoad() {
	s.load(s.iphone)
	updated := s.iphone
	updated.Description = "Mint condition"
	s.gateway.EXPECT().GetProduct(gomock.Any(), s.iphone.ID).Return(updated, nil)

	got, err := s.service.Load(s.ctx, s.iphone.ID)
	s.Require().NoError(err)
	s.Equal("Mint condition", got.Description)
	s.Equal("Mint condition", s.mustGet(s.iphone.ID).Description)
}

// =============================================================================
// Moderation
// =============================================================================

func (s *CatalogServiceSuite) TestSetStatus() {
	s.Run("approve succeeds and notifies", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusApproved, "").Return(nil)

		got, err := s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
		s.Require().NoError(err)
		s.Equal(models.StatusApproved, got.Status)
		s.Equal(s.now, got.UpdatedAt)
		s.False(s.service.IsBusy(s.iphone.ID))

		n := s.lastNotification()
		s.Equal(notification.KindSuccess, n.Kind)
		s.Equal(`Product "iPhone 13 Pro" has been approved successfully`, n.Message)
	})

	s.Run("reject warns", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusRejected, "blurry photos").Return(nil)

		_, err := s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusRejected, "blurry photos")
		s.Require().NoError(err)
		n := s.lastNotification()
		s.Equal(notification.KindWarning, n.Kind)
		s.Equal(`Product "iPhone 13 Pro" has been rejected`, n.Message)
	})

	s.Run("forbidden transition never reaches the backend", func() {
		s.load(s.watch)

		_, err := s.service.SetStatus(s.ctx, s.watch.ID, models.StatusRejected, "")
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(models.StatusApproved, s.mustGet(s.watch.ID).Status)
		s.Equal(notification.KindError, s.lastNotification().Kind)
	})

	s.Run("unknown product is rejected locally", func() {
		s.load(s.iphone)

		_, err := s.service.SetStatus(s.ctx, id.NewProductID(), models.StatusApproved, "")
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
		s.Equal(msgProductNotFound, s.lastNotification().Message)
	})

	s.Run("backend rejection message is shown verbatim", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusApproved, "").
			Return(upstream.Rejected("Seller account suspended"))

		_, err := s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
		s.Require().Error(err)
		s.Equal("Seller account suspended", s.lastNotification().Message)
		s.Equal(models.StatusPending, s.mustGet(s.iphone.ID).Status)
		s.False(s.service.IsBusy(s.iphone.ID))
	})

	s.Run("transport failure falls back to the generic message", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusApproved, "").
			Return(context.DeadlineExceeded)

		_, err := s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
		s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))
		s.Equal(msgStatusFailed, s.lastNotification().Message)
	})
}

func (s *CatalogServiceSuite) TestSetStatusRejectsConcurrentAction() {
	s.load(s.iphone)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusApproved, "").
		DoAndReturn(func(context.Context, id.ProductID, models.ProductStatus, string) error {
			close(entered)
			<-release
			return nil
		}).Times(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
	}()
	<-entered

	s.True(s.service.IsBusy(s.iphone.ID))
	s.Equal(opStatus, s.service.BusyKind(s.iphone.ID))

	_, err := s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusRejected, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	_, err = s.service.Propose(s.ctx, s.iphone.ID, ProposalInput{ProposedPrice: "80000", Reason: "other", Message: "offer"})
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal(msgProductBusy, s.lastNotification().Message)

	close(release)
	wg.Wait()
	s.False(s.service.IsBusy(s.iphone.ID))
}

type panickingGateway struct {
	ports.Gateway
}

func (panickingGateway) SetProductStatus(context.Context, id.ProductID, models.ProductStatus, string) error {
	panic("backend exploded")
}

func (s *CatalogServiceSuite) TestPanicReleasesBusyMark() {
	s.load(s.iphone)
	s.service.gateway = panickingGateway{Gateway: s.gateway}

	s.Panics(func() {
		_, _ = s.service.SetStatus(s.ctx, s.iphone.ID, models.StatusApproved, "")
	})
	s.False(s.service.IsBusy(s.iphone.ID))
	s.Equal(models.StatusPending, s.mustGet(s.iphone.ID).Status)
}

func (s *CatalogServiceSuite) TestBulkSetStatus() {
	s.Run("applies to every product in one call", func() {
		s.load(s.iphone, s.macbook, s.watch)
		_, err := s.service.ToggleSelection(s.iphone.ID)
		s.Require().NoError(err)
		_, err = s.service.ToggleSelection(s.macbook.ID)
		s.Require().NoError(err)

		s.gateway.EXPECT().BulkSetProductStatus(gomock.Any(), []id.ProductID{s.iphone.ID, s.macbook.ID}, models.StatusApproved, "").
			Return(nil)

		n, err := s.service.BulkSetSelected(s.ctx, models.StatusApproved, "")
		s.Require().NoError(err)
		s.Equal(2, n)
		s.Equal(models.StatusApproved, s.mustGet(s.iphone.ID).Status)
		s.Equal(models.StatusApproved, s.mustGet(s.macbook.ID).Status)
		s.Empty(s.service.Selected())
		s.Equal("2 product(s) approved successfully", s.lastNotification().Message)
	})

	s.Run("products already at the target are counted unchanged", func() {
		s.load(s.iphone, s.watch)
		s.gateway.EXPECT().BulkSetProductStatus(gomock.Any(), []id.ProductID{s.iphone.ID, s.watch.ID}, models.StatusApproved, "").
			Return(nil)

		n, err := s.service.BulkSetStatus(s.ctx, []id.ProductID{s.iphone.ID, s.watch.ID, s.iphone.ID}, models.StatusApproved, "")
		s.Require().NoError(err)
		s.Equal(2, n)
		s.Equal(s.watch.UpdatedAt, s.mustGet(s.watch.ID).UpdatedAt)
	})

	s.Run("empty selection warns without a backend call", func() {
		s.load(s.iphone)

		_, err := s.service.BulkSetSelected(s.ctx, models.StatusApproved, "")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		n := s.lastNotification()
		s.Equal(notification.KindWarning, n.Kind)
		s.Equal(msgSelectProducts, n.Message)
	})

	s.Run("one forbidden transition rejects the whole batch", func() {
		s.load(s.iphone, s.watch)

		_, err := s.service.BulkSetStatus(s.ctx, []id.ProductID{s.iphone.ID, s.watch.ID}, models.StatusRejected, "")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		s.Equal(models.StatusPending, s.mustGet(s.iphone.ID).Status)
		s.False(s.service.IsBusy(s.iphone.ID))
	})

	s.Run("backend failure changes nothing", func() {
		s.load(s.iphone, s.macbook)
		s.gateway.EXPECT().BulkSetProductStatus(gomock.Any(), gomock.Any(), models.StatusRejected, "").
			Return(errors.New("bad gateway"))

		_, err := s.service.BulkSetStatus(s.ctx, []id.ProductID{s.iphone.ID, s.macbook.ID}, models.StatusRejected, "")
		s.Require().Error(err)
		s.Equal(models.StatusPending, s.mustGet(s.iphone.ID).Status)
		s.Equal(models.StatusPending, s.mustGet(s.macbook.ID).Status)
		s.Equal(msgBulkFailed, s.lastNotification().Message)
		s.False(s.service.IsBusy(s.macbook.ID))
	})

	s.Run("backend failure releases only the batch", func() {
		s.load(s.iphone, s.macbook, s.watch)

		entered := make(chan struct{})
		release := make(chan struct{})
		s.gateway.EXPECT().DeleteProduct(gomock.Any(), s.watch.ID).
			DoAndReturn(func(context.Context, id.ProductID) error {
				close(entered)
				<-release
				return nil
			})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.service.Remove(s.ctx, s.watch.ID)
		}()
		<-entered

		s.gateway.EXPECT().BulkSetProductStatus(gomock.Any(), []id.ProductID{s.iphone.ID, s.macbook.ID}, models.StatusRejected, "").
			Return(errors.New("bad gateway"))
		_, err := s.service.BulkSetStatus(s.ctx, []id.ProductID{s.iphone.ID, s.macbook.ID}, models.StatusRejected, "")
		s.Require().Error(err)

		s.False(s.service.IsBusy(s.iphone.ID))
		s.False(s.service.IsBusy(s.macbook.ID))
		s.True(s.service.IsBusy(s.watch.ID))
		s.Equal(opDelete, s.service.BusyKind(s.watch.ID))

		close(release)
		wg.Wait()
		s.False(s.service.IsBusy(s.watch.ID))
	})
}

func (s *CatalogServiceSuite) TestBulkRejectsWhenAnyProductIsBusy() {
	s.load(s.iphone, s.macbook)

	entered := make(chan struct{})
	release := make(chan struct{})
	s.gateway.EXPECT().DeleteProduct(gomock.Any(), s.macbook.ID).
		DoAndReturn(func(context.Context, id.ProductID) error {
			close(entered)
			<-release
			return nil
		})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.service.Remove(s.ctx, s.macbook.ID)
	}()
	<-entered

	_, err := s.service.BulkSetStatus(s.ctx, []id.ProductID{s.iphone.ID, s.macbook.ID}, models.StatusApproved, "")
	s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	s.Equal("1 selected product(s) already have an action in progress", s.lastNotification().Message)
	s.False(s.service.IsBusy(s.iphone.ID))

	close(release)
	wg.Wait()
}

func (s *CatalogServiceSuite) TestRemove() {
	s.load(s.iphone, s.macbook)
	_, err := s.service.ToggleSelection(s.iphone.ID)
	s.Require().NoError(err)
	s.gateway.EXPECT().DeleteProduct(gomock.Any(), s.iphone.ID).Return(nil)

	s.Require().NoError(s.service.Remove(s.ctx, s.iphone.ID))

	_, err = s.service.Get(s.iphone.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.Len(s.service.Products(), 1)
	s.Empty(s.service.Selected())
	s.Equal(1, s.service.Total())
	s.Equal(`Product "iPhone 13 Pro" has been deleted successfully`, s.lastNotification().Message)
}

// =============================================================================
// Negotiation
// =============================================================================

func (s *CatalogServiceSuite) TestPropose() {
	s.Run("appends the offer and moves the price", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().ProposeNegotiation(gomock.Any(), s.iphone.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ id.ProductID, n models.Negotiation) error {
				s.True(decimal.NewFromInt(80000).Equal(n.ProposedPrice))
				s.Equal("Priya Admin", n.AdminName)
				s.Equal(models.NegotiationPending, n.Status)
				return nil
			})

		n, err := s.service.Propose(s.ctx, s.iphone.ID, ProposalInput{
			ProposedPrice: "80,000",
			Reason:        string(models.ReasonMarketAdjustment),
			Message:       "Similar units sell for less",
		})
		s.Require().NoError(err)
		s.Equal(models.NegotiationTypeAdminOffer, n.Type)

		got := s.mustGet(s.iphone.ID)
		s.True(decimal.NewFromInt(80000).Equal(got.Price))
		s.True(decimal.NewFromInt(85000).Equal(got.OriginalPrice))
		s.Len(got.Negotiations, 1)
		s.Equal("Price negotiation sent to Rahul Sharma. Proposed decrease of ₹5,000", s.lastNotification().Message)
	})

	s.Run("input is validated before the backend is called", func() {
		s.load(s.iphone)
		cases := []struct {
			name string
			in   ProposalInput
			want string
		}{
			{"missing message", ProposalInput{ProposedPrice: "1000", Reason: "other"}, msgRequiredFields},
			{"non numeric price", ProposalInput{ProposedPrice: "abc", Reason: "other", Message: "m"}, msgInvalidPrice},
			{"zero price", ProposalInput{ProposedPrice: "0", Reason: "other", Message: "m"}, msgInvalidPrice},
			{"unknown reason", ProposalInput{ProposedPrice: "1000", Reason: "whim", Message: "m"}, msgInvalidReason},
		}
		for _, tc := range cases {
			_, err := s.service.Propose(s.ctx, s.iphone.ID, tc.in)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), tc.name)
			s.Equal(tc.want, s.lastNotification().Message, tc.name)
		}
		s.Empty(s.mustGet(s.iphone.ID).Negotiations)
	})

	s.Run("failure leaves price and history alone", func() {
		s.load(s.iphone)
		s.gateway.EXPECT().ProposeNegotiation(gomock.Any(), s.iphone.ID, gomock.Any()).Return(errors.New("timeout"))

		_, err := s.service.Propose(s.ctx, s.iphone.ID, ProposalInput{ProposedPrice: "90000", Reason: "other", Message: "m"})
		s.Require().Error(err)
		got := s.mustGet(s.iphone.ID)
		s.True(decimal.NewFromInt(85000).Equal(got.Price))
		s.Empty(got.Negotiations)
		s.Equal(msgNegotiationFailed, s.lastNotification().Message)
	})
}

func (s *CatalogServiceSuite) TestNegotiationMessage() {
	s.Equal("Price negotiation sent to A. Proposed increase of ₹1,500",
		NegotiationMessage("A", decimal.NewFromInt(1000), decimal.NewFromInt(2500)))
	s.Equal("Price negotiation sent to A. Proposed price unchanged at ₹1,000",
		NegotiationMessage("A", decimal.NewFromInt(1000), decimal.NewFromInt(1000)))
}

// =============================================================================
// Audit
// =============================================================================

func (s *CatalogServiceSuite) TestAuditEvents() {
	auditor := mocks.NewMockAuditPublisher(s.ctrl)
	s.service = s.newService(WithAuditPublisher(auditor))
	s.load(s.iphone)

	ctx := requestcontext.WithRequestID(s.ctx, "req-42")
	s.gateway.EXPECT().SetProductStatus(gomock.Any(), s.iphone.ID, models.StatusRejected, "counterfeit").Return(nil)
	auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e audit.Event) error {
			s.Equal(string(audit.EventProductRejected), e.Action)
			s.Equal(audit.SubjectProduct, e.SubjectType)
			s.Equal(s.iphone.ID.String(), e.SubjectID)
			s.Equal("counterfeit", e.Reason)
			s.Equal("req-42", e.RequestID)
			s.Equal("Priya Admin", e.ActorName)
			return errors.New("audit buffer full")
		})

	_, err := s.service.SetStatus(ctx, s.iphone.ID, models.StatusRejected, "counterfeit")
	s.NoError(err, "audit failures are logged, not returned")
}

// =============================================================================
// View state
// =============================================================================

func (s *CatalogServiceSuite) TestSelection() {
	s.load(s.iphone, s.macbook)

	on, err := s.service.ToggleSelection(s.macbook.ID)
	s.Require().NoError(err)
	s.True(on)
	on, err = s.service.ToggleSelection(s.macbook.ID)
	s.Require().NoError(err)
	s.False(on)

	_, err = s.service.ToggleSelection(id.NewProductID())
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	s.Equal(2, s.service.SelectAll())
	s.Equal([]id.ProductID{s.iphone.ID, s.macbook.ID}, s.service.Selected())

	// a refresh that drops a product also drops its selection
	s.gateway.EXPECT().ListProducts(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(ports.ListResult{Products: []models.Product{s.macbook}, Total: 1}, nil)
	_, err = s.service.Refresh(s.ctx)
	s.Require().NoError(err)
	s.Equal([]id.ProductID{s.macbook.ID}, s.service.Selected())

	s.service.ClearSelection()
	s.Empty(s.service.Selected())
}

func (s *CatalogServiceSuite) TestFilterResetsPage() {
	s.service.SetPage(4)
	s.Equal(4, s.service.Pagination().Page)

	s.service.SetFilter(models.Filter{Status: "approved"})
	s.Equal(1, s.service.Pagination().Page)
	s.Equal(models.Filter{Status: "approved", Category: models.FilterAll}, s.service.Filter())
}

func (s *CatalogServiceSuite) TestSearchAsYouTypeDebounces() {
	s.gateway.EXPECT().ListProducts(gomock.Any(), models.Filter{Search: "iph", Status: "all", Category: "all"}, gomock.Any()).
		Return(ports.ListResult{Products: []models.Product{s.iphone}, Total: 1}, nil).
		Times(1)

	s.service.SearchAsYouType("i")
	s.clock.Advance(200 * time.Millisecond)
	s.service.SearchAsYouType("ip")
	s.clock.Advance(200 * time.Millisecond)
	s.service.SearchAsYouType("iph")
	s.clock.Advance(499 * time.Millisecond)
	s.Empty(s.service.Products())

	s.clock.Advance(time.Millisecond)
	s.Len(s.service.Products(), 1)
	s.Equal(0, s.clock.Pending())
}

func (s *CatalogServiceSuite) TestCloseCancelsPendingSearch() {
	s.service.SearchAsYouType("mac")
	s.Equal(1, s.clock.Pending())
	s.service.Close()
	s.clock.Advance(time.Second)
	s.Empty(s.service.Products())
}
