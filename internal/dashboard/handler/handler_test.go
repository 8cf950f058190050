package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurb/internal/dashboard"
	dErrors "refurb/pkg/domain-errors"
	"refurb/pkg/platform/audit"
	"refurb/pkg/platform/audit/publisher"
	"refurb/pkg/platform/audit/store/memory"
	"refurb/pkg/testutil"
)

type stubSummary struct {
	sum dashboard.Summary
	err error
}

func (s stubSummary) Summarize(context.Context) (dashboard.Summary, error) {
	return s.sum, s.err
}

func newRouter(svc Service, reader AuditReader) http.Handler {
	r := chi.NewRouter()
	New(svc, reader, slog.New(slog.NewTextHandler(io.Discard, nil))).Register(r)
	return r
}

func TestHandleSummary(t *testing.T) {
	reader := publisher.NewPublisher(memory.NewInMemoryStore())

	t.Run("returns the summary", func(t *testing.T) {
		svc := stubSummary{sum: dashboard.Summary{Products: dashboard.ProductCounts{Total: 4, Pending: 2}}}
		rec := testutil.DoRequest(newRouter(svc, reader), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		got := testutil.Decode[dashboard.Summary](t, rec)
		assert.Equal(t, 4, got.Products.Total)
		assert.Equal(t, 2, got.Products.Pending)
	})

	t.Run("maps an unavailable backend to 502", func(t *testing.T) {
		svc := stubSummary{err: dErrors.New(dErrors.CodeUnavailable, "Failed to load dashboard. Please try again.")}
		rec := testutil.DoRequest(newRouter(svc, reader), httptest.NewRequest(http.MethodGet, "/dashboard", nil))
		testutil.AssertError(t, rec, http.StatusBadGateway, "Failed to load dashboard. Please try again.")
	})
}

func TestHandleAuditTrail(t *testing.T) {
	store := memory.NewInMemoryStore()
	reader := publisher.NewPublisher(store)
	router := newRouter(stubSummary{}, reader)
	const productID = "6f1c2a4e-1b9d-4c1e-9a0b-3f2d5e7c8a91"

	ctx := context.Background()
	require.NoError(t, reader.Emit(ctx, audit.New(audit.EventProductApproved, audit.SubjectProduct, productID)))
	require.NoError(t, reader.Emit(ctx, audit.New(audit.EventProductReopened, audit.SubjectProduct, productID)))

	t.Run("lists the subject's events", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit/product/"+productID, nil))
		require.Equal(t, http.StatusOK, rec.Code)

		got := testutil.Decode[AuditTrailResponse](t, rec)
		require.Equal(t, 2, got.Total)
		assert.Equal(t, string(audit.EventProductApproved), got.Events[0].Action)
	})

	t.Run("empty trail is an empty list", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit/payment/"+productID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"events":[],"total":0}`, rec.Body.String())

		rec = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit/customer/"+productID, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("recent activity is newest first", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit?limit=1", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		got := testutil.Decode[AuditTrailResponse](t, rec)
		require.Equal(t, 1, got.Total)
		assert.Equal(t, string(audit.EventProductReopened), got.Events[0].Action)

		rec = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit?limit=0", nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects unknown subjects and ids", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit/order/"+productID, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/audit/product/abc", nil))
		testutil.AssertError(t, rec, http.StatusBadRequest, "invalid product id")
	})
}
