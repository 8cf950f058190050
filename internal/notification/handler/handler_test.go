package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refurb/internal/notification"
	"refurb/pkg/platform/clock"
	"refurb/pkg/testutil"
)

func newRouter(center *notification.Center) http.Handler {
	r := chi.NewRouter()
	New(center).Register(r)
	return r
}

func TestNotificationFeed(t *testing.T) {
	fake := clock.NewFake(time.Date(2024, 12, 30, 11, 0, 0, 0, time.UTC))
	center := notification.New(notification.WithClock(fake))
	router := newRouter(center)

	first := center.Success("Product approved successfully")
	center.Error("Failed to update product status. Please try again.")
	sticky := center.Info("Settlement queued", notification.WithDuration(0))

	t.Run("lists active entries in order", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		resp := testutil.Decode[ListResponse](t, rec)
		require.Len(t, resp.Notifications, 3)
		assert.Equal(t, first, resp.Notifications[0].ID)
		assert.Equal(t, notification.KindError, resp.Notifications[1].Type)
		assert.Equal(t, sticky, resp.Notifications[2].ID)
	})

	t.Run("durations are reported in milliseconds", func(t *testing.T) {
		rec := testutil.DoRequest(router, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		resp := testutil.Decode[ListResponse](t, rec)
		require.Len(t, resp.Notifications, 3)
		assert.Equal(t, int64(5000), resp.Notifications[0].DurationMS)
		assert.Equal(t, int64(8000), resp.Notifications[1].DurationMS)
		assert.Equal(t, int64(0), resp.Notifications[2].DurationMS)
		assert.Contains(t, rec.Body.String(), `"duration_ms":8000,`)
	})

	t.Run("dismiss removes one entry", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/"+string(first), nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 2, center.Len())

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications/unknown", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, 2, center.Len())
	})

	t.Run("clear empties the feed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notifications", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications", nil))
		assert.JSONEq(t, `{"notifications":[]}`, rec.Body.String())
	})
}
