package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"refurb/internal/notification"
	"refurb/pkg/platform/httputil"
)

// Feed is the notification center as the console polls it.
type Feed interface {
	List() []notification.Notification
	Dismiss(id notification.ID)
	Clear()
}

type Handler struct {
	feed Feed
}

func New(feed Feed) *Handler {
	return &Handler{feed: feed}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.HandleList)
	r.Delete("/notifications", h.HandleClear)
	r.Delete("/notifications/{id}", h.HandleDismiss)
}

// HandleList returns the active entries, oldest first.
func (h *Handler) HandleList(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, toListResponse(h.feed.List()))
}

// HandleDismiss is idempotent: unknown ids answer 204 as well.
func (h *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	h.feed.Dismiss(notification.ID(strings.TrimSpace(chi.URLParam(r, "id"))))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) HandleClear(w http.ResponseWriter, _ *http.Request) {
	h.feed.Clear()
	w.WriteHeader(http.StatusNoContent)
}
