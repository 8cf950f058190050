package handler

import (
	"time"

	"refurb/internal/notification"
)

// NotificationResponse is the wire form of a notification. DurationMS is 0
// for entries that stay until dismissed.
type NotificationResponse struct {
	ID         notification.ID   `json:"id"`
	Type       notification.Kind `json:"type"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	DurationMS int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

type ListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
}

func toResponse(n notification.Notification) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       n.Kind,
		Title:      n.Title,
		Message:    n.Message,
		DurationMS: n.Duration.Milliseconds(),
		CreatedAt:  n.CreatedAt,
	}
}

func toListResponse(list []notification.Notification) ListResponse {
	out := make([]NotificationResponse, 0, len(list))
	for _, n := range list {
		out = append(out, toResponse(n))
	}
	return ListResponse{Notifications: out}
}
