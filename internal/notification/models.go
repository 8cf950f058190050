package notification

import (
	"time"
)

// Kind is the severity of a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindWarning Kind = "warning"
	KindInfo    Kind = "info"
)

const (
	// DefaultDuration is how long non-error notifications stay visible.
	DefaultDuration = 5 * time.Second
	// ErrorDuration keeps errors on screen longer.
	ErrorDuration = 8 * time.Second
)

// ID is a ULID: lexically sortable by creation time, unique per process.
type ID string

// Notification is an immutable entry in the log.
type Notification struct {
	ID        ID            `json:"id"`
	Kind      Kind          `json:"type"`
	Title     string        `json:"title"`
	Message   string        `json:"message"`
	Duration  time.Duration `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
}

// DefaultTitle is used when a caller omits one.
func (k Kind) DefaultTitle() string {
	switch k {
	case KindSuccess:
		return "Success"
	case KindError:
		return "Error"
	case KindWarning:
		return "Warning"
	default:
		return "Info"
	}
}

func (k Kind) defaultDuration() time.Duration {
	if k == KindError {
		return ErrorDuration
	}
	return DefaultDuration
}

func (k Kind) IsValid() bool {
	switch k {
	case KindSuccess, KindError, KindWarning, KindInfo:
		return true
	}
	return false
}
