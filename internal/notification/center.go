// Package notification is the process-wide log of admin-facing messages.
// Entries auto-dismiss after their duration unless it is zero.
package notification

import (
	"crypto/rand"
	"io"
	"iter"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"refurb/internal/notification/metrics"
	"refurb/pkg/platform/clock"
)

// Center owns the notification log and its expiry timers.
type Center struct {
	mu      sync.Mutex
	entries []Notification
	timers  map[ID]clock.Timer
	entropy io.Reader

	clock   clock.Clock
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Center)

func WithClock(c clock.Clock) Option {
	return func(n *Center) {
		n.clock = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(n *Center) {
		n.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Center) {
		n.metrics = m
	}
}

func New(opts ...Option) *Center {
	c := &Center{
		timers:  make(map[ID]clock.Timer),
		entropy: ulid.Monotonic(rand.Reader, 0),
		clock:   clock.Real(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NotifyOption customizes a single notification.
type NotifyOption func(*notifyConfig)

type notifyConfig struct {
	title       string
	duration    time.Duration
	hasDuration bool
}

// WithTitle overrides the kind's default title.
func WithTitle(title string) NotifyOption {
	return func(c *notifyConfig) {
		c.title = title
	}
}

// WithDuration sets the auto-dismiss delay. Zero keeps the entry until it is
// dismissed or cleared.
func WithDuration(d time.Duration) NotifyOption {
	return func(c *notifyConfig) {
		c.duration = d
		c.hasDuration = true
	}
}

// Notify appends an entry and schedules its expiry.
func (c *Center) Notify(kind Kind, message string, opts ...NotifyOption) ID {
	if !kind.IsValid() {
		kind = KindInfo
	}
	cfg := notifyConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.title == "" {
		cfg.title = kind.DefaultTitle()
	}
	if !cfg.hasDuration || cfg.duration < 0 {
		cfg.duration = kind.defaultDuration()
	}

	c.mu.Lock()
	now := c.clock.Now()
	n := Notification{
		ID:        c.newIDLocked(now),
		Kind:      kind,
		Title:     cfg.title,
		Message:   message,
		Duration:  cfg.duration,
		CreatedAt: now,
	}
	c.entries = append(c.entries, n)
	if n.Duration > 0 {
		id := n.ID
		c.timers[id] = c.clock.AfterFunc(n.Duration, func() { c.expire(id) })
	}
	active := len(c.entries)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.IncrementEmitted(string(kind))
		c.metrics.SetActive(active)
	}
	c.logger.Debug("notification emitted",
		"notification_id", n.ID,
		"kind", kind,
		"message", message,
	)
	return n.ID
}

func (c *Center) Success(message string, opts ...NotifyOption) ID {
	return c.Notify(KindSuccess, message, opts...)
}

func (c *Center) Error(message string, opts ...NotifyOption) ID {
	return c.Notify(KindError, message, opts...)
}

func (c *Center) Warning(message string, opts ...NotifyOption) ID {
	return c.Notify(KindWarning, message, opts...)
}

func (c *Center) Info(message string, opts ...NotifyOption) ID {
	return c.Notify(KindInfo, message, opts...)
}

// Dismiss removes the entry and cancels its timer. Unknown ids are ignored.
func (c *Center) Dismiss(id ID) {
	if c.remove(id) {
		c.recordRemoved("dismissed", 1)
	}
}

// Clear cancels every timer and empties the log.
func (c *Center) Clear() {
	c.mu.Lock()
	for _, t := range c.timers {
		t.Stop()
	}
	n := len(c.entries)
	c.entries = nil
	c.timers = make(map[ID]clock.Timer)
	c.mu.Unlock()

	c.recordRemoved("cleared", n)
}

// Active yields a snapshot of the log in insertion order. The snapshot is
// taken when iteration starts; later changes are not observed.
func (c *Center) Active() iter.Seq[Notification] {
	return func(yield func(Notification) bool) {
		c.mu.Lock()
		snapshot := slices.Clone(c.entries)
		c.mu.Unlock()

		for _, n := range snapshot {
			if !yield(n) {
				return
			}
		}
	}
}

// List collects Active into a slice.
func (c *Center) List() []Notification {
	return slices.Collect(c.Active())
}

func (c *Center) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Center) expire(id ID) {
	c.mu.Lock()
	if _, ok := c.timers[id]; !ok {
		c.mu.Unlock()
		return
	}
	delete(c.timers, id)
	removed := c.removeEntryLocked(id)
	c.mu.Unlock()

	if removed {
		c.recordRemoved("expired", 1)
	}
}

func (c *Center) remove(id ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.timers[id]; ok {
		t.Stop()
		delete(c.timers, id)
	}
	return c.removeEntryLocked(id)
}

func (c *Center) removeEntryLocked(id ID) bool {
	i := slices.IndexFunc(c.entries, func(n Notification) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	c.entries = slices.Delete(c.entries, i, i+1)
	return true
}

func (c *Center) recordRemoved(cause string, n int) {
	if c.metrics == nil || n == 0 {
		return
	}
	c.metrics.AddRemoved(cause, n)
	c.metrics.SetActive(c.Len())
}

func (c *Center) newIDLocked(now time.Time) ID {
	id, err := ulid.New(ulid.Timestamp(now), c.entropy)
	if err != nil {
		// monotonic entropy overflowed within one millisecond
		id = ulid.Make()
	}
	return ID(id.String())
}
