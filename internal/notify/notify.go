// Package notify is the fire-and-forget feedback channel behind the toasts.
// Pushing never blocks and never reports an error to the caller.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Severity tags a notification.
type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Warning Severity = "warning"
	Info    Severity = "info"
)

// DefaultLifetime is how long a notification stays visible.
const DefaultLifetime = 3 * time.Second

// defaultCapacity bounds the queue; the oldest item is dropped when full.
const defaultCapacity = 32

// Notification is one feedback item.
type Notification struct {
	ID       string
	Severity Severity
	Message  string
	Created  time.Time
	Expires  time.Time
}

// Notifier is the write side used by the workflow.
type Notifier interface {
	Push(sev Severity, message string) Notification
}

// Channel queues notifications with a fixed visible lifetime.
type Channel struct {
	mu       sync.Mutex
	items    []Notification
	lifetime time.Duration
	capacity int
	now      func() time.Time
	changes  chan struct{}
}

// Option configures a Channel.
type Option func(*Channel)

// WithLifetime overrides DefaultLifetime.
func WithLifetime(d time.Duration) Option {
	return func(c *Channel) {
		if d > 0 {
			c.lifetime = d
		}
	}
}

// WithCapacity overrides the queue bound.
func WithCapacity(n int) Option {
	return func(c *Channel) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Channel) { c.now = now }
}

func New(opts ...Option) *Channel {
	c := &Channel{
		lifetime: DefaultLifetime,
		capacity: defaultCapacity,
		now:      time.Now,
		changes:  make(chan struct{}, 1),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Push enqueues a notification and returns it.
func (c *Channel) Push(sev Severity, message string) Notification {
	now := c.now()
	n := Notification{
		ID:       uuid.NewString(),
		Severity: sev,
		Message:  message,
		Created:  now,
		Expires:  now.Add(c.lifetime),
	}
	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = append(c.items[:0:0], c.items[over:]...)
	}
	c.mu.Unlock()

	select {
	case c.changes <- struct{}{}:
	default:
	}
	return n
}

// Active returns the notifications still visible at now, oldest first.
func (c *Channel) Active(now time.Time) []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.items))
	for _, n := range c.items {
		if now.Before(n.Expires) {
			out = append(out, n)
		}
	}
	return out
}

// Prune drops expired notifications and reports how many were removed.
func (c *Channel) Prune(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, n := range c.items {
		if now.Before(n.Expires) {
			kept = append(kept, n)
		}
	}
	removed := len(c.items) - len(kept)
	c.items = kept
	return removed
}

// Drain removes and returns everything queued, expired or not.
func (c *Channel) Drain() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.items
	c.items = nil
	return out
}

// Changes is signalled (coalesced) whenever a notification is pushed.
func (c *Channel) Changes() <-chan struct{} {
	return c.changes
}

// Lifetime returns the configured visible lifetime.
func (c *Channel) Lifetime() time.Duration {
	return c.lifetime
}
