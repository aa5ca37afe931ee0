package notify

import (
	"sync"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/timex"
)

// Surface is the rendering region for notifications. Implementations must not
// call back into the Manager.
type Surface interface {
	Insert(n Notification)
	Remove(n Notification)
}

// Option configures a Manager.
type Option func(*Manager)

// WithDuration sets the default display duration.
func WithDuration(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.duration = d
		}
	}
}

type entry struct {
	n     Notification
	timer timex.Timer
}

// Manager owns the visible notification list. It is safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	surface  Surface
	sched    timex.Scheduler
	duration time.Duration
	nextID   uint64
	items    []*entry
}

// NewManager returns a Manager rendering onto surface. A nil surface turns the
// Manager into a silent no-op; a nil scheduler means timex.Real().
func NewManager(surface Surface, sched timex.Scheduler, opts ...Option) *Manager {
	if sched == nil {
		sched = timex.Real()
	}
	m := &Manager{surface: surface, sched: sched, duration: DefaultDuration}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Notify shows message with the default duration.
func (m *Manager) Notify(message string, severity Severity) Notification {
	return m.NotifyFor(message, severity, m.duration)
}

// NotifyFor shows message for d and schedules its removal. Non-positive d
// falls back to the default duration.
func (m *Manager) NotifyFor(message string, severity Severity, d time.Duration) Notification {
	if m.surface == nil {
		return Notification{}
	}
	if d <= 0 {
		d = m.duration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	n := Notification{
		ID:        m.nextID,
		Message:   message,
		Severity:  severity,
		CreatedAt: m.sched.Now(),
		Duration:  d,
	}
	e := &entry{n: n}
	m.items = append(m.items, e)
	m.surface.Insert(n)

	id := n.ID
	e.timer = m.sched.AfterFunc(d, func() { m.remove(id) })
	return n
}

// Dismiss removes n right away and cancels its pending expiry. Dismissing a
// notification that is already gone is a no-op.
func (m *Manager) Dismiss(n Notification) {
	if !n.Shown() {
		return
	}
	m.remove(n.ID)
}

// Visible returns the visible notifications, oldest first.
func (m *Manager) Visible() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Notification, 0, len(m.items))
	for _, e := range m.items {
		out = append(out, e.n)
	}
	return out
}

func (m *Manager) remove(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, e := range m.items {
		if e.n.ID != id {
			continue
		}
		m.items = append(m.items[:i], m.items[i+1:]...)
		if e.timer != nil {
			e.timer.Stop()
		}
		m.surface.Remove(e.n)
		return
	}
}
