package identity

import "sync"

// Tracker keeps the latest snapshot delivered by a Service subscription, so
// the app shell can hand an explicit session to each workflow call.
type Tracker struct {
	mu      sync.Mutex
	current *Session
	stop    func()
	hooks   []Listener
}

// Track subscribes to svc. Close stops tracking.
func Track(svc Service) *Tracker {
	t := &Tracker{}
	t.stop = svc.Subscribe(t.update)
	return t
}

func (t *Tracker) update(s *Session) {
	t.mu.Lock()
	t.current = copySession(s)
	hooks := append([]Listener(nil), t.hooks...)
	t.mu.Unlock()

	for _, h := range hooks {
		h(copySession(s))
	}
}

// OnChange registers l to run after every tracked change.
func (t *Tracker) OnChange(l Listener) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.hooks = append(t.hooks, l)
}

// Current returns a copy of the latest snapshot, nil when signed out.
func (t *Tracker) Current() *Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return copySession(t.current)
}

func (t *Tracker) Close() {
	if t.stop != nil {
		t.stop()
	}
}
