package identity

import "sync"

// Broadcaster fans auth-state changes out to listeners. New listeners get the
// current state right away, as the hosted SDK does.
type Broadcaster struct {
	mu        sync.Mutex
	next      int
	listeners map[int]Listener
	current   *Session
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{listeners: make(map[int]Listener)}
}

// Subscribe registers l and returns a function that removes it.
func (b *Broadcaster) Subscribe(l Listener) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.listeners[id] = l
	cur := copySession(b.current)
	b.mu.Unlock()

	l(cur)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.listeners, id)
			b.mu.Unlock()
		})
	}
}

// Publish records s as the current state (nil = signed out) and notifies
// every listener with its own copy.
func (b *Broadcaster) Publish(s *Session) {
	b.mu.Lock()
	b.current = copySession(s)
	ls := make([]Listener, 0, len(b.listeners))
	for _, l := range b.listeners {
		ls = append(ls, l)
	}
	b.mu.Unlock()

	for _, l := range ls {
		l(copySession(s))
	}
}

// Current returns a copy of the last published state.
func (b *Broadcaster) Current() *Session {
	b.mu.Lock()
	defer b.mu.Unlock()
	return copySession(b.current)
}

func copySession(s *Session) *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
