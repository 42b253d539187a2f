package auth

import "sync"

// Subscription is a handle on an auth-state event stream. Unsubscribe is
// safe to call more than once; only the first call has effect.
type Subscription struct {
	once   sync.Once
	cancel func()
}

func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// broadcaster fans auth-state events out to registered callbacks.
type broadcaster struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Event)
}

func newBroadcaster() *broadcaster {
	return &broadcaster{subs: make(map[int]func(Event))}
}

func (b *broadcaster) subscribe(fn func(Event)) *Subscription {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()
	return &Subscription{cancel: func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}}
}

func (b *broadcaster) publish(ev Event) {
	b.mu.Lock()
	fns := make([]func(Event), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(ev)
	}
}
