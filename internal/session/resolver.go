// Package session keeps a local view of authentication state consistent
// with the auth backend across asynchronous, partially-failing operations.
package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/profilehub/profilehub/internal/auth"
)

// State is the resolved session view. IsLoading stays true only until the
// initial fetch or the first push event lands.
type State struct {
	User      *auth.User `json:"user"`
	IsLoading bool       `json:"is_loading"`
}

// Resolver owns a session-state cell: it is the only writer, fed by one
// initial GetSession fetch and the backend's auth-state event stream.
//
// The initial fetch and push events may race; whichever completes last wins.
// That ordering is accepted rather than sequenced: both sources report the
// backend's current truth, so the later arrival is the fresher one.
type Resolver struct {
	backend auth.Backend
	logger  *logrus.Logger

	mu      sync.Mutex
	state   State
	closed  bool
	updates chan State

	sub       *auth.Subscription
	closeOnce sync.Once
}

// NewResolver starts resolving immediately: it subscribes to auth-state
// events and kicks off the initial session fetch in the background.
func NewResolver(ctx context.Context, backend auth.Backend, logger *logrus.Logger) *Resolver {
	r := &Resolver{
		backend: backend,
		logger:  logger,
		state:   State{IsLoading: true},
		updates: make(chan State, 8),
	}
	r.sub = backend.OnAuthStateChange(func(ev auth.Event) {
		r.apply(ev)
	})
	go r.fetchInitial(ctx)
	return r
}

func (r *Resolver) fetchInitial(ctx context.Context) {
	sess, err := r.backend.GetSession(ctx)
	if err != nil {
		if r.logger != nil {
			r.logger.WithError(err).Warn("initial session fetch failed")
		}
		sess = nil
	}
	r.set(State{User: userOf(sess), IsLoading: false})
}

// Reduce derives the next state from an auth-state event. It is pure:
// SIGNED_OUT forces a nil user regardless of payload, every other kind
// takes the user from the event's session (nil when absent), and loading
// clears on any event.
func Reduce(_ State, ev auth.Event) State {
	if ev.Kind == auth.EventSignedOut {
		return State{User: nil, IsLoading: false}
	}
	return State{User: userOf(ev.Session), IsLoading: false}
}

func (r *Resolver) apply(ev auth.Event) {
	r.mu.Lock()
	r.state = Reduce(r.state, ev)
	st := r.state
	r.notifyLocked(st)
	r.mu.Unlock()
}

func (r *Resolver) set(st State) {
	r.mu.Lock()
	r.state = st
	r.notifyLocked(st)
	r.mu.Unlock()
}

// notifyLocked pushes the latest state, dropping the oldest queued value
// when the subscriber lags. Callers hold r.mu.
func (r *Resolver) notifyLocked(st State) {
	if r.closed {
		return
	}
	for {
		select {
		case r.updates <- st:
			return
		default:
			select {
			case <-r.updates:
			default:
			}
		}
	}
}

// Snapshot returns the current state.
func (r *Resolver) Snapshot() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Updates yields state changes in arrival order. The channel closes when
// the resolver is closed.
func (r *Resolver) Updates() <-chan State {
	return r.updates
}

// Close unsubscribes from the event stream and closes the updates channel.
// Safe to call more than once.
func (r *Resolver) Close() {
	r.closeOnce.Do(func() {
		r.sub.Unsubscribe()
		r.mu.Lock()
		r.closed = true
		close(r.updates)
		r.mu.Unlock()
	})
}

func userOf(s *auth.Session) *auth.User {
	if s == nil {
		return nil
	}
	return s.User
}
