package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/profilehub/profilehub/internal/auth"
)

// fakeBackend scripts GetSession/SignOut results and lets tests emit
// auth-state events by hand.
type fakeBackend struct {
	mu sync.Mutex

	sessions    []*auth.Session // consumed per GetSession call; last entry repeats
	sessionErr  error
	signOutErr  error
	getCalls    int
	signOutCall int

	fn func(auth.Event)
}

func (f *fakeBackend) GetSession(context.Context) (*auth.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.sessionErr != nil {
		return nil, f.sessionErr
	}
	if len(f.sessions) == 0 {
		return nil, nil
	}
	s := f.sessions[0]
	if len(f.sessions) > 1 {
		f.sessions = f.sessions[1:]
	}
	return s, nil
}

func (f *fakeBackend) SignOut(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.signOutCall++
	return f.signOutErr
}

func (f *fakeBackend) OnAuthStateChange(fn func(auth.Event)) *auth.Subscription {
	f.mu.Lock()
	f.fn = fn
	f.mu.Unlock()
	return &auth.Subscription{}
}

func (f *fakeBackend) emit(ev auth.Event) {
	f.mu.Lock()
	fn := f.fn
	f.mu.Unlock()
	if fn != nil {
		fn(ev)
	}
}

func (f *fakeBackend) signOutCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.signOutCall
}

func sessionFor(id, email string) *auth.Session {
	return &auth.Session{User: &auth.User{ID: id, Email: &email}}
}

func waitFor(t *testing.T, r *Resolver, pred func(State) bool) State {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		st := r.Snapshot()
		if pred(st) {
			return st
		}
		select {
		case <-deadline:
			t.Fatalf("state never converged, last: %+v", st)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestResolver_InitialFetchThenSignedInEvent(t *testing.T) {
	fb := &fakeBackend{} // no session at startup
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()

	st := waitFor(t, r, func(s State) bool { return !s.IsLoading })
	assert.Nil(t, st.User)

	fb.emit(auth.Event{Kind: auth.EventSignedIn, Session: sessionFor("u1", "a@b.com")})

	st = waitFor(t, r, func(s State) bool { return s.User != nil })
	require.NotNil(t, st.User)
	assert.Equal(t, "u1", st.User.ID)
	require.NotNil(t, st.User.Email)
	assert.Equal(t, "a@b.com", *st.User.Email)
}

func TestResolver_SignedOutEventForcesNilUser(t *testing.T) {
	fb := &fakeBackend{sessions: []*auth.Session{sessionFor("u1", "a@b.com")}}
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()

	waitFor(t, r, func(s State) bool { return s.User != nil })

	// Payload is ignored for SIGNED_OUT.
	fb.emit(auth.Event{Kind: auth.EventSignedOut, Session: sessionFor("u1", "a@b.com")})
	st := waitFor(t, r, func(s State) bool { return s.User == nil })
	assert.False(t, st.IsLoading)
}

func TestReduce(t *testing.T) {
	loading := State{IsLoading: true}
	tests := []struct {
		name     string
		ev       auth.Event
		wantUser string // empty means nil
	}{
		{"signed in with session", auth.Event{Kind: auth.EventSignedIn, Session: sessionFor("u1", "a@b.com")}, "u1"},
		{"token refreshed with session", auth.Event{Kind: auth.EventTokenRefreshed, Session: sessionFor("u2", "c@d.com")}, "u2"},
		{"user updated without session", auth.Event{Kind: auth.EventUserUpdated}, ""},
		{"signed out ignores payload", auth.Event{Kind: auth.EventSignedOut, Session: sessionFor("u3", "e@f.com")}, ""},
		{"unknown kind derives from payload", auth.Event{Kind: "PASSWORD_RECOVERY", Session: sessionFor("u4", "g@h.com")}, "u4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(loading, tt.ev)
			assert.False(t, got.IsLoading, "every event clears loading")
			if tt.wantUser == "" {
				assert.Nil(t, got.User)
			} else {
				require.NotNil(t, got.User)
				assert.Equal(t, tt.wantUser, got.User.ID)
			}
		})
	}
}

func TestResolver_UpdatesStreamAndClose(t *testing.T) {
	fb := &fakeBackend{}
	r := NewResolver(context.Background(), fb, nil)

	waitFor(t, r, func(s State) bool { return !s.IsLoading })

	fb.emit(auth.Event{Kind: auth.EventSignedIn, Session: sessionFor("u1", "a@b.com")})
	waitFor(t, r, func(s State) bool { return s.User != nil })

	r.Close()
	r.Close() // second close is a no-op

	// Channel closes; an event after close must not panic or be delivered.
	fb.emit(auth.Event{Kind: auth.EventSignedOut})
	for range r.Updates() {
	}
}

func TestSignOut_AbsorbsForbidden(t *testing.T) {
	fb := &fakeBackend{
		sessions:   []*auth.Session{sessionFor("u1", "a@b.com")},
		signOutErr: &auth.Error{Status: 403, Message: "Forbidden"},
	}
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()
	waitFor(t, r, func(s State) bool { return s.User != nil })

	err := r.SignOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fb.signOutCalls())
	st := r.Snapshot()
	assert.Nil(t, st.User)
	assert.False(t, st.IsLoading)
}

func TestSignOut_NoSessionSkipsBackendCall(t *testing.T) {
	fb := &fakeBackend{} // GetSession reports signed out
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()
	waitFor(t, r, func(s State) bool { return !s.IsLoading })

	err := r.SignOut(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, fb.signOutCalls())
	assert.Nil(t, r.Snapshot().User)
}

func TestSignOut_UnrecognizedErrorPropagates(t *testing.T) {
	fb := &fakeBackend{
		sessions:   []*auth.Session{sessionFor("u1", "a@b.com"), sessionFor("u1", "a@b.com")},
		signOutErr: errors.New("Network timeout"),
	}
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()
	waitFor(t, r, func(s State) bool { return s.User != nil })

	err := r.SignOut(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Network timeout", err.Error())
	// Local user is left unchanged on a non-absorbed failure.
	require.NotNil(t, r.Snapshot().User)
	assert.Equal(t, "u1", r.Snapshot().User.ID)
}

func TestSignOut_SuccessRecheckForcesSignedOut(t *testing.T) {
	// First GetSession sees a session, the re-check after sign-out does not.
	fb := &fakeBackend{sessions: []*auth.Session{sessionFor("u1", "a@b.com"), nil}}
	r := NewResolver(context.Background(), fb, nil)
	defer r.Close()
	waitFor(t, r, func(s State) bool { return !s.IsLoading })

	// The initial fetch consumed one scripted session; reload it.
	fb.mu.Lock()
	fb.sessions = []*auth.Session{sessionFor("u1", "a@b.com"), nil}
	fb.mu.Unlock()

	require.NoError(t, r.SignOut(context.Background()))
	assert.Equal(t, 1, fb.signOutCalls())
	assert.Nil(t, r.Snapshot().User)
}
