package session

import "context"

// SignOut terminates the backend session and converges local state to
// signed-out. A class of backend errors that indicate the session is
// already gone (403, "forbidden", missing-session messages) is absorbed as
// success; any other error propagates and leaves local state untouched.
//
// Absorbed errors are logged and never retried: sign-out is idempotent.
func (r *Resolver) SignOut(ctx context.Context) error {
	sess, err := r.backend.GetSession(ctx)
	if err == nil && sess == nil {
		// Already signed out; skip the backend call entirely.
		r.set(State{User: nil, IsLoading: false})
		return nil
	}
	if err != nil && r.logger != nil {
		// Session state unknown; attempt the sign-out anyway.
		r.logger.WithError(err).Warn("session check before sign-out failed")
	}

	if err := r.backend.SignOut(ctx); err != nil {
		if !IsAlreadySignedOut(err) {
			return err
		}
		if r.logger != nil {
			r.logger.WithError(err).Info("sign-out error absorbed: session already gone")
		}
		r.set(State{User: nil, IsLoading: false})
		return nil
	}

	// Convergence must not depend on the push stream's timing: if the
	// session is gone, force local state now.
	if after, gerr := r.backend.GetSession(ctx); gerr == nil && after == nil {
		r.set(State{User: nil, IsLoading: false})
	}
	return nil
}
