package session

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrSessionBusy is returned when a pull or push is requested while another
// pull or push is already in flight on the same session. Operations never
// queue; the caller retries once the in-flight exchange finishes.
var ErrSessionBusy = errors.New("session: pull or push already in flight")

// ErrPullDeclined is returned when the confirm callback refuses to discard
// unsaved content. The session is left untouched.
var ErrPullDeclined = errors.New("session: pull declined, unsaved changes kept")

// errClosed marks an in-flight exchange whose session was closed before the
// response arrived.
var errClosed = errors.New("session: closed while request in flight")

// InvalidStateError reports an operation attempted on a session in the wrong
// state, such as pushing before any document is loaded.
type InvalidStateError struct {
	Op    string
	State State
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("session: cannot %s in state %s", e.Op, e.State)
}

// PullError wraps any failure during a pull: transport, auth, or not-found.
// The session state before the pull is preserved exactly.
type PullError struct {
	Cause error
}

func (e *PullError) Error() string {
	return fmt.Sprintf("session: pull failed: %v", e.Cause)
}

func (e *PullError) Unwrap() error {
	return e.Cause
}

// PushError reports a rejected or failed write. StatusCode is zero for
// transport-level failures that never produced a store response. A version
// conflict arrives as a regular PushError; the session does not reconcile.
type PushError struct {
	StatusCode int
	Message    string

	cause error
}

func (e *PushError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("session: push failed: %s", e.Message)
	}
	return fmt.Sprintf("session: push rejected: HTTP %d: %s", e.StatusCode, e.Message)
}

func (e *PushError) Unwrap() error {
	return e.cause
}

// IsConflict reports whether the store rejected the write because the
// declared version lost the optimistic concurrency check.
func (e *PushError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}
