// Package session holds the local stateful representative of one open remote
// page and drives the pull/edit/push exchange against the store.
//
// The version a session carries is always the number the NEXT write will
// declare: one ahead of the version it last read or wrote. The store expects
// a write to declare the version it produces, so push can submit the field
// directly without arithmetic at submit time.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/moamenhredeen/el-confluence/internal/codec"
	"github.com/moamenhredeen/el-confluence/internal/confluence"
)

// Store is the remote page store a session pulls from and pushes to.
// *confluence.Client satisfies it.
type Store interface {
	GetPage(ctx context.Context, id string) (*confluence.Page, error)
	UpdatePage(ctx context.Context, id string, upd *confluence.PageUpdate) (*confluence.Page, error)
}

// DecisionFunc answers a yes/no question on behalf of the user. The prompt
// text is display-ready. Confirmation surfaces (TUI dialogs, terminal
// prompts) are injected through this, never embedded in the session.
type DecisionFunc func(prompt string) bool

// State is a session's lifecycle state.
type State int

const (
	// StateUnbound means no document is loaded; all fields are empty.
	StateUnbound State = iota
	// StateBound means a document is loaded and editable.
	StateBound
	// StatePulling means a read exchange is in flight.
	StatePulling
	// StatePushing means a write exchange is in flight.
	StatePushing
)

func (s State) String() string {
	switch s {
	case StateUnbound:
		return "unbound"
	case StateBound:
		return "bound"
	case StatePulling:
		return "pulling"
	case StatePushing:
		return "pushing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Session is one open remote document. A session is either unbound or bound;
// push is only valid when bound. Sessions for distinct documents are fully
// independent.
type Session struct {
	store   Store
	confirm DecisionFunc

	mu       sync.Mutex
	state    State
	id       string
	version  int
	title    string
	spaceKey string
	content  string
	dirty    bool
}

// Option configures a Session.
type Option func(*Session)

// WithConfirm installs the decision callback consulted before a pull discards
// unsaved content. Without it, pulls replace content unconditionally.
func WithConfirm(fn DecisionFunc) Option {
	return func(s *Session) { s.confirm = fn }
}

// New creates an unbound session backed by store.
func New(store Store, opts ...Option) *Session {
	s := &Session{store: store, state: StateUnbound}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Pull fetches the page by id and binds the session to it, replacing any
// previously loaded document. On any failure the session is byte-identical
// to its state before the call.
func (s *Session) Pull(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.state == StatePulling || s.state == StatePushing {
		s.mu.Unlock()
		return ErrSessionBusy
	}
	if s.state == StateBound && s.dirty && s.confirm != nil {
		if !s.confirm(fmt.Sprintf("Discard unsaved changes to %q?", s.title)) {
			s.mu.Unlock()
			return ErrPullDeclined
		}
	}
	prev := s.state
	s.state = StatePulling
	s.mu.Unlock()

	page, err := s.store.GetPage(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePulling {
		// Closed while the request was in flight.
		return &PullError{Cause: errClosed}
	}
	if err != nil {
		s.state = prev
		return &PullError{Cause: err}
	}

	s.state = StateBound
	s.id = page.ID
	s.title = page.Title
	s.spaceKey = page.Space.Key
	s.version = page.Version.Number + 1
	s.content = codec.Decode(page.Body.Storage.Value)
	s.dirty = false
	return nil
}

// Push submits the current document as a full page representation declaring
// the session's version. On success it returns the store's new effective
// version and re-binds one ahead of it, ready for the next push without a
// fresh pull. On failure nothing local changes; the user may retry, re-pull,
// or resolve by hand.
func (s *Session) Push(ctx context.Context) (int, error) {
	s.mu.Lock()
	switch s.state {
	case StatePulling, StatePushing:
		s.mu.Unlock()
		return 0, ErrSessionBusy
	case StateUnbound:
		s.mu.Unlock()
		return 0, &InvalidStateError{Op: "push", State: StateUnbound}
	}

	id := s.id
	upd := &confluence.PageUpdate{
		ID:    s.id,
		Type:  "page",
		Title: s.title,
		Space: confluence.Space{Key: s.spaceKey},
		Body: confluence.Body{
			Storage: confluence.Storage{
				Value:          codec.Encode(s.content),
				Representation: "storage",
			},
		},
		Version: confluence.Version{Number: s.version},
	}
	s.state = StatePushing
	s.mu.Unlock()

	page, err := s.store.UpdatePage(ctx, id, upd)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePushing {
		// Closed while the request was in flight. The remote write may have
		// been applied; the local session is gone either way.
		return 0, &PushError{Message: errClosed.Error(), cause: errClosed}
	}
	s.state = StateBound
	if err != nil {
		var apiErr *confluence.APIError
		if errors.As(err, &apiErr) {
			return 0, &PushError{StatusCode: apiErr.StatusCode, Message: apiErr.Message, cause: err}
		}
		return 0, &PushError{Message: err.Error(), cause: err}
	}

	s.title = page.Title
	s.spaceKey = page.Space.Key
	s.version = page.Version.Number + 1
	s.dirty = false
	return page.Version.Number, nil
}

// SetTitle updates the document title. Valid only on a bound, idle session.
func (s *Session) SetTitle(title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBound("set title"); err != nil {
		return err
	}
	if title != s.title {
		s.title = title
		s.dirty = true
	}
	return nil
}

// SetContent replaces the editable text. The editing surface owns the buffer
// between pulls and pushes; it syncs back through this before a push.
func (s *Session) SetContent(content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.requireBound("set content"); err != nil {
		return err
	}
	if content != s.content {
		s.content = content
		s.dirty = true
	}
	return nil
}

// Close discards the session from any state, releasing the editable content.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateUnbound
	s.id = ""
	s.version = 0
	s.title = ""
	s.spaceKey = ""
	s.content = ""
	s.dirty = false
}

// requireBound is called with the lock held.
func (s *Session) requireBound(op string) error {
	switch s.state {
	case StateBound:
		return nil
	case StatePulling, StatePushing:
		return ErrSessionBusy
	default:
		return &InvalidStateError{Op: op, State: s.state}
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ID returns the bound page ID, empty when unbound.
func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Version returns the version number the next push will declare.
func (s *Session) Version() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Title returns the current title.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

// SpaceKey returns the container key of the bound page.
func (s *Session) SpaceKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spaceKey
}

// Content returns the decoded editable text.
func (s *Session) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// Dirty reports whether title or content changed since the last successful
// pull or push.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}
