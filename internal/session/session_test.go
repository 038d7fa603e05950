package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/moamenhredeen/el-confluence/internal/confluence"
)

// fakeStore is an in-memory Store with controllable failures and optional
// blocking, so overlapping-operation behavior can be exercised.
type fakeStore struct {
	mu          sync.Mutex
	pages       map[string]*confluence.Page
	getErr      error
	updateErr   error
	getCalls    int
	updateCalls int
	lastUpdate  *confluence.PageUpdate

	// When set, GetPage and UpdatePage wait on this channel before
	// responding.
	gate chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{pages: make(map[string]*confluence.Page)}
}

func (f *fakeStore) put(p *confluence.Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pages[p.ID] = p
}

func (f *fakeStore) GetPage(ctx context.Context, id string) (*confluence.Page, error) {
	f.mu.Lock()
	f.getCalls++
	gate := f.gate
	err := f.getErr
	page, ok := f.pages[id]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &confluence.APIError{StatusCode: http.StatusNotFound, Message: "no content found with id " + id}
	}
	cp := *page
	return &cp, nil
}

func (f *fakeStore) UpdatePage(ctx context.Context, id string, upd *confluence.PageUpdate) (*confluence.Page, error) {
	f.mu.Lock()
	f.updateCalls++
	f.lastUpdate = upd
	gate := f.gate
	err := f.updateErr
	page, ok := f.pages[id]
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &confluence.APIError{StatusCode: http.StatusNotFound, Message: "no content found with id " + id}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if upd.Version.Number != page.Version.Number+1 {
		return nil, &confluence.APIError{
			StatusCode: http.StatusConflict,
			Message:    fmt.Sprintf("version mismatch: expected %d, got %d", page.Version.Number+1, upd.Version.Number),
		}
	}
	page.Title = upd.Title
	page.Space = upd.Space
	page.Body = upd.Body
	page.Version.Number = upd.Version.Number
	cp := *page
	return &cp, nil
}

func notesPage() *confluence.Page {
	return &confluence.Page{
		ID:      "42",
		Type:    "page",
		Title:   "Notes",
		Space:   confluence.Space{Key: "ENG"},
		Version: confluence.Version{Number: 3},
		Body: confluence.Body{
			Storage: confluence.Storage{Value: "<p>hi</p>", Representation: "storage"},
		},
	}
}

func TestPullBindsSession(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)

	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}

	if got := s.State(); got != StateBound {
		t.Errorf("state = %s, want bound", got)
	}
	if got := s.ID(); got != "42" {
		t.Errorf("id = %q, want %q", got, "42")
	}
	if got := s.Title(); got != "Notes" {
		t.Errorf("title = %q, want %q", got, "Notes")
	}
	if got := s.SpaceKey(); got != "ENG" {
		t.Errorf("space key = %q, want %q", got, "ENG")
	}
	// Version is pre-incremented: the next push declares server version + 1.
	if got := s.Version(); got != 4 {
		t.Errorf("version = %d, want 4", got)
	}
	want := "<page><p>hi</p>\n</page>\n"
	if got := s.Content(); got != want {
		t.Errorf("content = %q, want %q", got, want)
	}
	if s.Dirty() {
		t.Error("freshly pulled session reported dirty")
	}
}

func TestPullFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := s.SetContent("edited"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}

	err := s.Pull(context.Background(), "does-not-exist")
	if err == nil {
		t.Fatal("Pull of missing page succeeded")
	}
	var pullErr *PullError
	if !errors.As(err, &pullErr) {
		t.Fatalf("error = %T, want *PullError", err)
	}
	var apiErr *confluence.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("cause = %v, want 404 APIError", pullErr.Cause)
	}

	// Previous binding survives byte for byte.
	if s.State() != StateBound || s.ID() != "42" || s.Version() != 4 || s.Content() != "edited" {
		t.Errorf("session mutated by failed pull: state=%s id=%q version=%d content=%q",
			s.State(), s.ID(), s.Version(), s.Content())
	}
	if !s.Dirty() {
		t.Error("dirty flag lost on failed pull")
	}
}

func TestPullUnboundFailureStaysUnbound(t *testing.T) {
	store := newFakeStore()
	store.getErr = errors.New("connection refused")
	s := New(store)

	if err := s.Pull(context.Background(), "42"); err == nil {
		t.Fatal("Pull succeeded, want transport error")
	}
	if got := s.State(); got != StateUnbound {
		t.Errorf("state = %s, want unbound", got)
	}
}

func TestPushAdvancesVersion(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := s.SetContent("<page><p>hello</p>\n</page>\n"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}

	effective, err := s.Push(context.Background())
	if err != nil {
		t.Fatalf("Push: %v", err)
	}
	if effective != 4 {
		t.Errorf("effective version = %d, want 4", effective)
	}
	if got := s.Version(); got != 5 {
		t.Errorf("session version after push = %d, want 5", got)
	}
	if s.Dirty() {
		t.Error("session dirty after successful push")
	}

	// The submitted representation is the full wire shape.
	upd := store.lastUpdate
	if upd == nil {
		t.Fatal("no update submitted")
	}
	if upd.Type != "page" || upd.ID != "42" || upd.Space.Key != "ENG" {
		t.Errorf("update = %+v, want type=page id=42 space=ENG", upd)
	}
	if upd.Version.Number != 4 {
		t.Errorf("declared version = %d, want 4", upd.Version.Number)
	}
	if upd.Body.Storage.Representation != "storage" {
		t.Errorf("representation = %q, want storage", upd.Body.Storage.Representation)
	}
	// Encode is verbatim: the wrapper travels with the body.
	if upd.Body.Storage.Value != "<page><p>hello</p>\n</page>\n" {
		t.Errorf("submitted body = %q", upd.Body.Storage.Value)
	}
}

func TestPushConflictLeavesSessionUntouched(t *testing.T) {
	store := newFakeStore()
	page := notesPage()
	store.put(page)
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if err := s.SetTitle("Notes v2"); err != nil {
		t.Fatalf("SetTitle: %v", err)
	}

	// Someone else writes since our pull: server moves from 3 to 5.
	store.mu.Lock()
	store.pages["42"].Version.Number = 5
	store.mu.Unlock()

	before := snapshot(s)
	_, err := s.Push(context.Background())
	if err == nil {
		t.Fatal("Push succeeded against stale version")
	}
	var pushErr *PushError
	if !errors.As(err, &pushErr) {
		t.Fatalf("error = %T, want *PushError", err)
	}
	if !pushErr.IsConflict() {
		t.Errorf("IsConflict() = false for status %d", pushErr.StatusCode)
	}
	if pushErr.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", pushErr.StatusCode)
	}
	if pushErr.Message == "" {
		t.Error("conflict message lost")
	}

	if after := snapshot(s); after != before {
		t.Errorf("failed push mutated session:\nbefore %+v\nafter  %+v", before, after)
	}
	if s.State() != StateBound {
		t.Errorf("state after failed push = %s, want bound", s.State())
	}
}

func TestPushTransportErrorHasNoStatus(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}
	store.updateErr = errors.New("dial tcp: connection refused")

	_, err := s.Push(context.Background())
	var pushErr *PushError
	if !errors.As(err, &pushErr) {
		t.Fatalf("error = %T, want *PushError", err)
	}
	if pushErr.StatusCode != 0 {
		t.Errorf("status = %d, want 0 for transport failure", pushErr.StatusCode)
	}
	if pushErr.IsConflict() {
		t.Error("transport failure reported as conflict")
	}
}

func TestPushUnbound(t *testing.T) {
	store := newFakeStore()
	s := New(store)

	_, err := s.Push(context.Background())
	var invalid *InvalidStateError
	if !errors.As(err, &invalid) {
		t.Fatalf("error = %T, want *InvalidStateError", err)
	}
	if invalid.State != StateUnbound {
		t.Errorf("reported state = %s, want unbound", invalid.State)
	}
	if store.updateCalls != 0 {
		t.Errorf("unbound push reached the store: %d calls", store.updateCalls)
	}
}

func TestOverlappingOperationsFailFast(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}

	gate := make(chan struct{})
	store.mu.Lock()
	store.gate = gate
	store.mu.Unlock()

	pushDone := make(chan error, 1)
	go func() {
		_, err := s.Push(context.Background())
		pushDone <- err
	}()

	// Wait until the push is in flight.
	deadline := time.Now().Add(2 * time.Second)
	for s.State() != StatePushing {
		if time.Now().After(deadline) {
			t.Fatal("push never entered flight")
		}
		time.Sleep(time.Millisecond)
	}

	if err := s.Pull(context.Background(), "42"); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("pull during push: err = %v, want ErrSessionBusy", err)
	}
	if _, err := s.Push(context.Background()); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("push during push: err = %v, want ErrSessionBusy", err)
	}
	if err := s.SetTitle("x"); !errors.Is(err, ErrSessionBusy) {
		t.Errorf("set title during push: err = %v, want ErrSessionBusy", err)
	}

	close(gate)
	if err := <-pushDone; err != nil {
		t.Fatalf("gated push: %v", err)
	}
}

func TestPullConfirmCallback(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())

	t.Run("declined keeps unsaved content", func(t *testing.T) {
		var prompt string
		s := New(store, WithConfirm(func(p string) bool {
			prompt = p
			return false
		}))
		if err := s.Pull(context.Background(), "42"); err != nil {
			t.Fatalf("Pull: %v", err)
		}
		if err := s.SetContent("edited"); err != nil {
			t.Fatalf("SetContent: %v", err)
		}

		before := snapshot(s)
		if err := s.Pull(context.Background(), "42"); !errors.Is(err, ErrPullDeclined) {
			t.Fatalf("err = %v, want ErrPullDeclined", err)
		}
		if prompt == "" {
			t.Error("confirm callback never asked")
		}
		if after := snapshot(s); after != before {
			t.Errorf("declined pull mutated session")
		}
	})

	t.Run("accepted replaces content", func(t *testing.T) {
		s := New(store, WithConfirm(func(string) bool { return true }))
		if err := s.Pull(context.Background(), "42"); err != nil {
			t.Fatalf("Pull: %v", err)
		}
		if err := s.SetContent("edited"); err != nil {
			t.Fatalf("SetContent: %v", err)
		}
		if err := s.Pull(context.Background(), "42"); err != nil {
			t.Fatalf("re-pull: %v", err)
		}
		if got := s.Content(); got != "<page><p>hi</p>\n</page>\n" {
			t.Errorf("content = %q, want fresh decode", got)
		}
		if s.Dirty() {
			t.Error("dirty after accepted re-pull")
		}
	})

	t.Run("clean session never prompts", func(t *testing.T) {
		asked := false
		s := New(store, WithConfirm(func(string) bool {
			asked = true
			return false
		}))
		if err := s.Pull(context.Background(), "42"); err != nil {
			t.Fatalf("Pull: %v", err)
		}
		if err := s.Pull(context.Background(), "42"); err != nil {
			t.Fatalf("re-pull: %v", err)
		}
		if asked {
			t.Error("confirm asked with no unsaved changes")
		}
	})
}

func TestClose(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	s := New(store)
	if err := s.Pull(context.Background(), "42"); err != nil {
		t.Fatalf("Pull: %v", err)
	}

	s.Close()
	if s.State() != StateUnbound {
		t.Errorf("state = %s, want unbound", s.State())
	}
	if s.ID() != "" || s.Title() != "" || s.SpaceKey() != "" || s.Content() != "" || s.Version() != 0 {
		t.Error("close left fields populated")
	}

	// Closing twice is harmless.
	s.Close()
	if s.State() != StateUnbound {
		t.Errorf("state after double close = %s", s.State())
	}
}

func TestManagerTracksUnsavedSessions(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	m := NewManager(store)

	if m.HasUnsavedSession("42") {
		t.Error("unknown page reported unsaved")
	}

	s, err := m.Open(context.Background(), "42")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if m.HasUnsavedSession("42") {
		t.Error("clean session reported unsaved")
	}

	if err := s.SetContent("edited"); err != nil {
		t.Fatalf("SetContent: %v", err)
	}
	if !m.HasUnsavedSession("42") {
		t.Error("dirty session not reported unsaved")
	}

	got, ok := m.Get("42")
	if !ok || got != s {
		t.Error("Get did not return the tracked session")
	}

	// Re-opening the same page reuses the session.
	again, err := m.Open(context.Background(), "42")
	if err == nil {
		if again != s {
			t.Error("Open created a second session for the same page")
		}
	} else {
		t.Fatalf("re-open: %v", err)
	}

	m.Close("42")
	if m.HasUnsavedSession("42") {
		t.Error("closed session reported unsaved")
	}
	if _, ok := m.Get("42"); ok {
		t.Error("closed session still tracked")
	}
}

func TestManagerIndependentSessions(t *testing.T) {
	store := newFakeStore()
	store.put(notesPage())
	other := notesPage()
	other.ID = "43"
	other.Title = "Runbook"
	store.put(other)

	m := NewManager(store)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []string{"42", "43"} {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			_, errs[i] = m.Open(context.Background(), id)
		}(i, id)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Fatalf("concurrent open %d: %v", i, err)
		}
	}

	a, _ := m.Get("42")
	b, _ := m.Get("43")
	if a == b {
		t.Fatal("distinct pages share a session")
	}
	if a.Title() != "Notes" || b.Title() != "Runbook" {
		t.Errorf("titles = %q, %q", a.Title(), b.Title())
	}
}

// sessionSnapshot captures every user-visible field for byte-identity checks.
type sessionSnapshot struct {
	state    State
	id       string
	version  int
	title    string
	spaceKey string
	content  string
	dirty    bool
}

func snapshot(s *Session) sessionSnapshot {
	return sessionSnapshot{
		state:    s.State(),
		id:       s.ID(),
		version:  s.Version(),
		title:    s.Title(),
		spaceKey: s.SpaceKey(),
		content:  s.Content(),
		dirty:    s.Dirty(),
	}
}
