package account

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/notify"
	"github.com/dmitrijs2005/siteaccounts/internal/popup"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/dmitrijs2005/siteaccounts/internal/usernames"
	"github.com/stretchr/testify/require"
)

// fakeIdentity counts calls and returns canned results.
type fakeIdentity struct {
	mu    sync.Mutex
	calls map[string]int

	uid           string
	emailVerified bool

	createErr, signInErr, sendErr, signOutErr error
	reauthErr, changeEmailErr, updatePwErr    error

	reauthToken string
	reauthWith  []identity.Credential
	pendingMail string
	newPassword string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{calls: map[string]int{}, uid: "uid-1", emailVerified: true}
}

func (f *fakeIdentity) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeIdentity) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeIdentity) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.calls {
		n += v
	}
	return n
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, _ string) (identity.Session, error) {
	f.hit("CreateAccount")
	if f.createErr != nil {
		return identity.Session{}, f.createErr
	}
	return identity.Session{UID: f.uid, Email: email, Token: "t"}, nil
}

func (f *fakeIdentity) SignIn(_ context.Context, email, _ string) (identity.Session, error) {
	f.hit("SignIn")
	if f.signInErr != nil {
		return identity.Session{}, f.signInErr
	}
	return identity.Session{UID: f.uid, Email: email, EmailVerified: f.emailVerified, Token: "t"}, nil
}

func (f *fakeIdentity) SendVerificationEmail(context.Context, identity.Session) error {
	f.hit("SendVerificationEmail")
	return f.sendErr
}

func (f *fakeIdentity) SignOut(context.Context, identity.Session) error {
	f.hit("SignOut")
	return f.signOutErr
}

func (f *fakeIdentity) Reauthenticate(_ context.Context, s identity.Session, c identity.Credential) (identity.Session, error) {
	f.hit("Reauthenticate")
	f.mu.Lock()
	f.reauthWith = append(f.reauthWith, c)
	f.mu.Unlock()
	if f.reauthErr != nil {
		return identity.Session{}, f.reauthErr
	}
	if f.reauthToken != "" {
		s.Token = f.reauthToken
	}
	return s, nil
}

func (f *fakeIdentity) VerifyBeforeUpdateEmail(_ context.Context, _ identity.Session, newEmail string) error {
	f.hit("VerifyBeforeUpdateEmail")
	if f.changeEmailErr != nil {
		return f.changeEmailErr
	}
	f.pendingMail = newEmail
	return nil
}

func (f *fakeIdentity) UpdatePassword(_ context.Context, _ identity.Session, pw string) error {
	f.hit("UpdatePassword")
	if f.updatePwErr != nil {
		return f.updatePwErr
	}
	f.newPassword = pw
	return nil
}

func (f *fakeIdentity) Reload(_ context.Context, s identity.Session) (identity.Session, error) {
	f.hit("Reload")
	return s, nil
}

func (f *fakeIdentity) ConfirmCode(context.Context, string) error {
	f.hit("ConfirmCode")
	return nil
}

func (f *fakeIdentity) Subscribe(identity.Listener) func() { return func() {} }

type recordingNotifier struct {
	mu    sync.Mutex
	items []Message
}

func (r *recordingNotifier) Notify(message string, severity notify.Severity) notify.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, Message{Text: message, Severity: severity})
	return notify.Notification{ID: uint64(len(r.items)), Message: message, Severity: severity}
}

func (r *recordingNotifier) all() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.items...)
}

func (r *recordingNotifier) last() Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Message{}
	}
	return r.items[len(r.items)-1]
}

type recordingNavigator struct {
	mu    sync.Mutex
	pages []Page
}

func (r *recordingNavigator) Navigate(p Page) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pages = append(r.pages, p)
}

func (r *recordingNavigator) visited() []Page {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Page(nil), r.pages...)
}

type recordingDisplay struct {
	username, email string
}

func (d *recordingDisplay) SetUsername(u string) { d.username = u }
func (d *recordingDisplay) SetEmail(e string) { d.email = e }

type harness struct {
	c     *Controller
	id    *fakeIdentity
	store docstore.Store
	names *usernames.Registry
	notes *recordingNotifier
	nav   *recordingNavigator
	view  *recordingDisplay
	pop   *popup.Coordinator
	sched *timex.FakeScheduler

	transitions []State
}

var testStart = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newHarness(t *testing.T) *harness {
	return newHarnessWithStore(t, docstore.NewMemoryStore())
}

func newHarnessWithStore(t *testing.T, store docstore.Store) *harness {
	t.Helper()
	h := &harness{
		id:    newFakeIdentity(),
		store: store,
		notes: &recordingNotifier{},
		nav:   &recordingNavigator{},
		view:  &recordingDisplay{},
		pop:   popup.NewCoordinator(nil),
		sched: timex.NewFakeScheduler(testStart),
	}
	h.names = usernames.NewRegistry(store, h.sched)

	c, err := NewController(Deps{
		Identity:  h.id,
		Usernames: h.names,
		Notifier:  h.notes,
		Popup:     h.pop,
		Display:   h.view,
		Navigator: h.nav,
		Scheduler: h.sched,
		OnTransition: func(_ Flow, _, to State) {
			h.transitions = append(h.transitions, to)
		},
	})
	require.NoError(t, err)
	h.c = c
	return h
}

func (h *harness) reserve(t *testing.T, username, uid string) {
	t.Helper()
	_, err := h.names.Claim(context.Background(), username, uid, uid+"@example.com")
	require.NoError(t, err)
}

func (h *harness) reservation(t *testing.T, username string) *usernames.Record {
	t.Helper()
	rec, err := h.names.Lookup(context.Background(), username)
	require.NoError(t, err)
	return rec
}

func session(uid string) *identity.Session {
	return &identity.Session{UID: uid, Email: uid + "@example.com", EmailVerified: true, Token: "t"}
}

// countingStore counts every call that reaches the document store.
type countingStore struct {
	docstore.Store

	mu    sync.Mutex
	calls int
}

func newCountingStore() *countingStore {
	return &countingStore{Store: docstore.NewMemoryStore()}
}

func (s *countingStore) hit() {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
}

func (s *countingStore) total() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *countingStore) Get(ctx context.Context, collection, key string) (*docstore.Document, error) {
	s.hit()
	return s.Store.Get(ctx, collection, key)
}

func (s *countingStore) Set(ctx context.Context, collection, key string, data map[string]any) error {
	s.hit()
	return s.Store.Set(ctx, collection, key, data)
}

func (s *countingStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	s.hit()
	return s.Store.Update(ctx, collection, key, fields)
}

func (s *countingStore) Delete(ctx context.Context, collection, key string) error {
	s.hit()
	return s.Store.Delete(ctx, collection, key)
}

func (s *countingStore) Query(ctx context.Context, collection, field, value string) ([]docstore.Document, error) {
	s.hit()
	return s.Store.Query(ctx, collection, field, value)
}

// brokenStore fails every query.
type brokenStore struct {
	docstore.Store
}

var errStoreDown = errors.New("store unavailable")

func (brokenStore) Get(context.Context, string, string) (*docstore.Document, error) {
	return nil, errStoreDown
}

func (brokenStore) Query(context.Context, string, string, string) ([]docstore.Document, error) {
	return nil, errStoreDown
}
