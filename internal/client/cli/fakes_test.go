package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/client/profilecache"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/stretchr/testify/require"
)

// fakeService is a single-account identity provider that publishes session
// changes like the real client does.
type fakeService struct {
	mu   sync.Mutex
	auth *identity.Broadcaster

	uid, email, password string
	verified             bool
	pendingEmail         string
	calls                []string
}

func newFakeService() *fakeService {
	return &fakeService{auth: identity.NewBroadcaster()}
}

func (f *fakeService) hit(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeService) snapshot() identity.Session {
	f.mu.Lock()
	defer f.mu.Unlock()
	return identity.Session{UID: f.uid, Email: f.email, EmailVerified: f.verified, Token: "tok-" + f.uid}
}

func (f *fakeService) publish(s identity.Session) identity.Session {
	f.auth.Publish(&s)
	return s
}

func (f *fakeService) CreateAccount(_ context.Context, email, password string) (identity.Session, error) {
	f.hit("CreateAccount")
	f.mu.Lock()
	if f.uid != "" {
		f.mu.Unlock()
		return identity.Session{}, identity.NewError(identity.CodeEmailInUse, "in use")
	}
	f.uid, f.email, f.password = "u1", email, password
	f.mu.Unlock()
	return f.publish(f.snapshot()), nil
}

func (f *fakeService) SignIn(_ context.Context, email, password string) (identity.Session, error) {
	f.hit("SignIn")
	f.mu.Lock()
	ok := f.uid != "" && f.email == email
	right := f.password == password
	f.mu.Unlock()
	if !ok {
		return identity.Session{}, identity.NewError(identity.CodeUserNotFound, "no user")
	}
	if !right {
		return identity.Session{}, identity.NewError(identity.CodeWrongPassword, "wrong")
	}
	return f.publish(f.snapshot()), nil
}

func (f *fakeService) SendVerificationEmail(context.Context, identity.Session) error {
	f.hit("SendVerificationEmail")
	return nil
}

func (f *fakeService) SignOut(context.Context, identity.Session) error {
	f.hit("SignOut")
	f.auth.Publish(nil)
	return nil
}

func (f *fakeService) Reauthenticate(_ context.Context, _ identity.Session, c identity.Credential) (identity.Session, error) {
	f.hit("Reauthenticate")
	f.mu.Lock()
	right := f.password == c.Password
	f.mu.Unlock()
	if !right {
		return identity.Session{}, identity.NewError(identity.CodeWrongPassword, "wrong")
	}
	return f.publish(f.snapshot()), nil
}

func (f *fakeService) VerifyBeforeUpdateEmail(_ context.Context, _ identity.Session, newEmail string) error {
	f.hit("VerifyBeforeUpdateEmail")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pendingEmail = newEmail
	return nil
}

func (f *fakeService) UpdatePassword(_ context.Context, _ identity.Session, newPassword string) error {
	f.hit("UpdatePassword")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = newPassword
	return nil
}

func (f *fakeService) Reload(context.Context, identity.Session) (identity.Session, error) {
	f.hit("Reload")
	return f.publish(f.snapshot()), nil
}

func (f *fakeService) ConfirmCode(_ context.Context, code string) error {
	f.hit("ConfirmCode:" + code)
	if code != "good" {
		return identity.NewError(identity.CodeInvalidCode, "bad code")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.verified = true
	if f.pendingEmail != "" {
		f.email, f.pendingEmail = f.pendingEmail, ""
	}
	return nil
}

func (f *fakeService) Subscribe(l identity.Listener) func() {
	return f.auth.Subscribe(l)
}

// stubInput feeds lines to both prompt seams in order; once they run out
// every read fails with io.EOF.
func stubInput(t *testing.T, lines ...string) {
	t.Helper()
	queue := append([]string(nil), lines...)
	next := func() (string, error) {
		if len(queue) == 0 {
			return "", io.EOF
		}
		v := queue[0]
		queue = queue[1:]
		return v, nil
	}

	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return next() }
	getPassword = func(_ string, _ io.Writer) (string, error) { return next() }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

// capturePrintln collects printlnFn output.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprint(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testApp struct {
	*App
	fake   *fakeService
	store  *docstore.MemoryStore
	cache  *profilecache.Cache
	sched  *timex.FakeScheduler
	screen *bytes.Buffer
}

func openCache(t *testing.T, dir string) *profilecache.Cache {
	t.Helper()
	c, err := profilecache.Open(context.Background(), filepath.Join(dir, "profile.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithCache(t, openCache(t, t.TempDir()))
}

func newTestAppWithCache(t *testing.T, cache *profilecache.Cache) *testApp {
	t.Helper()
	ta := &testApp{
		fake:   newFakeService(),
		store:  docstore.NewMemoryStore(),
		cache:  cache,
		sched:  timex.NewFakeScheduler(testStart),
		screen: &bytes.Buffer{},
	}
	a, err := newApp(context.Background(), appDeps{
		Identity:  ta.fake,
		Store:     ta.store,
		Cache:     cache,
		In:        bytes.NewReader(nil),
		Out:       ta.screen,
		Scheduler: ta.sched,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	ta.App = a
	return ta
}

// signedIn registers alice, confirms her email and signs her in.
func (ta *testApp) signedIn(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	stubInput(t, "alice_1", "alice@example.com", "Secret123", "Secret123")
	require.NoError(t, ta.Register(ctx))
	require.NoError(t, ta.ConfirmEmail(ctx, "good"))

	stubInput(t, "alice@example.com", "Secret123")
	require.NoError(t, ta.Login(ctx))
	ta.sched.Advance(time.Second)
	require.NotNil(t, ta.session.Current())
}
