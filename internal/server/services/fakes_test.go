package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/siteaccounts/internal/common"
	"github.com/dmitrijs2005/siteaccounts/internal/cryptox"
	"github.com/dmitrijs2005/siteaccounts/internal/dbx"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/server/config"
	"github.com/dmitrijs2005/siteaccounts/internal/server/models"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/codes"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/siteaccounts/internal/server/repositories/users"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/stretchr/testify/require"

	mailer "github.com/dmitrijs2005/siteaccounts/internal/server/mail"
)

// --- in-memory repositories ---

type memUsers struct {
	mu   sync.Mutex
	byID map[string]*models.User
	err  error
}

func (r *memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, other := range r.byID {
		if other.Email == u.Email {
			return nil, common.ErrorAlreadyExists
		}
	}
	c := *u
	c.CreatedAt = time.Now()
	r.byID[u.ID] = &c
	out := c
	return &out, nil
}

func (r *memUsers) find(match func(*models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, u := range r.byID {
		if match(u) {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.Email == email })
}

func (r *memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	return r.find(func(u *models.User) bool { return u.ID == id })
}

func (r *memUsers) update(id string, fn func(*models.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return common.ErrorNotFound
	}
	return fn(u)
}

func (r *memUsers) MarkEmailVerified(_ context.Context, id string) error {
	return r.update(id, func(u *models.User) error { u.EmailVerified = true; return nil })
}

func (r *memUsers) UpdateEmail(_ context.Context, id, email string) error {
	r.mu.Lock()
	for _, other := range r.byID {
		if other.Email == email && other.ID != id {
			r.mu.Unlock()
			return common.ErrorAlreadyExists
		}
	}
	r.mu.Unlock()
	return r.update(id, func(u *models.User) error { u.Email = email; u.EmailVerified = true; return nil })
}

func (r *memUsers) UpdatePasswordHash(_ context.Context, id, hash string) error {
	return r.update(id, func(u *models.User) error { u.PasswordHash = hash; return nil })
}

type memSessions struct {
	mu   sync.Mutex
	rows map[string]*models.Session
}

func (r *memSessions) Create(_ context.Context, id, userID string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows[id] = &models.Session{ID: id, UserID: userID, ExpiresAt: time.Now().Add(validity)}
	return nil
}

func (r *memSessions) Find(_ context.Context, id string) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.rows[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *s
	return &c, nil
}

func (r *memSessions) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, id)
	return nil
}

type memCodes struct {
	mu   sync.Mutex
	rows map[string]*models.VerificationCode
}

func (r *memCodes) Create(_ context.Context, c *models.VerificationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *c
	r.rows[c.CodeHash] = &cp
	return nil
}

func (r *memCodes) Find(_ context.Context, hash string) (*models.VerificationCode, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.rows[hash]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *memCodes) Delete(_ context.Context, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rows, hash)
	return nil
}

func (r *memCodes) DeleteForUser(_ context.Context, userID string, purpose models.CodePurpose) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, c := range r.rows {
		if c.UserID == userID && c.Purpose == purpose {
			delete(r.rows, h)
		}
	}
	return nil
}

type fakeManager struct {
	users    *memUsers
	sessions *memSessions
	codes    *memCodes
	docs     docstore.Store
}

func (m *fakeManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeManager) Users(dbx.DBTX) users.Repository { return m.users }
func (m *fakeManager) Sessions(dbx.DBTX) sessions.Repository { return m.sessions }
func (m *fakeManager) Codes(dbx.DBTX) codes.Repository { return m.codes }
func (m *fakeManager) Documents(*sql.DB) docstore.Store { return m.docs }

// --- mailer ---

type recordingMailer struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg mailer.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *recordingMailer) last() mailer.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mailer.Message{}
	}
	return m.sent[len(m.sent)-1]
}

// --- harness ---

var testStart = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type harness struct {
	svc   *IdentityService
	repos *fakeManager
	mail  *recordingMailer
	clock *timex.FakeScheduler
	mock  sqlmock.Sqlmock
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repos := &fakeManager{
		users:    &memUsers{byID: map[string]*models.User{}},
		sessions: &memSessions{rows: map[string]*models.Session{}},
		codes:    &memCodes{rows: map[string]*models.VerificationCode{}},
		docs:     docstore.NewMemoryStore(),
	}
	ml := &recordingMailer{}
	clock := timex.NewFakeScheduler(testStart)

	cfg := &config.Config{}
	cfg.LoadDefaults()

	svc := NewIdentityService(db, repos, ml, cfg, nil).WithClock(clock)
	svc.HashParams = cryptox.Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 8, KeyLength: 16}

	return &harness{svc: svc, repos: repos, mail: ml, clock: clock, mock: mock}
}

// expectTx lets one dbx.WithTx through the mocked pool.
func (h *harness) expectTx() {
	h.mock.ExpectBegin()
	h.mock.ExpectCommit()
}
