package account

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/notify"
	"github.com/dmitrijs2005/siteaccounts/internal/popup"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/dmitrijs2005/siteaccounts/internal/usernames"
)

var (
	// ErrValidation wraps every local validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrNoSession is returned when a flow needs a signed-in user.
	ErrNoSession = errors.New("no authenticated user")
	// ErrReauthRequired is returned by ChangeEmail when the password step
	// did not succeed for the same user first.
	ErrReauthRequired = errors.New("reauthentication required")
	// ErrUsernameTaken is returned when the requested username is reserved.
	ErrUsernameTaken = errors.New("username taken")
	// ErrEmailNotVerified is returned by SignIn for unverified accounts.
	ErrEmailNotVerified = errors.New("email not verified")
)

// DefaultRedirectDelay lets the sign-in notification render before leaving
// the page.
const DefaultRedirectDelay = time.Second

// Page is a navigation target.
type Page string

const (
	PageLogin  Page = "login"
	PageIndex  Page = "index"
	PageManage Page = "manage"
)

// Notifier shows a notification.
type Notifier interface {
	Notify(message string, severity notify.Severity) notify.Notification
}

// Popup is the modal the account forms live in.
type Popup interface {
	Show(id popup.FormID, title string)
	Hide()
	OnHide(f func())
}

// Display shows the profile fields of the manage page.
type Display interface {
	SetUsername(username string)
	SetEmail(email string)
}

// Navigator leaves the current page.
type Navigator interface {
	Navigate(p Page)
}

// Deps are the collaborators of a Controller. Identity and Usernames are
// required; everything else has a quiet default.
type Deps struct {
	Identity  identity.Service
	Usernames *usernames.Registry
	Notifier  Notifier
	Popup     Popup
	Display   Display
	Navigator Navigator
	Scheduler timex.Scheduler
	Logger    logging.Logger

	// RedirectDelay defaults to DefaultRedirectDelay.
	RedirectDelay time.Duration
	// OnTransition, when set, observes every state change.
	OnTransition func(f Flow, from, to State)
}

// Controller runs the credential workflows.
type Controller struct {
	id    identity.Service
	names *usernames.Registry
	note  Notifier
	pop   Popup
	view  Display
	nav   Navigator
	sched timex.Scheduler
	log   logging.Logger
	delay time.Duration
	hook  func(Flow, State, State)

	mu     sync.Mutex
	states map[Flow]State
	// session that passed the password step of the email change
	gate emailGate
}

// emailGate remembers the session that passed the password step: its uid,
// the token it was presented with and the token reauthentication issued.
type emailGate struct {
	uid    string
	tokens [2]string
}

func (g emailGate) admits(s *identity.Session) bool {
	if s == nil || g.uid == "" || s.UID != g.uid {
		return false
	}
	return s.Token == g.tokens[0] || s.Token == g.tokens[1]
}

func NewController(d Deps) (*Controller, error) {
	if d.Identity == nil || d.Usernames == nil {
		return nil, errors.New("account: identity service and username registry are required")
	}
	c := &Controller{
		id:     d.Identity,
		names:  d.Usernames,
		note:   d.Notifier,
		pop:    d.Popup,
		view:   d.Display,
		nav:    d.Navigator,
		sched:  d.Scheduler,
		log:    d.Logger,
		delay:  d.RedirectDelay,
		hook:   d.OnTransition,
		states: make(map[Flow]State),
	}
	if c.note == nil {
		c.note = notify.NewManager(nil, nil)
	}
	if c.pop == nil {
		c.pop = popup.NewCoordinator(nil)
	}
	if c.view == nil {
		c.view = nopDisplay{}
	}
	if c.nav == nil {
		c.nav = nopNavigator{}
	}
	if c.sched == nil {
		c.sched = timex.Real()
	}
	if c.log == nil {
		c.log = logging.Nop{}
	}
	if c.delay <= 0 {
		c.delay = DefaultRedirectDelay
	}
	c.log = c.log.With("module", "account")

	c.pop.OnHide(c.closeEmailGate)
	return c, nil
}

// State is the current state of f.
func (c *Controller) State(f Flow) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.states[f]; ok {
		return s
	}
	return StateIdle
}

// EmailChangeAllowed reports whether the password step of the email change
// succeeded in session s and has not been closed since.
func (c *Controller) EmailChangeAllowed(s *identity.Session) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gate.admits(s)
}

// OpenChangeUsername, OpenChangeEmail and OpenChangePassword show the form
// that starts the matching flow.
func (c *Controller) OpenChangeUsername() { c.pop.Show(popup.UsernameForm, TitleChangeUsername) }

func (c *Controller) OpenChangeEmail() {
	c.closeEmailGate()
	c.pop.Show(popup.EmailVerifyForm, TitleChangeEmail)
}

func (c *Controller) OpenChangePassword() { c.pop.Show(popup.PasswordForm, TitleChangePassword) }

// ClosePopup cancels whatever form is open.
func (c *Controller) ClosePopup() { c.pop.Hide() }

func (c *Controller) openEmailGate(s, fresh identity.Session) {
	c.mu.Lock()
	c.gate = emailGate{uid: s.UID, tokens: [2]string{s.Token, fresh.Token}}
	c.mu.Unlock()
}

func (c *Controller) closeEmailGate() {
	c.mu.Lock()
	c.gate = emailGate{}
	c.mu.Unlock()
}

func (c *Controller) show(m Message) {
	c.note.Notify(m.Text, m.Severity)
}

func (c *Controller) setState(ctx context.Context, f Flow, to State) {
	c.mu.Lock()
	from, ok := c.states[f]
	if !ok {
		from = StateIdle
	}
	c.states[f] = to
	c.mu.Unlock()

	c.log.Debug(ctx, "flow transition", "flow", f, "from", from, "to", to)
	if c.hook != nil {
		c.hook(f, from, to)
	}
}

// run tracks one invocation of a flow.
type run struct {
	ctx  context.Context
	c    *Controller
	flow Flow
}

func (c *Controller) begin(ctx context.Context, f Flow) *run {
	c.setState(ctx, f, StateValidating)
	return &run{ctx: ctx, c: c, flow: f}
}

// reject ends the flow during validation.
func (r *run) reject(m Message, err error) error {
	r.c.show(m)
	r.c.setState(r.ctx, r.flow, StateIdle)
	return fmt.Errorf("%s: %w: %s", r.flow, err, m.Text)
}

func (r *run) submit() {
	r.c.setState(r.ctx, r.flow, StateSubmitting)
}

// fail ends the flow after an external call failed.
func (r *run) fail(m Message, err error) error {
	r.c.show(m)
	r.c.log.Warn(r.ctx, "flow failed", "flow", r.flow, "error", err)
	r.c.setState(r.ctx, r.flow, StateFailure)
	r.c.setState(r.ctx, r.flow, StateIdle)
	return fmt.Errorf("%s: %w", r.flow, err)
}

func (r *run) failWith(t errorTable, err error) error {
	return r.fail(t.message(err), err)
}

func (r *run) succeed(m Message) {
	r.c.show(m)
	r.c.log.Info(r.ctx, "flow succeeded", "flow", r.flow)
	r.c.setState(r.ctx, r.flow, StateSuccess)
	r.c.setState(r.ctx, r.flow, StateIdle)
}

type nopDisplay struct{}

func (nopDisplay) SetUsername(string) {}
func (nopDisplay) SetEmail(string) {}

type nopNavigator struct{}

func (nopNavigator) Navigate(Page) {}
