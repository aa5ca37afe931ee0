package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/siteaccounts/internal/account"
	"github.com/dmitrijs2005/siteaccounts/internal/client/config"
	"github.com/dmitrijs2005/siteaccounts/internal/client/grpcclient"
	"github.com/dmitrijs2005/siteaccounts/internal/client/profilecache"
	"github.com/dmitrijs2005/siteaccounts/internal/docstore"
	"github.com/dmitrijs2005/siteaccounts/internal/filex"
	"github.com/dmitrijs2005/siteaccounts/internal/identity"
	"github.com/dmitrijs2005/siteaccounts/internal/logging"
	"github.com/dmitrijs2005/siteaccounts/internal/notify"
	"github.com/dmitrijs2005/siteaccounts/internal/popup"
	"github.com/dmitrijs2005/siteaccounts/internal/timex"
	"github.com/dmitrijs2005/siteaccounts/internal/usernames"
)

type App struct {
	logger  logging.Logger
	svc     identity.Service
	ctrl    *account.Controller
	notes   *notify.Manager
	modal   *popup.Coordinator
	session *identity.Tracker
	nav     *navigator
	view    *profileView
	reader  *bufio.Reader
	out     io.Writer
	closers []io.Closer
}

// appDeps are the pieces NewApp builds from the config; tests pass fakes.
type appDeps struct {
	Identity             identity.Service
	Store                docstore.Store
	Cache                profileStore
	In                   io.Reader
	Out                  io.Writer
	Logger               logging.Logger
	Scheduler            timex.Scheduler
	NotificationDuration time.Duration
	RedirectDelay        time.Duration
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	path, err := filex.EnsureParentDir(c.ProfileCachePath)
	if err != nil {
		return nil, err
	}

	cache, err := profilecache.Open(ctx, path)
	if err != nil {
		logger.Error(ctx, "error opening profile cache", "error", err)
		return nil, err
	}

	apiClient, err := grpcclient.New(c.ServerEndpointAddr, logger)
	if err != nil {
		_ = cache.Close()
		return nil, err
	}

	a, err := newApp(ctx, appDeps{
		Identity:             apiClient,
		Store:                apiClient,
		Cache:                cache,
		In:                   os.Stdin,
		Out:                  os.Stdout,
		Logger:               logger,
		NotificationDuration: c.NotificationDuration,
	})
	if err != nil {
		_ = apiClient.Close()
		_ = cache.Close()
		return nil, err
	}
	a.closers = []io.Closer{apiClient, cache}
	return a, nil
}

func newApp(ctx context.Context, d appDeps) (*App, error) {
	if d.Logger == nil {
		d.Logger = logging.Nop{}
	}

	notes := notify.NewManager(notify.NewTerminalSurface(d.Out), d.Scheduler, notify.WithDuration(d.NotificationDuration))
	modal := popup.NewCoordinator(terminalPopup{w: d.Out})
	tracker := identity.Track(d.Identity)
	nav := newNavigator(account.PageLogin)
	view := newProfileView(d.Out, d.Cache, tracker.Current, d.Logger.With("module", "profile"))

	ctrl, err := account.NewController(account.Deps{
		Identity:      d.Identity,
		Usernames:     usernames.NewRegistry(d.Store, d.Scheduler),
		Notifier:      notes,
		Popup:         modal,
		Display:       view,
		Navigator:     nav,
		Scheduler:     d.Scheduler,
		Logger:        d.Logger,
		RedirectDelay: d.RedirectDelay,
	})
	if err != nil {
		tracker.Close()
		return nil, err
	}

	a := &App{
		logger:  d.Logger,
		svc:     d.Identity,
		ctrl:    ctrl,
		notes:   notes,
		modal:   modal,
		session: tracker,
		nav:     nav,
		view:    view,
		reader:  bufio.NewReader(d.In),
		out:     d.Out,
	}

	nav.OnEnter(account.PageManage, func() {
		_ = ctrl.LoadProfile(context.Background(), tracker.Current())
	})
	tracker.OnChange(func(s *identity.Session) {
		if s == nil {
			view.clear(context.Background())
		}
	})
	view.restore(ctx)

	return a, nil
}

func (a *App) page() account.Page {
	return a.nav.Page()
}

func (a *App) status() string {
	label := a.view.label()
	s := a.session.Current()
	switch {
	case s == nil && label != "":
		label = "last: " + label
	case s != nil && label == "":
		label = s.Email
	}
	if label == "" {
		return string(a.page())
	}
	return fmt.Sprintf("%s (%s)", a.page(), label)
}

func (a *App) Run(ctx context.Context) {
	defer a.Close()

	printlnFn("Welcome to the account CLI (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}

// Close stops tracking the session and releases the connection and cache.
func (a *App) Close() error {
	a.session.Close()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	a.closers = nil
	return errors.Join(errs...)
}
