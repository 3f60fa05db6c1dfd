package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/config"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/services"
	"github.com/dmitrijs2005/evadocs/internal/client/view"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

const pingTimeout = 3 * time.Second

// Documents is the part of services.DocumentService the CLI drives.
type Documents interface {
	Convert(ctx context.Context, path string, parentID int64) (*services.ConvertResult, error)
	Reconciled(ctx context.Context) (view.Reconciled, error)
	Download(ctx context.Context, versionID int64) (string, error)
	Delete(ctx context.Context, docID int64) error
	Share(ctx context.Context, docID int64, email, level string) (*models.Permission, error)
	DeleteLocal(ctx context.Context, id int64) error
	ExportLocal(ctx context.Context, id int64) (string, error)
	ClearLocal(ctx context.Context) error
}

// Signatures is the part of services.SignatureService the CLI drives.
type Signatures interface {
	Sign(ctx context.Context, docID int64, p12Path, password string) (*models.SignResult, error)
	Validate(ctx context.Context, path string) (*models.SignatureReport, error)
	SetSimulation(on bool)
	Simulation() bool
}

// SessionWatcher reports token expiry in the background.
type SessionWatcher interface {
	Watch(ctx context.Context, interval time.Duration, onExpire func(ctx context.Context))
}

type App struct {
	config  *config.Config
	auth    services.AuthService
	docs    Documents
	signer  Signatures
	watcher SessionWatcher
	view    *view.ViewModel
	logger  logging.Logger
	reader  *bufio.Reader
	out     io.Writer

	mu   sync.Mutex
	mode Mode
	user *models.User
}

func NewApp(c *config.Config, auth services.AuthService, docs Documents, signer Signatures, watcher SessionWatcher, logger logging.Logger) *App {
	if logger == nil {
		logger = logging.Discard()
	}
	return &App{
		config:  c,
		auth:    auth,
		docs:    docs,
		signer:  signer,
		watcher: watcher,
		view:    view.NewViewModel(view.LoaderFunc(docs.Reconciled)),
		logger:  logger,
		reader:  bufio.NewReader(os.Stdin),
		out:     os.Stdout,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()
	if changed {
		a.logger.Info(context.Background(), "connectivity changed", "mode", string(mode))
	}
}

func (a *App) currentMode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setUser(u *models.User) {
	a.mu.Lock()
	a.user = u
	a.mu.Unlock()
}

func (a *App) currentUser() *models.User {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.user
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.currentUser() != nil && a.auth.IsAuthenticated(ctx)
}

// Run starts the REPL and blocks until the user leaves or ctx is done.
func (a *App) Run(ctx context.Context) {
	defer func() { _ = a.auth.Close(ctx) }()
	a.Root(ctx)
}

// probe pings the backend once and records the resulting mode.
func (a *App) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := a.auth.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.probe(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// StartSessionWatcher forces a logout when the stored token expires.
func (a *App) StartSessionWatcher(ctx context.Context, interval time.Duration) {
	a.watcher.Watch(ctx, interval, a.onSessionExpired)
}

func (a *App) onSessionExpired(ctx context.Context) {
	a.logger.Info(ctx, "session expired, logging out")
	if err := a.auth.Logout(ctx); err != nil {
		a.logger.Warn(ctx, "logout after expiry", "error", err)
	}
	a.resetUI()
	printlnFn(msgSessionExpired)
}

func (a *App) resetUI() {
	a.setUser(nil)
	a.view.Reset()
}
