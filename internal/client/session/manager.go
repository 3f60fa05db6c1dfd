package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

const (
	tokenKey     = "eva-access-token"
	userKey      = "eva-user-data"
	lastEmailKey = "last-email"
)

// legacyKeys are wiped on Clear alongside the session itself.
var legacyKeys = []string{
	"authToken",
	"userSession",
	"conversionHistory",
	"recentFiles",
	"userPreferences",
	"uploadedFiles",
}

// Wiper is local state that must not survive a logout.
type Wiper interface {
	Wipe(ctx context.Context) error
}

// WipeFunc adapts a function to Wiper.
type WipeFunc func(ctx context.Context) error

func (f WipeFunc) Wipe(ctx context.Context) error { return f(ctx) }

type Manager struct {
	repo   metadata.Repository
	now    func() time.Time
	logger logging.Logger

	mu     sync.Mutex
	wipers []Wiper
}

type Option func(*Manager)

// WithClock replaces time.Now for expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func WithWipers(w ...Wiper) Option {
	return func(m *Manager) { m.wipers = append(m.wipers, w...) }
}

func NewManager(repo metadata.Repository, opts ...Option) *Manager {
	m := &Manager{repo: repo, now: time.Now, logger: logging.Discard()}
	for _, o := range opts {
		o(m)
	}
	return m
}

// AddWiper registers w to run on Clear.
func (m *Manager) AddWiper(w Wiper) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.wipers = append(m.wipers, w)
}

// Save stores token and user as the current session. The token is kept
// verbatim.
func (m *Manager) Save(ctx context.Context, token string, user models.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.repo.Set(ctx, tokenKey, []byte(token)); err != nil {
		return err
	}
	return m.repo.Set(ctx, userKey, b)
}

// Token returns the stored token or common.ErrNotAuthenticated.
func (m *Manager) Token(ctx context.Context) (string, error) {
	b, err := m.repo.Get(ctx, tokenKey)
	if errors.Is(err, common.ErrorNotFound) || err == nil && len(b) == 0 {
		return "", common.ErrNotAuthenticated
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// User returns the cached profile or common.ErrNotAuthenticated.
func (m *Manager) User(ctx context.Context) (*models.User, error) {
	b, err := m.repo.Get(ctx, userKey)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &u, nil
}

// IsValid reports whether a token is stored and not past its expiry.
func (m *Manager) IsValid(ctx context.Context) bool {
	token, err := m.Token(ctx)
	if err != nil {
		return false
	}
	return m.tokenValid(token)
}

func (m *Manager) tokenValid(token string) bool {
	exp, ok, err := ExpiryOf(token)
	if err != nil {
		return false
	}
	if !ok {
		return true
	}
	return m.now().Before(exp)
}

// Clear removes the session, the legacy keys and everything registered as a
// Wiper. All steps run even if some fail; the errors are joined.
func (m *Manager) Clear(ctx context.Context) error {
	keys := append([]string{tokenKey, userKey}, legacyKeys...)
	errs := []error{m.repo.Delete(ctx, keys...)}

	m.mu.Lock()
	wipers := append([]Wiper(nil), m.wipers...)
	m.mu.Unlock()

	for _, w := range wipers {
		errs = append(errs, w.Wipe(ctx))
	}

	err := errors.Join(errs...)
	if err != nil {
		m.logger.Warn(ctx, "session clear incomplete", "error", err)
	} else {
		m.logger.Info(ctx, "session cleared")
	}
	return err
}

// LastEmail returns the remembered login e-mail, or "".
func (m *Manager) LastEmail(ctx context.Context) string {
	b, err := m.repo.Get(ctx, lastEmailKey)
	if err != nil {
		return ""
	}
	return string(b)
}

func (m *Manager) SetLastEmail(ctx context.Context, email string) error {
	return m.repo.Set(ctx, lastEmailKey, []byte(email))
}
