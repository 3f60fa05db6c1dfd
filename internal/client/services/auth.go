package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/client/session"
	"github.com/dmitrijs2005/evadocs/internal/common"
	"github.com/dmitrijs2005/evadocs/internal/logging"
)

// RegisterRequest is the input of AuthService.Register.
type RegisterRequest struct {
	Email       string
	Password    string
	Confirm     string
	Role        string
	AcceptTerms bool
}

// AuthService defines account and session operations for the CLI.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*models.User, error)
	Register(ctx context.Context, req RegisterRequest) (*models.User, error)
	RequestPasswordRecovery(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, password, confirm string) (string, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (*models.User, error)
	IsAuthenticated(ctx context.Context) bool
	LastEmail(ctx context.Context) string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type authService struct {
	client  client.Client
	session *session.Manager
	logger  logging.Logger
}

// NewAuthService constructs an AuthService bound to the API client and the
// session store.
func NewAuthService(c client.Client, m *session.Manager, logger logging.Logger) AuthService {
	if logger == nil {
		logger = logging.Discard()
	}
	return &authService{client: c, session: m, logger: logger}
}

// Login authenticates, stores the token and caches the profile. When the
// profile cannot be fetched a minimal one built from email is kept.
func (a *authService) Login(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password, MinLoginPasswordLen); err != nil {
		return nil, err
	}

	token, err := a.client.Login(ctx, email, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	fallback := models.User{Email: email, Role: models.RoleUser}
	if err := a.session.Save(ctx, token, fallback); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	user := &fallback
	if me, err := a.client.Me(ctx); err != nil {
		a.logger.Warn(ctx, "profile unavailable, using fallback", "error", err)
	} else {
		user = me
		if err := a.session.Save(ctx, token, *user); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}

	if err := a.session.SetLastEmail(ctx, email); err != nil {
		a.logger.Warn(ctx, "remember email", "error", err)
	}
	a.logger.Info(ctx, "logged in", "email", email)
	return user, nil
}

func (a *authService) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	email := strings.TrimSpace(req.Email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password, MinRegisterPasswordLen); err != nil {
		return nil, err
	}
	if req.Password != req.Confirm {
		return nil, common.ErrPasswordMismatch
	}
	if !req.AcceptTerms {
		return nil, common.ErrTermsNotAccepted
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	u, err := a.client.Register(ctx, email, req.Password, role)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	return u, nil
}

func (a *authService) RequestPasswordRecovery(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateEmail(email); err != nil {
		return "", err
	}
	msg, err := a.client.RequestPasswordRecovery(ctx, email)
	if err != nil {
		return "", fmt.Errorf("password recovery: %w", err)
	}
	return msg, nil
}

func (a *authService) ResetPassword(ctx context.Context, token, password, confirm string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrMissingResetToken
	}
	if err := validatePassword(password, MinRegisterPasswordLen); err != nil {
		return "", err
	}
	if password != confirm {
		return "", common.ErrPasswordMismatch
	}
	msg, err := a.client.ResetPassword(ctx, token, password)
	if err != nil {
		return "", fmt.Errorf("reset password: %w", err)
	}
	return msg, nil
}

// Logout clears the session and everything wiped along with it.
func (a *authService) Logout(ctx context.Context) error {
	return a.session.Clear(ctx)
}

// CurrentUser returns the cached profile of a valid session.
func (a *authService) CurrentUser(ctx context.Context) (*models.User, error) {
	if !a.session.IsValid(ctx) {
		return nil, common.ErrNotAuthenticated
	}
	u, err := a.session.User(ctx)
	if errors.Is(err, common.ErrNotAuthenticated) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	return u, nil
}

func (a *authService) IsAuthenticated(ctx context.Context) bool {
	return a.session.IsValid(ctx)
}

func (a *authService) LastEmail(ctx context.Context) string {
	return a.session.LastEmail(ctx)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}

// expireSession clears the session after the backend rejected the token.
func expireSession(ctx context.Context, m *session.Manager, logger logging.Logger, cause error) error {
	logger.Warn(ctx, "backend rejected token, clearing session", "error", cause)
	if err := m.Clear(ctx); err != nil {
		return errors.Join(common.ErrSessionExpired, err)
	}
	return common.ErrSessionExpired
}
