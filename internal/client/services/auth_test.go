package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/evadocs/internal/client/client"
	"github.com/dmitrijs2005/evadocs/internal/client/models"
	"github.com/dmitrijs2005/evadocs/internal/common"
)

func TestLogin_ValidatesBeforeNetwork(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"foreign domain", "student@gmail.com", "secret1", common.ErrInvalidEmail},
		{"empty email", "", "secret1", common.ErrInvalidEmail},
		{"subdomain", "student@mail.itb.edu.ec", "secret1", common.ErrInvalidEmail},
		{"short password", "student@itb.edu.ec", "12345", common.ErrPasswordTooShort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			svc := NewAuthService(e.client, e.session, nil)

			_, err := svc.Login(context.Background(), tt.email, tt.password)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, e.client.total())
		})
	}
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	e.client.MeFn = func() (*models.User, error) {
		return &models.User{ID: 7, Email: "student@itb.edu.ec", Role: models.RoleAdmin, Name: "Ana"}, nil
	}
	svc := NewAuthService(e.client, e.session, nil)

	u, err := svc.Login(ctx, "  student@itb.edu.ec ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", u.Name)

	assert.True(t, svc.IsAuthenticated(ctx))
	cur, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cur.ID)
	assert.Equal(t, "student@itb.edu.ec", svc.LastEmail(ctx))
}

func TestLogin_ProfileFallback(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	e.client.MeFn = func() (*models.User, error) { return nil, client.ErrUnavailable }
	svc := NewAuthService(e.client, e.session, nil)

	u, err := svc.Login(ctx, "student@itb.edu.ec", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.User{Email: "student@itb.edu.ec", Role: models.RoleUser}, *u)

	cur, err := svc.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, cur.Role)
}

func TestLogin_Rejected(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	e.client.LoginFn = func(string, string) (string, error) {
		return "", &client.APIError{Status: 401, Message: "Incorrect email or password", Err: client.ErrUnauthorized}
	}
	svc := NewAuthService(e.client, e.session, nil)

	_, err := svc.Login(ctx, "student@itb.edu.ec", "secret1")
	require.ErrorIs(t, err, client.ErrUnauthorized)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Incorrect email or password", apiErr.Message)
	assert.False(t, svc.IsAuthenticated(ctx))
	assert.Empty(t, svc.LastEmail(ctx))
	assert.Zero(t, e.client.calls["Me"])
}

func TestRegister(t *testing.T) {
	valid := RegisterRequest{Email: "new@itb.edu.ec", Password: "password1", Confirm: "password1", AcceptTerms: true}

	tests := []struct {
		name   string
		mutate func(r *RegisterRequest)
		want   error
	}{
		{"bad email", func(r *RegisterRequest) { r.Email = "new@itb.com" }, common.ErrInvalidEmail},
		{"short password", func(r *RegisterRequest) { r.Password, r.Confirm = "short", "short" }, common.ErrPasswordTooShort},
		{"mismatch", func(r *RegisterRequest) { r.Confirm = "password2" }, common.ErrPasswordMismatch},
		{"terms", func(r *RegisterRequest) { r.AcceptTerms = false }, common.ErrTermsNotAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			svc := NewAuthService(e.client, e.session, nil)
			req := valid
			tt.mutate(&req)

			_, err := svc.Register(context.Background(), req)
			require.ErrorIs(t, err, tt.want)
			assert.Zero(t, e.client.total())
		})
	}

	t.Run("default role", func(t *testing.T) {
		e := setup(t)
		var gotRole string
		e.client.RegisterFn = func(email, password, role string) (*models.User, error) {
			gotRole = role
			return &models.User{Email: email, Role: role}, nil
		}
		svc := NewAuthService(e.client, e.session, nil)

		u, err := svc.Register(context.Background(), valid)
		require.NoError(t, err)
		assert.Equal(t, models.RoleUser, gotRole)
		assert.Equal(t, "new@itb.edu.ec", u.Email)
	})
}

func TestPasswordRecoveryAndReset(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	svc := NewAuthService(e.client, e.session, nil)

	_, err := svc.RequestPasswordRecovery(ctx, "someone@gmail.com")
	require.ErrorIs(t, err, common.ErrInvalidEmail)

	msg, err := svc.RequestPasswordRecovery(ctx, "someone@itb.edu.ec")
	require.NoError(t, err)
	assert.Equal(t, "sent", msg)

	_, err = svc.ResetPassword(ctx, " ", "password1", "password1")
	require.ErrorIs(t, err, common.ErrMissingResetToken)
	_, err = svc.ResetPassword(ctx, "tok", "pass", "pass")
	require.ErrorIs(t, err, common.ErrPasswordTooShort)
	_, err = svc.ResetPassword(ctx, "tok", "password1", "password2")
	require.ErrorIs(t, err, common.ErrPasswordMismatch)
	assert.Equal(t, 1, e.client.total())

	var gotToken string
	e.client.ResetFn = func(token, password string) (string, error) {
		gotToken = token
		return "Contraseña actualizada", nil
	}
	msg, err = svc.ResetPassword(ctx, "tok", "password1", "password1")
	require.NoError(t, err)
	assert.Equal(t, "tok", gotToken)
	assert.Equal(t, "Contraseña actualizada", msg)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	e := setup(t)
	svc := NewAuthService(e.client, e.session, nil)

	_, err := svc.Login(ctx, "student@itb.edu.ec", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx))
	assert.False(t, svc.IsAuthenticated(ctx))
	_, err = svc.CurrentUser(ctx)
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
	assert.Equal(t, "student@itb.edu.ec", svc.LastEmail(ctx))
}

func TestCurrentUser_ExpiredSession(t *testing.T) {
	e := setup(t)
	e.loginExpired(t)
	svc := NewAuthService(e.client, e.session, nil)

	_, err := svc.CurrentUser(context.Background())
	require.ErrorIs(t, err, common.ErrNotAuthenticated)
}

func TestPingAndClose(t *testing.T) {
	e := setup(t)
	e.client.PingErr = errors.New("down")
	svc := NewAuthService(e.client, e.session, nil)

	require.Error(t, svc.Ping(context.Background()))
	require.NoError(t, svc.Close(context.Background()))
	assert.Equal(t, 1, e.client.calls["Close"])
}

func TestShortPasswordError(t *testing.T) {
	err := validatePassword("abc", MinRegisterPasswordLen)
	var spe *ShortPasswordError
	require.ErrorAs(t, err, &spe)
	assert.Equal(t, 8, spe.Min)
	assert.ErrorIs(t, err, common.ErrPasswordTooShort)
	assert.NoError(t, validatePassword("contraseña", MinRegisterPasswordLen))
}
