package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/evadocs/internal/client/models"
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Ping probes /health.
func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return err
	}
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	drain(resp)
	return nil
}

// Login exchanges credentials for an access token.
func (c *HTTPClient) Login(ctx context.Context, email, password string) (string, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/login", body, "application/json")
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}

	var tr tokenResponse
	if err := decodeJSON(resp, &tr); err != nil {
		return "", err
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: no access token", ErrBadResponse)
	}
	return tr.AccessToken, nil
}

// Me returns the profile of the token holder.
func (c *HTTPClient) Me(ctx context.Context) (*models.User, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/v1/auth/me", nil, "")
	if err != nil {
		return nil, err
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := decodeJSON(resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	body, err := jsonBody(map[string]string{"email": email, "password": password, "role": role})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/api/v1/auth/register", body, "application/json")
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := decodeJSON(resp, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// RequestPasswordRecovery asks the backend to mail a reset link and returns
// its confirmation message.
func (c *HTTPClient) RequestPasswordRecovery(ctx context.Context, email string) (string, error) {
	return c.postMessage(ctx, "/api/v1/auth/password-recovery", map[string]string{"email": email})
}

func (c *HTTPClient) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	return c.postMessage(ctx, "/api/v1/auth/reset-password", map[string]string{"token": token, "new_password": newPassword})
}

func (c *HTTPClient) postMessage(ctx context.Context, path string, payload map[string]string) (string, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return "", err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, body, "application/json")
	if err != nil {
		return "", err
	}
	resp, err := c.do(req)
	if err != nil {
		return "", err
	}

	var mr messageResponse
	if err := decodeJSON(resp, &mr); err != nil {
		return "", err
	}
	return mr.Message, nil
}
