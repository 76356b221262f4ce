package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type,omitempty"`
	ExpiresIn   int          `json:"expires_in,omitempty"`
	User        *domain.User `json:"user,omitempty"`
}

// Login authenticates with username and password. The server also sets
// the HTTP-only refresh cookie on this response; the cookie jar keeps
// it. The caller (session manager) stores the returned token.
func (c *Client) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodPost,
		path:   "/auth/login",
		body:   loginRequest{Username: in.Username, Password: in.Password},
	}, &resp)
	if err != nil {
		if IsUnauthorized(err) {
			return nil, fmt.Errorf("login: %w", domain.ErrInvalidCredentials)
		}
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login: server response missing access token")
	}
	return &ports.AuthResult{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   resp.ExpiresIn,
		User:        resp.User,
	}, nil
}

// Refresh exchanges the HTTP-only refresh cookie for a new access
// token. No bearer token is sent and no client-held refresh value
// exists to inspect. The interceptor calls this under single-flight;
// it is exported for the session manager's explicit use as well.
func (c *Client) Refresh(ctx context.Context) (*ports.AuthResult, error) {
	var resp authResponse
	err := c.do(ctx, apiRequest{
		method: http.MethodPost,
		path:   "/auth/refresh",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("refresh: server response missing access token")
	}
	return &ports.AuthResult{
		AccessToken: resp.AccessToken,
		TokenType:   resp.TokenType,
		ExpiresIn:   resp.ExpiresIn,
		User:        resp.User,
	}, nil
}

// Logout notifies the server the session is over. Best effort: the
// session manager clears local state regardless of the outcome.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, apiRequest{method: http.MethodPost, path: "/auth/logout"}, nil)
}

// Me returns the identity behind the stored token.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var user domain.User
	if err := c.do(ctx, apiRequest{method: http.MethodPost, path: "/auth/me"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
