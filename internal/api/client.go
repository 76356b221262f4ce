// Package api implements the REST client for the order backend.
//
// Every outbound request goes through the auth interceptor in do: the
// bearer token is injected for non-auth endpoints, and a 401 on a
// request that carried a token triggers a single-flight refresh: all
// concurrent 401s share one refresh call and one outcome.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

// Config holds the dependencies for creating a Client.
type Config struct {
	// BaseURL is the backend root (e.g. "http://localhost:3000").
	BaseURL string
	// Tokens is the store the interceptor reads on every dispatch and
	// writes on refresh.
	Tokens ports.TokenStore
	// HTTPClient is used for all requests. If nil, a client with a
	// cookie jar is created. The jar carries the HTTP-only refresh
	// cookie the server sets on login; this code never inspects it.
	HTTPClient *http.Client
	// Logger defaults to a no-op logger when left zero-valued is not
	// possible with zerolog, so pass zerolog.Nop() explicitly in tests.
	Logger zerolog.Logger
}

// Client talks to the order backend. All methods are safe for
// concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  ports.TokenStore
	log     zerolog.Logger

	refresh singleflight.Group

	onTokenRefreshed func(token string, user *domain.User)
	onForcedLogout   func()
}

// NewClient creates a Client for the given backend.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("api: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("api: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("api: Tokens is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("api: cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		tokens:  cfg.Tokens,
		log:     cfg.Logger,
	}, nil
}

// OnTokenRefreshed registers the observer called after a successful
// silent refresh, with the new token and the user snapshot when the
// server sent one. Call before issuing requests; registration is not
// synchronized with in-flight calls.
func (c *Client) OnTokenRefreshed(fn func(token string, user *domain.User)) {
	c.onTokenRefreshed = fn
}

// OnForcedLogout registers the observer called exactly once per failed
// refresh, after the token store has been cleared.
func (c *Client) OnForcedLogout(fn func()) {
	c.onForcedLogout = fn
}

// isAuthEndpoint reports whether path is one of the auth bootstrap
// endpoints. These establish the credential and are never sent with a
// bearer token, and a 401 from them never triggers a refresh.
func isAuthEndpoint(path string) bool {
	switch path {
	case "/auth/login", "/auth/register", "/auth/refresh":
		return true
	}
	return false
}

// apiRequest describes one call; the HTTP request is rebuilt from it on
// retry so the body can be re-sent.
type apiRequest struct {
	method string
	path   string
	query  url.Values
	body   any
}

// do sends the request through the auth interceptor and decodes a 2xx
// response into out (which may be nil). Non-2xx responses after any
// refresh/retry come back as *APIError.
func (c *Client) do(ctx context.Context, r apiRequest, out any) error {
	var token string
	hadToken := false
	if !isAuthEndpoint(r.path) {
		token, hadToken = c.tokens.Token()
	}

	status, body, err := c.send(ctx, r, token)
	if err != nil {
		return err
	}

	if status == http.StatusUnauthorized && hadToken {
		fresh, refreshErr := c.refreshToken(ctx)
		if refreshErr != nil {
			// Refresh failed: forced logout has been signalled, the
			// caller still receives the original 401.
			return newAPIError(status, body)
		}

		// Retried exactly once, strictly after the refresh completed,
		// with the token the refresh produced.
		status, body, err = c.send(ctx, r, fresh)
		if err != nil {
			return err
		}
	}

	if status >= 200 && status < 300 {
		if out == nil || len(body) == 0 {
			return nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("api: decoding %s %s response: %w", r.method, r.path, err)
		}
		return nil
	}

	return newAPIError(status, body)
}

// send performs a single HTTP round trip. A transport-level failure is
// returned as an error; any HTTP status is returned as data.
func (c *Client) send(ctx context.Context, r apiRequest, token string) (int, []byte, error) {
	requestURL := c.baseURL + r.path
	if len(r.query) > 0 {
		requestURL += "?" + r.query.Encode()
	}

	var bodyReader io.Reader
	if r.body != nil {
		encoded, err := json.Marshal(r.body)
		if err != nil {
			return 0, nil, fmt.Errorf("api: encoding %s %s body: %w", r.method, r.path, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, requestURL, bodyReader)
	if err != nil {
		return 0, nil, fmt.Errorf("api: creating %s %s request: %w", r.method, r.path, err)
	}
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("api: %s %s: %w", r.method, r.path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, nil, fmt.Errorf("api: reading %s %s response: %w", r.method, r.path, err)
	}

	return resp.StatusCode, body, nil
}

// refreshToken runs the refresh protocol under single-flight: callers
// arriving while a refresh is outstanding await the same result instead
// of issuing a second refresh call. On failure the token store is
// cleared and the forced-logout observer fires, once, inside the shared
// execution.
func (c *Client) refreshToken(ctx context.Context) (string, error) {
	v, err, _ := c.refresh.Do("refresh", func() (any, error) {
		// The refresh outcome is shared by every waiter, so it must
		// not die with the first caller's context.
		res, err := c.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			c.log.Warn().Err(err).Msg("token refresh failed, forcing logout")
			c.tokens.Clear()
			if c.onForcedLogout != nil {
				c.onForcedLogout()
			}
			return nil, err
		}

		c.tokens.Set(res.AccessToken)
		c.log.Debug().Msg("access token refreshed")
		if c.onTokenRefreshed != nil {
			c.onTokenRefreshed(res.AccessToken, res.User)
		}
		return res.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}
