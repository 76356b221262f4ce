package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

// Manager owns the session state for the lifetime of the process. It is
// created at startup, injected wherever session state is needed, and
// torn down with the process. There is no ambient global.
//
// The API client signals it through HandleTokenRefreshed and
// HandleForcedLogout; register those as the client's observers at
// wiring time.
type Manager struct {
	tokens ports.TokenStore
	auth   ports.AuthAPI
	log    zerolog.Logger

	mu    sync.Mutex
	state State
	subs  []func(State)
}

// NewManager creates a Manager in the bootstrapping state (loading).
func NewManager(tokens ports.TokenStore, auth ports.AuthAPI, log zerolog.Logger) *Manager {
	return &Manager{
		tokens: tokens,
		auth:   auth,
		log:    log,
		state:  State{Loading: true},
	}
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn to be called with every state change. The
// callback runs outside the manager's lock; it must not block for long.
func (m *Manager) Subscribe(fn func(State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}

func (m *Manager) dispatch(a Action) {
	m.mu.Lock()
	m.state = Reduce(m.state, a)
	next := m.state
	subs := make([]func(State), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	for _, fn := range subs {
		fn(next)
	}
}

// Bootstrap resolves the initial session. With no stored token it goes
// straight to unauthenticated without a network call; otherwise it asks
// the backend who the token belongs to. Every path ends with the
// loading flag cleared.
func (m *Manager) Bootstrap(ctx context.Context) {
	defer m.dispatch(Action{Kind: SetLoading, Loading: false})

	token, ok := m.tokens.Token()
	if !ok {
		return
	}

	user, err := m.auth.Me(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session bootstrap rejected, clearing stored token")
		m.tokens.Clear()
		m.dispatch(Action{Kind: Reset})
		return
	}

	// The interceptor can rotate the token during Me; dispatch
	// whatever the store holds now, not the value read above.
	if fresh, ok := m.tokens.Token(); ok {
		token = fresh
	}
	m.dispatch(Action{Kind: SetToken, Token: token})
	m.dispatch(Action{Kind: SetUser, User: user})
	m.log.Info().Str("username", user.Username).Str("role", user.Role).Msg("session restored")
}

// Login authenticates and, on success, stores the token and user.
// Failures leave the state unauthenticated and are returned to the
// caller for inline display.
func (m *Manager) Login(ctx context.Context, username, password string) error {
	m.dispatch(Action{Kind: SetLoading, Loading: true})
	defer m.dispatch(Action{Kind: SetLoading, Loading: false})

	res, err := m.auth.Login(ctx, ports.LoginInput{Username: username, Password: password})
	if err != nil {
		return err
	}

	m.tokens.Set(res.AccessToken)
	m.dispatch(Action{Kind: SetToken, Token: res.AccessToken})
	m.dispatch(Action{Kind: SetUser, User: res.User})
	m.log.Info().Str("username", username).Msg("logged in")
	return nil
}

// Logout notifies the server best-effort, then unconditionally clears
// the local token and state.
func (m *Manager) Logout(ctx context.Context) {
	m.dispatch(Action{Kind: SetLoading, Loading: true})

	if err := m.auth.Logout(ctx); err != nil {
		m.log.Warn().Err(err).Msg("server logout failed, clearing local session anyway")
	}

	m.tokens.Clear()
	m.dispatch(Action{Kind: Reset})
	m.log.Info().Msg("logged out")
}

// HandleTokenRefreshed is the silent-refresh observer: the token is
// replaced and, when a fresh user snapshot accompanied the refresh, the
// snapshot too. The loading flag is not disturbed.
func (m *Manager) HandleTokenRefreshed(token string, user *domain.User) {
	m.dispatch(Action{Kind: SetToken, Token: token})
	if user != nil {
		m.dispatch(Action{Kind: SetUser, User: user})
	}
}

// HandleForcedLogout is the failed-refresh observer: the session is
// already presumed dead server-side, so no server call is made.
func (m *Manager) HandleForcedLogout() {
	m.tokens.Clear()
	m.dispatch(Action{Kind: Reset})
	m.log.Info().Msg("session expired, forced logout")
}
