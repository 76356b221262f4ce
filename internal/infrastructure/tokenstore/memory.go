// Package tokenstore provides the access-token stores backing
// ports.TokenStore. The token is the only shared mutable credential in
// the client; both stores are safe for concurrent use.
package tokenstore

import "sync"

// Memory holds the token in process memory only. A restarted dashboard
// starts logged out.
type Memory struct {
	mu    sync.Mutex
	token string
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Token() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, m.token != ""
}

func (m *Memory) Set(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
}

func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
}
