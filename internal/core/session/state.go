// Package session holds the process-wide authentication state machine.
//
// State is only mutated through Reduce, a pure transition function over
// an enumerated action set, so the machine is testable without any I/O.
// The Manager owns the state and drives the transitions.
package session

import "github.com/beanbar/orderdesk/internal/core/domain"

// State is the authentication snapshot every protected view reads.
// Authentication is derived from the user snapshot, never stored.
type State struct {
	User        *domain.User
	AccessToken string
	// Loading is true only during the initial bootstrap, a login call,
	// or a logout call, never during background refresh.
	Loading bool
}

// Authenticated reports whether a user is signed in.
func (s State) Authenticated() bool {
	return s.User != nil
}

// Kind enumerates the state machine's action set.
type Kind int

const (
	// SetLoading toggles the loading flag.
	SetLoading Kind = iota
	// SetUser replaces the user snapshot wholesale (nil signs out the
	// user without touching the token).
	SetUser
	// SetToken replaces the access token.
	SetToken
	// Reset clears user, token, and loading in one transition
	// (logout and forced logout).
	Reset
)

// Action is one input to the state machine.
type Action struct {
	Kind    Kind
	Loading bool
	User    *domain.User
	Token   string
}

// Reduce applies a to s and returns the next state. Unknown kinds
// return s unchanged.
func Reduce(s State, a Action) State {
	switch a.Kind {
	case SetLoading:
		s.Loading = a.Loading
	case SetUser:
		s.User = a.User
	case SetToken:
		s.AccessToken = a.Token
	case Reset:
		s = State{}
	}
	return s
}
