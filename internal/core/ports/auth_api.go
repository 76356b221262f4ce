package ports

import (
	"context"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

// LoginInput carries the credentials for a login attempt.
type LoginInput struct {
	Username string
	Password string
}

// AuthResult is returned by login and refresh.
type AuthResult struct {
	AccessToken string
	TokenType   string
	ExpiresIn   int
	// User accompanies login always, refresh optionally.
	User *domain.User
}

// AuthAPI is the slice of the backend the session manager talks to.
type AuthAPI interface {
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Logout(ctx context.Context) error
	// Me returns the identity behind the stored token (session bootstrap).
	Me(ctx context.Context) (*domain.User, error)
}
