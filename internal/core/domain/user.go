package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleEmployee = "EMPLOYEE"
	RoleCustomer = "CUSTOMER"
)

var ErrInvalidCredentials = errors.New("invalid credentials")
var ErrUserNotFound = errors.New("user not found")
var ErrUserExists = errors.New("user already exists")

// User models an authenticated actor. Snapshots are replaced wholesale
// on each auth event, never patched field by field.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Staff reports whether the role may manage orders from the dashboard.
func (u *User) Staff() bool {
	switch u.Role {
	case RoleAdmin, RoleManager, RoleEmployee:
		return true
	}
	return false
}
