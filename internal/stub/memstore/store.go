// Package memstore is the in-memory persistence behind the stub
// backend. Everything lives in process memory so the stub runs with no
// external dependencies; restarting it resets all data to the seed.
package memstore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

type userRecord struct {
	user         domain.User
	passwordHash string
}

type refreshRecord struct {
	username  string
	expiresAt time.Time
}

// Store holds users, orders, and refresh tokens. Safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	users    map[string]*userRecord
	orders   map[string]*domain.Order
	refresh  map[string]refreshRecord
	orderSeq int
	userSeq  int
}

func New() *Store {
	return &Store{
		users:   make(map[string]*userRecord),
		orders:  make(map[string]*domain.Order),
		refresh: make(map[string]refreshRecord),
	}
}

// --- Users ---

// CreateUser registers a new user with a bcrypt-hashed password.
func (s *Store) CreateUser(username, password, email, role string) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, domain.ErrUserExists
	}

	s.userSeq++
	now := time.Now().UTC()
	user := domain.User{
		ID:        fmt.Sprintf("usr_%04d", s.userSeq),
		Email:     email,
		Username:  username,
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[username] = &userRecord{user: user, passwordHash: string(hash)}
	return &user, nil
}

// Authenticate verifies the credentials and returns the user snapshot.
func (s *Store) Authenticate(username, password string) (*domain.User, error) {
	s.mu.Lock()
	rec, ok := s.users[username]
	s.mu.Unlock()
	if !ok || !rec.user.Active {
		return nil, domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(rec.passwordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	user := rec.user
	return &user, nil
}

// FindUser returns the user snapshot for username.
func (s *Store) FindUser(username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.users[username]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	user := rec.user
	return &user, nil
}

// --- Refresh tokens ---

// IssueRefresh mints an opaque refresh token for username.
func (s *Store) IssueRefresh(username string, ttl time.Duration) string {
	token := randomToken()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = refreshRecord{username: username, expiresAt: time.Now().Add(ttl)}
	return token
}

// RotateRefresh consumes a refresh token and issues a replacement. The
// old token is invalid afterwards whether or not rotation succeeds.
func (s *Store) RotateRefresh(token string, ttl time.Duration) (username, next string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.refresh[token]
	delete(s.refresh, token)
	if !ok || time.Now().After(rec.expiresAt) {
		return "", "", domain.ErrSessionExpired
	}

	next = randomToken()
	s.refresh[next] = refreshRecord{username: rec.username, expiresAt: time.Now().Add(ttl)}
	return rec.username, next, nil
}

// RevokeRefresh drops a refresh token (logout).
func (s *Store) RevokeRefresh(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, token)
}

func randomToken() string {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("rt_%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}

// --- Orders ---

// CreateOrder stores a new order, assigning id, order number, and
// timestamps.
func (s *Store) CreateOrder(order domain.Order) *domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.orderSeq++
	now := time.Now().UTC()
	order.ID = fmt.Sprintf("ord_%06d", s.orderSeq)
	order.OrderNumber = fmt.Sprintf("ORD-%04d", s.orderSeq)
	if order.Status == "" {
		order.Status = domain.StatusPending
	}
	order.CreatedAt = now
	order.UpdatedAt = now

	stored := order
	s.orders[order.ID] = &stored
	result := stored
	return &result
}

// ListOrders returns one page of orders, newest first, optionally
// filtered by status, plus the total count of matches.
func (s *Store) ListOrders(status string, page, limit int) ([]domain.Order, int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if status != "" && !strings.EqualFold(status, string(o.Status)) {
			continue
		}
		matched = append(matched, *o)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (page - 1) * limit
	if start >= total {
		return []domain.Order{}, total
	}
	end := start + limit
	if end > total {
		end = total
	}
	return matched[start:end], total
}

// GetOrder returns the order with the given id.
func (s *Store) GetOrder(id string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}
	snapshot := *o
	return &snapshot, nil
}

// UpdateOrder applies a status transition and/or notes change. An
// illegal transition returns domain.ErrInvalidTransition.
func (s *Store) UpdateOrder(id string, status *domain.OrderStatus, notes *string) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrOrderNotFound
	}

	if status != nil && *status != o.Status {
		if !o.Status.CanTransitionTo(*status) {
			return nil, fmt.Errorf("%w (from %s to %s)", domain.ErrInvalidTransition, o.Status, *status)
		}
		o.Status = *status
	}
	if notes != nil {
		o.Notes = *notes
	}
	o.UpdatedAt = time.Now().UTC()

	snapshot := *o
	return &snapshot, nil
}

// CancelOrder transitions an order to CANCELLED where legal.
func (s *Store) CancelOrder(id string) (*domain.Order, error) {
	cancelled := domain.StatusCancelled
	return s.UpdateOrder(id, &cancelled, nil)
}
