package tui

import (
	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
	"github.com/beanbar/orderdesk/internal/core/session"
)

// SessionMsg delivers an auth state snapshot through the bubbletea
// message loop. The session manager's subscriber forwards every
// dispatch here via Program.Send.
type SessionMsg struct {
	State session.State
}

// CacheInvalidatedMsg is sent when the order cache is cleared. The
// active view re-fetches its page.
type CacheInvalidatedMsg struct{}

// OrderEventMsg wraps a stream event for toast display.
type OrderEventMsg struct {
	Event domain.OrderEvent
}

// ordersLoadedMsg is the result of an asynchronous page fetch. The
// input is echoed back so stale results (filter changed mid-flight)
// can be discarded.
type ordersLoadedMsg struct {
	in   ports.ListOrdersInput
	page *ports.OrderPage
	err  error
}

// loginResultMsg is sent when an asynchronous login attempt completes.
type loginResultMsg struct {
	err error
}

// actionResultMsg is sent when a status transition or cancel call
// completes. On success the cache invalidation triggers the re-fetch.
type actionResultMsg struct {
	orderNumber string
	err         error
}

// toastExpireMsg clears one toast after its display window.
type toastExpireMsg struct {
	id int
}
