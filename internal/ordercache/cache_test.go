package ordercache

import (
	"testing"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

func somePage(total int) *ports.OrderPage {
	return &ports.OrderPage{
		Orders: []domain.Order{{ID: "ord_1", OrderNumber: "ORD-0001", Status: domain.StatusPending}},
		Meta:   ports.PageMeta{Total: total, Page: 1, Limit: 20, TotalPages: 1},
	}
}

func TestCache_PutGet(t *testing.T) {
	cache := New()
	key := ports.ListOrdersInput{Status: "PENDING", Page: 1, Limit: 20}

	if _, ok := cache.Get(key); ok {
		t.Fatalf("empty cache must miss")
	}

	cache.Put(key, somePage(1))
	page, ok := cache.Get(key)
	if !ok || page.Meta.Total != 1 {
		t.Fatalf("expected cached page, got %v %v", page, ok)
	}

	// Distinct queries are distinct entries.
	other := ports.ListOrdersInput{Status: "PENDING", Page: 2, Limit: 20}
	if _, ok := cache.Get(other); ok {
		t.Fatalf("page 2 must not be served from the page 1 entry")
	}
}

func TestCache_InvalidateClearsEverything(t *testing.T) {
	cache := New()
	a := ports.ListOrdersInput{Page: 1, Limit: 20}
	b := ports.ListOrdersInput{Status: "READY", Page: 1, Limit: 20}
	cache.Put(a, somePage(1))
	cache.Put(b, somePage(2))

	before := cache.Generation()
	cache.Invalidate()

	if _, ok := cache.Get(a); ok {
		t.Fatalf("entry a survived invalidation")
	}
	if _, ok := cache.Get(b); ok {
		t.Fatalf("entry b survived invalidation")
	}
	if cache.Generation() != before+1 {
		t.Fatalf("generation not bumped: %d -> %d", before, cache.Generation())
	}
}

func TestCache_InvalidateNotifiesSubscribers(t *testing.T) {
	cache := New()
	notified := 0
	cache.Subscribe(func() { notified++ })

	cache.Invalidate()
	cache.Invalidate()

	if notified != 2 {
		t.Fatalf("expected one notification per invalidation, got %d", notified)
	}
}
