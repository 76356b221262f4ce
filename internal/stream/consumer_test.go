package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
)

type memTokens struct {
	mu    sync.Mutex
	token string
	has   bool
}

func (s *memTokens) Token() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, s.has
}

func (s *memTokens) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.has = token, true
}

func (s *memTokens) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token, s.has = "", false
}

type countInvalidator struct {
	n atomic.Int64
}

func (c *countInvalidator) Invalidate() { c.n.Add(1) }

type chanSink struct {
	events chan domain.OrderEvent
}

func (s *chanSink) HandleOrderEvent(event domain.OrderEvent) {
	s.events <- event
}

// sseWrite emits one SSE message and flushes it to the client.
func sseWrite(w http.ResponseWriter, eventType, data string) {
	if eventType != "" {
		fmt.Fprintf(w, "event: %s\n", eventType)
	}
	fmt.Fprintf(w, "data: %s\n\n", data)
	w.(http.Flusher).Flush()
}

func streamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.WriteHeader(http.StatusOK)
	w.(http.Flusher).Flush()
}

func TestConsumer_InvalidatesOncePerEvent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		streamHeaders(w)
		sseWrite(w, "", `{"type":"order_created","order_id":"ord_1","order_number":"ORD-0001","status":"PENDING","total_amount":12.5}`)
		sseWrite(w, "", `this is not json`)
		sseWrite(w, "", `{"type":"order_shipped","order_id":"ord_2"}`)
		sseWrite(w, "order_updated", `{"type":"order_updated","order_id":"ord_1","order_number":"ORD-0001","status":"CONFIRMED","total_amount":12.5}`)
		<-r.Context().Done()
	}))
	defer server.Close()

	cache := &countInvalidator{}
	sink := &chanSink{events: make(chan domain.OrderEvent, 8)}
	consumer, err := NewConsumer(Config{
		BaseURL: server.URL,
		Tokens:  &memTokens{token: "tok", has: true},
		Cache:   cache,
		Sink:    sink,
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	var received []domain.OrderEvent
	for len(received) < 2 {
		select {
		case event := <-sink.events:
			received = append(received, event)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for events, got %d", len(received))
		}
	}
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}

	// The malformed payload and the unknown event type are dropped:
	// two invalidations for two well-formed events, nothing more.
	if got := cache.n.Load(); got != 2 {
		t.Fatalf("expected 2 invalidations, got %d", got)
	}
	if received[0].Type != domain.EventOrderCreated || received[1].Type != domain.EventOrderUpdated {
		t.Fatalf("unexpected events: %+v", received)
	}
}

func TestConsumer_FreshTokenReadPerAttempt(t *testing.T) {
	const reconnectDelay = 60 * time.Millisecond

	var mu sync.Mutex
	var tokensSeen []string
	var times []time.Time

	tokens := &memTokens{token: "stale", has: true}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		mu.Lock()
		tokensSeen = append(tokensSeen, token)
		times = append(times, time.Now())
		first := len(tokensSeen) == 1
		mu.Unlock()

		if first {
			// Reject the first attempt; rotate the token so the
			// scheduled reconnect picks up the new value.
			tokens.Set("fresh")
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		streamHeaders(w)
		sseWrite(w, "", `{"type":"order_updated","order_id":"ord_1","order_number":"ORD-0001","status":"READY","total_amount":8}`)
		<-r.Context().Done()
	}))
	defer server.Close()

	sink := &chanSink{events: make(chan domain.OrderEvent, 1)}
	consumer, err := NewConsumer(Config{
		BaseURL:        server.URL,
		Tokens:         tokens,
		Cache:          &countInvalidator{},
		Sink:           sink,
		ReconnectDelay: reconnectDelay,
		Logger:         zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	select {
	case <-sink.events:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for reconnect")
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if len(tokensSeen) != 2 {
		t.Fatalf("expected exactly 2 attempts, got %d", len(tokensSeen))
	}
	if tokensSeen[0] != "stale" || tokensSeen[1] != "fresh" {
		t.Fatalf("reconnect must re-read the token store, saw %v", tokensSeen)
	}
	if gap := times[1].Sub(times[0]); gap < reconnectDelay-10*time.Millisecond {
		t.Fatalf("reconnect came after %v, want at least ~%v", gap, reconnectDelay)
	}
}

func TestConsumer_TeardownCancelsPendingReconnect(t *testing.T) {
	var attempts atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	consumer, err := NewConsumer(Config{
		BaseURL:        server.URL,
		Tokens:         &memTokens{token: "tok", has: true},
		Cache:          &countInvalidator{},
		ReconnectDelay: 5 * time.Second,
		Logger:         zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	deadline := time.Now().Add(time.Second)
	for attempts.Load() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("no connection attempt observed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Cancel while the 5s reconnect delay is pending; Run must return
	// promptly instead of waiting out the timer.
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("Run did not return after cancellation")
	}
	if got := attempts.Load(); got != 1 {
		t.Fatalf("expected the pending reconnect to be cancelled, saw %d attempts", got)
	}
}

func TestConsumer_NoToken(t *testing.T) {
	consumer, err := NewConsumer(Config{
		BaseURL: "http://localhost:0",
		Tokens:  &memTokens{},
		Cache:   &countInvalidator{},
		Logger:  zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("NewConsumer: %v", err)
	}
	if err := consumer.Run(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Fatalf("expected ErrNoToken, got %v", err)
	}
}
