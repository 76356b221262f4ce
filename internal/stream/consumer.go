// Package stream consumes the order event push stream and applies the
// reconnect policy.
//
// The transport cannot carry custom headers, so the access token rides
// as a query parameter. A rejected connection (non-200) is treated as a
// possible authentication failure: exactly one reconnect is scheduled
// after the configured delay, with a freshly read token. A connection
// that drops mid-stream is retried on a short transport pause instead.
// Cancelling the context tears down the connection and any pending
// reconnect timer.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
)

const (
	defaultReconnectDelay = 5 * time.Second
	defaultRetryPause     = 3 * time.Second
)

// ErrNoToken is returned when the consumer starts without a stored
// access token. The stream is only meaningful inside a session.
var ErrNoToken = errors.New("stream: no access token available")

// Invalidator is notified once per well-formed event so cached order
// data is re-fetched from the source of truth.
type Invalidator interface {
	Invalidate()
}

// Sink receives well-formed events for user-facing notification.
type Sink interface {
	HandleOrderEvent(event domain.OrderEvent)
}

// Config holds the dependencies for creating a Consumer.
type Config struct {
	// BaseURL is the backend root; the stream lives at /events/orders.
	BaseURL string
	// Tokens is read freshly on every connection attempt.
	Tokens ports.TokenStore
	// Cache is invalidated once per event.
	Cache Invalidator
	// Sink receives events for toasts. Optional.
	Sink Sink
	// ReconnectDelay is the pause after a rejected connection.
	// Defaults to 5s.
	ReconnectDelay time.Duration
	// RetryPause is the pause after a dropped connection. Defaults to 3s.
	RetryPause time.Duration
	// HTTPClient defaults to http.DefaultClient.
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Consumer maintains the single long-lived event connection for an
// authenticated session.
type Consumer struct {
	baseURL        string
	tokens         ports.TokenStore
	cache          Invalidator
	sink           Sink
	reconnectDelay time.Duration
	retryPause     time.Duration
	http           *http.Client
	log            zerolog.Logger
}

// NewConsumer creates a Consumer.
func NewConsumer(cfg Config) (*Consumer, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("stream: BaseURL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("stream: Tokens is required")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("stream: Cache is required")
	}

	reconnectDelay := cfg.ReconnectDelay
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	retryPause := cfg.RetryPause
	if retryPause <= 0 {
		retryPause = defaultRetryPause
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	return &Consumer{
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		tokens:         cfg.Tokens,
		cache:          cfg.Cache,
		sink:           cfg.Sink,
		reconnectDelay: reconnectDelay,
		retryPause:     retryPause,
		http:           httpClient,
		log:            cfg.Logger,
	}, nil
}

// errRejected marks a connection the server refused outright. The
// transport cannot distinguish a 401 from other refusals, so all of
// them take the delayed-reconnect path with a fresh token.
type errRejected struct {
	status int
}

func (e *errRejected) Error() string {
	return fmt.Sprintf("stream: connection rejected with status %d", e.status)
}

// Run connects and consumes events until ctx is cancelled. It returns
// ctx.Err() on teardown, or ErrNoToken when started logged out.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrNoToken) {
			return err
		}

		var rejected *errRejected
		if errors.As(err, &rejected) {
			c.log.Warn().Int("status", rejected.status).
				Dur("delay", c.reconnectDelay).
				Msg("event stream rejected, reconnecting with fresh token after delay")
			if !pause(ctx, c.reconnectDelay) {
				return ctx.Err()
			}
			continue
		}

		c.log.Debug().Err(err).Msg("event stream dropped, retrying")
		if !pause(ctx, c.retryPause) {
			return ctx.Err()
		}
	}
}

// connect performs one connection attempt and consumes events until the
// stream ends. The returned error classifies the closure.
func (c *Consumer) connect(ctx context.Context) error {
	token, ok := c.tokens.Token()
	if !ok {
		return ErrNoToken
	}

	streamURL := c.baseURL + "/events/orders?token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, streamURL, nil)
	if err != nil {
		return fmt.Errorf("stream: creating request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("stream: connecting: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return &errRejected{status: resp.StatusCode}
	}

	c.log.Info().Msg("connected to order event stream")

	scanner := NewScanner(resp.Body)
	for scanner.Next() {
		c.handleMessage(scanner.Event())
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream: reading: %w", err)
	}
	return fmt.Errorf("stream: server closed the connection")
}

// handleMessage parses one message. Malformed payloads are logged and
// dropped; they never bring the stream down.
func (c *Consumer) handleMessage(msg Event) {
	var event domain.OrderEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		c.log.Warn().Err(err).Str("data", msg.Data).Msg("dropping malformed order event")
		return
	}
	if !event.Type.Known() {
		c.log.Warn().Str("type", string(event.Type)).Msg("dropping order event with unknown type")
		return
	}

	// Always invalidate, exactly once per event: the next read
	// re-fetches the list from the backend.
	c.cache.Invalidate()

	if c.sink != nil {
		c.sink.HandleOrderEvent(event)
	}
}

// pause waits d or until ctx is cancelled; it reports whether the full
// pause elapsed. The timer is stopped on cancellation so teardown never
// leaves a pending reconnect behind.
func pause(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
