package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/api"
	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/core/ports"
	"github.com/beanbar/orderdesk/internal/core/session"
	"github.com/beanbar/orderdesk/internal/infrastructure/config"
	"github.com/beanbar/orderdesk/internal/infrastructure/tokenstore"
	"github.com/beanbar/orderdesk/internal/ordercache"
	"github.com/beanbar/orderdesk/internal/stream"
	"github.com/beanbar/orderdesk/internal/tui"
	"github.com/beanbar/orderdesk/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	// Stdout and stderr belong to the terminal renderer, so logs go
	// to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: logFile})

	var tokens ports.TokenStore
	if cfg.TokenFile != "" {
		tokens = tokenstore.NewFile(cfg.TokenFile, log)
	} else {
		tokens = tokenstore.NewMemory()
	}

	client, err := api.NewClient(api.Config{
		BaseURL: cfg.APIURL,
		Tokens:  tokens,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	manager := session.NewManager(tokens, client, log)
	client.OnTokenRefreshed(manager.HandleTokenRefreshed)
	client.OnForcedLogout(manager.HandleForcedLogout)

	cache := ordercache.New()

	model := tui.NewModel(client, manager, cache, log)
	program := tea.NewProgram(model, tea.WithAltScreen())

	consumer, err := stream.NewConsumer(stream.Config{
		BaseURL:        cfg.APIURL,
		Tokens:         tokens,
		Cache:          cache,
		Sink:           programSink{program},
		ReconnectDelay: cfg.ReconnectDelay,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	streamCtl := &streamController{consumer: consumer, log: log}
	defer streamCtl.stop()

	// The event stream runs only while a session is authenticated; it
	// follows every auth transition, including forced logout.
	manager.Subscribe(func(st session.State) {
		program.Send(tui.SessionMsg{State: st})
		if st.Authenticated() {
			streamCtl.start()
		} else {
			streamCtl.stop()
		}
	})
	cache.Subscribe(func() {
		program.Send(tui.CacheInvalidatedMsg{})
	})

	go manager.Bootstrap(ctx)

	_, err = program.Run()
	return err
}

// programSink forwards stream events into the bubbletea loop.
type programSink struct {
	program *tea.Program
}

func (s programSink) HandleOrderEvent(event domain.OrderEvent) {
	s.program.Send(tui.OrderEventMsg{Event: event})
}

// streamController keys the consumer goroutine to the session: one
// running consumer while authenticated, none otherwise. start and stop
// are idempotent.
type streamController struct {
	consumer *stream.Consumer
	log      zerolog.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
}

func (c *streamController) start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	go func() {
		if err := c.consumer.Run(ctx); err != nil && ctx.Err() == nil {
			c.log.Error().Err(err).Msg("event stream stopped")
		}
	}()
}

func (c *streamController) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}
