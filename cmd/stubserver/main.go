package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beanbar/orderdesk/internal/infrastructure/config"
	"github.com/beanbar/orderdesk/internal/stub"
	"github.com/beanbar/orderdesk/internal/stub/hub"
	"github.com/beanbar/orderdesk/internal/stub/memstore"
	"github.com/beanbar/orderdesk/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadStub(ctx)
	if err != nil {
		fallback := logger.Init(logger.Options{})
		fallback.Fatal().Err(err).Msg("loading configuration")
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	store := memstore.New()
	if err := store.Seed(); err != nil {
		log.Fatal().Err(err).Msg("seeding store")
	}

	eventHub := hub.New(log)

	if cfg.Demo {
		go stub.RunDemo(ctx, store, eventHub, cfg.DemoInterval, log)
	}

	e := stub.NewRouter(store, eventHub, stub.Options{
		JWTSecret:  cfg.JWTSecret,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("stub backend listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}
