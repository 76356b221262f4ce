// Package stub is a self-contained development backend for the
// dashboard: the full REST surface plus the order event stream, backed
// by in-memory state. It is not the production order system.
package stub

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/handler"
	"github.com/beanbar/orderdesk/internal/stub/hub"
	"github.com/beanbar/orderdesk/internal/stub/memstore"
	"github.com/beanbar/orderdesk/internal/stub/middleware"
)

// Options carries the configuration the router needs.
type Options struct {
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// NewRouter builds the Echo instance with all routes registered.
func NewRouter(store *memstore.Store, eventHub *hub.Hub, opts Options, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echoprometheus.NewMiddleware("orderdesk"))

	// --- Dependencies ---
	authHandler := handler.NewAuthHandler(store, opts.JWTSecret, opts.AccessTTL, opts.RefreshTTL, log)
	orderHandler := handler.NewOrderHandler(store, eventHub, log)
	eventHandler := handler.NewEventHandler(eventHub, opts.JWTSecret, log)
	healthHandler := handler.NewHealthHandler()
	authMiddleware := middleware.Auth(opts.JWTSecret)
	staffOnly := middleware.RBAC(domain.RoleAdmin, domain.RoleManager, domain.RoleEmployee)

	// --- Auth routes ---
	e.POST("/auth/login", authHandler.Login)
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/refresh", authHandler.Refresh)
	e.POST("/auth/logout", authHandler.Logout)
	e.POST("/auth/me", authHandler.Me, authMiddleware)

	// --- Orders ---
	orders := e.Group("/orders", authMiddleware)
	orders.GET("", orderHandler.List)
	orders.PATCH("/:id", orderHandler.Update, staffOnly)
	orders.POST("/:id/cancel", orderHandler.Cancel, staffOnly)

	// --- Event stream (token travels as a query parameter) ---
	e.GET("/events/orders", eventHandler.Stream)

	// --- Probes and metrics ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
