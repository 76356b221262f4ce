package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/hub"
	"github.com/beanbar/orderdesk/internal/stub/middleware"
)

const keepaliveInterval = 25 * time.Second

// EventHandler serves GET /events/orders as a server-sent event stream.
// The transport forbids custom headers, so the access token arrives as
// the "token" query parameter and is verified here instead of in the
// bearer middleware.
type EventHandler struct {
	hub       *hub.Hub
	jwtSecret string
	log       zerolog.Logger
}

func NewEventHandler(eventHub *hub.Hub, jwtSecret string, log zerolog.Logger) *EventHandler {
	return &EventHandler{hub: eventHub, jwtSecret: jwtSecret, log: log}
}

// Stream handles the long-lived event connection.
func (h *EventHandler) Stream(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	claims, err := middleware.VerifyToken(h.jwtSecret, token)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	events, cancel := h.hub.Subscribe()
	defer cancel()

	h.log.Info().Str("username", claims.Username).Msg("event stream client connected")
	defer h.log.Info().Str("username", claims.Username).Msg("event stream client disconnected")

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-keepalive.C:
			if _, err := fmt.Fprint(resp, ": keepalive\n\n"); err != nil {
				return nil
			}
			resp.Flush()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := writeEvent(resp, event); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

func writeEvent(w *echo.Response, event domain.OrderEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, payload)
	return err
}
