package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/beanbar/orderdesk/internal/core/domain"
	"github.com/beanbar/orderdesk/internal/stub/memstore"
	"github.com/beanbar/orderdesk/internal/stub/metrics"
)

const refreshCookieName = "refresh_token"

// AuthHandler implements the auth bootstrap endpoints. Access tokens
// are short-lived HS256 JWTs; the refresh token is an opaque value the
// client never sees outside an HTTP-only cookie.
type AuthHandler struct {
	store      *memstore.Store
	jwtSecret  string
	accessTTL  time.Duration
	refreshTTL time.Duration
	log        zerolog.Logger
}

func NewAuthHandler(store *memstore.Store, jwtSecret string, accessTTL, refreshTTL time.Duration, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		store:      store,
		jwtSecret:  jwtSecret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		log:        log,
	}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.store.Authenticate(req.Username, req.Password)
	if err != nil {
		return err
	}

	token, err := h.accessToken(user)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, h.store.IssueRefresh(user.Username, h.refreshTTL))

	h.log.Info().Str("username", user.Username).Msg("login")
	return c.JSON(http.StatusOK, authResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.accessTTL.Seconds()),
		User:        user,
	})
}

// Register handles POST /auth/register.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.store.CreateUser(req.Username, req.Password, req.Email, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, user)
}

// Refresh handles POST /auth/refresh. The refresh token arrives in the
// HTTP-only cookie and is rotated on every use; a missing, expired, or
// already-used token yields 401 so the client forces a logout.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		metrics.RefreshesTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "missing refresh token")
	}

	username, next, err := h.store.RotateRefresh(cookie.Value, h.refreshTTL)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token rejected")
	}

	user, err := h.store.FindUser(username)
	if err != nil {
		metrics.RefreshesTotal.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown session user")
	}

	token, err := h.accessToken(user)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, next)

	metrics.RefreshesTotal.WithLabelValues("ok").Inc()
	h.log.Debug().Str("username", username).Msg("token refreshed")
	return c.JSON(http.StatusOK, authResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(h.accessTTL.Seconds()),
		User:        user,
	})
}

// Logout handles POST /auth/logout: revoke the refresh token and
// expire the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
	if cookie, err := c.Cookie(refreshCookieName); err == nil && cookie.Value != "" {
		h.store.RevokeRefresh(cookie.Value)
	}
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/auth",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return c.JSON(http.StatusOK, map[string]string{"message": "logged out"})
}

// Me handles POST /auth/me, the session bootstrap identity check.
func (h *AuthHandler) Me(c echo.Context) error {
	username, _ := c.Get("username").(string)
	user, err := h.store.FindUser(username)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unknown session user")
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) accessToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":  user.Username,
		"role": user.Role,
		"exp":  time.Now().Add(h.accessTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.jwtSecret))
}

func (h *AuthHandler) setRefreshCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/auth",
		MaxAge:   int(h.refreshTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
