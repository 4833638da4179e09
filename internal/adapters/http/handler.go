package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hexapod/packs-go/internal/app"
	"github.com/hexapod/packs-go/internal/domain"
)

// Handler wires the session manager and pack engine to echo routes.
type Handler struct {
	sessions *app.SessionService
	packs    *app.PackService
	limiter  *OpenRateLimiter

	// cookieTTL matches the session TTL so the cookie and the stored
	// session expire together.
	cookieTTL    time.Duration
	secureCookie bool
}

func NewHandler(sessions *app.SessionService, packs *app.PackService, limiter *OpenRateLimiter, cookieTTL time.Duration, secureCookie bool) *Handler {
	return &Handler{
		sessions:     sessions,
		packs:        packs,
		limiter:      limiter,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)

	e.GET("/v1/auth/login", h.Login)
	e.GET("/v1/auth/callback", h.Callback)
	e.POST("/v1/auth/logout", h.Logout)

	auth := e.Group("", h.SessionMiddleware())
	auth.GET("/v1/auth/me", h.Me)
	auth.GET("/v1/pack/status", h.Status)
	auth.POST("/v1/pack/open", h.Open, h.limiter.Middleware())
	auth.GET("/v1/pack/cards", h.Cards)
	auth.POST("/v1/pack/advance", h.Advance)
	auth.POST("/v1/pack/reset", h.Reset)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Login redirects the browser to the identity provider.
func (h *Handler) Login(c echo.Context) error {
	url, err := h.sessions.LoginURL()
	if err != nil {
		return h.mapError(c, err)
	}
	return c.Redirect(http.StatusFound, url)
}

// Callback completes the OAuth flow: it exchanges the code, persists the
// session, and hands the browser its session cookie.
func (h *Handler) Callback(c echo.Context) error {
	code := c.QueryParam("code")
	state := c.QueryParam("state")
	if code == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing code"})
	}

	session, err := h.sessions.CompleteLogin(c.Request().Context(), code, state)
	if err != nil {
		return h.mapError(c, err)
	}

	c.SetCookie(h.sessionCookie(session.ID, h.cookieTTL))
	return c.JSON(http.StatusOK, toIdentityResponse(session.Identity))
}

// Logout clears the session and all state persisted for its identity.
// Idempotent: succeeds with no cookie or an unknown session.
func (h *Handler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(SessionCookieName)
	if err == nil && cookie.Value != "" {
		// Look up the identity first; the logout wipe deletes the session.
		session, restoreErr := h.sessions.Restore(c.Request().Context(), cookie.Value)
		if logoutErr := h.sessions.Logout(c.Request().Context(), cookie.Value); logoutErr != nil {
			return h.mapError(c, logoutErr)
		}
		if restoreErr == nil && session != nil {
			h.packs.Reset(session.Identity.ID)
		}
	}
	c.SetCookie(h.sessionCookie("", -time.Hour))
	return c.NoContent(http.StatusNoContent)
}

// Me returns the profile behind the session, re-fetched from the provider
// when possible so a changed avatar or display name shows up.
func (h *Handler) Me(c echo.Context) error {
	session := h.sessions.RefreshIdentity(c.Request().Context(), *currentSession(c))
	return c.JSON(http.StatusOK, toIdentityResponse(session.Identity))
}

func (h *Handler) Status(c echo.Context) error {
	session := currentSession(c)
	canOpen, err := h.packs.CanOpen(c.Request().Context(), session.Identity.ID)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, StatusResponse{CanOpen: canOpen})
}

func (h *Handler) Open(c echo.Context) error {
	session := currentSession(c)
	pack, err := h.packs.Open(c.Request().Context(), session.Identity)
	if err != nil {
		return h.mapError(c, err)
	}
	return c.JSON(http.StatusOK, toPackResponse(pack))
}

func (h *Handler) Cards(c echo.Context) error {
	session := currentSession(c)
	pack, ok := h.packs.Pulled(session.Identity.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no open pack"})
	}
	return c.JSON(http.StatusOK, toPackResponse(pack))
}

// Advance reveals the next card of the current pack.
func (h *Handler) Advance(c echo.Context) error {
	session := currentSession(c)
	card, ok := h.packs.Advance(session.Identity.ID)
	if !ok {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no cards left to reveal"})
	}
	return c.JSON(http.StatusOK, CardResponse{
		Name:  card.Name,
		Image: card.Image,
		Tier:  string(card.Tier),
	})
}

func (h *Handler) Reset(c echo.Context) error {
	session := currentSession(c)
	h.packs.Reset(session.Identity.ID)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) sessionCookie(value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     SessionCookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}

func currentSession(c echo.Context) *domain.Session {
	session, _ := c.Get("session").(*domain.Session)
	return session
}

func (h *Handler) mapError(c echo.Context, err error) error {
	requestID, _ := c.Get("request_id").(string)

	switch {
	case errors.Is(err, domain.ErrAlreadyOpened):
		// Expected daily-gate rejection; surfaced as state, not logged.
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "daily pack already opened"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid oauth state"})
	case errors.Is(err, domain.ErrAuthFailed):
		slog.Warn("authentication failed", "request_id", requestID, "error", err)
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication failed, please try again"})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
