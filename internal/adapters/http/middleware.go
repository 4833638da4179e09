package http

import (
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hexapod/packs-go/internal/domain"
)

const headerRequestID = "X-Request-Id"

// SessionCookieName carries the opaque session identifier.
const SessionCookieName = "pack_session"

// RequestIDMiddleware ensures every request has a unique X-Request-Id.
func RequestIDMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(headerRequestID)
			if id == "" {
				id = generateID()
			}
			c.Response().Header().Set(headerRequestID, id)
			c.Set("request_id", id)
			return next(c)
		}
	}
}

// LoggingMiddleware logs each request with structured fields.
func LoggingMiddleware(logger *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			logger.Info("request",
				"request_id", c.Get("request_id"),
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"latency_ms", time.Since(start).Milliseconds(),
			)
			return err
		}
	}
}

// SessionMiddleware restores the session behind the request cookie and
// stores it on the echo context. Requests without a valid session get 401.
func (h *Handler) SessionMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
			}

			session, err := h.sessions.Restore(c.Request().Context(), cookie.Value)
			if err != nil {
				slog.Error("session restore failed",
					"request_id", c.Get("request_id"),
					"error", err,
				)
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
			}
			if session == nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
			}

			c.Set("session", session)
			return next(c)
		}
	}
}

// OpenRateLimiter throttles pack-open attempts per identity. The gate itself
// rejects repeat opens; this keeps a misbehaving client from hammering the
// store.
type OpenRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func NewOpenRateLimiter(r rate.Limit, burst int) *OpenRateLimiter {
	return &OpenRateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     r,
		burst:    burst,
	}
}

func (l *OpenRateLimiter) limiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.rate, l.burst)
		l.limiters[key] = lim
	}
	return lim
}

// Middleware rejects over-limit requests with 429. Must run after the
// session middleware so the identity is known.
func (l *OpenRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session, ok := c.Get("session").(*domain.Session)
			if !ok {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "not logged in"})
			}
			if !l.limiter(session.Identity.ID).Allow() {
				return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "too many requests"})
			}
			return next(c)
		}
	}
}

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
