package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pcavaco/gatehouse/internal/app/models"
	"github.com/pcavaco/gatehouse/internal/app/observability/metrics"
	"github.com/pcavaco/gatehouse/internal/app/renderer"
)

// Define typed context keys
type contextKey string

const SessionContextKey contextKey = "session"

// SessionReader resolves a cookie token to its session snapshot. Satisfied by
// the auth service.
type SessionReader interface {
	SessionFromToken(ctx context.Context, token string) (*models.Session, error)
}

// SessionMiddleware resolves the session cookie on every request and stores
// the session in the request context. It never blocks: route gates decide
// what an absent session means.
func SessionMiddleware(sessions SessionReader, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		session, err := sessions.SessionFromToken(c.Request.Context(), token)
		if err != nil {
			// Missing, expired or unreadable: treated as anonymous.
			c.Next()
			return
		}

		c.Set(string(SessionContextKey), session)
		c.Next()
	}
}

// RequireSession gates member routes: anonymous callers are redirected to the
// given landing route.
func RequireSession(redirectTo string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetSessionFromContext(c) == nil {
			c.Redirect(http.StatusFound, redirectTo)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireAdmin gates admin routes. Anonymous callers are redirected to the
// login page; authenticated callers without the admin role get a forbidden
// page, NOT a redirect, so "not logged in" and "not permitted" stay
// distinguishable.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := GetSessionFromContext(c)
		if session == nil {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		if !session.IsAdmin() {
			renderer.Page(c, http.StatusForbidden, "Forbidden",
				`<h1>403 Forbidden</h1>
<p>Your account does not have access to this page.</p>
<p><a href="/members">Members area</a></p>`)
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetSessionFromContext extracts the session from the Gin context, or nil for
// anonymous requests.
func GetSessionFromContext(c *gin.Context) *models.Session {
	v, exists := c.Get(string(SessionContextKey))
	if !exists {
		return nil
	}
	session, ok := v.(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// MetricsMiddleware records request count and duration per route.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		m := metrics.Get()
		m.HTTPRequestsTotal.Add(c.Request.Context(), 1,
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", path),
				attribute.String("status", strconv.Itoa(c.Writer.Status())),
			))
		m.HTTPRequestDuration.Record(c.Request.Context(), duration,
			metric.WithAttributes(
				attribute.String("method", c.Request.Method),
				attribute.String("path", path),
			))
	}
}

// SecurityMiddleware adds security headers
func SecurityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("X-Content-Type-Options", "nosniff")
		c.Writer.Header().Set("X-Frame-Options", "DENY")
		c.Writer.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Writer.Header().Set("Content-Security-Policy", "default-src 'self'")
		c.Next()
	}
}

// CORSMiddleware handles CORS headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
