package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pcavaco/gatehouse/internal/app/models"
)

// fakeSessionReader resolves a fixed set of tokens.
type fakeSessionReader struct {
	sessions map[string]*models.Session
}

func (f *fakeSessionReader) SessionFromToken(ctx context.Context, token string) (*models.Session, error) {
	if s, ok := f.sessions[token]; ok {
		return s, nil
	}
	return nil, models.ErrNotFound
}

func sessionWithRole(role string) *models.Session {
	now := time.Now()
	return &models.Session{
		Token:     "token-" + role,
		UserID:    "user123",
		UserName:  "Ada",
		UserRole:  role,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func newGateTestRouter(reader SessionReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SessionMiddleware(reader, "session_token"))

	members := r.Group("/members")
	members.Use(RequireSession("/"))
	members.GET("", func(c *gin.Context) { c.String(http.StatusOK, "members") })

	adminGroup := r.Group("/admin")
	adminGroup.Use(RequireAdmin())
	adminGroup.GET("", func(c *gin.Context) { c.String(http.StatusOK, "admin") })

	return r
}

func get(r *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.AddCookie(&http.Cookie{Name: "session_token", Value: token})
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireSession(t *testing.T) {
	reader := &fakeSessionReader{sessions: map[string]*models.Session{
		"token-user": sessionWithRole(models.RoleUser),
	}}
	r := newGateTestRouter(reader)

	t.Run("AnonymousRedirectedHome", func(t *testing.T) {
		w := get(r, "/members", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("UnknownTokenRedirectedHome", func(t *testing.T) {
		w := get(r, "/members", "bogus")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("SessionPasses", func(t *testing.T) {
		w := get(r, "/members", "token-user")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "members", w.Body.String())
	})
}

func TestRequireAdmin(t *testing.T) {
	reader := &fakeSessionReader{sessions: map[string]*models.Session{
		"token-user":  sessionWithRole(models.RoleUser),
		"token-admin": sessionWithRole(models.RoleAdmin),
	}}
	r := newGateTestRouter(reader)

	t.Run("AnonymousRedirectedToLogin", func(t *testing.T) {
		w := get(r, "/admin", "")
		assert.Equal(t, http.StatusFound, w.Code)
		assert.Equal(t, "/login", w.Header().Get("Location"))
	})

	t.Run("NonAdminForbiddenNotRedirected", func(t *testing.T) {
		// "logged in but not permitted" must be distinguishable from
		// "not logged in".
		w := get(r, "/admin", "token-user")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, w.Header().Get("Location"))
		assert.Contains(t, w.Body.String(), "403 Forbidden")
	})

	t.Run("AdminPasses", func(t *testing.T) {
		w := get(r, "/admin", "token-admin")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "admin", w.Body.String())
	})
}

func TestGetSessionFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("Missing", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		assert.Nil(t, GetSessionFromContext(c))
	})

	t.Run("Present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		session := sessionWithRole(models.RoleUser)
		c.Set(string(SessionContextKey), session)
		assert.Equal(t, session, GetSessionFromContext(c))
	})
}
