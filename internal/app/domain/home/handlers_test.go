package home

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/pcavaco/gatehouse/internal/app/middleware"
	"github.com/pcavaco/gatehouse/internal/app/models"
)

func newHomeTestRouter(session *models.Session) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if session != nil {
		r.Use(func(c *gin.Context) {
			c.Set(string(middleware.SessionContextKey), session)
			c.Next()
		})
	}
	h := NewHomeHandlers(slog.Default())
	r.GET("/", h.ShowHomePage)
	r.GET("/members", h.ShowMembersPage)
	r.NoRoute(h.NotFoundHandler)
	return r
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShowHomePage(t *testing.T) {
	t.Run("Anonymous", func(t *testing.T) {
		w := get(newHomeTestRouter(nil), "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "not logged in")
		assert.Contains(t, w.Body.String(), `href="/login"`)
	})

	t.Run("LoggedIn", func(t *testing.T) {
		session := &models.Session{UserName: "Ada", UserRole: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
		w := get(newHomeTestRouter(session), "/")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Welcome, Ada")
		assert.NotContains(t, w.Body.String(), `href="/admin"`)
	})

	t.Run("Admin", func(t *testing.T) {
		session := &models.Session{UserName: "Root", UserRole: models.RoleAdmin, ExpiresAt: time.Now().Add(time.Hour)}
		w := get(newHomeTestRouter(session), "/")
		assert.Contains(t, w.Body.String(), `href="/admin"`)
	})

	t.Run("NameEscaped", func(t *testing.T) {
		session := &models.Session{UserName: "<script>", UserRole: models.RoleUser, ExpiresAt: time.Now().Add(time.Hour)}
		w := get(newHomeTestRouter(session), "/")
		assert.NotContains(t, w.Body.String(), "<script>")
		assert.Contains(t, w.Body.String(), "&lt;script&gt;")
	})
}

func TestNotFound(t *testing.T) {
	w := get(newHomeTestRouter(nil), "/no/such/route")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "404 Not Found")
}
