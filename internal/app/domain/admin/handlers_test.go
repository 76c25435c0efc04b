package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/pcavaco/gatehouse/internal/app/middleware"
	"github.com/pcavaco/gatehouse/internal/app/models"
)

const (
	callerID = "6f1e1f5e-8f5a-4f0e-9f5d-8a4f3f2e1d0c"
	targetID = "0a816452-9c2e-4f6b-8e8e-2b8f0c7d6e5f"
)

func adminSession() *models.Session {
	now := time.Now()
	return &models.Session{
		Token:     "token123",
		UserID:    callerID,
		UserName:  "Root",
		UserEmail: "root@x.com",
		UserRole:  models.RoleAdmin,
		CreatedAt: now,
		ExpiresAt: now.Add(time.Hour),
	}
}

func newAdminTestRouter(repo AdminRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// Stand-in for the session middleware: every request carries an admin
	// session for the fixed caller.
	r.Use(func(c *gin.Context) {
		c.Set(string(middleware.SessionContextKey), adminSession())
		c.Next()
	})
	h := NewAdminHandlers(NewAdminService(repo, slog.Default()), slog.Default())
	r.GET("/admin", h.ShowAdminPage)
	r.POST("/admin/promote", h.Promote)
	r.POST("/admin/demote", h.Demote)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestShowAdminPage(t *testing.T) {
	repo := new(MockAdminRepo)
	repo.On("ListUsers", mock.Anything).Return([]models.User{
		{ID: callerID, Name: "Root", Email: "root@x.com", Role: models.RoleAdmin},
		{ID: targetID, Name: "Bob", Email: "bob@x.com", Role: models.RoleUser},
	}, nil)
	r := newAdminTestRouter(repo)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "bob@x.com")
	// The caller's own row offers no demote control.
	assert.Contains(t, w.Body.String(), "(you)")
}

func TestPromoteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("UpdateRole", mock.Anything, targetID, models.RoleAdmin).Return(nil)
		r := newAdminTestRouter(repo)

		w := postForm(r, "/admin/promote", url.Values{"user_id": {targetID}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
		repo.AssertExpectations(t)
	})

	t.Run("UnknownTarget", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("UpdateRole", mock.Anything, targetID, models.RoleAdmin).Return(models.ErrNotFound)
		r := newAdminTestRouter(repo)

		w := postForm(r, "/admin/promote", url.Values{"user_id": {targetID}})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MalformedTarget", func(t *testing.T) {
		repo := new(MockAdminRepo)
		r := newAdminTestRouter(repo)

		w := postForm(r, "/admin/promote", url.Values{"user_id": {"not-a-uuid"}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDemoteHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		repo := new(MockAdminRepo)
		repo.On("UpdateRole", mock.Anything, targetID, models.RoleUser).Return(nil)
		r := newAdminTestRouter(repo)

		w := postForm(r, "/admin/demote", url.Values{"user_id": {targetID}})

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/admin", w.Header().Get("Location"))
	})

	t.Run("SelfDemotionRefused", func(t *testing.T) {
		repo := new(MockAdminRepo)
		r := newAdminTestRouter(repo)

		w := postForm(r, "/admin/demote", url.Values{"user_id": {callerID}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "cannot demote your own account")
		repo.AssertNotCalled(t, "UpdateRole", mock.Anything, mock.Anything, mock.Anything)
	})
}
