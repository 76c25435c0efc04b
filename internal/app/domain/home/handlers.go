package home

import (
	"fmt"
	"html"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pcavaco/gatehouse/internal/app/middleware"
	"github.com/pcavaco/gatehouse/internal/app/renderer"
)

type HomeHandlers struct {
	logger *slog.Logger
}

func NewHomeHandlers(logger *slog.Logger) *HomeHandlers {
	return &HomeHandlers{logger: logger}
}

// ShowHomePage renders the landing page, reflecting login state.
func (h *HomeHandlers) ShowHomePage(c *gin.Context) {
	session := middleware.GetSessionFromContext(c)
	if session == nil {
		renderer.Page(c, http.StatusOK, "Welcome",
			`<h1>Welcome</h1>
<p>You are not logged in.</p>
<p><a href="/login">Log in</a> | <a href="/signup">Sign up</a></p>`)
		return
	}

	body := fmt.Sprintf(`<h1>Welcome, %s</h1>
<p><a href="/members">Members area</a>`, html.EscapeString(session.UserName))
	if session.IsAdmin() {
		body += ` | <a href="/admin">Administration</a>`
	}
	body += ` | <a href="/logout">Log out</a></p>`
	renderer.Page(c, http.StatusOK, "Welcome", body)
}

// ShowMembersPage renders the member-only page. The session gate has already
// run by the time this does.
func (h *HomeHandlers) ShowMembersPage(c *gin.Context) {
	session := middleware.GetSessionFromContext(c)
	if session == nil {
		c.Redirect(http.StatusFound, "/")
		return
	}

	body := fmt.Sprintf(`<h1>Members area</h1>
<p>Hello, %s (%s).</p>
<p><a href="/">Home</a>`, html.EscapeString(session.UserName), html.EscapeString(session.UserEmail))
	if session.IsAdmin() {
		body += ` | <a href="/admin">Administration</a>`
	}
	body += ` | <a href="/logout">Log out</a></p>`
	renderer.Page(c, http.StatusOK, "Members", body)
}

// NotFoundHandler renders the 404 page for unmatched routes.
func (h *HomeHandlers) NotFoundHandler(c *gin.Context) {
	renderer.Page(c, http.StatusNotFound, "Not Found",
		`<h1>404 Not Found</h1>
<p><a href="/">Home</a></p>`)
}
