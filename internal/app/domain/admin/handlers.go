package admin

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pcavaco/gatehouse/internal/app/middleware"
	"github.com/pcavaco/gatehouse/internal/app/models"
	"github.com/pcavaco/gatehouse/internal/app/renderer"
)

type roleChangeRequest struct {
	UserID string `form:"user_id" binding:"required,uuid"`
}

type AdminHandlers struct {
	adminService AdminService
	logger       *slog.Logger
}

func NewAdminHandlers(adminService AdminService, logger *slog.Logger) *AdminHandlers {
	return &AdminHandlers{
		adminService: adminService,
		logger:       logger,
	}
}

// ShowAdminPage lists all user accounts with promote/demote controls.
func (h *AdminHandlers) ShowAdminPage(c *gin.Context) {
	users, err := h.adminService.ListUsers(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to render admin page", slog.Any("error", err))
		renderer.Page(c, http.StatusInternalServerError, "Error",
			`<p>Something went wrong. Please try again later.</p>`)
		return
	}
	renderer.Page(c, http.StatusOK, "Administration", userListHTML(users, middleware.GetSessionFromContext(c)))
}

// Promote sets the target user's role to admin.
func (h *AdminHandlers) Promote(c *gin.Context) {
	var req roleChangeRequest
	if err := c.ShouldBind(&req); err != nil {
		renderer.Page(c, http.StatusBadRequest, "Administration", `<p>A target user id is required.</p>`+backLink)
		return
	}

	if err := h.adminService.Promote(c.Request.Context(), req.UserID); err != nil {
		h.renderRoleChangeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

// Demote sets the target user's role to user, refusing self-demotion.
func (h *AdminHandlers) Demote(c *gin.Context) {
	var req roleChangeRequest
	if err := c.ShouldBind(&req); err != nil {
		renderer.Page(c, http.StatusBadRequest, "Administration", `<p>A target user id is required.</p>`+backLink)
		return
	}

	session := middleware.GetSessionFromContext(c)
	if session == nil {
		// The gate guarantees a session; this is a wiring bug if it fires.
		c.AbortWithStatus(http.StatusForbidden)
		return
	}

	if err := h.adminService.Demote(c.Request.Context(), session.UserID, req.UserID); err != nil {
		if errors.Is(err, models.ErrSelfDemotion) {
			renderer.Page(c, http.StatusBadRequest, "Administration",
				`<p>You cannot demote your own account.</p>`+backLink)
			return
		}
		h.renderRoleChangeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/admin")
}

func (h *AdminHandlers) renderRoleChangeError(c *gin.Context, err error) {
	if errors.Is(err, models.ErrNotFound) {
		renderer.Page(c, http.StatusNotFound, "Administration", `<p>No such user.</p>`+backLink)
		return
	}
	h.logger.Error("Role change failed", slog.Any("error", err))
	renderer.Page(c, http.StatusInternalServerError, "Error",
		`<p>Something went wrong. Please try again later.</p>`)
}

const backLink = `<p><a href="/admin">Back to administration</a></p>`

func userListHTML(users []models.User, caller *models.Session) string {
	var b strings.Builder
	b.WriteString("<h1>Users</h1>\n<table>\n<tr><th>Name</th><th>Email</th><th>Role</th><th></th></tr>\n")
	for _, u := range users {
		b.WriteString("<tr>")
		fmt.Fprintf(&b, "<td>%s</td><td>%s</td><td>%s</td>",
			html.EscapeString(u.Name), html.EscapeString(u.Email), html.EscapeString(u.Role))
		if u.IsAdmin() {
			if caller != nil && caller.UserID == u.ID {
				b.WriteString("<td>(you)</td>")
			} else {
				fmt.Fprintf(&b, `<td><form method="post" action="/admin/demote"><input type="hidden" name="user_id" value="%s"><button type="submit">Demote</button></form></td>`, u.ID)
			}
		} else {
			fmt.Fprintf(&b, `<td><form method="post" action="/admin/promote"><input type="hidden" name="user_id" value="%s"><button type="submit">Promote</button></form></td>`, u.ID)
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</table>\n<p><a href=\"/members\">Members area</a> | <a href=\"/logout\">Log out</a></p>")
	return b.String()
}
