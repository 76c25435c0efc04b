package auth

import (
	"errors"
	"fmt"
	"html"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/pcavaco/gatehouse/internal/app/models"
	"github.com/pcavaco/gatehouse/internal/app/observability/metrics"
	"github.com/pcavaco/gatehouse/internal/app/renderer"
	"github.com/pcavaco/gatehouse/internal/pkg/config"
)

// SignupRequest is the signup form payload. Validation mirrors the account
// rules: non-blank name up to 30 chars, well-formed email, password of at
// least 6 characters.
type SignupRequest struct {
	Name     string `form:"name" binding:"required,notblank,max=30"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
}

// LoginRequest is the login form payload.
type LoginRequest struct {
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required"`
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		// "required" accepts all-whitespace names; notblank does not.
		_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	}
}

type AuthHandlers struct {
	authService AuthService
	cfg         *config.Config
	logger      *slog.Logger
}

func NewAuthHandlers(authService AuthService, cfg *config.Config, logger *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
		cfg:         cfg,
		logger:      logger,
	}
}

// ShowSignupPage renders the signup form.
func (h *AuthHandlers) ShowSignupPage(c *gin.Context) {
	renderer.Page(c, http.StatusOK, "Sign Up", signupFormHTML(""))
}

// ShowLoginPage renders the login form.
func (h *AuthHandlers) ShowLoginPage(c *gin.Context) {
	renderer.Page(c, http.StatusOK, "Log In", loginFormHTML(""))
}

// SignupSubmit creates the account and starts a session for it.
func (h *AuthHandlers) SignupSubmit(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Signup validation failed", slog.Any("error", err))
		h.countAuth(c, "signup", http.StatusBadRequest)
		renderer.Page(c, http.StatusBadRequest, "Sign Up",
			signupFormHTML("Name (up to 30 characters), a valid email and a password of at least 6 characters are required"))
		return
	}

	session, err := h.authService.Signup(c.Request.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrConflict) {
			h.countAuth(c, "signup", http.StatusConflict)
			renderer.Page(c, http.StatusConflict, "Sign Up",
				signupFormHTML("This email is already registered"))
			return
		}
		h.logger.Error("Signup failed", slog.Any("error", err))
		h.countAuth(c, "signup", http.StatusInternalServerError)
		renderer.Page(c, http.StatusInternalServerError, "Error",
			`<p>Something went wrong. Please try again later.</p>`)
		return
	}

	h.setSessionCookie(c, session.Token)
	h.countAuth(c, "signup", http.StatusSeeOther)
	c.Redirect(http.StatusSeeOther, "/members")
}

// LoginSubmit authenticates and starts a session. Admins land on the admin
// page, everyone else on the members page.
func (h *AuthHandlers) LoginSubmit(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn("Login validation failed", slog.Any("error", err))
		h.countAuth(c, "login", http.StatusBadRequest)
		renderer.Page(c, http.StatusBadRequest, "Log In",
			loginFormHTML("A valid email and a password are required"))
		return
	}

	session, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, models.ErrUnauthenticated) {
			// One message for unknown email and wrong password alike.
			h.countAuth(c, "login", http.StatusUnauthorized)
			renderer.Page(c, http.StatusUnauthorized, "Log In",
				loginFormHTML("Invalid email or password"))
			return
		}
		h.logger.Error("Login failed", slog.Any("error", err))
		h.countAuth(c, "login", http.StatusInternalServerError)
		renderer.Page(c, http.StatusInternalServerError, "Error",
			`<p>Something went wrong. Please try again later.</p>`)
		return
	}

	h.setSessionCookie(c, session.Token)
	h.countAuth(c, "login", http.StatusSeeOther)
	if session.IsAdmin() {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}
	c.Redirect(http.StatusSeeOther, "/members")
}

// Logout destroys the session. When the destroy fails the cookie is left in
// place and the failure is surfaced so the client is not silently treated as
// logged out.
func (h *AuthHandlers) Logout(c *gin.Context) {
	token, err := c.Cookie(h.cfg.Session.CookieName)
	if err != nil || token == "" {
		c.Redirect(http.StatusFound, "/")
		return
	}

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("Logout failed", slog.Any("error", err))
		h.countAuth(c, "logout", http.StatusInternalServerError)
		renderer.Page(c, http.StatusInternalServerError, "Error",
			`<p>Logout did not complete. Please try again.</p>`)
		return
	}

	h.clearSessionCookie(c)
	h.countAuth(c, "logout", http.StatusFound)
	c.Redirect(http.StatusFound, "/")
}

func (h *AuthHandlers) setSessionCookie(c *gin.Context, token string) {
	// Max-Age is fixed from creation; the TTL is not renewed per request.
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, token,
		int(h.cfg.Session.TTL.Seconds()), "/", "", h.cfg.Session.CookieSecure, true)
}

func (h *AuthHandlers) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.Session.CookieName, "", -1, "/", "", h.cfg.Session.CookieSecure, true)
}

func (h *AuthHandlers) countAuth(c *gin.Context, endpoint string, status int) {
	metrics.Get().AuthRequestsTotal.Add(c.Request.Context(), 1,
		metric.WithAttributes(
			attribute.String("endpoint", endpoint),
			attribute.String("status", strconv.Itoa(status)),
		))
}

func signupFormHTML(errMsg string) string {
	return formHTML("/signupSubmit", "Sign Up", errMsg, `
  <label>Name <input type="text" name="name" maxlength="30" required></label>
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" minlength="6" required></label>`)
}

func loginFormHTML(errMsg string) string {
	return formHTML("/loginSubmit", "Log In", errMsg, `
  <label>Email <input type="email" name="email" required></label>
  <label>Password <input type="password" name="password" required></label>`)
}

func formHTML(action, submit, errMsg, fields string) string {
	var b strings.Builder
	if errMsg != "" {
		fmt.Fprintf(&b, `<div class="form-error">%s</div>`+"\n", html.EscapeString(errMsg))
	}
	fmt.Fprintf(&b, `<form method="post" action="%s">%s
  <button type="submit">%s</button>
</form>
<p><a href="/">Home</a></p>`, action, fields, submit)
	return b.String()
}
