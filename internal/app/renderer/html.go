// Package renderer writes the minimal HTML shell shared by all pages. The
// application deliberately carries no template engine; pages are small
// server-rendered fragments in the handler code itself.
package renderer

import (
	"fmt"
	"html"

	"github.com/gin-gonic/gin"
)

const contentType = "text/html; charset=utf-8"

// Page writes a complete HTML document with the given title and body markup.
// The body is trusted handler-authored markup; the title is escaped.
func Page(c *gin.Context, status int, title, body string) {
	doc := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
</body>
</html>`, html.EscapeString(title), body)
	c.Data(status, contentType, []byte(doc))
}

// ErrorFragment writes a user-visible error message fragment, escaped. Used
// by form handlers for validation and business-rule rejections.
func ErrorFragment(c *gin.Context, status int, msg string) {
	c.Data(status, contentType, []byte(fmt.Sprintf(
		`<div class="form-error">%s</div>`, html.EscapeString(msg))))
}
