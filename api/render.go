package api

import (
	"fmt"
	"html/template"
	"net/http"
	"time"

	"bitwise74/image-board/pkg/middleware"
	"bitwise74/image-board/web"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) loadTemplates() error {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"fileURL": a.Images.FileURL,
		"date": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04")
		},
	}).ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return fmt.Errorf("failed to parse templates, %w", err)
	}

	a.Router.SetHTMLTemplate(tmpl)
	return nil
}

// render executes a page template with the values every page needs
func (a *API) render(c *gin.Context, code int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}

	data["user"] = middleware.CurrentUser(c)
	data["flashes"] = a.popFlashes(c)
	data["requestID"] = middleware.RequestID(c)

	c.HTML(code, name, data)
}

// internalError logs err and renders the error page
func (a *API) internalError(c *gin.Context, err error, msg string) {
	requestID := middleware.RequestID(c)

	zap.L().Error(msg, zap.Error(err), zap.String("requestID", requestID))

	a.render(c, http.StatusInternalServerError, "error.html", gin.H{
		"title":   "Error",
		"message": "Internal server error",
	})
	c.Abort()
}
