// Package ginserver serves the dashboard page and its data feeds over gin.
package ginserver

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed assets/dashboard.html
var assets embed.FS

var pageTemplate = template.Must(template.New("").ParseFS(assets, "assets/dashboard.html"))

// NewRouter builds the gin engine. Extra middlewares run after recovery in
// the given order.
func NewRouter(h *Handler, _ *zap.Logger, middlewares ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.RedirectTrailingSlash = false
	r.RemoveExtraSlash = true

	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.String(http.StatusMethodNotAllowed, "method not allowed")
	})

	r.SetHTMLTemplate(pageTemplate)

	r.GET("/", h.Index)
	r.GET("/ping", h.Ping)
	r.GET("/ws", h.Stream)

	api := r.Group("/api/v1")
	api.GET("/window", h.WindowJSON)
	api.GET("/latest/:series", h.LatestJSON)
	api.GET("/info", h.InfoJSON)
	api.GET("/status", h.StatusJSON)

	return r
}
