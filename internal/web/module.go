// Package web serves the search front-end: the filter form, the sortable
// result table and the map.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"

	apphttp "github.com/BaskovKonstantin/EstateFinder/internal/http"
)

//go:embed templates static
var assets embed.FS

var staticFS = func() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}()

// Module wires the front-end routes.
type Module struct{}

func NewModule() *Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "web"
}

func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	tmpl := template.Must(template.ParseFS(assets, "templates/*.html"))
	ctx.Engine.SetHTMLTemplate(tmpl)

	ctx.Engine.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", nil)
	})
	ctx.Engine.StaticFS("/static", http.FS(staticFS))
}

var _ apphttp.Module = (*Module)(nil)
