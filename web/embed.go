package web

import (
	"embed"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
)

// TemplatesFS embeds HTML templates for server-side rendering.
//
//go:embed templates/*.html
var TemplatesFS embed.FS

// Engine returns a view engine over the embedded templates.
func Engine() *html.Engine {
	sub, err := fs.Sub(TemplatesFS, "templates")
	if err != nil {
		panic(err) // the embed pattern above guarantees the directory
	}
	return html.NewFileSystem(http.FS(sub), ".html")
}
