// Package web embeds the browser-facing assets of the MathVis server: the
// HTML templates and the static files backing the pages.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
)

//go:embed templates static
var assets embed.FS

// Engine returns the template engine rendering the embedded pages.
func Engine() *html.Engine {
	return html.NewFileSystem(http.FS(Templates()), ".html")
}

// Templates returns the embedded template tree.
func Templates() fs.FS {
	sub, err := fs.Sub(assets, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static returns the embedded static asset tree.
func Static() fs.FS {
	sub, err := fs.Sub(assets, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
