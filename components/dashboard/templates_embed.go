package dashboard

import (
	"embed"
	"io/fs"

	template "github.com/goliatone/go-template"
)

//go:embed templates/*.html templates/**/*.html
var embeddedTemplates embed.FS

// NewTemplateRenderer creates a go-template renderer backed by the embedded
// page, tab and alert templates.
func NewTemplateRenderer() (Renderer, error) {
	return NewTemplateRendererFS(embeddedTemplates, "templates")
}

// NewTemplateRendererFS renders from another file system laid out like the
// embedded one (master_dashboard.html, tabs/*.html, partials/alerts.html).
func NewTemplateRendererFS(fsys fs.FS, baseDir string) (Renderer, error) {
	if baseDir == "" {
		baseDir = "."
	}
	return template.NewRenderer(
		template.WithFS(fsys),
		template.WithBaseDir(baseDir),
		template.WithExtension(".html"),
	)
}
