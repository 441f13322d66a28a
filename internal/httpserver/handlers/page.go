package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"rickmorty/viewer/internal/httpserver/deps"
	"rickmorty/viewer/internal/view"

	log "github.com/sirupsen/logrus"
)

//go:embed page.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "page.html.tmpl"))

type pageData struct {
	view.ViewState
	RefreshSeconds int
}

// Page renders the list screen, or the detail screen when a character is selected.
func Page(d deps.Deps) http.HandlerFunc {
	refresh := d.RefreshSeconds
	if refresh < 1 {
		refresh = 1
	}

	return func(w http.ResponseWriter, r *http.Request) {
		data := pageData{
			ViewState:      d.View.Snapshot(),
			RefreshSeconds: refresh,
		}

		// Render into a buffer so a template failure still yields a clean 500.
		var buf bytes.Buffer
		if err := pageTemplate.Execute(&buf, data); err != nil {
			log.WithError(err).Error("❌ Failed to render page")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_, _ = buf.WriteTo(w)
	}
}
