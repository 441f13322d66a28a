package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"rickmorty/viewer/internal/httpserver/deps"
	"rickmorty/viewer/internal/view"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"
)

func backToPage(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// LoadMore starts loading the next page. Guard rejections (nothing left, already
// loading) are not errors for the user; the page simply shows the current state.
func LoadMore(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.View.Trigger(); err != nil {
			if !errors.Is(err, view.ErrLoadInFlight) && !errors.Is(err, view.ErrNoMorePages) {
				log.WithError(err).Warn("⚠️ Load more rejected")
			}
		}
		backToPage(w, r)
	}
}

func Select(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			http.NotFound(w, r)
			return
		}

		if err := d.View.Select(id); err != nil {
			if errors.Is(err, view.ErrUnknownItem) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		backToPage(w, r)
	}
}

func Back(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		d.View.Deselect()
		backToPage(w, r)
	}
}

// Reset starts a fresh session and loads the first page again.
func Reset(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.View.Reset(); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := d.View.Trigger(); err != nil {
			log.WithError(err).Warn("⚠️ Reload not started")
		}
		backToPage(w, r)
	}
}
