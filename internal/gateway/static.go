package gateway

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"calunga-catalog/internal/config"
)

// staticHandler serves the built single-page app. index.html is read
// per request so the settings placeholder can be replaced with the
// client-visible configuration; every unknown path falls back to it so
// client-side routes survive a reload.
func (s *Server) staticHandler() http.Handler {
	staticDir := s.settings.StaticDir
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		requested := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() && filepath.Base(requested) != "index.html" {
			http.ServeFile(w, r, requested)
			return
		}

		s.serveIndex(w, r, filepath.Join(staticDir, "index.html"))
	})
}

func (s *Server) serveIndex(w http.ResponseWriter, r *http.Request, path string) {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Error().Err(err).Str("path", path).Msg("index.html unavailable")
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		return
	}

	page, err := config.InjectSettings(raw, s.settings.Client())
	if err != nil {
		respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if _, err := w.Write(page); err != nil {
		log.Debug().Err(err).Msg("client went away mid-response")
	}
}
