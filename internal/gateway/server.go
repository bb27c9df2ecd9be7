// Package gateway serves the catalog HTTP surface: the JSON catalog
// API, reverse proxies to the upstream services, and the static
// single-page app with environment injection.
package gateway

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"calunga-catalog/internal/app"
	"calunga-catalog/internal/config"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	settings config.Settings
	service  app.Service
	router   *mux.Router
}

func NewServer(settings config.Settings, service app.Service) (*Server, error) {
	s := &Server{
		settings: settings,
		service:  service,
		router:   mux.NewRouter(),
	}
	if err := s.routes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Handler exposes the full route tree, middleware included.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.router)
}

func (s *Server) routes() error {
	s.router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/settings.json", s.handleSettings).Methods(http.MethodGet)

	catalog := s.router.PathPrefix("/catalog").Subrouter()
	catalog.HandleFunc("/distributions", s.handleDistributions).Methods(http.MethodGet)
	catalog.HandleFunc("/packages", s.handleSearch).Methods(http.MethodGet)
	catalog.HandleFunc("/packages/{name}", s.handleShow).Methods(http.MethodGet)

	if err := s.proxyRoutes(); err != nil {
		return err
	}

	s.router.PathPrefix("/").Handler(s.staticHandler())
	return nil
}

// ListenAndServe runs the server until ctx is cancelled, then drains
// in-flight requests.
func (s *Server) ListenAndServe(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.settings.ListenAddr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", s.settings.ListenAddr).Bool("mock", s.settings.Mock).Msg("gateway listening")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gateway")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.settings.Client())
}
