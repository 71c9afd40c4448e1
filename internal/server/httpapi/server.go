// Package httpapi exposes the user, project and script services over a
// JSON HTTP API rooted at /api/v1.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/scriptkeeper/internal/common"
	"github.com/dmitrijs2005/scriptkeeper/internal/logging"
	"github.com/dmitrijs2005/scriptkeeper/internal/server/services"
	"github.com/gorilla/mux"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	address         string
	shutdownTimeout time.Duration
	logger          logging.Logger
	users           *services.UserService
	projects        *services.ProjectService
	scripts         *services.ScriptService
	store           Pinger
	router          *mux.Router
}

func NewServer(address string, shutdownTimeout time.Duration, l logging.Logger,
	us *services.UserService, ps *services.ProjectService, ss *services.ScriptService, store Pinger) *Server {
	s := &Server{
		address:         address,
		shutdownTimeout: shutdownTimeout,
		logger:          l.With("module", "http_server"),
		users:           us,
		projects:        ps,
		scripts:         ss,
		store:           store,
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.Use(securityHeaders)
	r.Use(s.logging)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)

	v1 := r.PathPrefix(common.APIPrefix).Subrouter()
	v1.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	v1.HandleFunc("/token", s.handleToken).Methods(http.MethodPost)
	v1.HandleFunc("/token/refresh", s.handleRefresh).Methods(http.MethodPost)
	v1.HandleFunc("/token/verify", s.handleVerify).Methods(http.MethodPost)

	users := v1.PathPrefix("/users").Subrouter()
	users.Use(s.authenticate)
	users.HandleFunc("/me", s.handleMe).Methods(http.MethodGet)
	users.HandleFunc("/{id:[0-9]+}/revoke_tokens", s.handleRevokeTokens).Methods(http.MethodPost)
	users.HandleFunc("/{id:[0-9]+}/add_money", s.handleAddMoney).Methods(http.MethodPost)

	projects := v1.PathPrefix("/projects").Subrouter()
	projects.Use(s.authenticate)
	for _, root := range []string{"", "/"} {
		projects.HandleFunc(root, s.handleCreateProject).Methods(http.MethodPost)
		projects.HandleFunc(root, s.handleListProjects).Methods(http.MethodGet)
	}
	projects.HandleFunc("/{id:[0-9]+}", s.handleGetProject).Methods(http.MethodGet)
	projects.HandleFunc("/{id:[0-9]+}", s.handleUpdateProject).Methods(http.MethodPut)
	projects.HandleFunc("/{id:[0-9]+}", s.handleDeleteProject).Methods(http.MethodDelete)

	for _, root := range []string{"/{id:[0-9]+}/scripts", "/{id:[0-9]+}/scripts/"} {
		projects.HandleFunc(root, s.handleCreateScript).Methods(http.MethodPost)
		projects.HandleFunc(root, s.handleListScripts).Methods(http.MethodGet)
	}
	projects.HandleFunc("/{id:[0-9]+}/scripts/{sid:[0-9]+}", s.handleGetScript).Methods(http.MethodGet)
	projects.HandleFunc("/{id:[0-9]+}/scripts/{sid:[0-9]+}", s.handleUpdateScript).Methods(http.MethodPut)
	projects.HandleFunc("/{id:[0-9]+}/scripts/{sid:[0-9]+}", s.handleDeleteScript).Methods(http.MethodDelete)

	return r
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is canceled, then drains in-flight requests for at
// most shutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn(r.Context(), "readiness check failed", "error", err.Error())
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
