// Package api exposes the operator console over HTTP: catalog browsing,
// per-slice apply/clear/status, use-case auto-configuration and bottleneck
// arbitration.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/domain"
	"github.com/fahimtalukdarakash/MobileComputingProject5G/internal/log"
)

// Server represents the API server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
	handler    *Handler
}

// NewServer creates a new API server
func NewServer(deps *domain.AppDependencies, bindAddr string) *Server {
	s := &Server{
		router:  chi.NewRouter(),
		handler: NewHandler(deps),
	}

	s.router.Use(Recovery)
	s.router.Use(Logger)
	s.router.Use(CORS)
	s.router.Use(JSONContentType)

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         bindAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog browsing
		r.Get("/profiles", s.handler.HandleProfilesList)
		r.Get("/slices", s.handler.HandleSlicesList)
		r.Get("/usecases", s.handler.HandleUseCasesList)

		// Per-slice QoS
		r.Route("/qos", func(r chi.Router) {
			r.Post("/apply", s.handler.HandleApply)
			r.Post("/auto", s.handler.HandleAutoConfigure)
			r.Post("/clear", s.handler.HandleClearAll)
			r.Post("/clear/{slice_id}", s.handler.HandleClear)
			r.Get("/status", s.handler.HandleStatus)
			r.Get("/status/{slice_id}", s.handler.HandleSliceStatus)
		})

		// Bottleneck arbitration
		r.Route("/priority", func(r chi.Router) {
			r.Get("/presets", s.handler.HandlePresetsList)
			r.Get("/status", s.handler.HandleArbiterStatus)
			r.Post("/apply", s.handler.HandleArbiterApply)
			r.Post("/clear", s.handler.HandleArbiterClear)
		})
	})

	// Health check endpoint at root
	s.router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start starts the API server
func (s *Server) Start() error {
	log.Infof("[API] Starting server on %s", s.httpServer.Addr)
	log.Infof("[API] Example: curl http://%s/api/v1/qos/status", s.httpServer.Addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	log.Infof("[API] Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
