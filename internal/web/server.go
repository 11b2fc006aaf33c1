// Package web wires the HTTP API: face auth, chat, documents.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jarvislab/jarvis/internal/ai"
	"github.com/jarvislab/jarvis/internal/docs"
	"github.com/jarvislab/jarvis/internal/faceauth"
	"github.com/jarvislab/jarvis/internal/registry"
	"github.com/jarvislab/jarvis/internal/web/middleware"
)

// Deps are the services the API routes over. Provider and Docs may be
// nil when no AI key is configured; the affected routes degrade
// gracefully.
type Deps struct {
	Auth     *faceauth.Service
	Registry *registry.Registry
	Provider ai.Provider
	Docs     *docs.Service

	// SystemPrompt is the persona prompt for the chat route.
	SystemPrompt string
}

// Server represents the web server
type Server struct {
	router     *chi.Mux
	httpServer *http.Server
}

// NewServer creates a new web server
func NewServer(deps Deps, host string, port int) *Server {
	r := chi.NewRouter()

	s := &Server{router: r}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(2 * time.Minute))
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	s.setupRoutes(deps)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // uploads and slow AI backends
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
