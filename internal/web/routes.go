package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jarvislab/jarvis/internal/web/handlers"
	"github.com/jarvislab/jarvis/internal/web/middleware"
)

func (s *Server) setupRoutes(deps Deps) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	faceHandler := handlers.NewFaceHandler(deps.Auth)
	chatHandler := handlers.NewChatHandler(deps.Provider, deps.SystemPrompt)

	// Index and health (no auth required)
	s.router.Get("/", handlers.Root)
	s.router.Get("/health", handlers.HealthCheck)

	s.router.Route("/api", func(r chi.Router) {
		// Face enrollment and login. These routes issue tokens, so no
		// auth on them.
		r.Route("/auth", func(r chi.Router) {
			r.Post("/validate", authHandler.Validate)
			r.Post("/register-face", authHandler.RegisterFace)
			r.Post("/register-complete", authHandler.RegisterComplete)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Raw detection for the camera overlay.
		r.Route("/face", func(r chi.Router) {
			r.Post("/analyze", faceHandler.Analyze)
			r.Post("/analyze-base64", faceHandler.AnalyzeBase64)
		})

		r.Post("/chat/message", chatHandler.Message)

		// Documents require a confirmed user.
		r.Route("/documents", func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.Registry))

			if deps.Docs != nil {
				docsHandler := handlers.NewDocumentsHandler(deps.Docs)
				r.Post("/upload", docsHandler.Upload)
				r.Post("/query", docsHandler.Query)
				r.Get("/", docsHandler.List)
				r.Get("/list", docsHandler.List)
			} else {
				r.HandleFunc("/*", documentsUnavailable)
				r.HandleFunc("/", documentsUnavailable)
			}
		})
	})
}

func documentsUnavailable(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusServiceUnavailable)
	w.Write([]byte(`{"error": "document service not configured. Set OPENAI_API_KEY or GEMINI_API_KEY in .env"}`))
}
