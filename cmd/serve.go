package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jarvislab/jarvis/internal/ai"
	"github.com/jarvislab/jarvis/internal/config"
	"github.com/jarvislab/jarvis/internal/docs"
	"github.com/jarvislab/jarvis/internal/web"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the J.A.R.V.I.S. API server.
The server provides face enrollment and login, AI chat and document
question answering for the browser frontend.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 8000, "Port to listen on")
	serveCmd.Flags().String("host", "0.0.0.0", "Host to bind to")
}

// resolveServeHostPort resolves port and host from flags and environment variables.
func resolveServeHostPort(cmd *cobra.Command) (int, string) {
	port := mustGetInt(cmd, "port")
	host := mustGetString(cmd, "host")

	if envPort := os.Getenv("WEB_PORT"); envPort != "" {
		fmt.Sscanf(envPort, "%d", &port)
	}
	if envHost := os.Getenv("WEB_HOST"); envHost != "" {
		host = envHost
	}
	return port, host
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc, reg, err := buildFaceService(cfg)
	if err != nil {
		return err
	}
	fmt.Printf("User registry at %s\n", cfg.Data.Dir)
	fmt.Printf("Face detector at %s\n", cfg.Detector.URL)

	provider, err := buildProvider(ctx, cfg)
	if err != nil {
		return err
	}

	var docsSvc *docs.Service
	if provider != nil {
		fmt.Printf("AI provider: %s\n", provider.Name())
		if embedder, ok := provider.(ai.Embedder); ok {
			docsSvc, err = docs.NewService(cfg.Data.Dir, embedder, provider)
			if err != nil {
				return fmt.Errorf("failed to initialize document service: %w", err)
			}
			fmt.Printf("Document Q&A enabled\n")
		}
	} else {
		fmt.Printf("No AI key configured - chat and document routes disabled\n")
	}

	port, host := resolveServeHostPort(cmd)

	server := web.NewServer(web.Deps{
		Auth:         svc,
		Registry:     reg,
		Provider:     provider,
		Docs:         docsSvc,
		SystemPrompt: cfg.Persona.SystemPrompt,
	}, host, port)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting %s on http://%s:%d\n", cfg.Persona.Name, host, port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
