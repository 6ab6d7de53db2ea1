package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driven"
	"github.com/harmonia-labs/harmonia-auth/internal/core/ports/driving"
)

// Pinger is a simple health check interface
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string

	// Where the browser lands after login and logout.
	frontendURL  string
	cookieSecure bool

	// Services
	authFlow driving.AuthFlowService
	resource driven.ResourceClient
	signer   driven.SessionSigner

	// Infrastructure
	db Pinger // credential store backend health check (optional)
}

// Config holds server configuration
type Config struct {
	Host         string
	Port         int
	Version      string
	FrontendURL  string
	CookieSecure bool
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Host:        "0.0.0.0",
		Port:        8080,
		Version:     "dev",
		FrontendURL: "http://localhost:3000",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	authFlow driving.AuthFlowService,
	resource driven.ResourceClient,
	signer driven.SessionSigner,
	db Pinger, // can be nil
) *Server {
	s := &Server{
		router:       http.NewServeMux(),
		version:      cfg.Version,
		frontendURL:  cfg.FrontendURL,
		cookieSecure: cfg.CookieSecure,
		authFlow:     authFlow,
		resource:     resource,
		signer:       signer,
		db:           db,
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Create middleware
	sessionMiddleware := NewSessionMiddleware(s.signer)

	// Health endpoints (no auth)
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Authorization flow endpoints (public)
	s.router.HandleFunc("GET /login", s.handleLogin)
	// Callback is public - receives the redirect from the provider
	s.router.HandleFunc("GET /callback", s.handleCallback)

	// Session endpoints
	s.router.Handle("POST /logout",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleLogout)))
	s.router.Handle("GET /api/me",
		sessionMiddleware.Authenticate(http.HandlerFunc(s.handleGetMe)))
}

// Start starts the HTTP server with graceful shutdown
func (s *Server) Start() error {
	// Channel to listen for OS signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-stop
	log.Println("Shutting down server...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Println("Server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
