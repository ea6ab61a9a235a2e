// Package server exposes the interview engine, asset library and exports
// over HTTP with JSON bodies.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/PXLTCH/startup-ai/internal/catalog"
	"github.com/PXLTCH/startup-ai/internal/export"
	"github.com/PXLTCH/startup-ai/internal/interview"
	"github.com/PXLTCH/startup-ai/internal/log"
	"github.com/PXLTCH/startup-ai/internal/logo"
)

// Deps are the collaborators the HTTP layer delegates to.
type Deps struct {
	Catalog  *catalog.Catalog
	Engine   *interview.Engine
	Exporter *export.Exporter
	Assets   *logo.Library
	Logger   *log.Logger
	Now      func() time.Time
}

// Server serves the interview API on a TCP listener.
type Server struct {
	deps     Deps
	listener net.Listener
	server   *http.Server
}

// New returns a Server without a listener, for use through Handler.
func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Server{deps: deps}
}

// NewServer binds addr and prepares the routes. Use "127.0.0.1:0" for a
// random port.
func NewServer(addr string, deps Deps) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("server: binding listener: %w", err)
	}

	s := New(deps)
	s.listener = ln
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the routed API without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}/question", s.handleQuestion)
	mux.HandleFunc("POST /api/sessions/{id}/answer", s.handleAnswer)
	mux.HandleFunc("POST /api/sessions/{id}/confirm", s.handleConfirm)
	mux.HandleFunc("POST /api/sessions/{id}/skip", s.handleSkip)
	mux.HandleFunc("POST /api/sessions/{id}/jump", s.handleJump)
	mux.HandleFunc("GET /api/sessions/{id}/answers", s.handleAnswers)

	mux.HandleFunc("POST /api/sessions/{id}/names/regenerate", s.handleRegenerateNames)
	mux.HandleFunc("POST /api/sessions/{id}/names/select", s.handleSelectName)

	mux.HandleFunc("POST /api/sessions/{id}/logos/style", s.handleLogoStyle)
	mux.HandleFunc("POST /api/sessions/{id}/logos/previews", s.handlePreviews)
	mux.HandleFunc("POST /api/sessions/{id}/logos/regenerate", s.handleRegenerateLogos)
	mux.HandleFunc("POST /api/sessions/{id}/logos/select", s.handleSelectLogo)
	mux.HandleFunc("PUT /api/sessions/{id}/prefs", s.handlePrefs)
	mux.HandleFunc("POST /api/sessions/{id}/favorites", s.handleToggleFavorite)
	mux.HandleFunc("GET /api/sessions/{id}/favorites", s.handleFavorites)

	mux.HandleFunc("GET /api/sessions/{id}/export/answers.json", s.handleExportJSON)
	mux.HandleFunc("GET /api/sessions/{id}/export/answers.md", s.handleExportMarkdown)
	mux.HandleFunc("POST /api/sessions/{id}/export/logos", s.handleExportLogos)
	mux.HandleFunc("POST /api/sessions/{id}/export/founder-pack", s.handleFounderPack)

	mux.HandleFunc("GET /assets/{path...}", s.handleAsset)
	return mux
}

// Addr returns the address the server is listening on (e.g. "127.0.0.1:3000").
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

// Start serves requests until Stop. Returns nil after a clean shutdown.
func (s *Server) Start() error {
	_ = s.deps.Logger.Append(log.LogEvent{
		Event: log.EventServerStarted,
		Data:  map[string]interface{}{"addr": s.Addr()},
	})
	if err := s.server.Serve(s.listener); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests until ctx is done.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
