// Package server exposes the layout pipeline over HTTP.
//
// The server holds one validated VAST document and lays it out again on
// every request, so clients can switch weighting modes without re-reading
// the input:
//
//	GET /healthz
//	GET /tmap?mode=count
//	GET /treemap.svg?mode=size
//	GET /documents/{key}
package server

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/vastmap/pkg/pipeline"
	"github.com/matzehuels/vastmap/pkg/store"
	"github.com/matzehuels/vastmap/pkg/vast"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 5 * time.Second

// Config configures a Server.
type Config struct {
	Addr     string
	Runner   *pipeline.Runner
	Document *vast.Document
	// Options are the base layout options; requests may override the mode.
	Options pipeline.Options
	// Store serves published documents. Nil disables /documents.
	Store  store.Store
	Logger *log.Logger
}

// Server serves treemap layouts for a single document.
type Server struct {
	addr    string
	runner  *pipeline.Runner
	doc     *vast.Document
	opts    pipeline.Options
	store   store.Store
	logger  *log.Logger
	handler http.Handler
}

// New validates the document and builds the router.
func New(cfg Config) (*Server, error) {
	if cfg.Runner == nil {
		return nil, fmt.Errorf("server: runner is required")
	}
	if err := vast.Validate(cfg.Document); err != nil {
		return nil, err
	}
	if cfg.Store == nil {
		cfg.Store = store.NewNullStore()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	s := &Server{
		addr:   cfg.Addr,
		runner: cfg.Runner,
		doc:    cfg.Document,
		opts:   cfg.Options,
		store:  cfg.Store,
		logger: cfg.Logger,
	}
	s.handler = s.routes()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		s.requestID,
		s.logRequests,
		middleware.Recoverer,
		middleware.Compress(5),
	)

	r.Get("/healthz", s.handleHealth)
	r.Get("/tmap", s.handleTMAP)
	r.Get("/treemap.svg", s.handleSVG)
	r.Get("/documents/{key}", s.handleDocument)
	return r
}

// Serve listens on the configured address and blocks until ctx is
// cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("serving treemap", "addr", ln.Addr().String(), "source", s.opts.Source)

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
