// Package api exposes migration, validation and classification over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/zohar-ui/ParserZamaActive/internal/state"
	"github.com/zohar-ui/ParserZamaActive/pkg/equipment"
	"github.com/zohar-ui/ParserZamaActive/pkg/migrate"
	"github.com/zohar-ui/ParserZamaActive/pkg/validate"
)

// Config holds the server's collaborators.
type Config struct {
	Engine     *migrate.Engine
	Validator  *validate.Validator
	Classifier *equipment.Classifier
	// Ledger is optional; /v1/runs answers 404 without it.
	Ledger  state.Store
	Logger  *slog.Logger
	Version string
}

// Server is the HTTP API server.
type Server struct {
	router     chi.Router
	engine     *migrate.Engine
	validator  *validate.Validator
	classifier *equipment.Classifier
	ledger     state.Store
	log        *slog.Logger
	version    string
}

// NewServer creates and configures the HTTP server.
func NewServer(cfg Config) *Server {
	s := &Server{
		engine:     cfg.Engine,
		validator:  cfg.Validator,
		classifier: cfg.Classifier,
		ledger:     cfg.Ledger,
		log:        cfg.Logger,
		version:    cfg.Version,
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	if s.validator == nil {
		s.validator = validate.New()
	}
	if s.classifier == nil {
		s.classifier = equipment.Default()
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/validate", s.handleValidate)
		r.Post("/migrate", s.handleMigrate)
		r.Get("/classify", s.handleClassify)
		r.Get("/steps", s.handleSteps)
		r.Get("/checks", s.handleChecks)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{runID}", s.handleGetRun)
	})

	s.router = r
}

// Serve listens on addr and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.log.Info("starting API server", "addr", ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.log.Debug("shutting down API server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}
