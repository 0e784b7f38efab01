// Package server exposes the deckforge operations as a JSON tool server.
// Every operation the CLI offers is available as a POST endpoint taking
// storage URIs, so remote callers can edit archives living in redis,
// mongo, or S3 without shipping bytes through the request body.
package server

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/deckforge/deckforge/pkg/errors"
	"github.com/deckforge/deckforge/pkg/opc"
	"github.com/deckforge/deckforge/pkg/storage"
	"github.com/deckforge/deckforge/pkg/template"
)

// Config holds the server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// Storage configures the backends behind storage URIs.
	Storage storage.Config
}

// Server wires the operation handlers to their routes.
type Server struct {
	cfg    Config
	logger *log.Logger
}

// New creates a server. A nil logger falls back to the default logger.
func New(cfg Config, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{cfg: cfg, logger: logger}
}

// Router builds the HTTP handler with the full middleware stack and
// every operation route mounted under /v1.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Post("/info", s.handleInfo)
		r.Post("/validate", s.handleValidate)
		r.Post("/audit", s.handleAudit)
		r.Post("/tree", s.handleTree)
		r.Post("/graph", s.handleGraph)

		r.Post("/theme/dump", s.handleDumpTheme)
		r.Post("/theme/colors", s.handleSetColors)
		r.Post("/theme/fonts", s.handleSetFonts)
		r.Post("/theme/names", s.handleSetThemeNames)

		r.Post("/normalize", s.handleNormalize)
		r.Post("/sanitize", s.handleSanitize)

		r.Post("/layout/make", s.handleMakeLayout)
		r.Post("/layout/set", s.handleSetLayout)
		r.Post("/layout/background", s.handleSetLayoutBackground)
		r.Post("/layout/image", s.handleSetLayoutImage)
		r.Post("/layout/auto", s.handleAutoLayout)
		r.Post("/layout/prune", s.handlePruneLayouts)
		r.Post("/layout/reindex", s.handleReindexLayouts)

		r.Post("/master/set", s.handleSetMaster)
		r.Post("/slide/set", s.handleSetSlide)
		r.Post("/text-styles", s.handleSetTextStyles)
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("tool server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond).String(),
		)
	})
}

// load fetches and opens the archive at uri.
func (s *Server) load(ctx context.Context, uri string) (*opc.Package, error) {
	data, err := storage.ReadBytes(ctx, uri, s.cfg.Storage)
	if err != nil {
		return nil, err
	}
	return opc.Open(data)
}

// save rebuilds the archive and writes it to uri.
func (s *Server) save(ctx context.Context, p *opc.Package, uri string) error {
	data, err := p.Save()
	if err != nil {
		return err
	}
	return storage.WriteBytes(ctx, uri, data, s.cfg.Storage)
}

// openTemplate opens the template at uri, or a fresh base template when
// uri is empty.
func (s *Server) openTemplate(ctx context.Context, uri string) (*template.Template, error) {
	if uri == "" {
		return template.New(), nil
	}
	return template.Open(ctx, uri, s.cfg.Storage)
}

// requireFields checks that the named string fields are non-empty.
func requireFields(fields map[string]string) error {
	for name, value := range fields {
		if value == "" {
			return errors.New(errors.ErrCodeInvalidInput, "missing required field %q", name)
		}
	}
	return nil
}
