// Package server hosts a document over HTTP and exports its graphics as PNG
// downloads.
//
// Routes:
//
//	GET /          the host document
//	GET /graphics  JSON list of the document's graphics
//	GET /export    PNG attachment for ?selector=&filename=&width=&height=
//	GET /healthz   liveness
//
// A failed export answers with a JSON error body and never starts a
// download.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/pngexport/pkg/deliver"
	"github.com/matzehuels/pngexport/pkg/errors"
	"github.com/matzehuels/pngexport/pkg/export"
	"github.com/matzehuels/pngexport/pkg/observability"
	"github.com/matzehuels/pngexport/pkg/source"
)

// Server serves a single document.
type Server struct {
	exporter *export.Exporter
	logger   *log.Logger
	router   chi.Router
}

// New returns a server exporting from e's document. Each export is delivered
// as the HTTP response of its request.
func New(e *export.Exporter, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	s := &Server{exporter: e, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.accessLog)

	r.Get("/", s.handleDocument)
	r.Get("/graphics", s.handleGraphics)
	r.Get("/export", s.handleExport)
	r.Get("/healthz", s.handleHealth)
	s.router = r
	return s
}

// ServeHTTP implements [http.Handler].
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.exporter.Doc.Render(w); err != nil {
		s.logger.Error("render document", "err", err)
	}
}

func (s *Server) handleGraphics(w http.ResponseWriter, r *http.Request) {
	graphics, err := source.Graphics(s.exporter.Doc)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if graphics == nil {
		graphics = []source.Graphic{}
	}
	writeJSON(w, http.StatusOK, graphics)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := parseOptions(q.Get("width"), q.Get("height"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	d := deliver.NewHTTP(w)
	req := export.Request{
		Selector:  q.Get("selector"),
		Filename:  errors.PNGFilename(q.Get("filename")),
		Options:   opts,
		Refresh:   q.Has("refresh"),
		Deliverer: d,
	}
	if _, err := s.exporter.Run(r.Context(), req); err != nil {
		if d.Sent() {
			s.logger.Warn("export failed after response started", "err", err)
			return
		}
		s.writeError(w, r, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func parseOptions(width, height string) (export.Options, error) {
	var opts export.Options
	for _, f := range []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"width", width, &opts.Width},
		{"height", height, &opts.Height},
	} {
		if f.raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return opts, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid %s %q", f.name, f.raw)
		}
		*f.dst = v
	}
	return opts, nil
}

type errorBody struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, errors.HTTPStatus(err), errorBody{Code: code, Message: errors.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// accessLog logs each request and reports it to the HTTP hooks.
func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed.Round(time.Microsecond))
	})
}
