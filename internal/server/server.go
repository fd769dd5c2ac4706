// Package server exposes the conversion pipeline over HTTP. It is stateless:
// every request carries one source document and receives the converted
// targets in the response.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/oklog/run"

	"pim/internal/core"
	"pim/internal/output"
	"pim/internal/pipeline"
)

// DefaultMaxBodySize is the largest source document accepted by the convert
// endpoint unless configured otherwise.
const DefaultMaxBodySize = 10 << 20

// requestDocument names request bodies in parse errors.
const requestDocument = "<request>"

// Server serves the conversion endpoint.
type Server struct {
	logger log.Logger

	// MaxBodySize limits the size of request bodies in bytes.
	MaxBodySize int64
}

// New creates a new Server.
func New(l log.Logger) *Server {
	if l == nil {
		l = log.NewNopLogger()
	}
	return &Server{logger: l, MaxBodySize: DefaultMaxBodySize}
}

// Handler returns the HTTP routes of the server.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/-/healthy", s.handleHealthy)
	r.Post("/api/v1/convert", s.handleConvert)
	return r
}

// Run serves on addr until ctx is canceled or the process receives SIGINT
// or SIGTERM.
func (s *Server) Run(ctx context.Context, addr string) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.serve(ctx, lis)
}

func (s *Server) serve(ctx context.Context, lis net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var g run.Group
	g.Add(func() error {
		level.Info(s.logger).Log("msg", "now listening for http traffic", "addr", lis.Addr())
		if err := srv.Serve(lis); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	})
	g.Add(run.SignalHandler(ctx, os.Interrupt, syscall.SIGTERM))

	err := g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) || errors.Is(err, context.Canceled) {
		level.Info(s.logger).Log("msg", "shutting down http server")
		return nil
	}
	return err
}

func (s *Server) handleHealthy(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "pim is healthy.\n")
}

// POST /api/v1/convert[?job=<name>][&format=yaml]
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	logger := log.With(s.logger, "request_id", middleware.GetReqID(r.Context()))

	format := output.FormatJSON
	if f := r.URL.Query().Get("format"); f != "" {
		parsed, err := output.ParseFormat(f)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		format = parsed
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.MaxBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "source document too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}

	groups, err := core.ParseGroups(requestDocument, data)
	if err != nil {
		level.Debug(logger).Log("msg", "rejecting source document", "err", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	buckets := pipeline.Expand(logger, groups)

	var v interface{} = buckets
	if job := r.URL.Query().Get("job"); job != "" {
		records := buckets.Records(job)
		if records == nil {
			http.Error(w, "job not found", http.StatusNotFound)
			return
		}
		v = records
	}

	body, err := format.Render(v, false)
	if err != nil {
		level.Error(logger).Log("msg", "failed to render targets", "err", err)
		http.Error(w, "failed to render targets", http.StatusInternalServerError)
		return
	}

	if format == output.FormatYAML {
		w.Header().Set("Content-Type", "application/yaml")
	} else {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}
