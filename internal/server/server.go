// Package server exposes the provider through the /api routes the dashboard
// consumes, plus a Prometheus endpoint.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/pders01/mailcal/internal/config"
	"github.com/pders01/mailcal/internal/debuglog"
)

type Server struct {
	provider Retriever
	metrics  *Metrics
	get      routeTable
	post     routeTable
	handler  http.Handler
	addr     string
}

// New builds the HTTP surface. Metrics are mounted at /metrics when
// cfg.Metrics is set.
func New(cfg config.ServerConfig, p Retriever) *Server {
	s := &Server{provider: p, addr: cfg.Addr}
	s.get = s.getRoutes()
	s.post = s.postRoutes()

	mux := http.NewServeMux()
	api := http.Handler(http.HandlerFunc(s.serveAPI))
	if cfg.Metrics {
		s.metrics = NewMetrics()
		api = s.metrics.Middleware(s.routeLabel, api)
		mux.Handle("/metrics", s.metrics.Handler())
	}
	mux.Handle(apiPrefix, api)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		notFound(w)
	})

	s.handler = logRequests(mux)
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Metrics is nil when metrics are disabled.
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

func (s *Server) routeLabel(r *http.Request) string {
	key := routeKey(r)
	if r.Method == http.MethodOptions {
		return "preflight"
	}
	if _, ok := s.get[key]; ok {
		return key
	}
	if _, ok := s.post[key]; ok {
		return key
	}
	return "unmatched"
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		debuglog.Infof("%s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// ready, if non-nil, receives the bound address once listening.
func (s *Server) ListenAndServe(ctx context.Context, ready func(addr string)) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	debuglog.Infof("route layer listening on %s", ln.Addr())
	if ready != nil {
		ready(ln.Addr().String())
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		return nil
	}
}
