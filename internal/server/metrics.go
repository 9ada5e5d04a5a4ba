package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/brieflab/daybrief/internal/instrumentation"
)

const (
	// DefaultMetricsAddr is the default bind address for the metrics
	// server.
	DefaultMetricsAddr = ":9090"

	defaultReadHeaderTimeout = 10 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	defaultIdleTimeout       = 60 * time.Second
)

// MetricsServer exposes the Prometheus /metrics endpoint on a dedicated
// port while a briefing run executes, so a scraper never shares a port
// with anything else.
type MetricsServer struct {
	httpServer *http.Server
	listener   net.Listener
	addr       string
	handler    http.Handler
	logger     *slog.Logger
}

// NewMetricsServer creates a metrics server backed by the provider's
// Prometheus handler. The provider must be enabled with the prometheus
// metrics exporter selected.
func NewMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*MetricsServer, error) {
	if provider == nil || !provider.Enabled() {
		return nil, fmt.Errorf("instrumentation provider is not enabled")
	}
	if addr == "" {
		addr = DefaultMetricsAddr
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &MetricsServer{
		addr:    addr,
		handler: provider.MetricsHandler(),
		logger:  logger,
	}, nil
}

// Start runs the server until Shutdown. The ready channel, when non-nil,
// is closed once the listener is bound.
func (s *MetricsServer) Start(ready chan<- struct{}) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", s.handler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	s.httpServer = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		WriteTimeout:      defaultWriteTimeout,
		IdleTimeout:       defaultIdleTimeout,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener

	s.logger.Info("metrics server listening", "addr", listener.Addr().String())
	if ready != nil {
		close(ready)
	}
	return s.httpServer.Serve(listener)
}

// Shutdown stops the server gracefully.
func (s *MetricsServer) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the listener's address once Start has bound it, and the
// configured address before that.
func (s *MetricsServer) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}
